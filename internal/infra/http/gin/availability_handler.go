package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentdom/internal/app/commands"
	"rentdom/internal/app/dto"
	availabilityapp "rentdom/internal/app/handlers/availability"
	"rentdom/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries  queries.Bus
	Commands commands.Bus
}

// Snapshot returns the whole parsed sheet. Unlike the per-property endpoints it reports
// fetch failures as 503.
func (h AvailabilityHandler) Snapshot(c *gin.Context) {
	result, err := queries.Ask[availabilityapp.GetSnapshotQuery, dto.AvailabilitySnapshot](c.Request.Context(), h.Queries, availabilityapp.GetSnapshotQuery{})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "availability unavailable"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Refresh(c *gin.Context) {
	result, err := commands.Dispatch[availabilityapp.RefreshCommand, *dto.AvailabilitySnapshot](c.Request.Context(), h.Commands, availabilityapp.RefreshCommand{})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "availability unavailable"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) UnavailableDates(c *gin.Context) {
	id, ok := propertyID(c)
	if !ok {
		return
	}
	q := availabilityapp.GetUnavailableDatesQuery{PropertyID: id}
	result, err := queries.Ask[availabilityapp.GetUnavailableDatesQuery, dto.UnavailableDates](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type pickerRequest struct {
	State   dto.PickerState `json:"state"`
	Event   dto.PickerEvent `json:"event"`
	MinDate string          `json:"min_date,omitempty"`
	MaxDate string          `json:"max_date,omitempty"`
}

// Picker applies one widget event to the state the client sends back each time.
func (h AvailabilityHandler) Picker(c *gin.Context) {
	id, ok := propertyID(c)
	if !ok {
		return
	}
	var req pickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q := availabilityapp.PickerTransitionQuery{PropertyID: id, State: req.State, Event: req.Event}
	var err error
	if q.MinDate, err = optionalDate(req.MinDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if q.MaxDate, err = optionalDate(req.MaxDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := queries.Ask[availabilityapp.PickerTransitionQuery, dto.PickerTransition](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
