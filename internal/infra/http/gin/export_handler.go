package ginserver

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	gin "github.com/gin-gonic/gin"
	"github.com/jszwec/csvutil"

	"rentdom/internal/app/dto"
	availabilityapp "rentdom/internal/app/handlers/availability"
	"rentdom/internal/app/queries"
	"rentdom/internal/domain/availability"
	"rentdom/internal/domain/listings"
	"rentdom/internal/domain/shared/daterange"
)

const calendarProductID = "-//rentdom//occupancy//RU"

// ExportHandler renders occupancy for calendar apps and spreadsheets.
type ExportHandler struct {
	Queries queries.Bus
	Now     func() time.Time
}

// Calendar serves an iCalendar feed with one all-day event per run of occupied days.
func (h ExportHandler) Calendar(c *gin.Context) {
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
	if result.Status != string(availability.StatusLoaded) {
		c.Header("Retry-After", "30")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "availability " + result.Status})
		return
	}
	cal, err := buildCalendar(id, result.Dates, h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=property-%d.ics", id))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal.Serialize()))
}

func buildCalendar(id listings.PropertyID, dates []string, now time.Time) (*ics.Calendar, error) {
	days := make([]time.Time, 0, len(dates))
	for _, raw := range dates {
		d, err := dto.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(fmt.Sprintf("Занятость объекта %d", id))
	for _, run := range consecutiveRuns(days) {
		ev := cal.AddEvent(fmt.Sprintf("%d-%s@rentdom", id, run.Start.Format("20060102")))
		ev.SetDtStampTime(now.UTC())
		ev.SetAllDayStartAt(run.Start)
		ev.SetAllDayEndAt(run.End.AddDate(0, 0, 1))
		ev.SetSummary("Занято")
	}
	return cal, nil
}

// consecutiveRuns groups sorted days into inclusive ranges without gaps.
func consecutiveRuns(days []time.Time) []daterange.DateRange {
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	var runs []daterange.DateRange
	for _, d := range days {
		// a day touching the last run extends it
		day := daterange.DateRange{Start: d.AddDate(0, 0, -1), End: d}
		if n := len(runs); n > 0 && runs[n-1].Overlaps(day) {
			if d.After(runs[n-1].End) {
				runs[n-1].End = d
			}
			continue
		}
		runs = append(runs, daterange.DateRange{Start: d, End: d})
	}
	return runs
}

type occupancyRow struct {
	PropertyID  listings.PropertyID `csv:"property_id"`
	Label       string              `csv:"label"`
	Month       string              `csv:"month"`
	MonthNumber int                 `csv:"month_number"`
	StartDay    int                 `csv:"start_day"`
	EndDay      int                 `csv:"end_day"`
}

// CSV exports the mapped periods, ordered by property id and source order.
func (h ExportHandler) CSV(c *gin.Context) {
	snap, err := queries.Ask[availabilityapp.GetSnapshotQuery, dto.AvailabilitySnapshot](c.Request.Context(), h.Queries, availabilityapp.GetSnapshotQuery{})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "availability unavailable"})
		return
	}
	data, err := csvutil.Marshal(occupancyRows(snap))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=availability.csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func occupancyRows(snap dto.AvailabilitySnapshot) []occupancyRow {
	ids := make([]listings.PropertyID, 0, len(snap.PropertyRentData))
	for id := range snap.PropertyRentData {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := []occupancyRow{}
	for _, id := range ids {
		for _, p := range snap.PropertyRentData[id] {
			row := occupancyRow{PropertyID: id, Label: p.ID, Month: p.Month, StartDay: p.StartDay, EndDay: p.EndDay}
			if m, ok := availability.ResolveMonth(p.Month); ok {
				row.MonthNumber = int(m)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func (h ExportHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var _ ExportHTTP = ExportHandler{}
