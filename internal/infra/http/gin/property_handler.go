package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentdom/internal/app/dto"
	listingapp "rentdom/internal/app/handlers/listings"
	"rentdom/internal/app/queries"
	"rentdom/internal/domain/listings"
)

type PropertyHandler struct {
	Queries queries.Bus
}

// Catalog responds with the properties matching ?filter=all|available|<type>.
func (h PropertyHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog unavailable"})
		return
	}
	q := listingapp.SearchQuery{Filter: listings.Filter{Category: c.Query("filter")}}
	result, err := queries.Ask[listingapp.SearchQuery, dto.PropertyCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog unavailable"})
		return
	}
	id, ok := propertyID(c)
	if !ok {
		return
	}
	result, err := queries.Ask[listingapp.GetQuery, dto.PropertyDetails](c.Request.Context(), h.Queries, listingapp.GetQuery{ID: id})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PropertyHTTP = PropertyHandler{}
