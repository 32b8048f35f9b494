package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentdom/internal/infra/config"
)

// SiteHandler publishes the contact details and counters the landing page renders.
type SiteHandler struct {
	Site config.Site
}

func (h SiteHandler) Settings(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, h.Site)
}

var _ SiteHTTP = SiteHandler{}
