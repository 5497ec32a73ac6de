package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Landing handles GET /
func (h *Handlers) Landing(c *gin.Context) {
	h.render(c, http.StatusOK, "index.html", nil)
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
