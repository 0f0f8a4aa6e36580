package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RunBatch triggers one batch pass. The route is meant for an external
// scheduler and is gated by a shared bearer secret, compared in constant
// time.
func (h *Handler) RunBatch(c *gin.Context) {
	secret := h.cfg.Booking.CronSecret
	if secret == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "batch trigger is not configured"})
		return
	}

	auth := c.GetHeader("Authorization")
	presented, found := strings.CutPrefix(auth, "Bearer ")
	if !found || subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	summary, err := h.runner.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
