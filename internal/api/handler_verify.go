package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studyroom-booking-backend/internal/bridge"
	"studyroom-booking-backend/internal/recurrence"
)

type verifyRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Date      string `json:"date" binding:"required"`
}

// VerifyStudent checks a prospective companion against the host's user
// directory and returns the internal person id the booking form needs.
func (h *Handler) VerifyStudent(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "studentId, name and date are required"})
		return
	}

	date, err := time.ParseInLocation(recurrence.DateLayout, req.Date, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	host, ok := h.librarySession(c, session)
	if !ok {
		return
	}

	ipid, err := h.bridge.VerifyCompanion(c.Request.Context(), host,
		req.StudentID, req.Name, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err != nil {
		if errors.Is(err, bridge.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"verified": false, "error": "no matching student, or the student is blocked for that date"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "student lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true, "ipid": ipid})
}
