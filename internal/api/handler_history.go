package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studyroom-booking-backend/internal/rooms"
)

// GetRooms lists the bookable rooms and their occupancy bounds.
func (h *Handler) GetRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": rooms.All()})
}

// GetHistory lists the caller's reservations grouped by recurring rule,
// most recent rule first.
func (h *Handler) GetHistory(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	groups, err := h.store.History(c.Request.Context(), session.StudentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// GetSlots returns the locally known occupied hours of a room for the
// requested dates, for the booking form to grey out.
func (h *Handler) GetSlots(c *gin.Context) {
	roomID := c.Query("roomId")
	datesParam := c.Query("dates")
	if roomID == "" || datesParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomId and dates are required"})
		return
	}

	dates := strings.Split(datesParam, ",")
	slots, err := h.store.SlotsByDate(c.Request.Context(), roomID, dates)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load slots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": roomID, "slots": slots})
}
