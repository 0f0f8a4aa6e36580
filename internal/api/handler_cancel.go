package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"studyroom-booking-backend/internal/bridge"
	"studyroom-booking-backend/internal/model"
	"studyroom-booking-backend/internal/recurrence"
	"studyroom-booking-backend/internal/store"
)

type cancelRequest struct {
	ReservationID int64  `json:"reservationId" binding:"required"`
	Reason        string `json:"reason"`
}

// CancelReservation cancels one occurrence. Pending occurrences only
// exist locally; confirmed ones are withdrawn on the host first, and the
// local row flips to cancelled only after the host accepted.
func (h *Handler) CancelReservation(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reservationId is required"})
		return
	}

	ctx := c.Request.Context()
	res, err := h.store.ReservationForOwner(ctx, session.StudentID, req.ReservationID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
		return
	}

	switch res.Status {
	case model.StatusPending:
		// Not yet submitted anywhere, nothing to tell the host.
		if err := h.store.CancelLocally(ctx, res.ID); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "reservation can no longer be cancelled"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": model.StatusCancelled})
		return
	case model.StatusSuccess:
		// Falls through to the host cancellation below.
	default:
		c.JSON(http.StatusConflict, gin.H{"error": "only pending or confirmed reservations can be cancelled"})
		return
	}

	host, ok := h.librarySession(c, session)
	if !ok {
		return
	}

	bookingID := res.BookingID
	if bookingID == "" {
		// Confirmed without an identifier (the listing lookup missed at
		// submit time). Try once more before giving up.
		bookingID = h.recoverBookingID(c, host, res)
		if bookingID == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found on the host"})
			return
		}
	}

	outcome, err := h.bridge.Cancel(ctx, host, bookingID, res.RoomID, req.Reason)
	if err != nil {
		if errors.Is(err, bridge.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found on the host"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "host cancellation failed"})
		return
	}
	if !outcome.Success {
		c.JSON(http.StatusBadGateway, gin.H{"error": outcome.Message})
		return
	}

	if err := h.store.CancelLocally(ctx, res.ID); err != nil {
		if errors.Is(err, store.ErrIllegalTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": "reservation can no longer be cancelled"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record cancellation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": model.StatusCancelled})
}

func (h *Handler) recoverBookingID(c *gin.Context, host bridge.Session, res model.Reservation) string {
	date, err := time.ParseInLocation(recurrence.DateLayout, res.ReservationDate, h.loc)
	if err != nil {
		return ""
	}
	startHour, _ := strconv.Atoi(strings.SplitN(res.StartTime, ":", 2)[0])
	bookingID, err := h.bridge.Resolve(c.Request.Context(), host, res.RoomID, date, startHour)
	if err != nil {
		return ""
	}
	return bookingID
}
