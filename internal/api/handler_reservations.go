package api

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studyroom-booking-backend/internal/bridge"
	"studyroom-booking-backend/internal/model"
	"studyroom-booking-backend/internal/recurrence"
	"studyroom-booking-backend/internal/rooms"
	"studyroom-booking-backend/internal/store"
)

type companionRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	IPID      string `json:"ipid" binding:"required"`
}

type createReservationRequest struct {
	RoomID     string             `json:"roomId" binding:"required"`
	Day        string             `json:"day" binding:"required"`
	StartTime  string             `json:"startTime" binding:"required"`
	Hours      int                `json:"hours" binding:"required"`
	EndDate    string             `json:"endDate" binding:"required"`
	Reason     string             `json:"reason" binding:"required"`
	Companions []companionRequest `json:"companions"`
}

// immediateResult reports one occurrence that was submitted during the
// create request because its date already lies inside the booking window.
type immediateResult struct {
	Date      string `json:"date"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	BookingID string `json:"bookingId,omitempty"`
}

var startTimeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):00$`)

// CreateReservation registers a weekly recurring rule. Occurrences whose
// date is already bookable are submitted right away on the caller's
// session; the rest stay pending for the batch runs.
func (h *Handler) CreateReservation(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, ok := rooms.ByID(req.RoomID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown room"})
		return
	}
	if req.Hours < 1 || req.Hours > 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be 1 or 2"})
		return
	}
	if !recurrence.ValidDay(req.Day) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day must be a weekday, monday through friday"})
		return
	}
	if !startTimeRe.MatchString(req.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startTime must be a full hour, HH:00"})
		return
	}
	startHour, _ := strconv.Atoi(req.StartTime[:2])
	if startHour+req.Hours > h.cfg.Booking.CloseHour {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("reservation must end by %02d:00", h.cfg.Booking.CloseHour)})
		return
	}
	// The owner counts toward occupancy.
	people := len(req.Companions) + 1
	if people < room.MinPeople || people > room.MaxPeople {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("room %s requires %d to %d people", room.ID, room.MinPeople, room.MaxPeople),
		})
		return
	}

	endDate, err := time.ParseInLocation(recurrence.DateLayout, req.EndDate, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must be YYYY-MM-DD"})
		return
	}

	today := recurrence.Today(h.loc)
	dates, err := recurrence.Expand(req.Day, today, endDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(dates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate yields no occurrences"})
		return
	}

	companions := make([]model.Companion, 0, len(req.Companions))
	for _, comp := range req.Companions {
		companions = append(companions, model.Companion{StudentID: comp.StudentID, Name: comp.Name, IPID: comp.IPID})
	}

	dateStrings := make([]string, len(dates))
	for i, d := range dates {
		dateStrings[i] = d.Format(recurrence.DateLayout)
	}

	immediate, deferred := recurrence.SplitImmediate(dates, today, h.cfg.Booking.LeadDays)

	// In-window occurrences go out on the caller's session during this
	// request, so the host session must exist before anything is written.
	var host bridge.Session
	if len(immediate) > 0 {
		if host, ok = h.librarySession(c, session); !ok {
			return
		}
	}

	groupID := uuid.NewString()
	ids, err := h.store.CreateGroup(c.Request.Context(), store.NewGroup{
		StudentID:         session.StudentID,
		GroupID:           groupID,
		RoomID:            req.RoomID,
		Dates:             dateStrings,
		StartTime:         req.StartTime,
		Hours:             req.Hours,
		Reason:            req.Reason,
		Companions:        companions,
		EncryptedPassword: session.SealedPass,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save reservations"})
		return
	}

	results := h.submitImmediate(c, host, req, startHour, companions, immediate, ids)

	c.JSON(http.StatusCreated, gin.H{
		"groupId":        groupID,
		"dates":          dateStrings,
		"scheduledCount": len(deferred),
		"immediate":      results,
	})
}

// submitImmediate books the in-window occurrences on the caller's own
// host session, one at a time. A rejected occurrence is recorded as
// failed and does not stop the remaining ones.
func (h *Handler) submitImmediate(c *gin.Context, host bridge.Session, req createReservationRequest, startHour int, companions []model.Companion, dates []time.Time, ids map[string]int64) []immediateResult {
	bridgeCompanions := make([]bridge.Companion, 0, len(companions))
	for _, comp := range companions {
		bridgeCompanions = append(bridgeCompanions, bridge.Companion{StudentID: comp.StudentID, Name: comp.Name, IPID: comp.IPID})
	}

	ctx := c.Request.Context()
	results := make([]immediateResult, 0, len(dates))
	for _, date := range dates {
		dateStr := date.Format(recurrence.DateLayout)
		id := ids[dateStr]

		outcome, err := h.bridge.Reserve(ctx, host, bridge.BookingParams{
			RoomID:     req.RoomID,
			Year:       date.Format("2006"),
			Month:      date.Format("01"),
			Day:        date.Format("02"),
			StartHour:  req.StartTime[:2],
			Hours:      req.Hours,
			Purpose:    req.Reason,
			CloseHour:  h.cfg.Booking.CloseHour,
			Companions: bridgeCompanions,
		})
		if err != nil {
			h.store.MarkFailed(ctx, id, err.Error())
			results = append(results, immediateResult{Date: dateStr, Status: model.StatusFailed, Message: err.Error()})
			continue
		}
		if !outcome.Success {
			h.store.MarkFailed(ctx, id, outcome.Message)
			results = append(results, immediateResult{Date: dateStr, Status: model.StatusFailed, Message: outcome.Message})
			continue
		}

		bookingID, err := h.bridge.Resolve(ctx, host, req.RoomID, date, startHour)
		if err != nil {
			bookingID = "" // booked either way, the listing lookup is best effort
		}
		h.store.MarkSuccess(ctx, id, bookingID)
		results = append(results, immediateResult{Date: dateStr, Status: model.StatusSuccess, BookingID: bookingID})
	}
	return results
}
