// Package batch submits pending reservations whose target date has just
// entered the host's booking window. It is driven by an external
// time-based trigger through the HTTP API, not by an internal loop.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"studyroom-booking-backend/internal/bridge"
	"studyroom-booking-backend/internal/model"
	"studyroom-booking-backend/internal/recurrence"
	"studyroom-booking-backend/internal/secrets"
	"studyroom-booking-backend/internal/store"
)

// Bridge is the slice of the booking bridge the runner drives. It is an
// interface so tests can substitute a fake host.
type Bridge interface {
	Acquire(ctx context.Context, studentID, password string) (bridge.Session, error)
	Reserve(ctx context.Context, s bridge.Session, p bridge.BookingParams) (bridge.Outcome, error)
	Resolve(ctx context.Context, s bridge.Session, roomID string, date time.Time, startHour int) (string, error)
}

// Notifier receives the id of every processed reservation.
type Notifier interface {
	Dispatch(reservationID int64)
}

// Runner executes one batch pass over the reservations due for
// submission.
type Runner struct {
	store     store.Store
	bridge    Bridge
	unwrap    secrets.Unwrap
	leadDays  int
	closeHour int
	loc       *time.Location
	notifier  Notifier // optional
}

// NewRunner wires a batch runner. notifier may be nil.
func NewRunner(s store.Store, b Bridge, unwrap secrets.Unwrap, leadDays, closeHour int, loc *time.Location, notifier Notifier) *Runner {
	return &Runner{
		store:     s,
		bridge:    b,
		unwrap:    unwrap,
		leadDays:  leadDays,
		closeHour: closeHour,
		loc:       loc,
		notifier:  notifier,
	}
}

// Result is the outcome of one reservation within a run.
type Result struct {
	ReservationID int64  `json:"reservationId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// Summary aggregates one batch run.
type Summary struct {
	TargetDate string   `json:"targetDate"`
	Total      int      `json:"total"`
	Succeeded  int      `json:"succeeded"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// Run selects every pending reservation dated exactly leadDays from today
// (local calendar day), groups them by owner so each owner logs in once,
// and submits them with per-reservation failure isolation. One owner's
// authentication failure never aborts the batch.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	today := recurrence.Today(r.loc)
	targetDate := today.AddDate(0, 0, r.leadDays).Format(recurrence.DateLayout)

	due, err := r.store.DueReservations(ctx, targetDate)
	if err != nil {
		return Summary{}, fmt.Errorf("select due reservations: %w", err)
	}

	summary := Summary{TargetDate: targetDate}
	if len(due) == 0 {
		return summary, nil
	}
	log.Printf("batch: %d reservations due for %s", len(due), targetDate)

	byOwner := make(map[string][]model.Reservation)
	var owners []string
	for _, res := range due {
		if _, seen := byOwner[res.StudentID]; !seen {
			owners = append(owners, res.StudentID)
		}
		byOwner[res.StudentID] = append(byOwner[res.StudentID], res)
	}

	for _, owner := range owners {
		r.processOwner(ctx, owner, byOwner[owner], &summary)
	}

	summary.Total = len(summary.Results)
	return summary, nil
}

// processOwner authenticates once and submits the owner's reservations
// one at a time against that single session. The host session is one
// mutable cookie jar; concurrent use within it is not safe.
func (r *Runner) processOwner(ctx context.Context, owner string, reservations []model.Reservation, summary *Summary) {
	enc, err := r.store.Credential(ctx, owner)
	if err != nil {
		r.failAll(ctx, reservations, "no stored credential", summary)
		return
	}

	password, err := r.unwrap(enc)
	if err != nil {
		r.failAll(ctx, reservations, "credential decryption failed", summary)
		return
	}

	session, err := r.bridge.Acquire(ctx, owner, password)
	if err != nil {
		r.failAll(ctx, reservations, loginFailureMessage(err), summary)
		return
	}

	for _, res := range reservations {
		r.processReservation(ctx, session, res, summary)
	}
}

func (r *Runner) processReservation(ctx context.Context, session bridge.Session, res model.Reservation, summary *Summary) {
	params, date, err := paramsFor(res, r.closeHour)
	if err != nil {
		r.fail(ctx, res.ID, err.Error(), summary)
		return
	}

	outcome, err := r.bridge.Reserve(ctx, session, params)
	if err != nil {
		r.fail(ctx, res.ID, err.Error(), summary)
		return
	}
	if !outcome.Success {
		r.fail(ctx, res.ID, outcome.Message, summary)
		return
	}

	// The submit response carries no identifier; recover it from the
	// listing. A miss is not a failure; the booking exists either way.
	startHour, _ := strconv.Atoi(strings.SplitN(res.StartTime, ":", 2)[0])
	bookingID, err := r.bridge.Resolve(ctx, session, res.RoomID, date, startHour)
	if err != nil {
		log.Printf("batch: reservation %d booked but listing lookup failed: %v", res.ID, err)
		bookingID = ""
	}

	if err := r.store.MarkSuccess(ctx, res.ID, bookingID); err != nil {
		log.Printf("batch: reservation %d: recording success failed: %v", res.ID, err)
	}
	summary.Results = append(summary.Results, Result{ReservationID: res.ID, Status: model.StatusSuccess, Message: outcome.Message})
	summary.Succeeded++
	r.dispatch(res.ID)
}

func (r *Runner) fail(ctx context.Context, id int64, message string, summary *Summary) {
	if err := r.store.MarkFailed(ctx, id, message); err != nil {
		log.Printf("batch: reservation %d: recording failure failed: %v", id, err)
	}
	summary.Results = append(summary.Results, Result{ReservationID: id, Status: model.StatusFailed, Message: message})
	summary.Failed++
	r.dispatch(id)
}

func (r *Runner) failAll(ctx context.Context, reservations []model.Reservation, message string, summary *Summary) {
	for _, res := range reservations {
		r.fail(ctx, res.ID, message, summary)
	}
}

func (r *Runner) dispatch(id int64) {
	if r.notifier != nil {
		r.notifier.Dispatch(id)
	}
}

// loginFailureMessage keeps the three authentication failure causes
// distinguishable in the stored error message.
func loginFailureMessage(err error) string {
	switch {
	case errors.Is(err, bridge.ErrInvalidCredentials):
		return "portal login failed - the password may have changed"
	case errors.Is(err, bridge.ErrUpstreamSession):
		return "library login failed"
	default:
		return fmt.Sprintf("portal login request failed: %v", err)
	}
}

func paramsFor(res model.Reservation, closeHour int) (bridge.BookingParams, time.Time, error) {
	date, err := time.Parse(recurrence.DateLayout, res.ReservationDate)
	if err != nil {
		return bridge.BookingParams{}, time.Time{}, fmt.Errorf("malformed reservation date %q", res.ReservationDate)
	}

	companions := make([]bridge.Companion, 0, len(res.Companions))
	for _, c := range res.Companions {
		companions = append(companions, bridge.Companion{StudentID: c.StudentID, Name: c.Name, IPID: c.IPID})
	}

	return bridge.BookingParams{
		RoomID:     res.RoomID,
		Year:       date.Format("2006"),
		Month:      date.Format("01"),
		Day:        date.Format("02"),
		StartHour:  strings.SplitN(res.StartTime, ":", 2)[0],
		Hours:      res.Hours,
		Purpose:    res.Reason,
		CloseHour:  closeHour,
		Companions: companions,
	}, date, nil
}
