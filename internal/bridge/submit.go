package bridge

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Companion is a co-occupant of a booking. IPID is the library-issued
// verification token obtained through VerifyCompanion.
type Companion struct {
	StudentID string
	Name      string
	IPID      string
}

// BookingParams carries the caller-supplied portion of a reservation.
// Date components are the host's expected strings (month and day
// zero-padded). Companion order is preserved on submission: the host
// associates the 1-based index with the occupant slot.
type BookingParams struct {
	RoomID     string
	Year       string
	Month      string
	Day        string
	StartHour  string
	Hours      int
	Purpose    string
	CloseHour  int
	Companions []Companion
}

// Submit overlays params onto a fetched field set and posts the booking.
// A non-nil error means the request itself failed; a rejected booking
// comes back as Outcome{Success: false} with the host's reason.
func (c *Client) Submit(ctx context.Context, s Session, fields map[string]string, p BookingParams) (Outcome, error) {
	form := url.Values{}
	for name, value := range fields {
		form.Set(name, value)
	}

	for i, comp := range p.Companions {
		n := strconv.Itoa(i + 1)
		form.Set("altPid"+n, comp.StudentID)
		form.Set("name"+n, comp.Name)
		form.Set("ipid"+n, comp.IPID)
	}

	form.Set("year", p.Year)
	form.Set("month", p.Month)
	form.Set("day", p.Day)
	form.Set("startHour", p.StartHour)
	form.Set("closeTime", strconv.Itoa(p.CloseHour))
	form.Set("hours", strconv.Itoa(p.Hours))
	form.Set("purpose", p.Purpose)
	form.Set("mode", "INSERT")

	resp, err := c.postForm(ctx, c.cfg.BookingProcessURL, s, form)
	if err != nil {
		return Outcome{}, fmt.Errorf("booking submit: %w", err)
	}
	defer resp.Body.Close()

	if hostAccepted(resp.Header) {
		return Outcome{Success: true, Message: "reservation confirmed"}, nil
	}
	return Outcome{Success: false, Message: failureMessage(resp.Body, "the host rejected the reservation")}, nil
}

// Reserve fetches the room's form fields and submits the booking in one
// pass, the way a browser session would.
func (c *Client) Reserve(ctx context.Context, s Session, p BookingParams) (Outcome, error) {
	fields, err := c.FetchFields(ctx, s, p.RoomID)
	if err != nil {
		return Outcome{}, err
	}
	return c.Submit(ctx, s, fields, p)
}
