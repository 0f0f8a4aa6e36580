package bridge

import (
	"context"
	"fmt"
	"net/url"
)

// Cancel locates an existing booking on the host and submits a
// cancellation. The listing is re-scraped first so that cancelling a
// booking the host no longer knows fails with ErrNotFound instead of
// silently succeeding.
func (c *Client) Cancel(ctx context.Context, s Session, bookingID, roomID, reason string) (Outcome, error) {
	if reason == "" {
		reason = "cancelled by owner"
	}

	_, found, err := c.FindBooking(ctx, s, MatchBookingID(bookingID))
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		return Outcome{}, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	form := url.Values{
		"cancelMsg": {reason},
		"bookingId": {bookingID},
		"expired":   {"C"},
		"roomId":    {roomID},
		"mode":      {"update"},
		"classId":   {"0"},
	}

	resp, err := c.postForm(ctx, c.cfg.BookingProcessURL, s, form)
	if err != nil {
		return Outcome{}, fmt.Errorf("cancel submit: %w", err)
	}
	defer resp.Body.Close()

	if hostAccepted(resp.Header) {
		return Outcome{Success: true, Message: "reservation cancelled"}, nil
	}
	return Outcome{Success: false, Message: failureMessage(resp.Body, "the host rejected the cancellation")}, nil
}
