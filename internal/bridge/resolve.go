package bridge

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ListingRow is one row of the user's own booking list as rendered by the
// host: the identifiers embedded in the row's detail link plus the
// rendered date and start time text.
type ListingRow struct {
	BookingID string
	IPID      string
	RoomID    string
	Date      string // as rendered, e.g. "2025/03/10"
	Time      string // as rendered, e.g. "10:00"
}

// RowMatcher selects a listing row. Matching is pluggable because the
// rendered-text strategy is format-dependent; a host format change should
// be a local fix.
type RowMatcher func(ListingRow) bool

var (
	listingDateRe = regexp.MustCompile(`\d{4}/\d{2}/\d{2}`)
	listingTimeRe = regexp.MustCompile(`\d{2}:\d{2}`)
)

// ListBookings scrapes the authenticated user's reservation listing page.
func (c *Client) ListBookings(ctx context.Context, s Session) ([]ListingRow, error) {
	resp, err := c.get(ctx, c.cfg.StudyroomURL, s)
	if err != nil {
		return nil, fmt.Errorf("listing fetch: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("listing parse: %w", err)
	}

	table := doc.Find("table.tb01.width-full").Last()
	if table.Length() == 0 {
		return nil, fmt.Errorf("listing table: %w", ErrParse)
	}

	var rows []ListingRow
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return // header
		}
		href, ok := tr.Find("a").Attr("href")
		if !ok {
			return
		}
		// The detail link is a javascript call with single-quoted
		// arguments: (bookingId, ipid, roomId).
		parts := strings.Split(href, "'")
		if len(parts) < 6 {
			return
		}
		text := tr.Text()
		rows = append(rows, ListingRow{
			BookingID: parts[1],
			IPID:      parts[3],
			RoomID:    parts[5],
			Date:      listingDateRe.FindString(text),
			Time:      listingTimeRe.FindString(text),
		})
	})
	return rows, nil
}

// FindBooking returns the first listing row the matcher accepts, in table
// order. Table order is assumed chronological as rendered by the host;
// that assumption is unverified.
func (c *Client) FindBooking(ctx context.Context, s Session, match RowMatcher) (ListingRow, bool, error) {
	rows, err := c.ListBookings(ctx, s)
	if err != nil {
		return ListingRow{}, false, err
	}
	for _, row := range rows {
		if match(row) {
			return row, true, nil
		}
	}
	return ListingRow{}, false, nil
}

// MatchOccurrence matches a row by room id and by date/time rendered in
// the host's own format (slash-separated date, zero-padded hour).
func MatchOccurrence(roomID string, date time.Time, startHour int) RowMatcher {
	wantDate := date.Format("2006/01/02")
	wantTime := fmt.Sprintf("%02d:00", startHour)
	return func(r ListingRow) bool {
		return r.RoomID == roomID && r.Date == wantDate && r.Time == wantTime
	}
}

// MatchBookingID matches a row by its host booking identifier.
func MatchBookingID(bookingID string) RowMatcher {
	return func(r ListingRow) bool { return r.BookingID == bookingID }
}

// Resolve finds the booking id of a freshly created reservation by
// re-scraping the listing, since the submission response carries no
// identifier. An empty id with a nil error means no row matched; the
// booking may not be reflected yet, or the listing may render a room name
// instead of the raw room code used on the create path.
func (c *Client) Resolve(ctx context.Context, s Session, roomID string, date time.Time, startHour int) (string, error) {
	row, found, err := c.FindBooking(ctx, s, MatchOccurrence(roomID, date, startHour))
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return row.BookingID, nil
}
