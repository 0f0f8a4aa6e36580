package bridge

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// FetchFields loads the booking entry page of a room and returns every
// input of the reservation form as a name→value map. The map includes
// fields the caller never touches (CSRF-like tokens, room metadata); they
// must be passed through unmodified on submission. The result is valid
// only for the room and session it was fetched with.
func (c *Client) FetchFields(ctx context.Context, s Session, roomID string) (map[string]string, error) {
	resp, err := c.get(ctx, c.cfg.RequestURL+roomID, s)
	if err != nil {
		return nil, fmt.Errorf("entry page fetch: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("entry page parse: %w", err)
	}

	form := doc.Find("#frmMain")
	if form.Length() == 0 {
		return nil, fmt.Errorf("entry page for room %s: %w", roomID, ErrParse)
	}

	fields := make(map[string]string)
	form.Find("input").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok || name == "" {
			return
		}
		fields[name], _ = sel.Attr("value")
	})
	return fields, nil
}
