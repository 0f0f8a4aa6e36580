package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// VerifyCompanion asks the library to confirm that a student may be added
// as a co-occupant and returns their verification token (ipid). The host
// answers through the X-JSON header with single-quoted pseudo-JSON.
func (c *Client) VerifyCompanion(ctx context.Context, s Session, studentID, name, year, month, day string) (string, error) {
	form := url.Values{
		"altPid":        {studentID},
		"name":          {name},
		"userBlockUser": {"Y"},
		"year":          {year},
		"month":         {month},
		"day":           {day},
	}

	resp, err := c.postForm(ctx, c.cfg.UserFindURL, s, form)
	if err != nil {
		return "", fmt.Errorf("user lookup: %w", err)
	}
	defer resp.Body.Close()

	xJSON := resp.Header.Get("X-JSON")
	if xJSON == "" {
		return "", fmt.Errorf("user lookup response: %w", ErrParse)
	}

	var result struct {
		Result string `json:"result"`
		IPID   string `json:"ipid"`
	}
	if err := json.Unmarshal([]byte(strings.ReplaceAll(xJSON, "'", `"`)), &result); err != nil {
		return "", fmt.Errorf("user lookup response: %w", ErrParse)
	}
	if result.Result != "true" {
		return "", fmt.Errorf("student %s: %w", studentID, ErrNotFound)
	}
	return result.IPID, nil
}
