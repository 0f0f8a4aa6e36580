package bridge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// LoginPortal submits the credential form to the campus SSO portal and
// returns the portal token. The portal answers with a redirect either way;
// the only success signal is the ssotoken cookie in the first response's
// headers, so its absence is an authentication failure, not a transport
// error.
func (c *Client) LoginPortal(ctx context.Context, studentID, password string) (string, error) {
	form := url.Values{
		"mainLogin": {"Y"},
		"rtUrl":     {c.cfg.RedirectURL},
		"id":        {studentID},
		"password":  {password},
		"chkNos":    {"on"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.PortalURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.cfg.Referer)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("portal login: %w", err)
	}
	defer resp.Body.Close()

	token := cookieValue(ssotokenRe, resp.Header)
	if token == "" {
		return "", ErrInvalidCredentials
	}
	return token, nil
}

// LoginLibrary exchanges a portal token for a library session id via the
// library's SSO bridge endpoint.
func (c *Client) LoginLibrary(ctx context.Context, portalToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.LibraryLoginURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Cookie", "ssotoken="+portalToken)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("library login: %w", err)
	}
	defer resp.Body.Close()

	sid := cookieValue(jsessionRe, resp.Header)
	if sid == "" {
		return "", ErrUpstreamSession
	}
	return sid, nil
}

// Acquire performs the full two-hop login. No library call is attempted
// when the portal hop fails.
func (c *Client) Acquire(ctx context.Context, studentID, password string) (Session, error) {
	token, err := c.LoginPortal(ctx, studentID, password)
	if err != nil {
		return Session{}, err
	}
	sid, err := c.LoginLibrary(ctx, token)
	if err != nil {
		return Session{}, err
	}
	return Session{PortalToken: token, LibrarySID: sid}, nil
}
