// Package bridge talks to the campus portal and the library booking
// subsystem. Both are legacy server-rendered applications: requests are
// form-encoded POSTs, session state is carried in two named cookies, and
// outcomes are signalled out-of-band through the X-JSON response header
// rather than the HTTP status code.
package bridge

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"studyroom-booking-backend/config"
)

// Client performs all host communication. It never retries; retry policy
// belongs to the caller.
type Client struct {
	cfg *config.UpstreamConfig
	hc  *http.Client
}

// New creates a bridge client. Redirects are never followed because both
// login hops place their success signal in the Set-Cookie headers of the
// first response, not the final destination.
func New(cfg *config.UpstreamConfig) *Client {
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Session is the ephemeral credential pair for one authenticated pass
// against the host. It is owned by the call that produced it and must be
// re-acquired for every batch run and cancellation; host sessions are
// short-lived.
type Session struct {
	PortalToken string // ssotoken issued by the campus SSO portal
	LibrarySID  string // JSESSIONID issued by the library subsystem
}

func (s Session) cookieHeader() string {
	return "ssotoken=" + s.PortalToken + "; JSESSIONID=" + s.LibrarySID
}

// Outcome is the host's verdict on a submission or cancellation. Success
// is read from the X-JSON header; an HTTP 200 alone implies nothing.
type Outcome struct {
	Success bool
	Message string
}

var (
	ssotokenRe = regexp.MustCompile(`ssotoken=([^;]+)`)
	jsessionRe = regexp.MustCompile(`JSESSIONID=([^;]+)`)
)

func cookieValue(re *regexp.Regexp, h http.Header) string {
	for _, sc := range h.Values("Set-Cookie") {
		if m := re.FindStringSubmatch(sc); m != nil {
			return m[1]
		}
	}
	return ""
}

// hostAccepted reports whether the X-JSON header carries the host's
// success token. The host wraps the value in varying structure, so this
// is a containment check, not an exact match.
func hostAccepted(h http.Header) bool {
	return strings.Contains(h.Get("X-JSON"), "true")
}

// failureMessage extracts a human-readable reason from a rejected
// response, falling back to the given default.
func failureMessage(body io.Reader, fallback string) string {
	b, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return fallback
	}
	if msg := strings.TrimSpace(string(b)); msg != "" {
		return msg
	}
	return fallback
}

func (c *Client) get(ctx context.Context, rawURL string, s Session) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cookie", s.cookieHeader())
	return c.hc.Do(req)
}

func (c *Client) postForm(ctx context.Context, rawURL string, s Session, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", s.cookieHeader())
	return c.hc.Do(req)
}
