package bridge

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studyroom-booking-backend/config"
)

// newTestClient spins up a fake host and returns a client whose endpoints
// all point at it.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.UpstreamConfig{
		PortalURL:         server.URL + "/portal/login",
		RedirectURL:       server.URL + "/portal/done",
		Referer:           server.URL + "/portal",
		LibraryLoginURL:   server.URL + "/library/sso",
		StudyroomURL:      server.URL + "/studyroom",
		RequestURL:        server.URL + "/studyroom/request?roomId=",
		BookingProcessURL: server.URL + "/studyroom/process",
		UserFindURL:       server.URL + "/studyroom/userfind",
		Timeout:           5 * time.Second,
	}
	return New(cfg), server
}
