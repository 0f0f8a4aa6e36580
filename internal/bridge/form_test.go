package bridge

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entryPageHTML = `<html><body>
<form id="frmMain" action="/studyroom/process" method="post">
  <input type="hidden" name="roomId" value="04" />
  <input type="hidden" name="roomGroup" value="2" />
  <input type="hidden" name="token" value="csrf-9f2" />
  <input type="text" name="purpose" value="" />
  <input type="submit" value="go" />
</form>
</body></html>`

func TestFetchFieldsCollectsAllInputs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/studyroom/request", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "04", r.URL.Query().Get("roomId"))
		assert.Contains(t, r.Header.Get("Cookie"), "JSESSIONID=sid")
		fmt.Fprint(w, entryPageHTML)
	})

	client, _ := newTestClient(t, mux)

	fields, err := client.FetchFields(context.Background(), Session{PortalToken: "tok", LibrarySID: "sid"}, "04")
	require.NoError(t, err)

	assert.Equal(t, "04", fields["roomId"])
	assert.Equal(t, "2", fields["roomGroup"])
	assert.Equal(t, "csrf-9f2", fields["token"], "opaque tokens must be captured for pass-through")
	assert.Equal(t, "", fields["purpose"])
	// The unnamed submit input has no name and is not a field.
	assert.Len(t, fields, 4)
}

func TestFetchFieldsMissingFormIsParseError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/studyroom/request", func(w http.ResponseWriter, r *http.Request) {
		// Session expired: the host renders its login page instead.
		fmt.Fprint(w, `<html><body><form id="loginForm"></form></body></html>`)
	})

	client, _ := newTestClient(t, mux)

	_, err := client.FetchFields(context.Background(), Session{}, "04")
	assert.ErrorIs(t, err, ErrParse)
}
