package bridge

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireTwoHopLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/portal/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "Y", r.PostForm.Get("mainLogin"))
		assert.Equal(t, "20241234", r.PostForm.Get("id"))
		assert.Equal(t, "pw", r.PostForm.Get("password"))
		assert.Equal(t, "on", r.PostForm.Get("chkNos"))
		assert.NotEmpty(t, r.Header.Get("Referer"))

		w.Header().Add("Set-Cookie", "ssotoken=tok-abc; Path=/; HttpOnly")
		w.Header().Set("Location", "/portal/done")
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/library/sso", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Cookie"), "ssotoken=tok-abc")
		w.Header().Add("Set-Cookie", "JSESSIONID=sid-xyz; Path=/")
		w.Header().Set("Location", "/library/home")
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/portal/done", func(w http.ResponseWriter, r *http.Request) {
		t.Error("redirect was followed; the token lives in the first response")
	})
	mux.HandleFunc("/library/home", func(w http.ResponseWriter, r *http.Request) {
		t.Error("redirect was followed; the session id lives in the first response")
	})

	client, _ := newTestClient(t, mux)

	session, err := client.Acquire(context.Background(), "20241234", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", session.PortalToken)
	assert.Equal(t, "sid-xyz", session.LibrarySID)
}

func TestAcquireInvalidCredentials(t *testing.T) {
	libraryCalled := false
	mux := http.NewServeMux()
	mux.HandleFunc("/portal/login", func(w http.ResponseWriter, r *http.Request) {
		// Wrong password: the portal still answers 200, just without
		// the token cookie.
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/library/sso", func(w http.ResponseWriter, r *http.Request) {
		libraryCalled = true
	})

	client, _ := newTestClient(t, mux)

	_, err := client.Acquire(context.Background(), "20241234", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, libraryCalled, "no library call may be attempted after a portal failure")
}

func TestAcquireLibraryFailureIsDistinct(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/portal/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "ssotoken=tok-abc; Path=/")
	})
	mux.HandleFunc("/library/sso", func(w http.ResponseWriter, r *http.Request) {
		// The library bridge answers without setting its cookie.
		w.WriteHeader(http.StatusOK)
	})

	client, _ := newTestClient(t, mux)

	_, err := client.Acquire(context.Background(), "20241234", "pw")
	assert.ErrorIs(t, err, ErrUpstreamSession)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestCookieValueToleratesSurroundingAttributes(t *testing.T) {
	h := http.Header{}
	h.Add("Set-Cookie", "WMONID=noise; Path=/")
	h.Add("Set-Cookie", "ssotoken=abc123; Domain=.example.ac.kr; Secure; HttpOnly")

	assert.Equal(t, "abc123", cookieValue(ssotokenRe, h))
	assert.Equal(t, "", cookieValue(jsessionRe, h))
}
