package bridge

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelSubmitsUpdateForm(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/studyroom", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingHTML)
	})
	mux.HandleFunc("/studyroom/process", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "7002", r.PostForm.Get("bookingId"))
		assert.Equal(t, "13", r.PostForm.Get("roomId"))
		assert.Equal(t, "C", r.PostForm.Get("expired"))
		assert.Equal(t, "update", r.PostForm.Get("mode"))
		assert.Equal(t, "0", r.PostForm.Get("classId"))
		assert.Equal(t, "schedule changed", r.PostForm.Get("cancelMsg"))
		w.Header().Set("X-JSON", "({'result':true})")
	})

	client, _ := newTestClient(t, mux)

	outcome, err := client.Cancel(context.Background(), Session{}, "7002", "13", "schedule changed")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
}

func TestCancelUnknownBookingIsNotFound(t *testing.T) {
	processCalled := false
	mux := http.NewServeMux()
	mux.HandleFunc("/studyroom", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingHTML)
	})
	mux.HandleFunc("/studyroom/process", func(w http.ResponseWriter, r *http.Request) {
		processCalled = true
	})

	client, _ := newTestClient(t, mux)

	_, err := client.Cancel(context.Background(), Session{}, "9999", "13", "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, processCalled, "a nonexistent booking must not be cancelled blindly")
}

func TestCancelRejectionCarriesHostMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/studyroom", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingHTML)
	})
	mux.HandleFunc("/studyroom/process", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Reservations may not be cancelled on the day of use.")
	})

	client, _ := newTestClient(t, mux)

	outcome, err := client.Cancel(context.Background(), Session{}, "7001", "14", "")
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, "Reservations may not be cancelled on the day of use.", outcome.Message)
}
