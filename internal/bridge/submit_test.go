package bridge

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() BookingParams {
	return BookingParams{
		RoomID:    "04",
		Year:      "2025",
		Month:     "03",
		Day:       "10",
		StartHour: "10",
		Hours:     2,
		Purpose:   "group project",
		CloseHour: 22,
		Companions: []Companion{
			{StudentID: "20240001", Name: "Kim", IPID: "ip-1"},
			{StudentID: "20240002", Name: "Lee", IPID: "ip-2"},
		},
	}
}

func TestSubmitOverlaysFieldsAndReadsHeaderSignal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/studyroom/process", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())

		// Scraped fields pass through untouched.
		assert.Equal(t, "csrf-9f2", r.PostForm.Get("token"))
		assert.Equal(t, "04", r.PostForm.Get("roomId"))

		// Caller-supplied overlay.
		assert.Equal(t, "2025", r.PostForm.Get("year"))
		assert.Equal(t, "03", r.PostForm.Get("month"))
		assert.Equal(t, "10", r.PostForm.Get("day"))
		assert.Equal(t, "10", r.PostForm.Get("startHour"))
		assert.Equal(t, "22", r.PostForm.Get("closeTime"))
		assert.Equal(t, "2", r.PostForm.Get("hours"))
		assert.Equal(t, "group project", r.PostForm.Get("purpose"))
		assert.Equal(t, "INSERT", r.PostForm.Get("mode"))

		// Companions are indexed 1..N in the order supplied.
		assert.Equal(t, "20240001", r.PostForm.Get("altPid1"))
		assert.Equal(t, "Kim", r.PostForm.Get("name1"))
		assert.Equal(t, "ip-1", r.PostForm.Get("ipid1"))
		assert.Equal(t, "20240002", r.PostForm.Get("altPid2"))
		assert.Equal(t, "Lee", r.PostForm.Get("name2"))
		assert.Equal(t, "ip-2", r.PostForm.Get("ipid2"))

		w.Header().Set("X-JSON", "({'result':true})")
	})

	client, _ := newTestClient(t, mux)

	fields := map[string]string{"token": "csrf-9f2", "roomId": "04"}
	outcome, err := client.Submit(context.Background(), Session{}, fields, testParams())
	require.NoError(t, err)
	assert.True(t, outcome.Success)
}

func TestSubmitRejectionUsesBodyAsMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/studyroom/process", func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 does not imply booking success: no X-JSON header
		// means the host refused it.
		fmt.Fprint(w, "The room is already reserved for that time.\n")
	})

	client, _ := newTestClient(t, mux)

	outcome, err := client.Submit(context.Background(), Session{}, map[string]string{}, testParams())
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, "The room is already reserved for that time.", outcome.Message)
}

func TestSubmitFalsyHeaderIsRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/studyroom/process", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-JSON", "({'result':false})")
	})

	client, _ := newTestClient(t, mux)

	outcome, err := client.Submit(context.Background(), Session{}, map[string]string{}, testParams())
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, "the host rejected the reservation", outcome.Message)
}

func TestReserveComposesFetchAndSubmit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/studyroom/request", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, entryPageHTML)
	})
	mux.HandleFunc("/studyroom/process", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "csrf-9f2", r.PostForm.Get("token"), "scraped token must reach the submission")
		w.Header().Set("X-JSON", "({'result':true})")
	})

	client, _ := newTestClient(t, mux)

	outcome, err := client.Reserve(context.Background(), Session{}, testParams())
	require.NoError(t, err)
	assert.True(t, outcome.Success)
}
