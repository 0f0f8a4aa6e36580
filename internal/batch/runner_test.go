package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"studyroom-booking-backend/internal/bridge"
	"studyroom-booking-backend/internal/model"
	"studyroom-booking-backend/internal/recurrence"
	"studyroom-booking-backend/internal/store"
)

// fakeBridge scripts the host per student and per purpose text.
type fakeBridge struct {
	acquireErr    map[string]error  // per student id
	rejectPurpose map[string]string // purpose → host message
	resolveID     string
	acquired      []string
	submitted     []string
}

func (f *fakeBridge) Acquire(ctx context.Context, studentID, password string) (bridge.Session, error) {
	f.acquired = append(f.acquired, studentID)
	if err := f.acquireErr[studentID]; err != nil {
		return bridge.Session{}, err
	}
	return bridge.Session{PortalToken: "tok-" + studentID, LibrarySID: "sid"}, nil
}

func (f *fakeBridge) Reserve(ctx context.Context, s bridge.Session, p bridge.BookingParams) (bridge.Outcome, error) {
	f.submitted = append(f.submitted, p.Purpose)
	if msg, ok := f.rejectPurpose[p.Purpose]; ok {
		return bridge.Outcome{Success: false, Message: msg}, nil
	}
	return bridge.Outcome{Success: true, Message: "reservation confirmed"}, nil
}

func (f *fakeBridge) Resolve(ctx context.Context, s bridge.Session, roomID string, date time.Time, startHour int) (string, error) {
	return f.resolveID, nil
}

type fakeNotifier struct{ dispatched []int64 }

func (f *fakeNotifier) Dispatch(id int64) { f.dispatched = append(f.dispatched, id) }

func newRunnerFixture(t *testing.T, fb *fakeBridge) (*Runner, store.Store, *fakeNotifier) {
	t.Helper()
	// Named per test so gorm's pooled connections share one database
	// without bleeding rows between tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Reservation{},
		&model.Companion{},
		&model.Credential{},
		&model.ReservedSlot{},
		&model.PushSubscription{},
	))

	s := store.NewGormStore(db)
	notifier := &fakeNotifier{}
	unwrap := func(ct string) (string, error) {
		if ct == "broken" {
			return "", errors.New("bad ciphertext")
		}
		return "pw", nil
	}
	runner := NewRunner(s, fb, unwrap, 7, 22, time.UTC, notifier)
	return runner, s, notifier
}

// targetDate is the calendar day the next run will submit for.
func targetDate() string {
	return recurrence.Today(time.UTC).AddDate(0, 0, 7).Format(recurrence.DateLayout)
}

func seedGroup(t *testing.T, s store.Store, owner, groupID, date, startTime, purpose, encPassword string) int64 {
	t.Helper()
	ids, err := s.CreateGroup(context.Background(), store.NewGroup{
		StudentID:         owner,
		GroupID:           groupID,
		RoomID:            "13",
		Dates:             []string{date},
		StartTime:         startTime,
		Hours:             1,
		Reason:            purpose,
		EncryptedPassword: encPassword,
	})
	require.NoError(t, err)
	return ids[date]
}

func TestRunIsolatesOwnerAuthenticationFailure(t *testing.T) {
	fb := &fakeBridge{
		acquireErr: map[string]error{"owner-a": bridge.ErrInvalidCredentials},
		resolveID:  "7010",
	}
	runner, s, notifier := newRunnerFixture(t, fb)
	ctx := context.Background()

	date := targetDate()
	idA := seedGroup(t, s, "owner-a", "g-a", date, "09:00", "a1", "enc")
	idB1 := seedGroup(t, s, "owner-b", "g-b1", date, "10:00", "b1", "enc")
	idB2 := seedGroup(t, s, "owner-b", "g-b2", date, "11:00", "b2", "enc")

	summary, err := runner.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	// Owner A failed at the portal with a credential-specific message.
	resA, err := s.ReservationByID(ctx, idA)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, resA.Status)
	assert.Contains(t, resA.ErrorMessage, "portal login failed")

	// Owner B was still processed, with one login for both reservations.
	assert.Equal(t, []string{"owner-a", "owner-b"}, fb.acquired)
	for _, id := range []int64{idB1, idB2} {
		res, err := s.ReservationByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusSuccess, res.Status)
		assert.Equal(t, "7010", res.BookingID)
	}

	assert.ElementsMatch(t, []int64{idA, idB1, idB2}, notifier.dispatched)
}

func TestRunIsolatesSingleRejection(t *testing.T) {
	fb := &fakeBridge{
		rejectPurpose: map[string]string{"second": "slot already taken"},
		resolveID:     "7011",
	}
	runner, s, _ := newRunnerFixture(t, fb)
	ctx := context.Background()

	date := targetDate()
	id1 := seedGroup(t, s, "owner", "g-1", date, "09:00", "first", "enc")
	id2 := seedGroup(t, s, "owner", "g-2", date, "10:00", "second", "enc")
	id3 := seedGroup(t, s, "owner", "g-3", date, "11:00", "third", "enc")

	summary, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	// All three went out, in stable order, despite the middle rejection.
	assert.Equal(t, []string{"first", "second", "third"}, fb.submitted)

	res2, err := s.ReservationByID(ctx, id2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, res2.Status)
	assert.Equal(t, "slot already taken", res2.ErrorMessage)

	for _, id := range []int64{id1, id3} {
		res, err := s.ReservationByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusSuccess, res.Status)
	}
}

func TestRunDecryptionFailureFailsOwnerOnly(t *testing.T) {
	fb := &fakeBridge{}
	runner, s, _ := newRunnerFixture(t, fb)
	ctx := context.Background()

	date := targetDate()
	id := seedGroup(t, s, "owner", "g-1", date, "10:00", "p", "broken")

	summary, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	res, err := s.ReservationByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, res.Status)
	assert.Equal(t, "credential decryption failed", res.ErrorMessage)
	assert.Empty(t, fb.acquired, "no login may be attempted without a password")
}

func TestRunMissingResolverMatchStillSucceeds(t *testing.T) {
	fb := &fakeBridge{resolveID: ""}
	runner, s, _ := newRunnerFixture(t, fb)
	ctx := context.Background()

	id := seedGroup(t, s, "owner", "g-1", targetDate(), "10:00", "p", "enc")

	summary, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)

	res, err := s.ReservationByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Empty(t, res.BookingID)
}

func TestRunSkipsDatesOutsideTheWindow(t *testing.T) {
	fb := &fakeBridge{}
	runner, s, _ := newRunnerFixture(t, fb)
	ctx := context.Background()

	// One day early: the window has not opened yet.
	early := recurrence.Today(time.UTC).AddDate(0, 0, 8).Format(recurrence.DateLayout)
	seedGroup(t, s, "owner", "g-1", early, "10:00", "p", "enc")

	summary, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Empty(t, fb.acquired)
}
