package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studyroom-booking-backend/config"
	"studyroom-booking-backend/internal/batch"
	"studyroom-booking-backend/internal/bridge"
	"studyroom-booking-backend/internal/secrets"
	"studyroom-booking-backend/internal/store"
)

// Cookie names of the browser session. All three are httpOnly; the
// password cookie only ever holds the sealed ciphertext.
const (
	cookieToken    = "ssotoken"
	cookieStudent  = "student_id"
	cookiePassword = "enc_password"

	sessionMaxAge = 12 * 60 * 60 // seconds
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store  store.Store
	bridge *bridge.Client
	box    *secrets.Box
	runner *batch.Runner
	cfg    *config.Config
	loc    *time.Location
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, b *bridge.Client, box *secrets.Box, runner *batch.Runner, cfg *config.Config, loc *time.Location) *Handler {
	return &Handler{
		store:  s,
		bridge: b,
		box:    box,
		runner: runner,
		cfg:    cfg,
		loc:    loc,
	}
}

// browserSession is what the login handler stored in the cookies.
type browserSession struct {
	StudentID   string
	PortalToken string
	SealedPass  string
}

// session reads the three session cookies. A missing cookie aborts the
// request with 401.
func (h *Handler) session(c *gin.Context) (browserSession, bool) {
	token, err1 := c.Cookie(cookieToken)
	student, err2 := c.Cookie(cookieStudent)
	sealed, err3 := c.Cookie(cookiePassword)
	if err1 != nil || err2 != nil || err3 != nil || token == "" || student == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return browserSession{}, false
	}
	return browserSession{StudentID: student, PortalToken: token, SealedPass: sealed}, true
}

// librarySession promotes the stored portal token to a full host session.
// The portal token outlives the library one, so the hop is repeated per
// request that talks to the booking subsystem.
func (h *Handler) librarySession(c *gin.Context, s browserSession) (bridge.Session, bool) {
	sid, err := h.bridge.LoginLibrary(c.Request.Context(), s.PortalToken)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired, sign in again"})
		return bridge.Session{}, false
	}
	return bridge.Session{PortalToken: s.PortalToken, LibrarySID: sid}, true
}
