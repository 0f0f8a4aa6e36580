package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyroom-booking-backend/internal/bridge"
)

type loginRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// Login authenticates against the campus portal and stores the session
// in httpOnly cookies. The password itself is sealed before it touches
// the cookie; the plaintext is discarded with the request.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "studentId and password are required"})
		return
	}

	token, err := h.bridge.LoginPortal(c.Request.Context(), req.StudentID, req.Password)
	if err != nil {
		if errors.Is(err, bridge.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid student id or password"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "portal login request failed"})
		return
	}

	sealed, err := h.box.Seal(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store session"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieToken, token, sessionMaxAge, "/", "", false, true)
	c.SetCookie(cookieStudent, req.StudentID, sessionMaxAge, "/", "", false, true)
	c.SetCookie(cookiePassword, sealed, sessionMaxAge, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{"studentId": req.StudentID})
}

// Logout clears the session cookies.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieToken, "", -1, "/", "", false, true)
	c.SetCookie(cookieStudent, "", -1, "/", "", false, true)
	c.SetCookie(cookiePassword, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}
