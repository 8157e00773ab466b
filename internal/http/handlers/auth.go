package handlers

import (
	"fmt"
	"net/http"
	"time"

	"devcamper/internal/http/middleware"
	"devcamper/internal/services"

	"github.com/gin-gonic/gin"
)

const tokenCookie = "token"

// CookieConfig controls the token cookie sent with auth responses.
type CookieConfig struct {
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	Service services.AuthService
	Cookie  CookieConfig
}

// sendToken answers with the token in the body and in an httpOnly cookie.
func (h AuthHandler) sendToken(c *gin.Context, status int, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.Cookie.TTL),
		MaxAge:   int(h.Cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.JSON(status, gin.H{"success": true, "token": token})
}

// POST /api/v1/auth/register
func (h AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	_, token, err := h.Service.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

// POST /api/v1/auth/login
func (h AuthHandler) Login(c *gin.Context) {
	var in services.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	_, token, err := h.Service.Login(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

// GET /api/v1/auth/logout
// Only the cookie is cleared; an issued token stays valid until it expires.
func (h AuthHandler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     tokenCookie,
		Value:    "none",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
	})
	ok(c, http.StatusOK, gin.H{})
}

// GET /api/v1/auth/me
func (h AuthHandler) Me(c *gin.Context) {
	u, found := middleware.CurrentUser(c)
	if !found {
		var err error
		if u, err = h.Service.Me(c.Request.Context(), identity(c).ID); err != nil {
			fail(c, err)
			return
		}
	}
	ok(c, http.StatusOK, u)
}

// PUT /api/v1/auth/updatedetails
func (h AuthHandler) UpdateDetails(c *gin.Context) {
	var in services.DetailsInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.Service.UpdateDetails(c.Request.Context(), identity(c).ID, in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// PUT /api/v1/auth/updatepassword
func (h AuthHandler) UpdatePassword(c *gin.Context) {
	var in services.PasswordInput
	if !bindJSON(c, &in) {
		return
	}
	_, token, err := h.Service.UpdatePassword(c.Request.Context(), identity(c).ID, in)
	if err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

type forgotRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /api/v1/auth/forgotpassword
func (h AuthHandler) ForgotPassword(c *gin.Context) {
	var in forgotRequest
	if !bindJSON(c, &in) {
		return
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	resetURL := func(token string) string {
		return fmt.Sprintf("%s://%s/api/v1/auth/resetpassword/%s", scheme, c.Request.Host, token)
	}
	if err := h.Service.ForgotPassword(c.Request.Context(), in.Email, resetURL); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Email sent")
}

type resetRequest struct {
	Password string `json:"password" binding:"required"`
}

// PUT /api/v1/auth/resetpassword/:resettoken
func (h AuthHandler) ResetPassword(c *gin.Context) {
	var in resetRequest
	if !bindJSON(c, &in) {
		return
	}
	_, token, err := h.Service.ResetPassword(c.Request.Context(), c.Param("resettoken"), in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

