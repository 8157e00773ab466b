package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devcamper/internal/auth"
	"devcamper/internal/domain"
	"devcamper/internal/domain/models"
	"devcamper/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type usersByID map[int64]models.User

func (u usersByID) FindByID(_ context.Context, id int64) (models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return models.User{}, domain.NotFoundError{Resource: "User", ID: id}
}

type body struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func newEngine(mw ...gin.HandlerFunc) (*gin.Engine, *int) {
	hits := 0
	r := gin.New()
	r.Use(Errors(utils.Discard()), Recovery())
	handlers := append(mw, func(c *gin.Context) {
		hits++
		who, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "id": who.ID})
	})
	r.GET("/x", handlers...)
	return r, &hits
}

func do(r http.Handler, header string) (*httptest.ResponseRecorder, body) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var b body
	_ = json.Unmarshal(w.Body.Bytes(), &b)
	return w, b
}

func TestProtectRejectsBadTokens(t *testing.T) {
	tokens := auth.NewTokenService([]byte("secret"), time.Hour)
	users := usersByID{1: {ID: 1, Role: domain.RoleUser}}
	ghost, err := tokens.Issue(99)
	require.NoError(t, err)
	foreign, err := auth.NewTokenService([]byte("other"), time.Hour).Issue(1)
	require.NoError(t, err)

	r, hits := newEngine(Protect(users, tokens))
	cases := map[string]string{
		"missing":      "",
		"no prefix":    "secret-token",
		"wrong scheme": "Basic abc",
		"empty bearer": "Bearer ",
		"garbage":      "Bearer not.a.token",
		"wrong secret": "Bearer " + foreign,
		"deleted user": "Bearer " + ghost,
		"lower bearer": "bearer " + ghost,
	}
	for name, header := range cases {
		w, b := do(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.False(t, b.Success, name)
		assert.Equal(t, "Not authorized to access this route", b.Error, name)
	}
	assert.Zero(t, *hits, "handler must not run")
}

func TestProtectAcceptsValidToken(t *testing.T) {
	tokens := auth.NewTokenService([]byte("secret"), time.Hour)
	users := usersByID{1: {ID: 1, Role: domain.RoleUser}}
	tok, err := tokens.Issue(1)
	require.NoError(t, err)

	r, hits := newEngine(Protect(users, tokens))
	w, _ := do(r, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *hits)
}

func TestAuthorizeRoles(t *testing.T) {
	tokens := auth.NewTokenService([]byte("secret"), time.Hour)
	users := usersByID{
		1: {ID: 1, Role: domain.RoleUser},
		2: {ID: 2, Role: domain.RolePublisher},
		3: {ID: 3, Role: domain.RoleAdmin},
	}
	r, hits := newEngine(Protect(users, tokens), Authorize(domain.RolePublisher, domain.RoleAdmin))

	tok := func(id int64) string {
		s, err := tokens.Issue(id)
		require.NoError(t, err)
		return "Bearer " + s
	}

	w, b := do(r, tok(1))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "User role user is not authorized to access this route", b.Error)
	assert.Zero(t, *hits)

	w, _ = do(r, tok(2))
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(r, tok(3))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthorizeWithoutProtectPanics(t *testing.T) {
	h := Authorize(domain.RoleAdmin)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	assert.Panics(t, func() { h(c) })

	r, _ := newEngine(Authorize(domain.RoleAdmin))
	w, b := do(r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server Error", b.Error)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{domain.ValidationError{Msg: "bad"}, 400, "bad"},
		{domain.ConflictError{}, 400, "Duplicate field value entered"},
		{domain.UnauthorizedError{}, 401, "Not authorized to access this route"},
		{domain.ForbiddenError{Msg: "nope"}, 403, "nope"},
		{domain.NotFoundError{Resource: "Bootcamp", ID: 7}, 404, "Bootcamp not found with id of 7"},
		{domain.UnavailableError{Msg: "Database unreachable"}, 503, "Database unreachable"},
		{domain.InternalError{Msg: "Email could not be sent"}, 500, "Email could not be sent"},
		{errors.New("driver: bad connection"), 500, "Server Error"},
	}
	for _, tc := range cases {
		status, msg := Classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.msg, msg)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, utils.RequestID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestSecureHeaders(t *testing.T) {
	r, hits := newEngine(SecureHeaders())
	w, _ := do(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *hits)

	h := w.Header()
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", h.Get("X-Frame-Options"))
	assert.Equal(t, "noopen", h.Get("X-Download-Options"))
	assert.Equal(t, "no-referrer", h.Get("Referrer-Policy"))
	assert.Contains(t, h.Get("Content-Security-Policy"), "object-src 'none'")
}
