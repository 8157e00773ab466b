package middleware

import (
	"context"
	"fmt"
	"strings"

	"devcamper/internal/domain"
	"devcamper/internal/domain/models"

	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	userKey     = "user"
)

// UserLoader is the part of the credential store Protect needs.
type UserLoader interface {
	FindByID(ctx context.Context, id int64) (models.User, error)
}

// TokenVerifier returns the user id carried by a valid token.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

var errNotAuthorized = domain.UnauthorizedError{}

// Protect resolves the bearer token into the calling user. Any missing,
// malformed, invalid or expired token, or a token whose user no longer
// exists, ends the request with 401 before the handler runs.
func Protect(users UserLoader, tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abort(c, errNotAuthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			abort(c, errNotAuthorized)
			return
		}

		id, err := tokens.Verify(token)
		if err != nil {
			abort(c, domain.UnauthorizedError{Err: err})
			return
		}
		u, err := users.FindByID(c.Request.Context(), id)
		if err != nil {
			if domain.IsNotFound(err) {
				abort(c, domain.UnauthorizedError{Err: err})
				return
			}
			abort(c, err)
			return
		}

		c.Set(identityKey, u.Identity())
		c.Set(userKey, u)
		c.Next()
	}
}

// Authorize admits only callers whose role is listed. It must run after
// Protect; without a resolved identity it panics.
func Authorize(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		who, ok := IdentityFrom(c)
		if !ok {
			panic("middleware.Authorize used without Protect")
		}
		if !allowed[who.Role] {
			abort(c, domain.ForbiddenError{
				Msg: fmt.Sprintf("User role %s is not authorized to access this route", who.Role),
			})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity set by Protect.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	who, ok := v.(domain.Identity)
	return who, ok
}

// CurrentUser returns the user record loaded by Protect.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
