package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"devcamper/internal/domain"
	"devcamper/internal/http/middleware"
	"devcamper/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const maxBodyBytes = 1 << 20

// fail hands err to the Errors middleware and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// idParam reads a positive numeric path id. Anything else cannot name a
// record and is reported as not found.
func idParam(c *gin.Context, name, resource string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		fail(c, domain.NotFoundError{Resource: resource, ID: raw})
		return 0, false
	}
	return id, true
}

// bindJSON decodes and validates the body into dst.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, domain.FromBindingError(err))
		return false
	}
	return true
}

// patchFromBody reads the body once and returns a patch that overlays it
// onto a loaded record, then validates the merged result.
func patchFromBody[T any](c *gin.Context) (services.Patch[T], bool) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		fail(c, domain.ValidationError{Msg: "Invalid request body", Err: err})
		return nil, false
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		raw = []byte("{}")
	}
	return func(dst *T) error {
		if err := json.Unmarshal(raw, dst); err != nil {
			return domain.ValidationError{Msg: "Invalid request body", Err: err}
		}
		if err := binding.Validator.ValidateStruct(dst); err != nil {
			return domain.FromBindingError(err)
		}
		return nil
	}, true
}

// identity is set by Protect on every route that calls this.
func identity(c *gin.Context) domain.Identity {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		panic("handlers: route is missing middleware.Protect")
	}
	return who
}

// advancedResults writes the envelope prepared by middleware.AdvancedResults.
func advancedResults(c *gin.Context) {
	env, found := middleware.Results(c)
	if !found {
		fail(c, domain.InternalError{Msg: "Server Error"})
		return
	}
	c.JSON(http.StatusOK, env)
}
