package handlers

import (
	"net/http"

	"devcamper/internal/domain/models"
	"devcamper/internal/services"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the admin users collection.
type UserHandler struct {
	Service services.UserService
}

// GET /api/v1/users
func (h UserHandler) List(c *gin.Context) { advancedResults(c) }

// GET /api/v1/users/:id
func (h UserHandler) Get(c *gin.Context) {
	id, found := idParam(c, "id", "User")
	if !found {
		return
	}
	u, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// POST /api/v1/users
func (h UserHandler) Create(c *gin.Context) {
	var in services.UserInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.Service.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, u)
}

// PUT /api/v1/users/:id
func (h UserHandler) Update(c *gin.Context) {
	id, found := idParam(c, "id", "User")
	if !found {
		return
	}
	patch, valid := patchFromBody[models.User](c)
	if !valid {
		return
	}
	u, err := h.Service.Update(c.Request.Context(), id, patch)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// DELETE /api/v1/users/:id
func (h UserHandler) Delete(c *gin.Context) {
	id, found := idParam(c, "id", "User")
	if !found {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
