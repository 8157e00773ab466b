package handlers

import (
	"net/http"

	"devcamper/internal/domain/models"
	"devcamper/internal/services"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	Service services.ReviewService
}

// GET /api/v1/reviews
// GET /api/v1/bootcamps/:id/reviews
func (h ReviewHandler) List(c *gin.Context) {
	if c.Param("id") == "" {
		advancedResults(c)
		return
	}
	bootcampID, found := idParam(c, "id", "Bootcamp")
	if !found {
		return
	}
	reviews, err := h.Service.ListByBootcamp(c.Request.Context(), bootcampID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(reviews), "data": reviews})
}

// GET /api/v1/reviews/:id
func (h ReviewHandler) Get(c *gin.Context) {
	id, found := idParam(c, "id", "Review")
	if !found {
		return
	}
	review, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, review)
}

// POST /api/v1/bootcamps/:id/reviews
func (h ReviewHandler) Create(c *gin.Context) {
	bootcampID, found := idParam(c, "id", "Bootcamp")
	if !found {
		return
	}
	var in models.Review
	if !bindJSON(c, &in) {
		return
	}
	review, err := h.Service.Create(c.Request.Context(), identity(c), bootcampID, in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, review)
}

// PUT /api/v1/reviews/:id
func (h ReviewHandler) Update(c *gin.Context) {
	id, found := idParam(c, "id", "Review")
	if !found {
		return
	}
	patch, valid := patchFromBody[models.Review](c)
	if !valid {
		return
	}
	review, err := h.Service.Update(c.Request.Context(), identity(c), id, patch)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, review)
}

// DELETE /api/v1/reviews/:id
func (h ReviewHandler) Delete(c *gin.Context) {
	id, found := idParam(c, "id", "Review")
	if !found {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), identity(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
