package handlers

import (
	"net/http"

	"devcamper/internal/domain/models"
	"devcamper/internal/services"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	Service services.CourseService
}

// GET /api/v1/courses
// GET /api/v1/bootcamps/:id/courses
func (h CourseHandler) List(c *gin.Context) {
	if c.Param("id") == "" {
		advancedResults(c)
		return
	}
	bootcampID, found := idParam(c, "id", "Bootcamp")
	if !found {
		return
	}
	courses, err := h.Service.ListByBootcamp(c.Request.Context(), bootcampID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(courses), "data": courses})
}

// GET /api/v1/courses/:id
func (h CourseHandler) Get(c *gin.Context) {
	id, found := idParam(c, "id", "Course")
	if !found {
		return
	}
	course, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, course)
}

// POST /api/v1/bootcamps/:id/courses
func (h CourseHandler) Create(c *gin.Context) {
	bootcampID, found := idParam(c, "id", "Bootcamp")
	if !found {
		return
	}
	var in models.Course
	if !bindJSON(c, &in) {
		return
	}
	course, err := h.Service.Create(c.Request.Context(), identity(c), bootcampID, in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, course)
}

// PUT /api/v1/courses/:id
func (h CourseHandler) Update(c *gin.Context) {
	id, found := idParam(c, "id", "Course")
	if !found {
		return
	}
	patch, valid := patchFromBody[models.Course](c)
	if !valid {
		return
	}
	course, err := h.Service.Update(c.Request.Context(), identity(c), id, patch)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, course)
}

// DELETE /api/v1/courses/:id
func (h CourseHandler) Delete(c *gin.Context) {
	id, found := idParam(c, "id", "Course")
	if !found {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), identity(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
