package handlers

import (
	"fmt"
	"io"
	"net/http"

	"devcamper/internal/config"
	"devcamper/internal/domain"
	"devcamper/internal/domain/models"
	"devcamper/internal/services"

	"github.com/gin-gonic/gin"
)

type BootcampHandler struct {
	Service services.BootcampService
	Catalog services.CatalogService
}

// GET /api/v1/bootcamps
func (h BootcampHandler) List(c *gin.Context) { advancedResults(c) }

// GET /api/v1/bootcamps/:id
func (h BootcampHandler) Get(c *gin.Context) {
	id, found := idParam(c, "id", "Bootcamp")
	if !found {
		return
	}
	b, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

// POST /api/v1/bootcamps
func (h BootcampHandler) Create(c *gin.Context) {
	var in models.Bootcamp
	if !bindJSON(c, &in) {
		return
	}
	b, err := h.Service.Create(c.Request.Context(), identity(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, b)
}

// PUT /api/v1/bootcamps/:id
func (h BootcampHandler) Update(c *gin.Context) {
	id, found := idParam(c, "id", "Bootcamp")
	if !found {
		return
	}
	patch, valid := patchFromBody[models.Bootcamp](c)
	if !valid {
		return
	}
	b, err := h.Service.Update(c.Request.Context(), identity(c), id, patch)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

// DELETE /api/v1/bootcamps/:id
func (h BootcampHandler) Delete(c *gin.Context) {
	id, found := idParam(c, "id", "Bootcamp")
	if !found {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), identity(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}

// GET /api/v1/bootcamps/radius/:zipcode/:distance
func (h BootcampHandler) WithinRadius(c *gin.Context) {
	camps, err := h.Service.WithinRadius(c.Request.Context(), c.Param("zipcode"), c.Param("distance"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(camps), "data": camps})
}

// PUT /api/v1/bootcamps/:id/photo
func (h BootcampHandler) UploadPhoto(c *gin.Context) {
	id, found := idParam(c, "id", "Bootcamp")
	if !found {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, domain.ValidationError{Msg: "Please upload a file", Err: err})
		return
	}
	limit := h.Service.MaxUpload
	if limit <= 0 {
		limit = config.DefaultMaxUpload
	}
	if fh.Size > limit {
		fail(c, domain.ValidationError{Msg: fmt.Sprintf("Please upload an image less than %d", limit)})
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, domain.ValidationError{Msg: "Please upload a file", Err: err})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		fail(c, err)
		return
	}

	name, err := h.Service.UploadPhoto(c.Request.Context(), identity(c), id, fh.Filename, data)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, name)
}

// GET /api/v1/bootcamps/:id/catalog
func (h BootcampHandler) CatalogPDF(c *gin.Context) {
	id, found := idParam(c, "id", "Bootcamp")
	if !found {
		return
	}
	pdf, filename, err := h.Catalog.Generate(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
