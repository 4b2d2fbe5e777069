// Package handlers provides HTTP handler implementations for the public API.
//
// This file implements the student records endpoints. The endpoints are a
// thin layer: bind input, call the service, and route failures through the
// fault pipeline (see response.go for the fast path / propagation split).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/faultgate/faultgate/internal/domain"
	"github.com/faultgate/faultgate/internal/fault"
	"github.com/faultgate/faultgate/internal/respond"
	"github.com/faultgate/faultgate/internal/services"
	"github.com/faultgate/faultgate/internal/utils"
)

// maxPageSize caps per_page to keep list responses bounded.
const maxPageSize = 100

// Handlers groups the HTTP endpoints for student records. It depends on the
// concrete service plus the response mapper that owns the debug/production
// exposure contract.
type Handlers struct {
	svc    *services.StudentService
	mapper *respond.Mapper
}

// New constructs Handlers bound to the given service and mapper.
func New(svc *services.StudentService, mapper *respond.Mapper) *Handlers {
	return &Handlers{svc: svc, mapper: mapper}
}

// viewerID extracts the caller identity. The demo trusts the X-User-ID
// header (an auth middleware would set this in a real deployment); absent
// headers fall back to "anonymous" so restricted-record checks still apply.
func viewerID(c *gin.Context) string {
	if v := c.GetHeader("X-User-ID"); v != "" {
		return v
	}
	return "anonymous"
}

// listResponse is the paginated list envelope.
type listResponse struct {
	Items   []domain.Student `json:"items"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
	Total   int64            `json:"total"`
}

// CreateStudent handles POST /students.
func (h *Handlers) CreateStudent(c *gin.Context) {
	var in services.StudentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, h.mapper, fault.Wrap(fault.BadRequest, "malformed request body", err))
		return
	}
	st, err := h.svc.Create(c.Request.Context(), viewerID(c), in)
	if err != nil {
		failOrPropagate(c, h.mapper, err)
		return
	}
	ok(c, http.StatusCreated, st)
}

// GetStudent handles GET /students/:id.
func (h *Handlers) GetStudent(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, h.mapper, fault.New(fault.BadRequest, "invalid student id").With("id", id))
		return
	}
	st, err := h.svc.Get(c.Request.Context(), viewerID(c), id)
	if err != nil {
		failOrPropagate(c, h.mapper, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// ListStudents handles GET /students with page/per_page query parameters.
func (h *Handlers) ListStudents(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	perPage := utils.AtoiDefault(c.Query("per_page"), 20)
	offset, limit := utils.ClampPage(page, perPage, maxPageSize)

	items, total, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		failOrPropagate(c, h.mapper, err)
		return
	}
	if items == nil {
		items = []domain.Student{}
	}
	ok(c, http.StatusOK, listResponse{Items: items, Page: page, PerPage: limit, Total: total})
}

// UpdateStudent handles PUT /students/:id.
func (h *Handlers) UpdateStudent(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, h.mapper, fault.New(fault.BadRequest, "invalid student id").With("id", id))
		return
	}
	var in services.StudentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, h.mapper, fault.Wrap(fault.BadRequest, "malformed request body", err))
		return
	}
	st, err := h.svc.Update(c.Request.Context(), viewerID(c), id, in)
	if err != nil {
		failOrPropagate(c, h.mapper, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// DeleteStudent handles DELETE /students/:id.
func (h *Handlers) DeleteStudent(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, h.mapper, fault.New(fault.BadRequest, "invalid student id").With("id", id))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), viewerID(c), id); err != nil {
		failOrPropagate(c, h.mapper, err)
		return
	}
	noContent(c)
}
