package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sysocial/sysocial-backend/internal/model"
	"github.com/sysocial/sysocial-backend/internal/response"
	"github.com/sysocial/sysocial-backend/internal/service"
	"github.com/sysocial/sysocial-backend/internal/validator"
)

// ClassHandler handles turma endpoints.
type ClassHandler struct {
	classService *service.ClassService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// CreateClass godoc
// POST /api/v1/turmas
// Creates a new class. An identical turma in the same course is rejected.
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req model.ClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, class.ID, "turma criada com sucesso", class)
}

// ListClasses godoc
// GET /api/v1/turmas?cursoId=1
func (h *ClassHandler) ListClasses(c *gin.Context) {
	courseID, ok := queryID(c, "cursoId")
	if !ok {
		return
	}
	filter := model.ClassFilter{CourseID: courseID}

	classes, err := h.classService.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, classes)
}

// GetClass godoc
// GET /api/v1/turmas/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	class, err := h.classService.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, class)
}

// UpdateClass godoc
// PUT /api/v1/turmas/:id
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.ClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Update(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, class)
}

// DeleteClass godoc
// DELETE /api/v1/turmas/:id
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.classService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id})
}
