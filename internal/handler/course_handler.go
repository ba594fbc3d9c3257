package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sysocial/sysocial-backend/internal/model"
	"github.com/sysocial/sysocial-backend/internal/response"
	"github.com/sysocial/sysocial-backend/internal/service"
	"github.com/sysocial/sysocial-backend/internal/validator"
)

// CourseHandler handles curso endpoints.
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// CreateCourse godoc
// POST /api/v1/cursos
// Creates a new course. vagasRestantes starts equal to vagasTotais.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req model.CourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, course.ID, "curso criado com sucesso", course)
}

// ListCourses godoc
// GET /api/v1/cursos?ativo=true
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var active *bool
	if raw := c.Query("ativo"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"ativo": "ativo must be true or false"})
			return
		}
		active = &v
	}

	courses, err := h.courseService.List(c.Request.Context(), active)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, courses)
}

// ListAvailableCourses godoc
// GET /api/v1/cursos/disponiveis
// Active courses with seats left, each with the turmas open for enrollment.
func (h *CourseHandler) ListAvailableCourses(c *gin.Context) {
	courses, err := h.courseService.Available(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, courses)
}

// GetCourse godoc
// GET /api/v1/cursos/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, course)
}

// GetCourseClasses godoc
// GET /api/v1/cursos/:id/turmas
// Returns the course together with its turmas.
func (h *CourseHandler) GetCourseClasses(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	result, err := h.courseService.GetWithClasses(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// UpdateCourse godoc
// PUT /api/v1/cursos/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.CourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, course)
}

// DeleteCourse godoc
// DELETE /api/v1/cursos/:id
// Rejected with 400 while turmas still reference the course.
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id})
}
