package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sysocial/sysocial-backend/internal/model"
	"github.com/sysocial/sysocial-backend/internal/response"
	"github.com/sysocial/sysocial-backend/internal/service"
	"github.com/sysocial/sysocial-backend/internal/validator"
)

// EnrollmentHandler handles matrícula endpoints.
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// CreateEnrollment godoc
// POST /api/v1/matriculas
// Enrolls alunoId, or the caller identified by the gateway's X-User-ID, in a
// turma. Fails with 400 when the turma or its curso has no seats left.
func (h *EnrollmentHandler) CreateEnrollment(c *gin.Context) {
	var req model.EnrollmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	callerID, _ := parseID(c.GetHeader("X-User-ID"))
	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), &req, callerID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, enrollment.ID, "matrícula realizada com sucesso", enrollment)
}

// ListEnrollments godoc
// GET /api/v1/matriculas?alunoId=1&turmaId=2
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	studentID, ok := queryID(c, "alunoId")
	if !ok {
		return
	}
	classID, ok := queryID(c, "turmaId")
	if !ok {
		return
	}

	enrollments, err := h.enrollmentService.List(c.Request.Context(),
		model.EnrollmentFilter{StudentID: studentID, ClassID: classID})
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, enrollments)
}

// GetEnrollment godoc
// GET /api/v1/matriculas/:id
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, enrollment)
}

// CancelEnrollment godoc
// DELETE /api/v1/matriculas/:id
func (h *EnrollmentHandler) CancelEnrollment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.enrollmentService.Cancel(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id})
}
