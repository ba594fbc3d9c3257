package service

import (
	"context"

	"github.com/sysocial/sysocial-backend/internal/apperror"
	"github.com/sysocial/sysocial-backend/internal/model"
)

// EnrollmentStore is the persistence contract of EnrollmentService. Create
// books one turma seat and one curso seat atomically and reports a full turma
// or curso as *apperror.ValidationError and a repeated (aluno, turma) pair as
// *apperror.ConflictError. Delete gives the curso seat back.
type EnrollmentStore interface {
	Create(ctx context.Context, e *model.Enrollment) error
	GetByID(ctx context.Context, id int) (*model.Enrollment, error)
	List(ctx context.Context, filter model.EnrollmentFilter) ([]model.Enrollment, error)
	Delete(ctx context.Context, id int) error
}

// EnrollmentService handles matrículas.
type EnrollmentService struct {
	enrollments EnrollmentStore
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(enrollments EnrollmentStore) *EnrollmentService {
	return &EnrollmentService{enrollments: enrollments}
}

// Enroll places studentID in the requested turma. A studentID from the
// request body wins over the caller identity.
func (s *EnrollmentService) Enroll(ctx context.Context, req *model.EnrollmentRequest, callerID int) (*model.Enrollment, error) {
	studentID := req.StudentID
	if studentID == 0 {
		studentID = callerID
	}
	if studentID < 1 {
		return nil, apperror.NewValidation("alunoId", "alunoId is a required field")
	}

	e := &model.Enrollment{StudentID: studentID, ClassID: req.ClassID}
	if err := s.enrollments.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves a matrícula.
func (s *EnrollmentService) GetByID(ctx context.Context, id int) (*model.Enrollment, error) {
	return s.enrollments.GetByID(ctx, id)
}

// List retrieves matrículas.
func (s *EnrollmentService) List(ctx context.Context, filter model.EnrollmentFilter) ([]model.Enrollment, error) {
	return s.enrollments.List(ctx, filter)
}

// Cancel removes a matrícula and frees its seats.
func (s *EnrollmentService) Cancel(ctx context.Context, id int) error {
	return s.enrollments.Delete(ctx, id)
}
