package service

import (
	"context"

	"github.com/sysocial/sysocial-backend/internal/apperror"
	"github.com/sysocial/sysocial-backend/internal/model"
	"github.com/sysocial/sysocial-backend/internal/validator"
)

// ClassStore is the persistence contract of ClassService. Create must report
// a duplicate turma as *apperror.ConflictError and an unknown course as
// *apperror.ValidationError.
type ClassStore interface {
	Create(ctx context.Context, c *model.Class) error
	GetByID(ctx context.Context, id int) (*model.Class, error)
	List(ctx context.Context, filter model.ClassFilter) ([]model.Class, error)
	Update(ctx context.Context, c *model.Class) error
	Delete(ctx context.Context, id int) error
}

// ClassService handles turmas.
type ClassService struct {
	classes ClassStore
}

// NewClassService creates a new ClassService.
func NewClassService(classes ClassStore) *ClassService {
	return &ClassService{classes: classes}
}

// classFromRequest applies the cross-field rules the binding tags cannot
// express and canonicalises the weekday so spelling variants share one key.
func classFromRequest(req *model.ClassRequest) (*model.Class, error) {
	weekday, ok := validator.CanonicalWeekday(req.Weekday)
	if !ok {
		return nil, apperror.NewValidation("diaSemana", "diaSemana must be a day of the week")
	}

	fields := map[string]string{}
	if req.EndDate < req.StartDate {
		fields["dataFim"] = "dataFim must not be before dataInicio"
	}
	start, end := clockTime(req.StartTime), clockTime(req.EndTime)
	if start != "" && end != "" && end <= start {
		fields["horaFim"] = "horaFim must be after horaInicio"
	}
	if len(fields) > 0 {
		return nil, &apperror.ValidationError{Fields: fields}
	}

	c := &model.Class{
		CourseID:    req.CourseID,
		Weekday:     weekday,
		Name:        req.Name,
		Description: req.Description,
		StartTime:   optional(start),
		EndTime:     optional(end),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if req.Slots != nil {
		c.Slots = *req.Slots
	}
	return c, nil
}

// clockTime pads HH:MM to HH:MM:SS so stored values compare and dedupe alike.
func clockTime(s string) string {
	if len(s) == len("15:04") {
		return s + ":00"
	}
	return s
}

// Create validates and inserts a turma.
func (s *ClassService) Create(ctx context.Context, req *model.ClassRequest) (*model.Class, error) {
	c, err := classFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.classes.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a turma.
func (s *ClassService) GetByID(ctx context.Context, id int) (*model.Class, error) {
	return s.classes.GetByID(ctx, id)
}

// List retrieves turmas.
func (s *ClassService) List(ctx context.Context, filter model.ClassFilter) ([]model.Class, error) {
	return s.classes.List(ctx, filter)
}

// Update validates and replaces a turma.
func (s *ClassService) Update(ctx context.Context, id int, req *model.ClassRequest) (*model.Class, error) {
	c, err := classFromRequest(req)
	if err != nil {
		return nil, err
	}
	c.ID = id
	if err := s.classes.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a turma.
func (s *ClassService) Delete(ctx context.Context, id int) error {
	return s.classes.Delete(ctx, id)
}
