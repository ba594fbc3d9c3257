package service

import (
	"context"

	"github.com/sysocial/sysocial-backend/internal/model"
)

// CourseStore is the persistence contract of CourseService.
type CourseStore interface {
	Create(ctx context.Context, c *model.Course) error
	GetByID(ctx context.Context, id int) (*model.Course, error)
	List(ctx context.Context, active *bool) ([]model.Course, error)
	// Update leaves ativo untouched when active is nil.
	Update(ctx context.Context, c *model.Course, active *bool) error
	Delete(ctx context.Context, id int) error
}

// CourseService handles cursos.
type CourseService struct {
	courses CourseStore
	classes ClassStore
}

// NewCourseService creates a new CourseService.
func NewCourseService(courses CourseStore, classes ClassStore) *CourseService {
	return &CourseService{courses: courses, classes: classes}
}

func courseFromRequest(req *model.CourseRequest) *model.Course {
	c := &model.Course{Name: req.Name, Active: true}
	if req.TotalSlots != nil {
		c.TotalSlots = *req.TotalSlots
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	return c
}

// Create inserts a course with every seat available. Courses are active
// unless ativo is explicitly false.
func (s *CourseService) Create(ctx context.Context, req *model.CourseRequest) (*model.Course, error) {
	c := courseFromRequest(req)
	c.RemainingSlots = c.TotalSlots
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a course.
func (s *CourseService) GetByID(ctx context.Context, id int) (*model.Course, error) {
	return s.courses.GetByID(ctx, id)
}

// List retrieves courses, optionally only active or inactive ones.
func (s *CourseService) List(ctx context.Context, active *bool) ([]model.Course, error) {
	return s.courses.List(ctx, active)
}

// Update replaces name and seats. An omitted ativo keeps the stored status.
func (s *CourseService) Update(ctx context.Context, id int, req *model.CourseRequest) (*model.Course, error) {
	c := courseFromRequest(req)
	c.ID = id
	if err := s.courses.Update(ctx, c, req.Active); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a course that has no turmas.
func (s *CourseService) Delete(ctx context.Context, id int) error {
	return s.courses.Delete(ctx, id)
}

// GetWithClasses returns a course together with its turmas.
func (s *CourseService) GetWithClasses(ctx context.Context, id int) (*model.CourseWithClasses, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	classes, err := s.classes.List(ctx, model.ClassFilter{CourseID: &id})
	if err != nil {
		return nil, err
	}
	return &model.CourseWithClasses{Course: c, Classes: classes}, nil
}

// Available lists active courses that still have seats, each with its turmas.
// Courses without turmas are left out since nobody can enroll in them.
func (s *CourseService) Available(ctx context.Context) ([]model.CourseWithClasses, error) {
	active := true
	courses, err := s.courses.List(ctx, &active)
	if err != nil {
		return nil, err
	}
	classes, err := s.classes.List(ctx, model.ClassFilter{})
	if err != nil {
		return nil, err
	}

	byCourse := make(map[int][]model.Class)
	for _, cl := range classes {
		byCourse[cl.CourseID] = append(byCourse[cl.CourseID], cl)
	}

	out := []model.CourseWithClasses{}
	for i := range courses {
		c := &courses[i]
		if c.RemainingSlots < 1 || len(byCourse[c.ID]) == 0 {
			continue
		}
		out = append(out, model.CourseWithClasses{Course: c, Classes: byCourse[c.ID]})
	}
	return out, nil
}
