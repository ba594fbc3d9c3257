package router

import (
	"context"
	"errors"
	"sync"

	"github.com/sysocial/sysocial-backend/internal/apperror"
	"github.com/sysocial/sysocial-backend/internal/model"
)

// The stores below enforce the same natural keys as the migrations, under a
// lock, so handlers can be exercised without PostgreSQL.

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type userStore struct {
	mu    sync.Mutex
	users []model.User
}

func (s *userStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.users {
		if o.Username == u.Username {
			return &apperror.ConflictError{Entity: "usuário", Field: "username"}
		}
		if o.Email == u.Email {
			return &apperror.ConflictError{Entity: "usuário", Field: "email"}
		}
	}
	u.ID = len(s.users) + 1
	s.users = append(s.users, *u)
	return nil
}

func (s *userStore) find(match func(model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, &apperror.NotFoundError{Entity: "usuário"}
}

func (s *userStore) GetByID(_ context.Context, id int) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.ID == id })
}

func (s *userStore) GetByLogin(_ context.Context, login string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Username == login || u.Email == login })
}

func (s *userStore) List(_ context.Context, limit, offset int) ([]model.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset >= len(s.users) {
		return []model.User{}, len(s.users), nil
	}
	end := offset + limit
	if end > len(s.users) {
		end = len(s.users)
	}
	return append([]model.User(nil), s.users[offset:end]...), len(s.users), nil
}

func (s *userStore) Update(context.Context, *model.User) error {
	return errors.New("not implemented")
}

func (s *userStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return &apperror.NotFoundError{Entity: "usuário", ID: id}
}

type courseStore struct {
	mu          sync.Mutex
	courses     []model.Course
	classes     []model.Class
	enrollments []model.Enrollment
	nextEnroll  int
}

func (s *courseStore) Create(_ context.Context, c *model.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.courses {
		if o.Name == c.Name {
			return &apperror.ConflictError{Entity: "curso", Field: "nome"}
		}
	}
	c.ID = len(s.courses) + 1
	s.courses = append(s.courses, *c)
	return nil
}

func (s *courseStore) GetByID(_ context.Context, id int) (*model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.courses {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, &apperror.NotFoundError{Entity: "curso", ID: id}
}

func (s *courseStore) List(_ context.Context, active *bool) ([]model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Course{}
	for _, c := range s.courses {
		if active == nil || c.Active == *active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *courseStore) Update(_ context.Context, c *model.Course, active *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.courses {
		if o.ID != c.ID {
			continue
		}
		c.RemainingSlots = max(o.RemainingSlots+c.TotalSlots-o.TotalSlots, 0)
		c.Active = o.Active
		if active != nil {
			c.Active = *active
		}
		s.courses[i] = *c
		return nil
	}
	return &apperror.NotFoundError{Entity: "curso", ID: c.ID}
}

func (s *courseStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cl := range s.classes {
		if cl.CourseID == id {
			return &apperror.ConflictError{Entity: "curso"}
		}
	}
	for i, c := range s.courses {
		if c.ID == id {
			s.courses = append(s.courses[:i], s.courses[i+1:]...)
			return nil
		}
	}
	return &apperror.NotFoundError{Entity: "curso", ID: id}
}

// classes is a ClassStore view over the same courseStore so the foreign key
// can be checked.
type classes struct{ *courseStore }

func (s classes) Create(_ context.Context, c *model.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	known := false
	for _, co := range s.courses {
		known = known || co.ID == c.CourseID
	}
	if !known {
		return apperror.NewValidation("cursoId", "referenced record does not exist")
	}
	for _, o := range s.classes {
		if o.CourseID == c.CourseID && o.Weekday == c.Weekday && o.Name == c.Name &&
			o.StartDate == c.StartDate && o.EndDate == c.EndDate {
			return &apperror.ConflictError{Entity: "turma", Field: "nomeTurma"}
		}
	}
	c.ID = len(s.classes) + 1
	s.classes = append(s.classes, *c)
	return nil
}

func (s classes) GetByID(_ context.Context, id int) (*model.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.classes {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, &apperror.NotFoundError{Entity: "turma", ID: id}
}

func (s classes) List(_ context.Context, f model.ClassFilter) ([]model.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Class{}
	for _, c := range s.classes {
		if f.CourseID == nil || *f.CourseID == c.CourseID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s classes) Update(context.Context, *model.Class) error {
	return errors.New("not implemented")
}

func (s classes) Delete(context.Context, int) error {
	return errors.New("not implemented")
}

// enrollmentStore books seats on the shared courseStore.
type enrollmentStore struct{ *courseStore }

func (s enrollmentStore) Create(_ context.Context, e *model.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var class *model.Class
	for i := range s.classes {
		if s.classes[i].ID == e.ClassID {
			class = &s.classes[i]
		}
	}
	if class == nil {
		return apperror.NewValidation("turmaId", "referenced record does not exist")
	}
	taken := 0
	for _, o := range s.enrollments {
		if o.ClassID != e.ClassID {
			continue
		}
		if o.StudentID == e.StudentID {
			return &apperror.ConflictError{Entity: "matrícula", Field: "turmaId"}
		}
		taken++
	}
	if taken >= class.Slots {
		return apperror.NewValidation("turmaId", "turma has no seats left")
	}
	for i := range s.courses {
		c := &s.courses[i]
		if c.ID != class.CourseID {
			continue
		}
		if !c.Active || c.RemainingSlots < 1 {
			return apperror.NewValidation("cursoId", "curso is inactive or has no seats left")
		}
		c.RemainingSlots--
	}
	s.nextEnroll++
	e.ID = s.nextEnroll
	e.CourseID = class.CourseID
	s.enrollments = append(s.enrollments, *e)
	return nil
}

func (s enrollmentStore) GetByID(_ context.Context, id int) (*model.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.enrollments {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, &apperror.NotFoundError{Entity: "matrícula", ID: id}
}

func (s enrollmentStore) List(_ context.Context, f model.EnrollmentFilter) ([]model.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Enrollment{}
	for _, e := range s.enrollments {
		if (f.StudentID == nil || *f.StudentID == e.StudentID) && (f.ClassID == nil || *f.ClassID == e.ClassID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s enrollmentStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.enrollments {
		if e.ID != id {
			continue
		}
		s.enrollments = append(s.enrollments[:i], s.enrollments[i+1:]...)
		for j := range s.courses {
			if c := &s.courses[j]; c.ID == e.CourseID {
				c.RemainingSlots = min(c.RemainingSlots+1, c.TotalSlots)
			}
		}
		return nil
	}
	return &apperror.NotFoundError{Entity: "matrícula", ID: id}
}
