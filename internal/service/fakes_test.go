package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sysocial/sysocial-backend/internal/apperror"
	"github.com/sysocial/sysocial-backend/internal/model"
)

// memUserStore mimics the users table constraints under a single lock.
type memUserStore struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{rows: map[int]model.User{}}
}

func (s *memUserStore) conflict(u *model.User) error {
	for _, r := range s.rows {
		if r.ID == u.ID {
			continue
		}
		if r.Username == u.Username {
			return &apperror.ConflictError{Entity: "usuário", Field: "username"}
		}
		if r.Email == u.Email {
			return &apperror.ConflictError{Entity: "usuário", Field: "email"}
		}
	}
	return nil
}

func (s *memUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conflict(u); err != nil {
		return err
	}
	s.nextID++
	u.ID = s.nextID
	s.rows[u.ID] = *u
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id int) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, &apperror.NotFoundError{Entity: "usuário", ID: id}
	}
	return &u, nil
}

func (s *memUserStore) GetByLogin(_ context.Context, login string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.Username == login || u.Email == strings.ToLower(login) {
			return &u, nil
		}
	}
	return nil, &apperror.NotFoundError{Entity: "usuário", ID: login}
}

func (s *memUserStore) List(_ context.Context, limit, offset int) ([]model.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]model.User, 0, len(s.rows))
	for _, u := range s.rows {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (s *memUserStore) Update(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.rows[u.ID]
	if !ok {
		return &apperror.NotFoundError{Entity: "usuário", ID: u.ID}
	}
	if err := s.conflict(u); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		u.PasswordHash = old.PasswordHash
	}
	s.rows[u.ID] = *u
	return nil
}

func (s *memUserStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return &apperror.NotFoundError{Entity: "usuário", ID: id}
	}
	delete(s.rows, id)
	return nil
}

type memCourseStore struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]model.Course
}

func newMemCourseStore() *memCourseStore {
	return &memCourseStore{rows: map[int]model.Course{}}
}

func (s *memCourseStore) Create(_ context.Context, c *model.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.Name == c.Name {
			return &apperror.ConflictError{Entity: "curso", Field: "nome"}
		}
	}
	s.nextID++
	c.ID = s.nextID
	s.rows[c.ID] = *c
	return nil
}

func (s *memCourseStore) GetByID(_ context.Context, id int) (*model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return nil, &apperror.NotFoundError{Entity: "curso", ID: id}
	}
	return &c, nil
}

func (s *memCourseStore) List(_ context.Context, active *bool) ([]model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Course{}
	for _, c := range s.rows {
		if active == nil || c.Active == *active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memCourseStore) Update(_ context.Context, c *model.Course, active *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.rows[c.ID]
	if !ok {
		return &apperror.NotFoundError{Entity: "curso", ID: c.ID}
	}
	remaining := old.RemainingSlots + c.TotalSlots - old.TotalSlots
	if remaining < 0 {
		remaining = 0
	}
	c.RemainingSlots = remaining
	c.Active = old.Active
	if active != nil {
		c.Active = *active
	}
	s.rows[c.ID] = *c
	return nil
}

func (s *memCourseStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return &apperror.NotFoundError{Entity: "curso", ID: id}
	}
	delete(s.rows, id)
	return nil
}

type memClassStore struct {
	mu      sync.Mutex
	nextID  int
	rows    map[int]model.Class
	courses *memCourseStore
}

func newMemClassStore(courses *memCourseStore) *memClassStore {
	return &memClassStore{rows: map[int]model.Class{}, courses: courses}
}

func classKey(c *model.Class) string {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return strings.Join([]string{
		c.Weekday, c.Name, deref(c.StartTime), deref(c.EndTime), c.StartDate, c.EndDate,
	}, "|")
}

func (s *memClassStore) Create(ctx context.Context, c *model.Class) error {
	if _, err := s.courses.GetByID(ctx, c.CourseID); err != nil {
		return apperror.NewValidation("cursoId", "referenced record does not exist")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.CourseID == c.CourseID && classKey(&r) == classKey(c) {
			return &apperror.ConflictError{Entity: "turma", Field: "nomeTurma"}
		}
	}
	s.nextID++
	c.ID = s.nextID
	s.rows[c.ID] = *c
	return nil
}

func (s *memClassStore) GetByID(_ context.Context, id int) (*model.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return nil, &apperror.NotFoundError{Entity: "turma", ID: id}
	}
	return &c, nil
}

func (s *memClassStore) List(_ context.Context, filter model.ClassFilter) ([]model.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Class{}
	for _, c := range s.rows {
		if filter.CourseID == nil || c.CourseID == *filter.CourseID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memClassStore) Update(_ context.Context, c *model.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[c.ID]; !ok {
		return &apperror.NotFoundError{Entity: "turma", ID: c.ID}
	}
	s.rows[c.ID] = *c
	return nil
}

func (s *memClassStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return &apperror.NotFoundError{Entity: "turma", ID: id}
	}
	delete(s.rows, id)
	return nil
}

// memEnrollmentStore books seats against the class and course fakes under
// one lock, matching the transaction in the repository.
type memEnrollmentStore struct {
	mu      sync.Mutex
	nextID  int
	rows    map[int]model.Enrollment
	classes *memClassStore
}

func newMemEnrollmentStore(classes *memClassStore) *memEnrollmentStore {
	return &memEnrollmentStore{rows: map[int]model.Enrollment{}, classes: classes}
}

func (s *memEnrollmentStore) Create(ctx context.Context, e *model.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	class, err := s.classes.GetByID(ctx, e.ClassID)
	if err != nil {
		return apperror.NewValidation("turmaId", "referenced record does not exist")
	}
	taken := 0
	for _, r := range s.rows {
		if r.ClassID != e.ClassID {
			continue
		}
		if r.StudentID == e.StudentID {
			return &apperror.ConflictError{Entity: "matrícula", Field: "turmaId"}
		}
		taken++
	}
	if taken >= class.Slots {
		return apperror.NewValidation("turmaId", "turma has no seats left")
	}

	courses := s.classes.courses
	courses.mu.Lock()
	defer courses.mu.Unlock()
	course := courses.rows[class.CourseID]
	if !course.Active || course.RemainingSlots < 1 {
		return apperror.NewValidation("cursoId", "curso is inactive or has no seats left")
	}
	course.RemainingSlots--
	courses.rows[course.ID] = course

	s.nextID++
	e.ID = s.nextID
	e.CourseID = class.CourseID
	s.rows[e.ID] = *e
	return nil
}

func (s *memEnrollmentStore) GetByID(_ context.Context, id int) (*model.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rows[id]
	if !ok {
		return nil, &apperror.NotFoundError{Entity: "matrícula", ID: id}
	}
	return &e, nil
}

func (s *memEnrollmentStore) List(_ context.Context, filter model.EnrollmentFilter) ([]model.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Enrollment{}
	for _, e := range s.rows {
		if filter.StudentID != nil && e.StudentID != *filter.StudentID {
			continue
		}
		if filter.ClassID != nil && e.ClassID != *filter.ClassID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memEnrollmentStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rows[id]
	if !ok {
		return &apperror.NotFoundError{Entity: "matrícula", ID: id}
	}
	delete(s.rows, id)

	courses := s.classes.courses
	courses.mu.Lock()
	defer courses.mu.Unlock()
	if course, ok := courses.rows[e.CourseID]; ok {
		course.RemainingSlots = min(course.RemainingSlots+1, course.TotalSlots)
		courses.rows[course.ID] = course
	}
	return nil
}
