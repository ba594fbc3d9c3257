package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sysocial/sysocial-backend/internal/apperror"
	"github.com/sysocial/sysocial-backend/internal/model"
)

type enrollmentFixture struct {
	courses     *CourseService
	classes     *ClassService
	enrollments *EnrollmentService
}

func newEnrollmentFixture() *enrollmentFixture {
	courses := newMemCourseStore()
	classes := newMemClassStore(courses)
	return &enrollmentFixture{
		courses:     NewCourseService(courses, classes),
		classes:     NewClassService(classes),
		enrollments: NewEnrollmentService(newMemEnrollmentStore(classes)),
	}
}

// seed creates a course with courseSeats and one turma with classSeats.
func (f *enrollmentFixture) seed(t *testing.T, courseSeats, classSeats int) (*model.Course, *model.Class) {
	t.Helper()
	ctx := context.Background()
	c, err := f.courses.Create(ctx, &model.CourseRequest{Name: "Violão", TotalSlots: intPtr(courseSeats)})
	if err != nil {
		t.Fatal(err)
	}
	req := validClass(c.ID)
	req.Slots = intPtr(classSeats)
	cl, err := f.classes.Create(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	return c, cl
}

func TestEnrollmentService_Enroll(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	course, class := f.seed(t, 2, 10)

	e, err := f.enrollments.Enroll(ctx, &model.EnrollmentRequest{StudentID: 7, ClassID: class.ID}, 0)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if e.ID == 0 || e.CourseID != course.ID || e.StudentID != 7 {
		t.Fatalf("unexpected enrollment: %+v", e)
	}
	if got, _ := f.courses.GetByID(ctx, course.ID); got.RemainingSlots != 1 {
		t.Fatalf("vagasRestantes = %d, want 1", got.RemainingSlots)
	}

	if _, err := f.enrollments.Enroll(ctx, &model.EnrollmentRequest{StudentID: 7, ClassID: class.ID}, 0); !apperror.IsConflict(err) {
		t.Fatalf("same aluno twice: %v", err)
	}

	// Caller identity fills a missing alunoId.
	e, err = f.enrollments.Enroll(ctx, &model.EnrollmentRequest{ClassID: class.ID}, 8)
	if err != nil || e.StudentID != 8 {
		t.Fatalf("caller enrollment: %+v, %v", e, err)
	}

	if _, err := f.enrollments.Enroll(ctx, &model.EnrollmentRequest{StudentID: 9, ClassID: class.ID}, 0); !apperror.IsValidation(err) {
		t.Fatalf("full course: %v", err)
	}
	if _, err := f.enrollments.Enroll(ctx, &model.EnrollmentRequest{ClassID: class.ID}, 0); !apperror.IsValidation(err) {
		t.Fatalf("no aluno: %v", err)
	}
	if _, err := f.enrollments.Enroll(ctx, &model.EnrollmentRequest{StudentID: 9, ClassID: 404}, 0); !apperror.IsValidation(err) {
		t.Fatalf("unknown turma: %v", err)
	}

	if err := f.enrollments.Cancel(ctx, e.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got, _ := f.courses.GetByID(ctx, course.ID); got.RemainingSlots != 1 {
		t.Fatalf("seat not returned, vagasRestantes = %d", got.RemainingSlots)
	}
	if err := f.enrollments.Cancel(ctx, e.ID); !apperror.IsNotFound(err) {
		t.Fatalf("cancel twice: %v", err)
	}

	list, _ := f.enrollments.List(ctx, model.EnrollmentFilter{StudentID: intPtr(7)})
	if len(list) != 1 {
		t.Fatalf("list by aluno = %+v", list)
	}
}

func TestEnrollmentService_ClassSeats(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	_, class := f.seed(t, 50, 1)

	if _, err := f.enrollments.Enroll(ctx, &model.EnrollmentRequest{StudentID: 1, ClassID: class.ID}, 0); err != nil {
		t.Fatal(err)
	}
	_, err := f.enrollments.Enroll(ctx, &model.EnrollmentRequest{StudentID: 2, ClassID: class.ID}, 0)
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) || ve.Fields["turmaId"] == "" {
		t.Fatalf("full turma: %v", err)
	}
}

func TestEnrollmentService_ConcurrentSeats(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	course, class := f.seed(t, 3, 20)

	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(student int) {
			defer wg.Done()
			if _, err := f.enrollments.Enroll(ctx, &model.EnrollmentRequest{StudentID: student, ClassID: class.ID}, 0); err == nil {
				ok.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if ok.Load() != 3 {
		t.Fatalf("%d enrollments succeeded, want 3", ok.Load())
	}
	if got, _ := f.courses.GetByID(ctx, course.ID); got.RemainingSlots != 0 {
		t.Fatalf("vagasRestantes = %d, want 0", got.RemainingSlots)
	}
}

func TestCourseService_Available(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	open, class := f.seed(t, 1, 5)
	if _, err := f.courses.Create(ctx, &model.CourseRequest{Name: "Sem turmas", TotalSlots: intPtr(5)}); err != nil {
		t.Fatal(err)
	}

	got, err := f.courses.Available(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Course.ID != open.ID || len(got[0].Classes) != 1 {
		t.Fatalf("available = %+v", got)
	}

	if _, err := f.enrollments.Enroll(ctx, &model.EnrollmentRequest{StudentID: 1, ClassID: class.ID}, 0); err != nil {
		t.Fatal(err)
	}
	if got, _ := f.courses.Available(ctx); len(got) != 0 {
		t.Fatalf("full course still listed: %+v", got)
	}
}
