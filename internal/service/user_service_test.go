package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sysocial/sysocial-backend/internal/apperror"
	"github.com/sysocial/sysocial-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService() *UserService {
	return NewUserService(newMemUserStore(), bcrypt.MinCost)
}

func bob() *model.CreateUserRequest {
	return &model.CreateUserRequest{
		Username: "bob_user",
		Name:     "Bob",
		Email:    "Bob@X.com ",
		Password: "Secret123",
		Type:     model.UserTypeAdmin,
	}
}

func TestUserService_Create(t *testing.T) {
	svc := newTestUserService()

	u, err := svc.Create(context.Background(), bob())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}
	if u.Email != "bob@x.com" {
		t.Errorf("email = %q, want normalized", u.Email)
	}
	if u.Phone != nil {
		t.Errorf("phone = %v, want nil for empty input", *u.Phone)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Secret123")) != nil {
		t.Error("password hash does not match")
	}
}

func TestUserService_CreateDuplicate(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, bob()); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(ctx, bob())
	if !apperror.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	other := bob()
	other.Username = "someone_else"
	if _, err := svc.Create(ctx, other); !apperror.IsConflict(err) {
		t.Fatalf("expected email conflict, got %v", err)
	}
}

func TestUserService_ConcurrentCreate(t *testing.T) {
	svc := newTestUserService()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), bob())
		}(i)
	}
	wg.Wait()

	ok, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperror.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != n-1 {
		t.Fatalf("ok=%d conflicts=%d, want exactly one success", ok, conflicts)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, bob()); err != nil {
		t.Fatal(err)
	}

	for _, login := range []string{"bob_user", "BOB@x.com"} {
		if _, err := svc.Authenticate(ctx, login, "Secret123"); err != nil {
			t.Errorf("Authenticate(%q): %v", login, err)
		}
	}
	if _, err := svc.Authenticate(ctx, "bob_user", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "Secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v", err)
	}
}

func TestUserService_UpdateKeepsPassword(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()
	u, err := svc.Create(ctx, bob())
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Update(ctx, u.ID, &model.UpdateUserRequest{
		Username: "bob_user",
		Name:     "Robert",
		Email:    "bob@x.com",
		Type:     model.UserTypeProfessor,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "bob_user", "Secret123"); err != nil {
		t.Fatalf("password changed unexpectedly: %v", err)
	}

	if _, err := svc.Update(ctx, 999, &model.UpdateUserRequest{Username: "x_user", Email: "x@x.com"}); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUserService_ListClampsPaging(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()
	for _, name := range []string{"ana_user", "bia_user", "caio_user"} {
		req := bob()
		req.Username = name
		req.Email = name + "@x.com"
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatal(err)
		}
	}

	users, page, err := svc.List(ctx, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || page.Page != 1 || page.TotalItems != 3 || page.TotalPages != 2 {
		t.Fatalf("got %d users, pagination %+v", len(users), page)
	}

	_, page, _ = svc.List(ctx, 1, 1000)
	if page.PerPage != 100 {
		t.Fatalf("per_page = %d, want 100", page.PerPage)
	}
}
