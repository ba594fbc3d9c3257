package repository

import (
	"context"

	"github.com/sysocial/sysocial-backend/internal/model"
)

const userColumns = `id, username, nome, telefone, email, password_hash, tipo, troca_senha, created_at, updated_at`

// UserRepository handles user data access for the auth and user services.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row scanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Phone, &u.Email, &u.PasswordHash,
		&u.Type, &u.MustChangePassword, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a user. Username and email uniqueness is enforced by the
// users_username_key and users_email_key constraints.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, nome, telefone, email, password_hash, tipo, troca_senha)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		u.Username, u.Name, u.Phone, u.Email, u.PasswordHash, u.Type, u.MustChangePassword,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return translateError(err, "user", nil)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(err, "user", id)
	}
	return u, nil
}

// GetByLogin retrieves a user by username or (lower-cased) email.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE username = $1 OR email = LOWER($1)
		 ORDER BY (username = $1) DESC
		 LIMIT 1`, login))
	if err != nil {
		return nil, translateError(err, "user", login)
	}
	return u, nil
}

// List returns one page of users ordered by ID and the total count.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// Update overwrites the mutable columns of a user. An empty PasswordHash keeps
// the stored hash.
func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	err := r.db.QueryRow(ctx,
		`UPDATE users
		 SET username = $2, nome = $3, telefone = $4, email = $5,
		     password_hash = COALESCE(NULLIF($6, ''), password_hash),
		     tipo = $7, troca_senha = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		u.ID, u.Username, u.Name, u.Phone, u.Email, u.PasswordHash, u.Type, u.MustChangePassword,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return translateError(err, "user", u.ID)
}

// Delete removes a user by ID.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.db, `DELETE FROM users WHERE id = $1`, "user", id)
}
