package repository

import (
	"context"

	"github.com/sysocial/sysocial-backend/internal/model"
)

const courseColumns = `id, nome, vagas_totais, vagas_restantes, ativo`

// CourseRepository handles curso data access.
type CourseRepository struct {
	db DBTX
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

func scanCourse(row scanner) (*model.Course, error) {
	c := &model.Course{}
	if err := row.Scan(&c.ID, &c.Name, &c.TotalSlots, &c.RemainingSlots, &c.Active); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a course with all of its seats still available.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO cursos (nome, vagas_totais, vagas_restantes, ativo)
		 VALUES ($1, $2, $2, $3)
		 RETURNING id, vagas_restantes`,
		c.Name, c.TotalSlots, c.Active,
	).Scan(&c.ID, &c.RemainingSlots)
	return translateError(err, "curso", nil)
}

// GetByID retrieves a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c, err := scanCourse(r.db.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM cursos WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(err, "curso", id)
	}
	return c, nil
}

// List retrieves courses ordered by name, optionally filtered by ativo.
func (r *CourseRepository) List(ctx context.Context, active *bool) ([]model.Course, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+courseColumns+` FROM cursos
		 WHERE ($1::boolean IS NULL OR ativo = $1)
		 ORDER BY nome`, active)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// Update changes name, seats and status. Remaining seats move by the same
// delta as the total and never drop below zero. A nil active keeps ativo.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course, active *bool) error {
	err := r.db.QueryRow(ctx,
		`UPDATE cursos
		 SET nome = $2,
		     vagas_restantes = GREATEST(vagas_restantes + ($3 - vagas_totais), 0),
		     vagas_totais = $3,
		     ativo = COALESCE($4::boolean, ativo),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING vagas_restantes, ativo`,
		c.ID, c.Name, c.TotalSlots, active,
	).Scan(&c.RemainingSlots, &c.Active)
	return translateError(err, "curso", c.ID)
}

// Delete removes a course. Courses that still have turmas are rejected by
// the turmas_curso_id_fkey constraint.
func (r *CourseRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.db, `DELETE FROM cursos WHERE id = $1`, "curso", id)
}
