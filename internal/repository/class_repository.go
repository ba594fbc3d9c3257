package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sysocial/sysocial-backend/internal/apperror"
	"github.com/sysocial/sysocial-backend/internal/model"
)

const classColumns = `id, curso_id, dia_semana, vagas_turma, nome_turma, descricao,
	hora_inicio, hora_fim, data_inicio, data_fim`

// ClassRepository handles turma data access.
type ClassRepository struct {
	db DBTX
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(db DBTX) *ClassRepository {
	return &ClassRepository{db: db}
}

// classRow holds the driver-typed columns of a turma.
type classRow struct {
	startTime, endTime pgtype.Time
	startDate, endDate time.Time
}

func scanClass(row scanner) (*model.Class, error) {
	c := &model.Class{}
	var cr classRow
	err := row.Scan(&c.ID, &c.CourseID, &c.Weekday, &c.Slots, &c.Name, &c.Description,
		&cr.startTime, &cr.endTime, &cr.startDate, &cr.endDate)
	if err != nil {
		return nil, err
	}
	c.StartTime = fromPgTime(cr.startTime)
	c.EndTime = fromPgTime(cr.endTime)
	c.StartDate = cr.startDate.Format(model.DateLayout)
	c.EndDate = cr.endDate.Format(model.DateLayout)
	return c, nil
}

// classArgs converts the string-typed model fields into driver values, in column
// order starting at curso_id.
func classArgs(c *model.Class) ([]any, error) {
	start, err := toPgTime(c.StartTime)
	if err != nil {
		return nil, fmt.Errorf("hora_inicio: %w", err)
	}
	end, err := toPgTime(c.EndTime)
	if err != nil {
		return nil, fmt.Errorf("hora_fim: %w", err)
	}
	startDate, err := time.Parse(model.DateLayout, c.StartDate)
	if err != nil {
		return nil, fmt.Errorf("data_inicio: %w", err)
	}
	endDate, err := time.Parse(model.DateLayout, c.EndDate)
	if err != nil {
		return nil, fmt.Errorf("data_fim: %w", err)
	}
	return []any{c.CourseID, c.Weekday, c.Slots, c.Name, c.Description, start, end, startDate, endDate}, nil
}

// Create inserts a turma. Duplicates are rejected by turmas_natural_key and
// unknown courses by turmas_curso_id_fkey.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	args, err := classArgs(c)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx,
		`INSERT INTO turmas (curso_id, dia_semana, vagas_turma, nome_turma, descricao,
		                     hora_inicio, hora_fim, data_inicio, data_fim)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`, args...,
	).Scan(&c.ID)
	return translateError(err, "turma", nil)
}

// GetByID retrieves a turma by ID.
func (r *ClassRepository) GetByID(ctx context.Context, id int) (*model.Class, error) {
	c, err := scanClass(r.db.QueryRow(ctx,
		`SELECT `+classColumns+` FROM turmas WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(err, "turma", id)
	}
	return c, nil
}

// List retrieves turmas ordered by start date, optionally for one course.
func (r *ClassRepository) List(ctx context.Context, filter model.ClassFilter) ([]model.Class, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+classColumns+` FROM turmas
		 WHERE ($1::int IS NULL OR curso_id = $1)
		 ORDER BY data_inicio, hora_inicio NULLS LAST, id`, filter.CourseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.Class{}
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *c)
	}
	return classes, rows.Err()
}

// Update overwrites every column of a turma.
func (r *ClassRepository) Update(ctx context.Context, c *model.Class) error {
	args, err := classArgs(c)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE turmas
		 SET curso_id = $1, dia_semana = $2, vagas_turma = $3, nome_turma = $4, descricao = $5,
		     hora_inicio = $6, hora_fim = $7, data_inicio = $8, data_fim = $9, updated_at = NOW()
		 WHERE id = $10`, append(args, c.ID)...,
	)
	if err != nil {
		return translateError(err, "turma", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return &apperror.NotFoundError{Entity: "turma", ID: c.ID}
	}
	return nil
}

// Delete removes a turma by ID.
func (r *ClassRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.db, `DELETE FROM turmas WHERE id = $1`, "turma", id)
}

func toPgTime(s *string) (pgtype.Time, error) {
	if s == nil || *s == "" {
		return pgtype.Time{}, nil
	}
	layout := "15:04:05"
	if len(*s) == len("15:04") {
		layout = "15:04"
	}
	t, err := time.Parse(layout, *s)
	if err != nil {
		return pgtype.Time{}, err
	}
	d := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
	return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}, nil
}

func fromPgTime(t pgtype.Time) *string {
	if !t.Valid {
		return nil
	}
	secs := t.Microseconds / int64(time.Second/time.Microsecond)
	s := fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	return &s
}
