package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/sysocial/sysocial-backend/internal/apperror"
	"github.com/sysocial/sysocial-backend/internal/model"
)

const enrollmentColumns = `m.id, m.aluno_id, m.turma_id, t.curso_id, m.data_matricula`

// EnrollmentRepository handles matrícula data access. Seat bookkeeping runs
// inside a transaction so a failed step leaves no partial writes.
type EnrollmentRepository struct {
	db TxStarter
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(db TxStarter) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func scanEnrollment(row scanner) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	if err := row.Scan(&e.ID, &e.StudentID, &e.ClassID, &e.CourseID, &e.EnrolledAt); err != nil {
		return nil, err
	}
	return e, nil
}

// Create books a seat in the turma and in its curso. The turma row is locked
// for the duration, so concurrent enrollments in one turma queue up and the
// seat count read below stays exact.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var seats, taken int
		err := tx.QueryRow(ctx,
			`SELECT curso_id, vagas_turma FROM turmas WHERE id = $1 FOR UPDATE`, e.ClassID,
		).Scan(&e.CourseID, &seats)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewValidation("turmaId", "referenced record does not exist")
		}
		if err != nil {
			return err
		}

		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM matriculas WHERE turma_id = $1`, e.ClassID,
		).Scan(&taken); err != nil {
			return err
		}
		if taken >= seats {
			return apperror.NewValidation("turmaId", "turma has no seats left")
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO matriculas (aluno_id, turma_id)
			 VALUES ($1, $2)
			 RETURNING id, data_matricula`,
			e.StudentID, e.ClassID,
		).Scan(&e.ID, &e.EnrolledAt)
		if err != nil {
			return translateError(err, "matrícula", nil)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE cursos
			 SET vagas_restantes = vagas_restantes - 1, updated_at = NOW()
			 WHERE id = $1 AND ativo AND vagas_restantes > 0`, e.CourseID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperror.NewValidation("cursoId", "curso is inactive or has no seats left")
		}
		return nil
	})
}

// GetByID retrieves a matrícula by ID.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int) (*model.Enrollment, error) {
	e, err := scanEnrollment(r.db.QueryRow(ctx,
		`SELECT `+enrollmentColumns+`
		 FROM matriculas m JOIN turmas t ON t.id = m.turma_id
		 WHERE m.id = $1`, id))
	if err != nil {
		return nil, translateError(err, "matrícula", id)
	}
	return e, nil
}

// List retrieves matrículas, optionally of one aluno or one turma.
func (r *EnrollmentRepository) List(ctx context.Context, filter model.EnrollmentFilter) ([]model.Enrollment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+enrollmentColumns+`
		 FROM matriculas m JOIN turmas t ON t.id = m.turma_id
		 WHERE ($1::int IS NULL OR m.aluno_id = $1)
		   AND ($2::int IS NULL OR m.turma_id = $2)
		 ORDER BY m.id`, filter.StudentID, filter.ClassID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := []model.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, *e)
	}
	return enrollments, rows.Err()
}

// Delete cancels a matrícula and gives its seat back to the curso.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var classID int
		err := tx.QueryRow(ctx,
			`DELETE FROM matriculas WHERE id = $1 RETURNING turma_id`, id,
		).Scan(&classID)
		if err != nil {
			return translateError(err, "matrícula", id)
		}

		_, err = tx.Exec(ctx,
			`UPDATE cursos
			 SET vagas_restantes = LEAST(vagas_restantes + 1, vagas_totais), updated_at = NOW()
			 WHERE id = (SELECT curso_id FROM turmas WHERE id = $1)`, classID)
		return err
	})
}
