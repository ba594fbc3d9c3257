package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysocial/sysocial-backend/internal/apperror"
)

// DBTX is the subset of *pgxpool.Pool the repositories use. pgx.Tx also
// satisfies it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxStarter is a DBTX that can also open transactions, like *pgxpool.Pool.
type TxStarter interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// constraintFields maps unique and foreign-key constraint names to the JSON
// field reported back to the client.
var constraintFields = map[string]string{
	"users_username_key":   "username",
	"users_email_key":      "email",
	"cursos_nome_key":      "nome",
	"turmas_natural_key":   "nomeTurma",
	"turmas_curso_id_fkey": "cursoId",
	"turmas_periodo_check": "dataFim",

	"matriculas_aluno_turma_key": "turmaId",
	"matriculas_aluno_id_fkey":   "alunoId",
	"matriculas_turma_id_fkey":   "turmaId",
}

// translateError converts driver errors into the apperror taxonomy. Anything
// unrecognised is returned unchanged and ends up as a 500.
func translateError(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &apperror.NotFoundError{Entity: entity, ID: id}
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	field := constraintFields[pgErr.ConstraintName]
	switch pgErr.Code {
	case pgUniqueViolation:
		return &apperror.ConflictError{Entity: entity, Field: field, Err: err}
	case pgForeignKeyViolation:
		if field == "" {
			field = "detail"
		}
		return apperror.NewValidation(field, "referenced record does not exist")
	case pgCheckViolation:
		if field == "" {
			field = "detail"
		}
		return apperror.NewValidation(field, "value violates constraint "+pgErr.ConstraintName)
	}
	return err
}

// translateDeleteError treats a foreign-key violation as the row still being
// referenced by dependants.
func translateDeleteError(err error, entity string, id any) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return &apperror.ConflictError{Entity: entity, Err: err}
	}
	return translateError(err, entity, id)
}

func deleteByID(ctx context.Context, db DBTX, sql, entity string, id int) error {
	tag, err := db.Exec(ctx, sql, id)
	if err != nil {
		return translateDeleteError(err, entity, id)
	}
	if tag.RowsAffected() == 0 {
		return &apperror.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}
