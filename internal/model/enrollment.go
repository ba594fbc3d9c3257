package model

import "time"

// Enrollment (matrícula) places an aluno in a turma. It holds one seat of the
// turma and one of its curso.
type Enrollment struct {
	ID         int       `json:"id"`
	StudentID  int       `json:"alunoId"`
	ClassID    int       `json:"turmaId"`
	CourseID   int       `json:"cursoId"`
	EnrolledAt time.Time `json:"dataMatricula"`
}

// EnrollmentRequest is the payload for POST /matriculas. alunoId defaults to
// the caller forwarded by the gateway.
type EnrollmentRequest struct {
	StudentID int `json:"alunoId" binding:"omitempty,min=1,max=2147483647"`
	ClassID   int `json:"turmaId" binding:"required,min=1,max=2147483647"`
}

// EnrollmentFilter narrows GET /matriculas.
type EnrollmentFilter struct {
	StudentID *int
	ClassID   *int
}
