package model

// DateLayout is the only accepted wire format for class dates.
const DateLayout = "2006-01-02"

// Class (turma) is a weekly meeting slot of a course.
type Class struct {
	ID          int     `json:"id"`
	CourseID    int     `json:"cursoId"`
	Weekday     string  `json:"diaSemana"`
	Slots       int     `json:"vagasTurma"`
	Name        string  `json:"nomeTurma"`
	Description string  `json:"descricao"`
	StartTime   *string `json:"horaInicio"`
	EndTime     *string `json:"horaFim"`
	StartDate   string  `json:"dataInicio"`
	EndDate     string  `json:"dataFim"`
}

// ClassRequest is the payload for creating or updating a class.
type ClassRequest struct {
	CourseID    int    `json:"cursoId" binding:"required,min=1,max=2147483647"`
	Weekday     string `json:"diaSemana" binding:"required,weekday"`
	Slots       *int   `json:"vagasTurma" binding:"required,min=1,max=2147483647"`
	Name        string `json:"nomeTurma" binding:"required,max=100"`
	Description string `json:"descricao" binding:"max=500"`
	StartTime   string `json:"horaInicio" binding:"omitempty,timeofday"`
	EndTime     string `json:"horaFim" binding:"omitempty,timeofday"`
	StartDate   string `json:"dataInicio" binding:"required,isodate"`
	EndDate     string `json:"dataFim" binding:"required,isodate"`
}

// ClassFilter narrows GET /turmas.
type ClassFilter struct {
	CourseID *int
}
