package model

// Course (curso) is an offering with a fixed number of seats.
type Course struct {
	ID             int    `json:"id"`
	Name           string `json:"nome"`
	TotalSlots     int    `json:"vagasTotais"`
	RemainingSlots int    `json:"vagasRestantes"`
	Active         bool   `json:"ativo"`
}

// CourseRequest is the payload for creating or updating a course.
// TotalSlots is a pointer so a missing field and an explicit 0 both fail.
type CourseRequest struct {
	Name       string `json:"nome" binding:"required,min=2,max=100"`
	TotalSlots *int   `json:"vagasTotais" binding:"required,min=1,max=2147483647"`
	Active     *bool  `json:"ativo"`
}

// CourseWithClasses is returned by GET /cursos/:id/turmas.
type CourseWithClasses struct {
	Course  *Course `json:"curso"`
	Classes []Class `json:"turmas"`
}
