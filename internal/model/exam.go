package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam represents an exam entity. The attempt core treats exams as
// read-only catalog data; authoring happens elsewhere.
type Exam struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	SubjectID   int       `json:"subject_id"`
	SubjectName string    `json:"subject_name,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ActiveAt reports whether the exam window is open at the given instant.
func (e *Exam) ActiveAt(t time.Time) bool {
	return !t.Before(e.StartsAt) && t.Before(e.EndsAt)
}
