package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states. The only legal path is
// REGISTERED → ACTIVE → COMPLETED; no transition leaves COMPLETED.
type SessionStatus string

const (
	SessionStatusRegistered SessionStatus = "REGISTERED"
	SessionStatusActive     SessionStatus = "ACTIVE"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// ErrInvalidTransition is returned by the guarded transition methods when
// the session is not in the expected source state.
var ErrInvalidTransition = errors.New("invalid session transition")

// ExamSession represents one student's attempt at one exam. Score and
// Percentage stay nil until the session completes and are immutable after.
type ExamSession struct {
	ID           uuid.UUID     `json:"id"`
	ExamID       uuid.UUID     `json:"exam_id"`
	StudentID    int           `json:"student_id"`
	Status       SessionStatus `json:"status"`
	Score        *float64      `json:"score,omitempty"`
	Percentage   *float64      `json:"percentage,omitempty"`
	RegisteredAt time.Time     `json:"registered_at"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// Activate transitions REGISTERED → ACTIVE. Activating an already ACTIVE
// session is a no-op so Start stays idempotent; a COMPLETED session cannot
// be reopened.
func (s *ExamSession) Activate(now time.Time) error {
	switch s.Status {
	case SessionStatusActive:
		return nil
	case SessionStatusRegistered:
		s.Status = SessionStatusActive
		s.StartedAt = &now
		return nil
	default:
		return fmt.Errorf("%w: %s -> ACTIVE", ErrInvalidTransition, s.Status)
	}
}

// Complete transitions ACTIVE → COMPLETED and seals the final score.
// It is the only way Score and Percentage are ever set.
func (s *ExamSession) Complete(score, percentage float64, now time.Time) error {
	if s.Status != SessionStatusActive {
		return fmt.Errorf("%w: %s -> COMPLETED", ErrInvalidTransition, s.Status)
	}
	s.Status = SessionStatusCompleted
	s.Score = &score
	s.Percentage = &percentage
	s.CompletedAt = &now
	return nil
}

// Percent returns score/total*100, or 0 when total is not positive.
func Percent(score, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return score / total * 100
}
