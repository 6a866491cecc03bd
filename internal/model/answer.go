package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerRecord stores one graded answer per (session, question).
// Exactly one of SelectedOptionIDs or AnswerText is present. IsCorrect is
// tri-state: true/false for graded MCQ answers, nil for essays (ungraded).
type AnswerRecord struct {
	SessionID         uuid.UUID   `json:"session_id"`
	QuestionID        uuid.UUID   `json:"question_id"`
	SelectedOptionIDs []uuid.UUID `json:"selected_option_ids,omitempty"`
	AnswerText        *string     `json:"answer_text,omitempty"`
	IsCorrect         *bool       `json:"is_correct,omitempty"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// RecordAnswerRequest is the payload for recording an answer. Exactly one
// of the two fields must be present; the service enforces mutual exclusion.
type RecordAnswerRequest struct {
	SelectedOptionIDs []uuid.UUID `json:"selected_option_ids" binding:"omitempty,min=1"`
	AnswerText        string      `json:"answer_text" binding:"omitempty,min=1,max=20000"`
}

// OptionSetsEqual reports whether two option-id collections contain the
// same set of ids, insensitive to order and duplicates.
func OptionSetsEqual(a, b []uuid.UUID) bool {
	setA := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		setA[id] = struct{}{}
	}
	setB := make(map[uuid.UUID]struct{}, len(b))
	for _, id := range b {
		setB[id] = struct{}{}
	}
	if len(setA) != len(setB) {
		return false
	}
	for id := range setA {
		if _, ok := setB[id]; !ok {
			return false
		}
	}
	return true
}

// Grade computes the tri-state correctness of a selection against a
// question: exact set equality for MCQ, ungraded (nil) for essays.
func Grade(q *Question, selected []uuid.UUID) *bool {
	if !q.QuestionType.Objective() {
		return nil
	}
	correct := OptionSetsEqual(selected, q.CorrectOptionIDs())
	return &correct
}
