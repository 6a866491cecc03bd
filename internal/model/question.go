package model

import "github.com/google/uuid"

// QuestionType enumerates the supported question kinds. MCQ questions are
// auto-graded against their correct option set; essays are never auto-graded.
type QuestionType string

const (
	QuestionTypeMCQ   QuestionType = "MCQ"
	QuestionTypeEssay QuestionType = "ESSAY"
)

// Objective reports whether answers of this type are machine-gradable.
func (t QuestionType) Objective() bool {
	return t == QuestionTypeMCQ
}

// Question represents a single exam question including grading data.
type Question struct {
	ID           uuid.UUID        `json:"id"`
	ExamID       uuid.UUID        `json:"exam_id"`
	QuestionText string           `json:"question_text"`
	QuestionType QuestionType     `json:"question_type"`
	Marks        float64          `json:"marks"`
	OrderNum     int              `json:"order_num"`
	Options      []QuestionOption `json:"options,omitempty"`
}

// QuestionOption is one selectable option of an MCQ question.
type QuestionOption struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	OptionText string    `json:"option_text"`
	IsCorrect  bool      `json:"is_correct"`
}

// CorrectOptionIDs returns the ids of options marked correct.
func (q *Question) CorrectOptionIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// QuestionForStudent is a question stripped of correctness flags,
// safe to send to an exam taker.
type QuestionForStudent struct {
	ID           uuid.UUID          `json:"id"`
	QuestionText string             `json:"question_text"`
	QuestionType QuestionType       `json:"question_type"`
	Marks        float64            `json:"marks"`
	OrderNum     int                `json:"order_num"`
	Options      []OptionForStudent `json:"options,omitempty"`
}

// OptionForStudent is an MCQ option without its correctness flag.
type OptionForStudent struct {
	ID         uuid.UUID `json:"id"`
	OptionText string    `json:"option_text"`
}

// Sanitize converts a full question into its student-facing view.
func (q *Question) Sanitize() QuestionForStudent {
	out := QuestionForStudent{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Marks:        q.Marks,
		OrderNum:     q.OrderNum,
	}
	for _, opt := range q.Options {
		out.Options = append(out.Options, OptionForStudent{
			ID:         opt.ID,
			OptionText: opt.OptionText,
		})
	}
	return out
}
