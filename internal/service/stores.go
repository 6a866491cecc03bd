package service

import (
	"context"

	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/repository"
	"github.com/google/uuid"
)

// SessionStore is the persistence contract for exam sessions. The pgx
// implementation lives in internal/repository; tests use in-memory fakes.
type SessionStore interface {
	Create(ctx context.Context, s *model.ExamSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error)
	GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error)
	Activate(ctx context.Context, id uuid.UUID) (bool, error)
	Finalize(ctx context.Context, id uuid.UUID) (*model.ExamSession, bool, error)
	CohortStanding(ctx context.Context, examID uuid.UUID, score float64) (int64, int64, error)
	ListByStudent(ctx context.Context, studentID int) ([]model.ExamSession, error)
	LatestCompletedByStudent(ctx context.Context, studentID int) (*model.ExamSession, error)
	ProgressByStudent(ctx context.Context, studentID int) (int64, int64, error)
	ListByExam(ctx context.Context, examID uuid.UUID, page, perPage int) ([]repository.SessionResult, int64, error)
}

// AnswerStore is the persistence contract for answer records.
type AnswerStore interface {
	Upsert(ctx context.Context, rec *model.AnswerRecord) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AnswerRecord, error)
}

// Catalog supplies immutable-per-attempt exam metadata: the exam window,
// the question list with grading data, and the total marks summary.
type Catalog interface {
	GetExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error)
	ListExams(ctx context.Context) ([]model.Exam, error)
	Paper(ctx context.Context, examID uuid.UUID) ([]model.QuestionForStudent, error)
	QuestionForGrading(ctx context.Context, questionID uuid.UUID) (*model.Question, error)
	Summary(ctx context.Context, examID uuid.UUID) (int, float64, error)
}
