package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/examina/examina-backend/internal/config"
	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ExamStore is the persistence contract for the exam catalog.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	List(ctx context.Context) ([]model.Exam, error)
}

// QuestionStore is the persistence contract for the question catalog.
type QuestionStore interface {
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	Summary(ctx context.Context, examID uuid.UUID) (int, float64, error)
}

// CatalogService exposes read-only exam metadata to the attempt core.
// The sanitized question paper is served through a Redis read-through
// cache; grading data always comes straight from PostgreSQL.
type CatalogService struct {
	examStore     ExamStore
	questionStore QuestionStore
	rdb           *redis.Client
	paperTTL      time.Duration
	log           zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	examStore ExamStore,
	questionStore QuestionStore,
	rdb *redis.Client,
	paperTTL time.Duration,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		examStore:     examStore,
		questionStore: questionStore,
		rdb:           rdb,
		paperTTL:      paperTTL,
		log:           log.With().Str("component", "catalog_service").Logger(),
	}
}

// GetExam retrieves one exam with its subject. The row is cached in Redis
// under the exam window key: Start checks the window on every call, and the
// exam itself does not change while a cohort is sitting it.
func (s *CatalogService) GetExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	key := config.CacheKey.ExamWindowKey(examID.String())

	if raw, err := s.rdb.Get(ctx, key).Result(); err == nil {
		var exam model.Exam
		if jsonErr := json.Unmarshal([]byte(raw), &exam); jsonErr == nil {
			return &exam, nil
		}
		_ = s.rdb.Del(ctx, key)
	} else if err != redis.Nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Exam cache read failed")
	}

	exam, err := s.examStore.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(exam); err == nil {
		_ = s.rdb.Set(ctx, key, raw, s.paperTTL).Err()
	}

	return exam, nil
}

// ListExams retrieves the full exam catalog.
func (s *CatalogService) ListExams(ctx context.Context) ([]model.Exam, error) {
	return s.examStore.List(ctx)
}

// Paper returns the sanitized question paper of an exam — no correctness
// flags. Served from Redis when warm; repopulated from PostgreSQL on miss.
func (s *CatalogService) Paper(ctx context.Context, examID uuid.UUID) ([]model.QuestionForStudent, error) {
	key := config.CacheKey.ExamPaperKey(examID.String())

	if raw, err := s.rdb.Get(ctx, key).Result(); err == nil {
		var paper []model.QuestionForStudent
		if jsonErr := json.Unmarshal([]byte(raw), &paper); jsonErr == nil {
			return paper, nil
		}
		// Corrupt cache entry: drop it and fall through to the database.
		_ = s.rdb.Del(ctx, key)
	} else if err != redis.Nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Paper cache read failed")
	}

	questions, err := s.questionStore.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	paper := make([]model.QuestionForStudent, 0, len(questions))
	for i := range questions {
		paper = append(paper, questions[i].Sanitize())
	}

	if raw, err := json.Marshal(paper); err == nil {
		if err := s.rdb.Set(ctx, key, raw, s.paperTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Paper cache write failed")
		}
	}

	return paper, nil
}

// QuestionForGrading retrieves one question with its correct option set.
func (s *CatalogService) QuestionForGrading(ctx context.Context, questionID uuid.UUID) (*model.Question, error) {
	return s.questionStore.GetByID(ctx, questionID)
}

// Summary returns the question count and total marks of an exam.
func (s *CatalogService) Summary(ctx context.Context, examID uuid.UUID) (int, float64, error) {
	return s.questionStore.Summary(ctx, examID)
}
