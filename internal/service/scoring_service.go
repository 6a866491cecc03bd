package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/examina/examina-backend/internal/config"
	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SubmissionEvent is published on the exam's Redis channel after each
// finalization, feeding the live monitor stream.
type SubmissionEvent struct {
	SessionID   uuid.UUID `json:"session_id"`
	ExamID      uuid.UUID `json:"exam_id"`
	StudentID   int       `json:"student_id"`
	Score       float64   `json:"score"`
	Percentage  float64   `json:"percentage"`
	CompletedAt time.Time `json:"completed_at"`
}

// SubmissionPublisher announces completed sessions to live consumers.
type SubmissionPublisher interface {
	PublishSubmission(ctx context.Context, event SubmissionEvent) error
}

// RedisSubmissionPublisher publishes submission events on the exam's
// Redis Pub/Sub channel.
type RedisSubmissionPublisher struct {
	rdb *redis.Client
}

// NewRedisSubmissionPublisher creates a new RedisSubmissionPublisher.
func NewRedisSubmissionPublisher(rdb *redis.Client) *RedisSubmissionPublisher {
	return &RedisSubmissionPublisher{rdb: rdb}
}

// PublishSubmission implements SubmissionPublisher.
func (p *RedisSubmissionPublisher) PublishSubmission(ctx context.Context, event SubmissionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	channel := config.CacheKey.SubmissionChannel(event.ExamID.String())
	return p.rdb.Publish(ctx, channel, payload).Err()
}

// ScoringService finalizes sessions exactly once: it seals the session
// against further answers, aggregates the graded answers into a score and
// percentage, and announces the completion on the exam's submission channel.
type ScoringService struct {
	sessionStore SessionStore
	publisher    SubmissionPublisher
	log          zerolog.Logger
}

// NewScoringService creates a new ScoringService.
func NewScoringService(sessionStore SessionStore, publisher SubmissionPublisher, log zerolog.Logger) *ScoringService {
	return &ScoringService{
		sessionStore: sessionStore,
		publisher:    publisher,
		log:          log.With().Str("component", "scoring_service").Logger(),
	}
}

// Submit finalizes the session. Idempotent: a session that is already
// COMPLETED returns its stored score and percentage unchanged, with no
// recomputation. A session that was registered but never started fails
// with ErrSessionNotStarted.
func (s *ScoringService) Submit(ctx context.Context, studentID int, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.StudentID != studentID {
		return nil, ErrForbidden
	}

	result, alreadyCompleted, err := s.sessionStore.Finalize(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotActive) {
			return nil, ErrSessionNotStarted
		}
		return nil, fmt.Errorf("finalize session: %w", err)
	}

	if alreadyCompleted {
		return result, nil
	}

	s.log.Info().
		Str("session_id", sessionID.String()).
		Int("student_id", studentID).
		Float64("score", *result.Score).
		Float64("percentage", *result.Percentage).
		Msg("Session finalized")

	s.announce(ctx, result)

	return result, nil
}

// announce publishes a completed session. Best effort: a publish failure
// never fails the submit.
func (s *ScoringService) announce(ctx context.Context, session *model.ExamSession) {
	if s.publisher == nil {
		return
	}
	event := SubmissionEvent{
		SessionID:  session.ID,
		ExamID:     session.ExamID,
		StudentID:  session.StudentID,
		Score:      *session.Score,
		Percentage: *session.Percentage,
	}
	if session.CompletedAt != nil {
		event.CompletedAt = *session.CompletedAt
	}
	if err := s.publisher.PublishSubmission(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("Submission publish failed")
	}
}
