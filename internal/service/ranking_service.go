package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// RankingService derives rank and percentile for completed sessions
// against their exam cohort. Purely read-only and never cached, so late
// completions by other students are always reflected.
type RankingService struct {
	sessionStore SessionStore
	log          zerolog.Logger
}

// NewRankingService creates a new RankingService.
func NewRankingService(sessionStore SessionStore, log zerolog.Logger) *RankingService {
	return &RankingService{
		sessionStore: sessionStore,
		log:          log.With().Str("component", "ranking_service").Logger(),
	}
}

// RankView is the standing of one completed session within its cohort.
type RankView struct {
	Rank       int64   `json:"rank"`
	Percentile float64 `json:"percentile"`
	CohortSize int64   `json:"cohort_size"`
}

// StudentSummary aggregates a student's overall progress.
type StudentSummary struct {
	ProgressPercent float64   `json:"progress_percent"`
	LatestRank      *RankView `json:"latest_rank"`
}

// standing turns a cohort size and a strictly-below count into a rank and
// percentile. The top score gets rank 1; ties share the same rank value
// (beaten-by-none semantics, not dense ranking). A zero cohort cannot
// occur for a counted session but must never divide by zero.
func standing(cohortSize, belowCount int64) RankView {
	view := RankView{
		Rank:       cohortSize - belowCount,
		CohortSize: cohortSize,
	}
	if cohortSize > 0 {
		view.Percentile = float64(belowCount) / float64(cohortSize) * 100
	}
	return view
}

// RankOf computes the session's rank and percentile against the completed
// cohort of its exam. The session itself must be completed.
func (s *RankingService) RankOf(ctx context.Context, studentID int, sessionID uuid.UUID) (*RankView, error) {
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
	if session.Status != model.SessionStatusCompleted || session.Score == nil {
		return nil, ErrSessionNotCompleted
	}

	cohortSize, belowCount, err := s.sessionStore.CohortStanding(ctx, session.ExamID, *session.Score)
	if err != nil {
		return nil, fmt.Errorf("cohort standing: %w", err)
	}

	view := standing(cohortSize, belowCount)
	return &view, nil
}

// Summary reports the student's progress across all their sessions
// (completed/total as a percentage) and the rank of their most recently
// completed session, nil when nothing is completed yet.
func (s *RankingService) Summary(ctx context.Context, studentID int) (*StudentSummary, error) {
	total, completed, err := s.sessionStore.ProgressByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("progress: %w", err)
	}

	summary := &StudentSummary{
		ProgressPercent: model.Percent(float64(completed), float64(total)),
	}

	latest, err := s.sessionStore.LatestCompletedByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return summary, nil
		}
		return nil, fmt.Errorf("latest completed: %w", err)
	}
	if latest.Score == nil {
		return summary, nil
	}

	cohortSize, belowCount, err := s.sessionStore.CohortStanding(ctx, latest.ExamID, *latest.Score)
	if err != nil {
		return nil, fmt.Errorf("cohort standing: %w", err)
	}
	view := standing(cohortSize, belowCount)
	summary.LatestRank = &view
	return summary, nil
}

// ExamResults lists the completed results of one exam, paginated,
// best scores first.
func (s *RankingService) ExamResults(ctx context.Context, examID uuid.UUID, page, perPage int) ([]repository.SessionResult, int64, error) {
	return s.sessionStore.ListByExam(ctx, examID, page, perPage)
}
