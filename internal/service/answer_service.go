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

// AnswerService records graded answers: one record per (session, question),
// correctness computed at write time, last write wins.
type AnswerService struct {
	answerStore  AnswerStore
	sessionStore SessionStore
	catalog      Catalog
	log          zerolog.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(answerStore AnswerStore, sessionStore SessionStore, catalog Catalog, log zerolog.Logger) *AnswerService {
	return &AnswerService{
		answerStore:  answerStore,
		sessionStore: sessionStore,
		catalog:      catalog,
		log:          log.With().Str("component", "answer_service").Logger(),
	}
}

// RecordAnswer upserts the student's answer to one question of their
// active session. MCQ answers are graded by exact set equality against the
// correct option set; essays stay ungraded. A repeated call for the same
// question fully replaces the earlier record and regrades it.
func (s *AnswerService) RecordAnswer(ctx context.Context, studentID int, sessionID, questionID uuid.UUID, req *model.RecordAnswerRequest) (*model.AnswerRecord, error) {
	hasOptions := len(req.SelectedOptionIDs) > 0
	hasText := req.AnswerText != ""
	if hasOptions == hasText {
		return nil, ErrInvalidAnswer
	}

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

	question, err := s.catalog.QuestionForGrading(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownQuestion
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	if question.ExamID != session.ExamID {
		return nil, ErrUnknownQuestion
	}

	// The payload kind must match the question kind: option selections for
	// MCQ, free text for essays.
	if question.QuestionType.Objective() != hasOptions {
		return nil, ErrInvalidAnswer
	}

	record := &model.AnswerRecord{
		SessionID:  sessionID,
		QuestionID: questionID,
	}
	if hasOptions {
		record.SelectedOptionIDs = req.SelectedOptionIDs
		record.IsCorrect = model.Grade(question, req.SelectedOptionIDs)
	} else {
		text := req.AnswerText
		record.AnswerText = &text
	}

	if err := s.answerStore.Upsert(ctx, record); err != nil {
		if errors.Is(err, repository.ErrSessionNotActive) {
			return nil, ErrSessionClosed
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("upsert answer: %w", err)
	}

	s.log.Debug().
		Str("session_id", sessionID.String()).
		Str("question_id", questionID.String()).
		Msg("Answer recorded")

	return record, nil
}
