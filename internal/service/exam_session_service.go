package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ExamSessionService owns the per-student exam attempt entity and its
// state transitions: registration → active → completed. Completion itself
// belongs to the ScoringService.
type ExamSessionService struct {
	sessionStore SessionStore
	catalog      Catalog
	log          zerolog.Logger
}

// NewExamSessionService creates a new ExamSessionService.
func NewExamSessionService(sessionStore SessionStore, catalog Catalog, log zerolog.Logger) *ExamSessionService {
	return &ExamSessionService{
		sessionStore: sessionStore,
		catalog:      catalog,
		log:          log.With().Str("component", "session_service").Logger(),
	}
}

// AttemptView is what a student needs to render an exam attempt.
type AttemptView struct {
	Session       *model.ExamSession `json:"session"`
	Exam          *model.Exam        `json:"exam"`
	QuestionCount int                `json:"question_count"`
	TotalMarks    float64            `json:"total_marks"`
}

// Register creates a REGISTERED session for the (student, exam) pair.
// A second registration for the same pair fails with
// ErrDuplicateRegistration; callers must not retry it blindly.
func (s *ExamSessionService) Register(ctx context.Context, studentID int, examID uuid.UUID) (*model.ExamSession, error) {
	if _, err := s.catalog.GetExam(ctx, examID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	session := &model.ExamSession{
		ExamID:    examID,
		StudentID: studentID,
		Status:    model.SessionStatusRegistered,
	}

	if err := s.sessionStore.Create(ctx, session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The conditional insert affected zero rows: a session for
			// this pair already exists.
			return nil, ErrDuplicateRegistration
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().
		Int("student_id", studentID).
		Str("exam_id", examID.String()).
		Str("session_id", session.ID.String()).
		Msg("Session registered")

	return session, nil
}

// Start transitions the student's session REGISTERED → ACTIVE and returns
// the attempt view. Calling Start on an already ACTIVE session is a no-op
// returning the same view. The exam window must be open.
func (s *ExamSessionService) Start(ctx context.Context, studentID int, examID uuid.UUID) (*AttemptView, error) {
	session, err := s.sessionStore.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Status == model.SessionStatusCompleted {
		return nil, ErrSessionClosed
	}

	exam, err := s.catalog.GetExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if !exam.ActiveAt(time.Now()) {
		return nil, ErrExamNotActive
	}

	if session.Status == model.SessionStatusRegistered {
		applied, err := s.sessionStore.Activate(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("activate session: %w", err)
		}
		// Zero rows means a concurrent caller raced us past REGISTERED;
		// re-read to see where the session actually landed.
		session, err = s.sessionStore.GetByID(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("reload session: %w", err)
		}
		if session.Status == model.SessionStatusCompleted {
			return nil, ErrSessionClosed
		}
		if applied {
			s.log.Info().
				Int("student_id", studentID).
				Str("session_id", session.ID.String()).
				Msg("Session started")
		}
	}

	questionCount, totalMarks, err := s.catalog.Summary(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("exam summary: %w", err)
	}

	return &AttemptView{
		Session:       session,
		Exam:          exam,
		QuestionCount: questionCount,
		TotalMarks:    totalMarks,
	}, nil
}

// ActiveSession returns the student's session for the exam, requiring it
// to be ACTIVE. Keeps the question paper behind an actual attempt.
func (s *ExamSessionService) ActiveSession(ctx context.Context, studentID int, examID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.sessionStore.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	switch session.Status {
	case model.SessionStatusRegistered:
		return nil, ErrSessionNotStarted
	case model.SessionStatusCompleted:
		return nil, ErrSessionClosed
	}
	return session, nil
}

// LobbyStatus describes how an exam shows up in the student lobby.
type LobbyStatus string

const (
	LobbyStatusUpcoming LobbyStatus = "UPCOMING"
	LobbyStatusOpen     LobbyStatus = "OPEN"
	LobbyStatusClosed   LobbyStatus = "CLOSED"
)

// LobbyExam is an exam overlaid with the student's own session state.
type LobbyExam struct {
	model.Exam
	LobbyStatus   LobbyStatus          `json:"lobby_status"`
	SessionStatus *model.SessionStatus `json:"session_status,omitempty"`
	Score         *float64             `json:"score,omitempty"`
	Percentage    *float64             `json:"percentage,omitempty"`
}

// GetLobby lists all exams with the student's session status overlaid.
func (s *ExamSessionService) GetLobby(ctx context.Context, studentID int) ([]LobbyExam, error) {
	exams, err := s.catalog.ListExams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}

	sessions, err := s.sessionStore.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessionMap := make(map[uuid.UUID]*model.ExamSession, len(sessions))
	for i := range sessions {
		sessionMap[sessions[i].ExamID] = &sessions[i]
	}

	now := time.Now()
	lobby := make([]LobbyExam, 0, len(exams))
	for _, exam := range exams {
		entry := LobbyExam{Exam: exam}
		switch {
		case now.Before(exam.StartsAt):
			entry.LobbyStatus = LobbyStatusUpcoming
		case exam.ActiveAt(now):
			entry.LobbyStatus = LobbyStatusOpen
		default:
			entry.LobbyStatus = LobbyStatusClosed
		}
		if sess, ok := sessionMap[exam.ID]; ok {
			entry.SessionStatus = &sess.Status
			entry.Score = sess.Score
			entry.Percentage = sess.Percentage
		}
		lobby = append(lobby, entry)
	}
	return lobby, nil
}
