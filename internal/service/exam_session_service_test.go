package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func openExam(f *fakeCore) *model.Exam {
	now := time.Now()
	exam := &model.Exam{
		ID:        uuid.New(),
		Title:     "Mathematics Mid-Term",
		SubjectID: 1,
		StartsAt:  now.Add(-time.Hour),
		EndsAt:    now.Add(time.Hour),
	}
	f.addExam(exam)
	return exam
}

func closedExam(f *fakeCore) *model.Exam {
	now := time.Now()
	exam := &model.Exam{
		ID:        uuid.New(),
		Title:     "Last Week's Physics",
		SubjectID: 2,
		StartsAt:  now.Add(-48 * time.Hour),
		EndsAt:    now.Add(-24 * time.Hour),
	}
	f.addExam(exam)
	return exam
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFakeCore()
	exam := openExam(f)
	svc := NewExamSessionService(f, f, zerolog.Nop())

	session, err := svc.Register(ctx, 1, exam.ID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.Status != model.SessionStatusRegistered {
		t.Fatalf("status = %s, want REGISTERED", session.Status)
	}
	if session.Score != nil || session.Percentage != nil {
		t.Fatal("score and percentage must be nil before completion")
	}

	if _, err := svc.Register(ctx, 1, exam.ID); !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("second register err = %v, want ErrDuplicateRegistration", err)
	}

	// A different student may register for the same exam.
	if _, err := svc.Register(ctx, 2, exam.ID); err != nil {
		t.Fatalf("other student register: %v", err)
	}
}

func TestRegisterUnknownExam(t *testing.T) {
	f := newFakeCore()
	svc := NewExamSessionService(f, f, zerolog.Nop())

	if _, err := svc.Register(context.Background(), 1, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStart(t *testing.T) {
	ctx := context.Background()
	f := newFakeCore()
	exam := openExam(f)
	f.addQuestion(&model.Question{ID: uuid.New(), ExamID: exam.ID, QuestionType: model.QuestionTypeMCQ, Marks: 5})
	f.addQuestion(&model.Question{ID: uuid.New(), ExamID: exam.ID, QuestionType: model.QuestionTypeEssay, Marks: 10})
	svc := NewExamSessionService(f, f, zerolog.Nop())

	if _, err := svc.Start(ctx, 1, exam.ID); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("start without registration err = %v, want ErrNotRegistered", err)
	}

	if _, err := svc.Register(ctx, 1, exam.ID); err != nil {
		t.Fatalf("register: %v", err)
	}

	view, err := svc.Start(ctx, 1, exam.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.Session.Status != model.SessionStatusActive {
		t.Fatalf("status = %s, want ACTIVE", view.Session.Status)
	}
	if view.QuestionCount != 2 || view.TotalMarks != 15 {
		t.Fatalf("summary = (%d, %v), want (2, 15)", view.QuestionCount, view.TotalMarks)
	}

	// Start is idempotent while the session is active.
	again, err := svc.Start(ctx, 1, exam.ID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if again.Session.ID != view.Session.ID || again.Session.Status != model.SessionStatusActive {
		t.Fatal("second start must return the same active session")
	}
	if !again.Session.StartedAt.Equal(*view.Session.StartedAt) {
		t.Fatal("second start must not reset started_at")
	}
}

func TestStartOutsideWindow(t *testing.T) {
	ctx := context.Background()
	f := newFakeCore()
	exam := closedExam(f)
	svc := NewExamSessionService(f, f, zerolog.Nop())

	if _, err := svc.Register(ctx, 1, exam.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Start(ctx, 1, exam.ID); !errors.Is(err, ErrExamNotActive) {
		t.Fatalf("err = %v, want ErrExamNotActive", err)
	}
}

func TestStartCompletedSession(t *testing.T) {
	ctx := context.Background()
	f := newFakeCore()
	exam := openExam(f)
	svc := NewExamSessionService(f, f, zerolog.Nop())

	session, err := svc.Register(ctx, 1, exam.ID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Start(ctx, 1, exam.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := f.Finalize(ctx, session.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if _, err := svc.Start(ctx, 1, exam.ID); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("err = %v, want ErrSessionClosed", err)
	}
}

func TestGetLobby(t *testing.T) {
	ctx := context.Background()
	f := newFakeCore()
	open := openExam(f)
	closed := closedExam(f)
	svc := NewExamSessionService(f, f, zerolog.Nop())

	if _, err := svc.Register(ctx, 1, open.ID); err != nil {
		t.Fatalf("register: %v", err)
	}

	lobby, err := svc.GetLobby(ctx, 1)
	if err != nil {
		t.Fatalf("lobby: %v", err)
	}
	if len(lobby) != 2 {
		t.Fatalf("lobby size = %d, want 2", len(lobby))
	}

	byID := make(map[uuid.UUID]LobbyExam)
	for _, entry := range lobby {
		byID[entry.ID] = entry
	}
	if got := byID[open.ID]; got.LobbyStatus != LobbyStatusOpen || got.SessionStatus == nil {
		t.Fatalf("open exam entry = %+v", got)
	}
	if got := byID[closed.ID]; got.LobbyStatus != LobbyStatusClosed || got.SessionStatus != nil {
		t.Fatalf("closed exam entry = %+v", got)
	}
}
