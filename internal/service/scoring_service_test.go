package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []SubmissionEvent
}

func (p *recordingPublisher) PublishSubmission(_ context.Context, event SubmissionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// TestSubmitScenario walks the worked example: totalMarks=10, Q1 (5 marks,
// correct {A}) answered correctly, Q2 (5 marks, correct {B, C}) answered
// with a partial selection. The submit yields 5/50%, and neither a late
// answer nor a repeated submit changes the stored result.
func TestSubmitScenario(t *testing.T) {
	ctx := context.Background()
	f := newFakeCore()
	exam := openExam(f)

	q1OptA := uuid.New()
	q1 := &model.Question{ID: uuid.New(), ExamID: exam.ID, QuestionType: model.QuestionTypeMCQ, Marks: 5,
		Options: []model.QuestionOption{
			{ID: q1OptA, IsCorrect: true},
			{ID: uuid.New(), IsCorrect: false},
		}}
	q2OptB, q2OptC := uuid.New(), uuid.New()
	q2 := &model.Question{ID: uuid.New(), ExamID: exam.ID, QuestionType: model.QuestionTypeMCQ, Marks: 5,
		Options: []model.QuestionOption{
			{ID: q2OptB, IsCorrect: true},
			{ID: q2OptC, IsCorrect: true},
			{ID: uuid.New(), IsCorrect: false},
		}}
	f.addQuestion(q1)
	f.addQuestion(q2)

	sessions := NewExamSessionService(f, f, zerolog.Nop())
	answers := NewAnswerService(f, f, f, zerolog.Nop())
	publisher := &recordingPublisher{}
	scoring := NewScoringService(f, publisher, zerolog.Nop())

	if _, err := sessions.Register(ctx, 1, exam.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	view, err := sessions.Start(ctx, 1, exam.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	sessionID := view.Session.ID

	if _, err := answers.RecordAnswer(ctx, 1, sessionID, q1.ID,
		&model.RecordAnswerRequest{SelectedOptionIDs: []uuid.UUID{q1OptA}}); err != nil {
		t.Fatalf("answer q1: %v", err)
	}
	if _, err := answers.RecordAnswer(ctx, 1, sessionID, q2.ID,
		&model.RecordAnswerRequest{SelectedOptionIDs: []uuid.UUID{q2OptB}}); err != nil {
		t.Fatalf("answer q2: %v", err)
	}

	result, err := scoring.Submit(ctx, 1, sessionID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Status != model.SessionStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", result.Status)
	}
	if *result.Score != 5 || *result.Percentage != 50 {
		t.Fatalf("result = (%v, %v), want (5, 50)", *result.Score, *result.Percentage)
	}
	if publisher.count() != 1 {
		t.Fatalf("published events = %d, want 1", publisher.count())
	}

	// A late correction is rejected by the seal.
	_, err = answers.RecordAnswer(ctx, 1, sessionID, q2.ID,
		&model.RecordAnswerRequest{SelectedOptionIDs: []uuid.UUID{q2OptB, q2OptC}})
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("late answer err = %v, want ErrSessionClosed", err)
	}

	// A repeated submit returns the stored result without recomputation.
	repeat, err := scoring.Submit(ctx, 1, sessionID)
	if err != nil {
		t.Fatalf("repeat submit: %v", err)
	}
	if *repeat.Score != 5 || *repeat.Percentage != 50 {
		t.Fatalf("repeat result = (%v, %v), want (5, 50)", *repeat.Score, *repeat.Percentage)
	}
	if !repeat.CompletedAt.Equal(*result.CompletedAt) {
		t.Fatal("repeat submit must not touch completed_at")
	}
	if publisher.count() != 1 {
		t.Fatalf("repeat submit must not publish again, events = %d", publisher.count())
	}
}

func TestSubmitNeverStarted(t *testing.T) {
	ctx := context.Background()
	f := newFakeCore()
	exam := openExam(f)
	sessions := NewExamSessionService(f, f, zerolog.Nop())
	scoring := NewScoringService(f, nil, zerolog.Nop())

	session, err := sessions.Register(ctx, 1, exam.ID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := scoring.Submit(ctx, 1, session.ID); !errors.Is(err, ErrSessionNotStarted) {
		t.Fatalf("err = %v, want ErrSessionNotStarted", err)
	}
}

func TestSubmitUnknownSession(t *testing.T) {
	f := newFakeCore()
	scoring := NewScoringService(f, nil, zerolog.Nop())

	if _, err := scoring.Submit(context.Background(), 1, uuid.New()); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("err = %v, want ErrNotRegistered", err)
	}
}

func TestSubmitOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFakeCore()
	exam := openExam(f)
	sessions := NewExamSessionService(f, f, zerolog.Nop())
	scoring := NewScoringService(f, nil, zerolog.Nop())

	if _, err := sessions.Register(ctx, 1, exam.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	view, err := sessions.Start(ctx, 1, exam.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := scoring.Submit(ctx, 2, view.Session.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

// TestSubmitZeroTotalMarks checks the divide-by-zero guard: an exam with
// no questions completes with score 0, percentage 0.
func TestSubmitZeroTotalMarks(t *testing.T) {
	ctx := context.Background()
	f := newFakeCore()
	exam := openExam(f)
	sessions := NewExamSessionService(f, f, zerolog.Nop())
	scoring := NewScoringService(f, nil, zerolog.Nop())

	if _, err := sessions.Register(ctx, 1, exam.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	view, err := sessions.Start(ctx, 1, exam.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	result, err := scoring.Submit(ctx, 1, view.Session.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if *result.Score != 0 || *result.Percentage != 0 {
		t.Fatalf("result = (%v, %v), want (0, 0)", *result.Score, *result.Percentage)
	}
}

// TestSubmitConcurrent fires several submits at one active session; all
// must agree on the result and exactly one may publish.
func TestSubmitConcurrent(t *testing.T) {
	ctx := context.Background()
	f := newFakeCore()
	exam := openExam(f)
	sessions := NewExamSessionService(f, f, zerolog.Nop())
	publisher := &recordingPublisher{}
	scoring := NewScoringService(f, publisher, zerolog.Nop())

	if _, err := sessions.Register(ctx, 1, exam.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	view, err := sessions.Start(ctx, 1, exam.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	const submitters = 8
	var wg sync.WaitGroup
	results := make([]*model.ExamSession, submitters)
	errs := make([]error, submitters)

	wg.Add(submitters)
	for i := 0; i < submitters; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = scoring.Submit(ctx, 1, view.Session.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < submitters; i++ {
		if errs[i] != nil {
			t.Fatalf("submitter %d: %v", i, errs[i])
		}
		if *results[i].Score != *results[0].Score {
			t.Fatalf("submitter %d saw score %v, first saw %v", i, *results[i].Score, *results[0].Score)
		}
	}
	if publisher.count() != 1 {
		t.Fatalf("published events = %d, want exactly 1", publisher.count())
	}
}
