package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// fakeCore is an in-memory stand-in for the pgx repositories. It
// implements SessionStore, AnswerStore and Catalog with the same
// observable semantics as the SQL layer: conditional inserts surface
// pgx.ErrNoRows, finalization is a status compare-and-swap, and answer
// upserts are rejected once the session is no longer active.
type fakeCore struct {
	mu        sync.Mutex
	exams     map[uuid.UUID]*model.Exam
	questions map[uuid.UUID]*model.Question
	sessions  map[uuid.UUID]*model.ExamSession
	pairs     map[string]uuid.UUID
	answers   map[string]*model.AnswerRecord
}

func newFakeCore() *fakeCore {
	return &fakeCore{
		exams:     make(map[uuid.UUID]*model.Exam),
		questions: make(map[uuid.UUID]*model.Question),
		sessions:  make(map[uuid.UUID]*model.ExamSession),
		pairs:     make(map[string]uuid.UUID),
		answers:   make(map[string]*model.AnswerRecord),
	}
}

func pairKey(examID uuid.UUID, studentID int) string {
	return fmt.Sprintf("%s|%d", examID, studentID)
}

func answerKey(sessionID, questionID uuid.UUID) string {
	return fmt.Sprintf("%s|%s", sessionID, questionID)
}

func (f *fakeCore) addExam(e *model.Exam) {
	f.exams[e.ID] = e
}

func (f *fakeCore) addQuestion(q *model.Question) {
	f.questions[q.ID] = q
}

func copySession(s *model.ExamSession) *model.ExamSession {
	out := *s
	return &out
}

// SessionStore

func (f *fakeCore) Create(_ context.Context, s *model.ExamSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pairKey(s.ExamID, s.StudentID)
	if _, exists := f.pairs[key]; exists {
		return pgx.ErrNoRows
	}
	s.ID = uuid.New()
	s.RegisteredAt = time.Now()
	f.pairs[key] = s.ID
	f.sessions[s.ID] = copySession(s)
	return nil
}

func (f *fakeCore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copySession(s), nil
}

func (f *fakeCore) GetByExamAndStudent(_ context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.pairs[pairKey(examID, studentID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copySession(f.sessions[id]), nil
}

func (f *fakeCore) Activate(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.Status != model.SessionStatusRegistered {
		return false, nil
	}
	now := time.Now()
	s.Status = model.SessionStatusActive
	s.StartedAt = &now
	return true, nil
}

func (f *fakeCore) Finalize(_ context.Context, id uuid.UUID) (*model.ExamSession, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, false, pgx.ErrNoRows
	}
	switch s.Status {
	case model.SessionStatusCompleted:
		return copySession(s), true, nil
	case model.SessionStatusRegistered:
		return copySession(s), false, repository.ErrSessionNotActive
	}

	var score, totalMarks float64
	for _, q := range f.questions {
		if q.ExamID != s.ExamID {
			continue
		}
		totalMarks += q.Marks
		rec, ok := f.answers[answerKey(id, q.ID)]
		if ok && rec.IsCorrect != nil && *rec.IsCorrect {
			score += q.Marks
		}
	}

	if err := s.Complete(score, model.Percent(score, totalMarks), time.Now()); err != nil {
		return nil, false, err
	}
	return copySession(s), false, nil
}

func (f *fakeCore) CohortStanding(_ context.Context, examID uuid.UUID, score float64) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var cohortSize, belowCount int64
	for _, s := range f.sessions {
		if s.ExamID != examID || s.Status != model.SessionStatusCompleted {
			continue
		}
		cohortSize++
		if s.Score != nil && *s.Score < score {
			belowCount++
		}
	}
	return cohortSize, belowCount, nil
}

func (f *fakeCore) ListByStudent(_ context.Context, studentID int) ([]model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ExamSession
	for _, s := range f.sessions {
		if s.StudentID == studentID {
			out = append(out, *copySession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.After(out[j].RegisteredAt) })
	return out, nil
}

func (f *fakeCore) LatestCompletedByStudent(_ context.Context, studentID int) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.ExamSession
	for _, s := range f.sessions {
		if s.StudentID != studentID || s.Status != model.SessionStatusCompleted {
			continue
		}
		if latest == nil || s.CompletedAt.After(*latest.CompletedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, pgx.ErrNoRows
	}
	return copySession(latest), nil
}

func (f *fakeCore) ProgressByStudent(_ context.Context, studentID int) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total, completed int64
	for _, s := range f.sessions {
		if s.StudentID != studentID {
			continue
		}
		total++
		if s.Status == model.SessionStatusCompleted {
			completed++
		}
	}
	return total, completed, nil
}

func (f *fakeCore) ListByExam(_ context.Context, examID uuid.UUID, page, perPage int) ([]repository.SessionResult, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []repository.SessionResult
	for _, s := range f.sessions {
		if s.ExamID != examID || s.Status != model.SessionStatusCompleted {
			continue
		}
		results = append(results, repository.SessionResult{
			StudentID:   s.StudentID,
			Score:       s.Score,
			Percentage:  s.Percentage,
			CompletedAt: s.CompletedAt,
		})
	}
	return results, int64(len(results)), nil
}

// AnswerStore

func (f *fakeCore) Upsert(_ context.Context, rec *model.AnswerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[rec.SessionID]
	if !ok {
		return pgx.ErrNoRows
	}
	if s.Status != model.SessionStatusActive {
		return repository.ErrSessionNotActive
	}
	rec.UpdatedAt = time.Now()
	stored := *rec
	f.answers[answerKey(rec.SessionID, rec.QuestionID)] = &stored
	return nil
}

func (f *fakeCore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.AnswerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AnswerRecord
	for _, rec := range f.answers {
		if rec.SessionID == sessionID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// Catalog

func (f *fakeCore) GetExam(_ context.Context, examID uuid.UUID) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exams[examID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return e, nil
}

func (f *fakeCore) ListExams(_ context.Context) ([]model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Exam
	for _, e := range f.exams {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeCore) Paper(_ context.Context, examID uuid.UUID) ([]model.QuestionForStudent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.QuestionForStudent
	for _, q := range f.questions {
		if q.ExamID == examID {
			out = append(out, q.Sanitize())
		}
	}
	return out, nil
}

func (f *fakeCore) QuestionForGrading(_ context.Context, questionID uuid.UUID) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[questionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return q, nil
}

func (f *fakeCore) Summary(_ context.Context, examID uuid.UUID) (int, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int
	var totalMarks float64
	for _, q := range f.questions {
		if q.ExamID == examID {
			count++
			totalMarks += q.Marks
		}
	}
	return count, totalMarks, nil
}
