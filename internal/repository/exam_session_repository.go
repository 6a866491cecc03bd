package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSessionNotActive is returned by write paths that require an ACTIVE
// session row (answer upserts, finalization of a never-started session).
var ErrSessionNotActive = errors.New("session is not active")

// SessionResult combines student data with their completed session details,
// for the per-exam results listing.
type SessionResult struct {
	StudentID   int        `json:"student_id"`
	Name        string     `json:"name"`
	NISN        string     `json:"nisn"`
	Score       *float64   `json:"score"`
	Percentage  *float64   `json:"percentage"`
	CompletedAt *time.Time `json:"completed_at"`
}

// ExamSessionRepository handles exam session data access.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

const sessionColumns = `id, exam_id, student_id, status, score, percentage, registered_at, started_at, completed_at`

func scanSession(row pgx.Row) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.Status, &s.Score, &s.Percentage,
		&s.RegisteredAt, &s.StartedAt, &s.CompletedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new session in REGISTERED state. A conflicting row for
// the same (exam, student) pair makes the insert affect zero rows, which
// surfaces as pgx.ErrNoRows for the caller to map to a duplicate error.
func (r *ExamSessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions (exam_id, student_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (exam_id, student_id) DO NOTHING
		 RETURNING id, registered_at`,
		s.ExamID, s.StudentID, model.SessionStatusRegistered,
	).Scan(&s.ID, &s.RegisteredAt)
}

// GetByID retrieves a session by its id.
func (r *ExamSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id))
}

// GetByExamAndStudent retrieves a session for a specific exam-student combination.
func (r *ExamSessionRepository) GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions
		 WHERE exam_id = $1 AND student_id = $2`, examID, studentID))
}

// Activate conditionally transitions a session REGISTERED → ACTIVE.
// Returns true when this call performed the transition, false when the
// session was not in REGISTERED state (caller re-reads to distinguish
// an idempotent repeat from an illegal transition).
func (r *ExamSessionRepository) Activate(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1, started_at = NOW()
		 WHERE id = $2 AND status = $3`,
		model.SessionStatusActive, id, model.SessionStatusRegistered)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Finalize completes a session exactly once. It compare-and-swaps the
// status ACTIVE → COMPLETED inside a transaction, then aggregates the
// graded answers and the exam's total marks and persists score and
// percentage. The exclusive row lock taken by the conditional update
// orders the seal against in-flight answer writes, which hold a shared
// lock on the session row: an answer either lands before the seal and is
// counted, or fails with a closed-session error after it.
//
// Returns (session, true, nil) when the session was already COMPLETED —
// the stored result, untouched. Returns ErrSessionNotActive when the
// session exists but was never started.
func (r *ExamSessionRepository) Finalize(ctx context.Context, id uuid.UUID) (*model.ExamSession, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	s := &model.ExamSession{}
	err = tx.QueryRow(ctx,
		`UPDATE exam_sessions
		 SET status = $1, completed_at = NOW()
		 WHERE id = $2 AND status = $3
		 RETURNING `+sessionColumns,
		model.SessionStatusCompleted, id, model.SessionStatusActive,
	).Scan(&s.ID, &s.ExamID, &s.StudentID, &s.Status, &s.Score, &s.Percentage,
		&s.RegisteredAt, &s.StartedAt, &s.CompletedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, false, fmt.Errorf("seal session: %w", err)
		}
		// CAS affected zero rows: already completed, never started, or absent.
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, false, getErr
		}
		if existing.Status == model.SessionStatusCompleted {
			return existing, true, nil
		}
		return existing, false, ErrSessionNotActive
	}

	var score float64
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(q.marks), 0)
		 FROM answer_records a
		 JOIN questions q ON q.id = a.question_id
		 WHERE a.session_id = $1 AND a.is_correct IS TRUE`, id,
	).Scan(&score)
	if err != nil {
		return nil, false, fmt.Errorf("aggregate score: %w", err)
	}

	var totalMarks float64
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(marks), 0) FROM questions WHERE exam_id = $1`, s.ExamID,
	).Scan(&totalMarks)
	if err != nil {
		return nil, false, fmt.Errorf("total marks: %w", err)
	}

	percentage := model.Percent(score, totalMarks)

	if _, err := tx.Exec(ctx,
		`UPDATE exam_sessions SET score = $1, percentage = $2 WHERE id = $3`,
		score, percentage, id,
	); err != nil {
		return nil, false, fmt.Errorf("persist score: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit: %w", err)
	}

	s.Score = &score
	s.Percentage = &percentage
	return s, false, nil
}

// CohortStanding returns the size of the completed cohort of an exam and
// how many of its members scored strictly below the given score, in a
// single aggregate query.
func (r *ExamSessionRepository) CohortStanding(ctx context.Context, examID uuid.UUID, score float64) (int64, int64, error) {
	var cohortSize, belowCount int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE score < $2)
		 FROM exam_sessions
		 WHERE exam_id = $1 AND status = $3`,
		examID, score, model.SessionStatusCompleted,
	).Scan(&cohortSize, &belowCount)
	return cohortSize, belowCount, err
}

// ListByStudent retrieves all sessions for a given student.
func (r *ExamSessionRepository) ListByStudent(ctx context.Context, studentID int) ([]model.ExamSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions
		 WHERE student_id = $1
		 ORDER BY registered_at DESC`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.ExamSession
	for rows.Next() {
		var s model.ExamSession
		if err := rows.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.Status, &s.Score, &s.Percentage,
			&s.RegisteredAt, &s.StartedAt, &s.CompletedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// LatestCompletedByStudent retrieves the student's most recently completed
// session, or pgx.ErrNoRows when none exists.
func (r *ExamSessionRepository) LatestCompletedByStudent(ctx context.Context, studentID int) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions
		 WHERE student_id = $1 AND status = $2
		 ORDER BY completed_at DESC
		 LIMIT 1`, studentID, model.SessionStatusCompleted))
}

// ProgressByStudent returns the student's total and completed session counts.
func (r *ExamSessionRepository) ProgressByStudent(ctx context.Context, studentID int) (int64, int64, error) {
	var total, completed int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $2)
		 FROM exam_sessions WHERE student_id = $1`,
		studentID, model.SessionStatusCompleted,
	).Scan(&total, &completed)
	return total, completed, err
}

// ListByExam retrieves completed student results for an exam, paginated,
// best scores first.
func (r *ExamSessionRepository) ListByExam(ctx context.Context, examID uuid.UUID, page, perPage int) ([]SessionResult, int64, error) {
	offset := (page - 1) * perPage

	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_sessions
		 WHERE exam_id = $1 AND status = $2`,
		examID, model.SessionStatusCompleted,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.name, s.nisn, es.score, es.percentage, es.completed_at
		 FROM exam_sessions es
		 JOIN students s ON es.student_id = s.id
		 WHERE es.exam_id = $1 AND es.status = $2
		 ORDER BY es.score DESC, s.name ASC
		 LIMIT $3 OFFSET $4`,
		examID, model.SessionStatusCompleted, perPage, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []SessionResult
	for rows.Next() {
		var res SessionResult
		if err := rows.Scan(&res.StudentID, &res.Name, &res.NISN, &res.Score, &res.Percentage, &res.CompletedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}
