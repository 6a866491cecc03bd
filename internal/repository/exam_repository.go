package repository

import (
	"context"

	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamRepository handles exam catalog data access. The attempt core only
// reads from it; authoring lives in a separate application.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam with its subject name.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT e.id, e.title, e.subject_id, s.name, e.starts_at, e.ends_at, e.created_at, e.updated_at
		 FROM exams e
		 JOIN subjects s ON e.subject_id = s.id
		 WHERE e.id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.SubjectID, &e.SubjectName, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// List retrieves all exams ordered by start time, newest first.
func (r *ExamRepository) List(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.title, e.subject_id, s.name, e.starts_at, e.ends_at, e.created_at, e.updated_at
		 FROM exams e
		 JOIN subjects s ON e.subject_id = s.id
		 ORDER BY e.starts_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.SubjectID, &e.SubjectName, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}
