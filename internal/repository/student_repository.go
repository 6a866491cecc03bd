package repository

import (
	"context"

	"github.com/examina/examina-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByNISN retrieves a student by their national student number.
func (r *StudentRepository) GetByNISN(ctx context.Context, nisn string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, nisn, password_hash, created_at
		 FROM students WHERE nisn = $1`, nisn,
	).Scan(&s.ID, &s.Name, &s.NISN, &s.PasswordHash, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a student by id.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, nisn, password_hash, created_at
		 FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.NISN, &s.PasswordHash, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (name, nisn, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.Name, s.NISN, s.PasswordHash,
	).Scan(&s.ID, &s.CreatedAt)
}
