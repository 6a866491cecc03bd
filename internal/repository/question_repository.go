package repository

import (
	"context"

	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question catalog data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByExam retrieves all questions of an exam with their options,
// ordered by order_num.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, question_text, question_type, marks, order_num
		 FROM questions WHERE exam_id = $1
		 ORDER BY order_num`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ExamID, &q.QuestionText, &q.QuestionType, &q.Marks, &q.OrderNum); err != nil {
			return nil, err
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return questions, nil
	}

	optRows, err := r.pool.Query(ctx,
		`SELECT o.id, o.question_id, o.option_text, o.is_correct
		 FROM question_options o
		 JOIN questions q ON o.question_id = q.id
		 WHERE q.exam_id = $1`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var opt model.QuestionOption
		if err := optRows.Scan(&opt.ID, &opt.QuestionID, &opt.OptionText, &opt.IsCorrect); err != nil {
			return nil, err
		}
		if i, ok := index[opt.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, opt)
		}
	}
	return questions, optRows.Err()
}

// GetByID retrieves a single question with its options.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, question_text, question_type, marks, order_num
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.ExamID, &q.QuestionText, &q.QuestionType, &q.Marks, &q.OrderNum)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, question_id, option_text, is_correct
		 FROM question_options WHERE question_id = $1`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var opt model.QuestionOption
		if err := rows.Scan(&opt.ID, &opt.QuestionID, &opt.OptionText, &opt.IsCorrect); err != nil {
			return nil, err
		}
		q.Options = append(q.Options, opt)
	}
	return q, rows.Err()
}

// Summary returns the question count and total marks of an exam.
func (r *QuestionRepository) Summary(ctx context.Context, examID uuid.UUID) (int, float64, error) {
	var count int
	var totalMarks float64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(marks), 0)
		 FROM questions WHERE exam_id = $1`, examID,
	).Scan(&count, &totalMarks)
	return count, totalMarks, err
}
