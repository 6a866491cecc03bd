package repository

import (
	"context"
	"fmt"

	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnswerRepository handles answer record data access.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Upsert writes one answer record keyed by (session, question); a later
// write for the same question fully replaces the earlier one. The session
// row is read under FOR SHARE in the same transaction, so the write cannot
// interleave with the exclusive seal taken by finalization: it either
// commits before the session closes or fails with ErrSessionNotActive.
// Concurrent upserts for different questions hold the shared lock together
// and do not block each other.
func (r *AnswerRepository) Upsert(ctx context.Context, rec *model.AnswerRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var status model.SessionStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM exam_sessions WHERE id = $1 FOR SHARE`, rec.SessionID,
	).Scan(&status)
	if err != nil {
		return err
	}
	if status != model.SessionStatusActive {
		return ErrSessionNotActive
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO answer_records (session_id, question_id, selected_option_ids, answer_text, is_correct)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET selected_option_ids = EXCLUDED.selected_option_ids,
		     answer_text = EXCLUDED.answer_text,
		     is_correct = EXCLUDED.is_correct,
		     updated_at = NOW()
		 RETURNING updated_at`,
		rec.SessionID, rec.QuestionID, optionIDsParam(rec.SelectedOptionIDs), rec.AnswerText, rec.IsCorrect,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert answer: %w", err)
	}

	return tx.Commit(ctx)
}

// ListBySession retrieves all answer records of one session.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AnswerRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, question_id, selected_option_ids, answer_text, is_correct, updated_at
		 FROM answer_records WHERE session_id = $1`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AnswerRecord
	for rows.Next() {
		var rec model.AnswerRecord
		if err := rows.Scan(&rec.SessionID, &rec.QuestionID, &rec.SelectedOptionIDs,
			&rec.AnswerText, &rec.IsCorrect, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// optionIDsParam maps an empty selection to SQL NULL so the
// exactly-one-payload check constraint holds for text answers.
func optionIDsParam(ids []uuid.UUID) any {
	if len(ids) == 0 {
		return nil
	}
	return ids
}
