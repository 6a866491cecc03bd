package main

import (
	"context"
	"fmt"
	"time"

	"github.com/examina/examina-backend/internal/config"
	"github.com/examina/examina-backend/internal/database"
	"github.com/examina/examina-backend/internal/logger"
	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a demo subject, an exam that opens immediately, its questions and
// a batch of students. Safe to run once against a fresh database.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding demo data ===")

	var subjectID int
	err = pool.QueryRow(ctx,
		`INSERT INTO subjects (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		"Mathematics",
	).Scan(&subjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed subject")
	}

	now := time.Now()
	var examID uuid.UUID
	err = pool.QueryRow(ctx,
		`INSERT INTO exams (title, subject_id, starts_at, ends_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		"Mathematics Mid-Term", subjectID, now, now.Add(6*time.Hour),
	).Scan(&examID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed exam")
	}
	fmt.Printf("Created exam %s\n", examID)

	if err := seedQuestions(ctx, pool, examID); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed questions")
	}

	studentRepo := repository.NewStudentRepository(pool)

	hash, err := bcrypt.GenerateFromPassword([]byte("examina123"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash seed password")
	}

	names := []string{
		"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo",
		"Ayu Lestari", "Dodi Kusuma", "Eka Putri", "Fahri Hamzah", "Gita Savitri",
		"Hendra Gunawan", "Ika Sari", "Jamal Mirdad", "Kiki Fatmala", "Lukman Hakim",
		"Maya Septiana", "Nanda Pratama", "Oki Setiana", "Putri Dian", "Qori Maharani",
	}

	successCount := 0
	for i, name := range names {
		student := &model.Student{
			Name:         name,
			NISN:         fmt.Sprintf("user%d", i+1),
			PasswordHash: string(hash),
		}
		if err := studentRepo.Create(ctx, student); err != nil {
			fmt.Printf("Error creating student %s (NISN: %s): %v\n", student.Name, student.NISN, err)
			continue
		}
		successCount++
	}

	fmt.Printf("\nSeed completed! %d/%d students created. Default password: examina123\n", successCount, len(names))
}

type seedOption struct {
	text    string
	correct bool
}

type seedQuestion struct {
	text    string
	qtype   model.QuestionType
	marks   float64
	options []seedOption
}

func seedQuestions(ctx context.Context, pool *pgxpool.Pool, examID uuid.UUID) error {
	questions := []seedQuestion{
		{
			text:  "What is 7 x 8?",
			qtype: model.QuestionTypeMCQ,
			marks: 5,
			options: []seedOption{
				{text: "54"}, {text: "56", correct: true}, {text: "58"}, {text: "64"},
			},
		},
		{
			text:  "Select every prime number.",
			qtype: model.QuestionTypeMCQ,
			marks: 5,
			options: []seedOption{
				{text: "2", correct: true}, {text: "3", correct: true},
				{text: "4"}, {text: "5", correct: true}, {text: "6"},
			},
		},
		{
			text:  "Explain why the square root of 2 is irrational.",
			qtype: model.QuestionTypeEssay,
			marks: 10,
		},
	}

	for i, q := range questions {
		var questionID uuid.UUID
		err := pool.QueryRow(ctx,
			`INSERT INTO questions (exam_id, question_text, question_type, marks, order_num)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			examID, q.text, string(q.qtype), q.marks, i+1,
		).Scan(&questionID)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", i+1, err)
		}

		for _, opt := range q.options {
			_, err := pool.Exec(ctx,
				`INSERT INTO question_options (question_id, option_text, is_correct)
				 VALUES ($1, $2, $3)`,
				questionID, opt.text, opt.correct,
			)
			if err != nil {
				return fmt.Errorf("insert option for question %d: %w", i+1, err)
			}
		}
	}
	return nil
}
