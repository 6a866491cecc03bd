package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/examina/examina-backend/internal/config"
	"github.com/examina/examina-backend/internal/database"
	"github.com/examina/examina-backend/internal/logger"
	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentRepo := repository.NewStudentRepository(pool)

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Student ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter NISN: ")
	nisn, _ := reader.ReadString('\n')
	nisn = strings.TrimSpace(nisn)
	if nisn == "" {
		fmt.Println("Error: NISN is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println()
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	student := &model.Student{
		Name:         name,
		NISN:         nisn,
		PasswordHash: string(hashedPassword),
	}

	if err := studentRepo.Create(ctx, student); err != nil {
		log.Fatal().Err(err).Msg("Failed to create student")
	}

	fmt.Printf("\nSuccess! Student '%s' (NISN: %s) created with ID: %d\n", student.Name, student.NISN, student.ID)
}
