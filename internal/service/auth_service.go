package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/examina/examina-backend/internal/config"
	"github.com/examina/examina-backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on a failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims extends JWT standard claims with the authenticated student id.
// Every core operation receives the student id explicitly from these
// verified claims, never from ambient state.
type Claims struct {
	jwt.RegisteredClaims
	StudentID int    `json:"student_id"`
	Name      string `json:"name"`
}

// StudentStore is the persistence contract for student lookups.
type StudentStore interface {
	GetByNISN(ctx context.Context, nisn string) (*model.Student, error)
	GetByID(ctx context.Context, id int) (*model.Student, error)
}

// AuthService handles student authentication and JWT issuance.
type AuthService struct {
	cfg          *config.Config
	studentStore StudentStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, studentStore StudentStore) *AuthService {
	return &AuthService{cfg: cfg, studentStore: studentStore}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// Login verifies the student's credentials and issues a signed JWT.
func (s *AuthService) Login(ctx context.Context, nisn, password string) (string, *model.Student, error) {
	student, err := s.studentStore.GetByNISN(ctx, nisn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get student: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(student.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		StudentID: student.ID,
		Name:      student.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, student, nil
}

// ValidateToken parses and verifies a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// GetProfile retrieves the authenticated student's profile.
func (s *AuthService) GetProfile(ctx context.Context, studentID int) (*model.Student, error) {
	return s.studentStore.GetByID(ctx, studentID)
}
