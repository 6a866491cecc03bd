package model

import "time"

// Student represents a registered exam taker.
type Student struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	NISN         string    `json:"nisn"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	NISN     string `json:"nisn" binding:"required,min=4,max=32"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}
