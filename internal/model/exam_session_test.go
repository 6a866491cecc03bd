package model

import (
	"errors"
	"testing"
	"time"
)

func TestActivateTransitions(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		from       SessionStatus
		wantErr    bool
		wantStatus SessionStatus
	}{
		{name: "registered becomes active", from: SessionStatusRegistered, wantStatus: SessionStatusActive},
		{name: "active is a no-op", from: SessionStatusActive, wantStatus: SessionStatusActive},
		{name: "completed cannot reopen", from: SessionStatusCompleted, wantErr: true, wantStatus: SessionStatusCompleted},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &ExamSession{Status: tc.from}
			err := s.Activate(now)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Status != tc.wantStatus {
				t.Fatalf("status = %s, want %s", s.Status, tc.wantStatus)
			}
		})
	}
}

func TestActivateIdempotentKeepsStartedAt(t *testing.T) {
	first := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	s := &ExamSession{Status: SessionStatusRegistered}

	if err := s.Activate(first); err != nil {
		t.Fatalf("first activate: %v", err)
	}
	if err := s.Activate(first.Add(time.Minute)); err != nil {
		t.Fatalf("second activate: %v", err)
	}
	if s.StartedAt == nil || !s.StartedAt.Equal(first) {
		t.Fatalf("started_at changed on repeated activation: %v", s.StartedAt)
	}
}

func TestCompleteTransitions(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		from    SessionStatus
		wantErr bool
	}{
		{name: "active completes", from: SessionStatusActive},
		{name: "registered cannot complete", from: SessionStatusRegistered, wantErr: true},
		{name: "completed stays sealed", from: SessionStatusCompleted, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &ExamSession{Status: tc.from}
			err := s.Complete(7.5, 75, now)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
				if s.Score != nil || s.Percentage != nil {
					t.Fatal("score must not be set on a failed transition")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Score == nil || *s.Score != 7.5 {
				t.Fatalf("score = %v, want 7.5", s.Score)
			}
			if s.Percentage == nil || *s.Percentage != 75 {
				t.Fatalf("percentage = %v, want 75", s.Percentage)
			}
			if s.CompletedAt == nil {
				t.Fatal("completed_at must be set")
			}
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		total float64
		want  float64
	}{
		{name: "half marks", score: 5, total: 10, want: 50},
		{name: "full marks", score: 10, total: 10, want: 100},
		{name: "zero total yields zero", score: 5, total: 0, want: 0},
		{name: "negative total yields zero", score: 5, total: -1, want: 0},
		{name: "zero score", score: 0, total: 10, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Percent(tc.score, tc.total); got != tc.want {
				t.Fatalf("Percent(%v, %v) = %v, want %v", tc.score, tc.total, got, tc.want)
			}
		})
	}
}
