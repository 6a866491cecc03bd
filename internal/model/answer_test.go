package model

import (
	"testing"

	"github.com/google/uuid"
)

var (
	optA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	optB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	optC = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func TestOptionSetsEqual(t *testing.T) {
	tests := []struct {
		name string
		a    []uuid.UUID
		b    []uuid.UUID
		want bool
	}{
		{name: "same single", a: []uuid.UUID{optA}, b: []uuid.UUID{optA}, want: true},
		{name: "order insensitive", a: []uuid.UUID{optB, optC}, b: []uuid.UUID{optC, optB}, want: true},
		{name: "duplicate insensitive", a: []uuid.UUID{optA, optA}, b: []uuid.UUID{optA}, want: true},
		{name: "partial selection", a: []uuid.UUID{optB}, b: []uuid.UUID{optB, optC}, want: false},
		{name: "extra selection", a: []uuid.UUID{optA, optB}, b: []uuid.UUID{optA}, want: false},
		{name: "disjoint", a: []uuid.UUID{optA}, b: []uuid.UUID{optB}, want: false},
		{name: "both empty", a: nil, b: nil, want: true},
		{name: "one empty", a: []uuid.UUID{optA}, b: nil, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := OptionSetsEqual(tc.a, tc.b); got != tc.want {
				t.Fatalf("OptionSetsEqual = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGrade(t *testing.T) {
	mcq := &Question{
		QuestionType: QuestionTypeMCQ,
		Options: []QuestionOption{
			{ID: optA, IsCorrect: false},
			{ID: optB, IsCorrect: true},
			{ID: optC, IsCorrect: true},
		},
	}
	essay := &Question{QuestionType: QuestionTypeEssay}

	tests := []struct {
		name     string
		question *Question
		selected []uuid.UUID
		want     *bool
	}{
		{name: "mcq exact match", question: mcq, selected: []uuid.UUID{optC, optB}, want: boolPtr(true)},
		{name: "mcq partial gets no credit", question: mcq, selected: []uuid.UUID{optB}, want: boolPtr(false)},
		{name: "mcq wrong option", question: mcq, selected: []uuid.UUID{optA}, want: boolPtr(false)},
		{name: "mcq superset is wrong", question: mcq, selected: []uuid.UUID{optA, optB, optC}, want: boolPtr(false)},
		{name: "essay stays ungraded", question: essay, selected: nil, want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Grade(tc.question, tc.selected)
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("Grade = %v, want %v", got, tc.want)
			}
			if got != nil && *got != *tc.want {
				t.Fatalf("Grade = %v, want %v", *got, *tc.want)
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }
