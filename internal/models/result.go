package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Keys shared between answer payloads and check details.
const (
	FieldIsCorrect           = "is_correct"
	FieldManualCheckRequired = "manual_check_required"
)

// CheckDetails explains how a single answer was judged.
type CheckDetails struct {
	UserAnswer          any      `json:"user_answer"`
	CorrectAnswer       *string  `json:"correct_answer,omitempty"`
	CorrectAnswers      []string `json:"correct_answers,omitempty"`
	ManualCheckRequired bool     `json:"manual_check_required,omitempty"`
	Message             string   `json:"message,omitempty"`
	Error               string   `json:"error,omitempty"`
}

// CheckedAnswer is the graded form of one submitted answer.
type CheckedAnswer struct {
	QuestionID   uint         `json:"question_id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	MaxScore     int          `json:"max_score"`
	Score        int          `json:"score"`
	IsCorrect    bool         `json:"is_correct"`
	CheckDetails CheckDetails `json:"check_details"`
	TimeSeconds  int          `json:"time_seconds"`
	TimeExceeded bool         `json:"time_exceeded"`
}

// AggregateResult is the outcome of grading one submission. It is either graded
// (IsPassed set, Grade/Color optional) or pending manual review
// (ManualCheckRequired set, no grade fields).
type AggregateResult struct {
	TotalScore       int             `json:"total_score"`
	MaxPossibleScore int             `json:"max_possible_score"`
	Percentage       float64         `json:"percentage"`
	TotalTimeSeconds int             `json:"total_time_seconds"`
	StartedAt        time.Time       `json:"started_at"`
	FinishedAt       time.Time       `json:"finished_at"`
	CheckedAnswers   []CheckedAnswer `json:"checked_answers"`

	ManualCheckRequired bool    `json:"manual_check_required,omitempty"`
	IsPassed            *bool   `json:"is_passed,omitempty"`
	Grade               *string `json:"grade,omitempty"`
	Color               *string `json:"color,omitempty"`
	Message             string  `json:"message"`
}

func (r *AggregateResult) IsPending() bool {
	return r.ManualCheckRequired
}

// Result is the stored record of a graded submission.
type Result struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"not null;size:255;index"`
	TestID uint   `json:"test_id" gorm:"not null;index"`

	// Scoring
	Score               int     `json:"score"`
	MaxScore            int     `json:"max_score"`
	Percentage          float64 `json:"percentage"`
	TimeSeconds         int     `json:"time_seconds"`
	Passed              *bool   `json:"passed"`
	Grade               *string `json:"grade" gorm:"size:64"`
	Color               *string `json:"color" gorm:"size:32"`
	Message             string  `json:"message" gorm:"type:text"`
	ManualCheckRequired bool    `json:"manual_check_required" gorm:"index"`

	CheckedAnswers   datatypes.JSON `json:"checked_answers" gorm:"type:jsonb"`   // []CheckedAnswer
	SubmittedAnswers datatypes.JSON `json:"submitted_answers" gorm:"type:jsonb"` // []SubmittedAnswer

	// RFC 3339 timestamps of the answer window
	StartedAt  string `json:"started_at" gorm:"size:64"`
	FinishedAt string `json:"finished_at" gorm:"size:64"`

	// Regrading
	SupersededBy *uint   `json:"superseded_by" gorm:"index"`
	GradedBy     *string `json:"graded_by" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
}

func (Result) TableName() string {
	return "results"
}

func (r *Result) IsSuperseded() bool {
	return r.SupersededBy != nil
}

func (r *Result) DecodeSubmittedAnswers() ([]SubmittedAnswer, error) {
	var answers []SubmittedAnswer
	if len(r.SubmittedAnswers) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(r.SubmittedAnswers, &answers); err != nil {
		return nil, fmt.Errorf("failed to decode submitted answers of result %d: %w", r.ID, err)
	}
	return answers, nil
}

func (r *Result) DecodeCheckedAnswers() ([]CheckedAnswer, error) {
	var answers []CheckedAnswer
	if len(r.CheckedAnswers) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(r.CheckedAnswers, &answers); err != nil {
		return nil, fmt.Errorf("failed to decode checked answers of result %d: %w", r.ID, err)
	}
	return answers, nil
}
