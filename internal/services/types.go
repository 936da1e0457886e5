package services

import (
	"context"
	"time"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/repositories"
)

// ===== SERVICE INTERFACES =====

type SubmissionService interface {
	// Submit grades a learner's answers to a test and stores the result.
	Submit(ctx context.Context, testID uint, req *SubmitTestRequest, userID string) (*ResultResponse, error)
	// Regrade attaches manual verdicts to a pending result and grades it again. The
	// new result supersedes the pending one.
	Regrade(ctx context.Context, resultID uint, req *RegradeRequest, graderID string) (*ResultResponse, error)
	GetResult(ctx context.Context, resultID uint) (*ResultResponse, error)
	ListResults(ctx context.Context, testID uint, filters repositories.ResultFilters) (*ResultListResponse, error)
}

type ResultExportService interface {
	ExportResultsToExcel(ctx context.Context, testID uint) ([]byte, error)
}

// ===== REQUESTS =====

type SubmitTestRequest struct {
	Answers []models.SubmittedAnswer `json:"answers" validate:"dive"`
}

// ManualVerdict is a grader's decision on one ESSAY, FILE or VOICE answer.
type ManualVerdict struct {
	QuestionID uint  `json:"question_id" validate:"required"`
	IsCorrect  *bool `json:"is_correct" validate:"required"`
}

type RegradeRequest struct {
	Verdicts []ManualVerdict `json:"verdicts" validate:"required,min=1,dive"`
}

// ===== RESPONSES =====

type ResultResponse struct {
	ID     uint   `json:"id"`
	UserID string `json:"user_id"`
	TestID uint   `json:"test_id"`

	Score               int     `json:"score"`
	MaxScore            int     `json:"max_score"`
	Percentage          float64 `json:"percentage"`
	TimeSeconds         int     `json:"time_seconds"`
	Passed              *bool   `json:"is_passed,omitempty"`
	Grade               *string `json:"grade,omitempty"`
	Color               *string `json:"color,omitempty"`
	Message             string  `json:"message"`
	ManualCheckRequired bool    `json:"manual_check_required"`

	CheckedAnswers []models.CheckedAnswer `json:"checked_answers"`

	StartedAt    string    `json:"started_at"`
	FinishedAt   string    `json:"finished_at"`
	SupersededBy *uint     `json:"superseded_by,omitempty"`
	GradedBy     *string   `json:"graded_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type ResultListResponse struct {
	Results []*ResultResponse `json:"results"`
	Total   int64             `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}
