package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
)

// EventType represents different types of result events
type EventType string

const (
	EventResultGraded         EventType = "result.graded"
	EventManualReviewRequired EventType = "result.manual_review_required"
)

const (
	eventSource  = "grading-service"
	eventVersion = "1.0"
)

// Event is the envelope shared by all published events
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Key       string                 `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ResultGradedEvent is published once a submission reaches a final grade.
type ResultGradedEvent struct {
	ResultID    uint    `json:"result_id"`
	TestID      uint    `json:"test_id"`
	UserID      string  `json:"user_id"`
	Score       int     `json:"score"`
	MaxScore    int     `json:"max_score"`
	Percentage  float64 `json:"percentage"`
	Passed      bool    `json:"passed"`
	Grade       *string `json:"grade,omitempty"`
	Supersedes  *uint   `json:"supersedes,omitempty"`
	GradedBy    *string `json:"graded_by,omitempty"`
	TimeSeconds int     `json:"time_seconds"`
}

// ManualReviewRequiredEvent lists the answers a grader still has to judge.
type ManualReviewRequiredEvent struct {
	ResultID    uint   `json:"result_id"`
	TestID      uint   `json:"test_id"`
	UserID      string `json:"user_id"`
	QuestionIDs []uint `json:"question_ids"`
}

func newEvent(eventType EventType, testID uint, data interface{}) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      eventType,
		Key:       fmt.Sprintf("test-%d", testID),
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// NewResultEvent builds the event matching the terminal state of result.
func NewResultEvent(result *models.Result, checked []models.CheckedAnswer, supersedes *uint) *Event {
	if result.ManualCheckRequired {
		pending := make([]uint, 0)
		for _, a := range checked {
			if a.CheckDetails.ManualCheckRequired {
				pending = append(pending, a.QuestionID)
			}
		}
		return newEvent(EventManualReviewRequired, result.TestID, ManualReviewRequiredEvent{
			ResultID:    result.ID,
			TestID:      result.TestID,
			UserID:      result.UserID,
			QuestionIDs: pending,
		})
	}

	passed := result.Passed != nil && *result.Passed
	return newEvent(EventResultGraded, result.TestID, ResultGradedEvent{
		ResultID:    result.ID,
		TestID:      result.TestID,
		UserID:      result.UserID,
		Score:       result.Score,
		MaxScore:    result.MaxScore,
		Percentage:  result.Percentage,
		Passed:      passed,
		Grade:       result.Grade,
		Supersedes:  supersedes,
		GradedBy:    result.GradedBy,
		TimeSeconds: result.TimeSeconds,
	})
}

func GenerateEventID() string {
	return uuid.NewString()
}
