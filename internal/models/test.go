package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Test struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Title        string         `json:"title" gorm:"not null;size:200;index"`
	TimeLimit    int            `json:"time_limit" gorm:"default:0"` // seconds, 0 = unlimited
	GradeOptions datatypes.JSON `json:"grade_options" gorm:"type:jsonb"`

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []TestQuestion `json:"questions" gorm:"foreignKey:TestID"`
}

func (Test) TableName() string {
	return "tests"
}

// TestQuestion links a question to a test. The score ceiling and the required flag
// belong to the link, not to the question.
type TestQuestion struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	TestID     uint `json:"test_id" gorm:"not null;index"`
	QuestionID uint `json:"question_id" gorm:"not null;index"`
	Position   int  `json:"position" gorm:"not null;default:0"`
	MaxScore   int  `json:"max_score" gorm:"not null;default:1"`
	Required   bool `json:"required" gorm:"default:false"`

	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (TestQuestion) TableName() string {
	return "test_questions"
}

// DecodeGradeOptions returns nil when the test has no grading configuration.
func (t *Test) DecodeGradeOptions() (*GradeOptions, error) {
	raw := bytes.TrimSpace(t.GradeOptions)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var opts GradeOptions
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode grade options of test %d: %w", t.ID, err)
	}
	return &opts, nil
}
