package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "SINGLE_CHOICE"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TrueFalse      QuestionType = "TRUE_FALSE"
	ShortAnswer    QuestionType = "SHORT_ANSWER"
	Survey         QuestionType = "SURVEY"
	Descriptive    QuestionType = "DESCRIPTIVE"
	Essay          QuestionType = "ESSAY"
	File           QuestionType = "FILE"
	Voice          QuestionType = "VOICE"
)

// QuestionTypes lists every question type the grading engine knows about.
var QuestionTypes = []QuestionType{
	SingleChoice,
	MultipleChoice,
	TrueFalse,
	ShortAnswer,
	Survey,
	Descriptive,
	Essay,
	File,
	Voice,
}

func (t QuestionType) IsValid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// RequiresManualCheck reports whether answers of this type are judged by a person.
func (t QuestionType) RequiresManualCheck() bool {
	return t == Essay || t == File || t == Voice
}

const (
	DefaultCorrectScore   = 1
	DefaultIncorrectScore = 0
)

// AnswerSettings holds the scoring configuration of a question. A nil field means
// the key was absent and the default applies.
type AnswerSettings struct {
	CorrectScore   *int `json:"correctScore,omitempty"`
	IncorrectScore *int `json:"incorrectScore,omitempty"`
}

// UnmarshalJSON never fails on a bad score. Whole numbers are accepted as JSON
// numbers or numeric strings; anything else leaves the default in place.
func (s *AnswerSettings) UnmarshalJSON(data []byte) error {
	*s = AnswerSettings{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	s.CorrectScore = parseScore(raw["correctScore"])
	s.IncorrectScore = parseScore(raw["incorrectScore"])
	return nil
}

func parseScore(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil
		}
		text = strings.TrimSpace(text)
	} else {
		text = string(raw)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	score := int(f)
	return &score
}

func (s AnswerSettings) CorrectPoints() int {
	if s.CorrectScore == nil {
		return DefaultCorrectScore
	}
	return *s.CorrectScore
}

func (s AnswerSettings) IncorrectPoints() int {
	if s.IncorrectScore == nil {
		return DefaultIncorrectScore
	}
	return *s.IncorrectScore
}

// AnswerSpec is the stored correctness data of a question.
type AnswerSpec struct {
	CorrectAnswer StringList     `json:"correctAnswer"`
	AllAnswer     StringList     `json:"allAnswer"`
	Settings      AnswerSettings `json:"settings"`
}

// QuestionDefinition is the read-only snapshot of a question used during grading.
type QuestionDefinition struct {
	ID        uint         `json:"id"`
	Text      string       `json:"text"`
	Type      QuestionType `json:"type"`
	Answer    AnswerSpec   `json:"answer"`
	TimeLimit int          `json:"time_limit"` // seconds, 0 = unlimited

	// SpecError is set when the stored answer spec could not be decoded
	SpecError string `json:"-"`
}

// Question is the catalog row a QuestionDefinition is built from.
type Question struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Text      string         `json:"text" gorm:"type:text;not null"`
	Type      QuestionType   `json:"type" gorm:"not null;size:32;index"`
	Answer    datatypes.JSON `json:"answer" gorm:"type:jsonb"` // AnswerSpec
	TimeLimit int            `json:"time_limit" gorm:"default:0"`

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// ToDefinition decodes the stored answer column. An empty column yields an empty spec
// so that scoring falls back to defaults. On a decode error the returned definition
// is still usable and carries the reason in SpecError.
func (q *Question) ToDefinition() (QuestionDefinition, error) {
	def := QuestionDefinition{
		ID:        q.ID,
		Text:      q.Text,
		Type:      q.Type,
		TimeLimit: q.TimeLimit,
	}
	if len(q.Answer) == 0 {
		return def, nil
	}
	if err := json.Unmarshal(q.Answer, &def.Answer); err != nil {
		def.Answer = AnswerSpec{}
		def.SpecError = "question answer specification is malformed"
		return def, fmt.Errorf("failed to decode answer spec of question %d: %w", q.ID, err)
	}
	return def, nil
}
