package grading

import (
	"fmt"
	"math"
	"time"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
)

// DefaultPassPercentage is the pass threshold used when a test has no usable scale.
const DefaultPassPercentage = 60.0

const (
	MessagePassed        = "Test passed"
	MessageFailed        = "Insufficient score to pass the test"
	MessagePendingReview = "Some answers require manual review; the final result will be available after checking"
)

// TestQuestion is a question as it appears in one test. MaxScore and Required come
// from the test-question link.
type TestQuestion struct {
	Question models.QuestionDefinition
	MaxScore int
	Required bool
}

// Submission is everything needed to grade one attempt.
type Submission struct {
	Questions    []TestQuestion
	Answers      []models.SubmittedAnswer
	TimeLimit    int // seconds, 0 = unlimited
	GradeOptions *models.GradeOptions
}

// Aggregate checks every answered question, totals the scores and either grades the
// submission or marks it as pending manual review.
//
// The returned error always wraps ErrInvalidSubmission.
func Aggregate(sub Submission) (*models.AggregateResult, error) {
	if len(sub.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	if len(sub.Answers) == 0 {
		return nil, ErrNoAnswers
	}

	// later answers to the same question replace earlier ones
	answers := make(map[uint]models.SubmittedAnswer, len(sub.Answers))
	for _, a := range sub.Answers {
		if a.TimeStart.IsZero() || a.TimeEnd.IsZero() {
			return nil, fmt.Errorf("%w (question %d)", ErrMissingAnswerTime, a.QuestionID)
		}
		answers[a.QuestionID] = a
	}

	startedAt, finishedAt := answerWindow(sub.Answers)
	elapsed := models.SecondsBetween(startedAt, finishedAt)
	if sub.TimeLimit > 0 && elapsed > sub.TimeLimit {
		return nil, &TimeLimitError{LimitSeconds: sub.TimeLimit, ElapsedSeconds: elapsed}
	}

	result := &models.AggregateResult{
		TotalTimeSeconds: elapsed,
		StartedAt:        startedAt,
		FinishedAt:       finishedAt,
		CheckedAnswers:   make([]models.CheckedAnswer, 0, len(answers)),
	}

	for _, tq := range sub.Questions {
		result.MaxPossibleScore += tq.MaxScore

		answer, ok := answers[tq.Question.ID]
		if !ok {
			continue
		}
		checked, err := checkQuestion(tq, answer)
		if err != nil {
			return nil, err
		}
		result.TotalScore += checked.Score
		if checked.CheckDetails.ManualCheckRequired {
			result.ManualCheckRequired = true
		}
		result.CheckedAnswers = append(result.CheckedAnswers, checked)
	}

	result.Percentage = percentage(result.TotalScore, result.MaxPossibleScore)

	if result.ManualCheckRequired {
		result.Message = MessagePendingReview
		return result, nil
	}
	applyGrade(result, sub.GradeOptions)
	return result, nil
}

func answerWindow(answers []models.SubmittedAnswer) (start, end time.Time) {
	start, end = answers[0].TimeStart, answers[0].TimeEnd
	for _, a := range answers[1:] {
		if a.TimeStart.Before(start) {
			start = a.TimeStart
		}
		if a.TimeEnd.After(end) {
			end = a.TimeEnd
		}
	}
	return start, end
}

func checkQuestion(tq TestQuestion, answer models.SubmittedAnswer) (models.CheckedAnswer, error) {
	q := tq.Question
	checked := models.CheckedAnswer{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		QuestionType: q.Type,
		MaxScore:     tq.MaxScore,
		TimeSeconds:  answer.ElapsedSeconds(),
	}

	if q.TimeLimit > 0 && checked.TimeSeconds > q.TimeLimit {
		checked.TimeExceeded = true
		checked.CheckDetails = models.CheckDetails{
			UserAnswer: answer.Value.Echo(),
			Message:    fmt.Sprintf("time limit of %ds exceeded: answered in %ds", q.TimeLimit, checked.TimeSeconds),
		}
		return checked, nil
	}

	outcome, err := CheckAnswer(q, answer.Value)
	if err != nil {
		return models.CheckedAnswer{}, err
	}
	checked.Score = outcome.Score
	checked.IsCorrect = outcome.IsCorrect
	checked.CheckDetails = outcome.Details
	return checked, nil
}

// percentage is rounded to one decimal place and kept within [0, 100].
func percentage(total, max int) float64 {
	if max <= 0 {
		return 0
	}
	p := float64(total) / float64(max) * 100
	p = math.Max(0, math.Min(100, p))
	return math.Round(p*10) / 10
}

func applyGrade(result *models.AggregateResult, opts *models.GradeOptions) {
	var passed bool

	var band models.ScaleBand
	ok := false
	if opts != nil {
		value := result.Percentage
		if opts.EffectiveScaleType() == models.ScalePoints {
			value = float64(result.TotalScore)
		}
		band, ok = ResolveGrade(value, opts.Scale)
	}
	if ok {
		passed = band.Pass
		if band.Grade != "" {
			grade := band.Grade
			result.Grade = &grade
		}
		if band.Color != "" {
			color := band.Color
			result.Color = &color
		}
	} else {
		passed = result.Percentage >= DefaultPassPercentage
	}

	result.IsPassed = &passed
	if passed {
		result.Message = MessagePassed
	} else {
		result.Message = MessageFailed
	}
}
