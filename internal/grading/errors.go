package grading

import (
	"errors"
	"fmt"
)

// ErrInvalidSubmission is the single error kind the engine reports. Every other
// engine error wraps it and differs only by message.
var ErrInvalidSubmission = errors.New("invalid submission")

var (
	ErrNoQuestions           = fmt.Errorf("%w: test has no questions", ErrInvalidSubmission)
	ErrNoAnswers             = fmt.Errorf("%w: submission has no answers", ErrInvalidSubmission)
	ErrMissingAnswerTime     = fmt.Errorf("%w: answer is missing its start or end time", ErrInvalidSubmission)
	ErrTestTimeLimitExceeded = fmt.Errorf("%w: test time limit exceeded", ErrInvalidSubmission)
	ErrUnknownQuestionType   = fmt.Errorf("%w: unknown question type", ErrInvalidSubmission)
)

// TimeLimitError carries the figures behind ErrTestTimeLimitExceeded.
type TimeLimitError struct {
	LimitSeconds   int
	ElapsedSeconds int
}

func (e *TimeLimitError) Error() string {
	return fmt.Sprintf("%s: %ds elapsed, limit is %ds", ErrTestTimeLimitExceeded, e.ElapsedSeconds, e.LimitSeconds)
}

func (e *TimeLimitError) Unwrap() error {
	return ErrTestTimeLimitExceeded
}
