// Package grading turns a learner's submitted answers into a scored, graded result.
// Everything in it is pure: no I/O, no shared state, safe for concurrent use.
package grading

import (
	"fmt"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
)

// CheckOutcome is the verdict on a single answer.
type CheckOutcome struct {
	Score     int
	IsCorrect bool
	Details   models.CheckDetails
}

type checkFunc func(q models.QuestionDefinition, value models.AnswerValue) CheckOutcome

// checkers holds exactly one handler per known question type.
var checkers = map[models.QuestionType]checkFunc{
	models.SingleChoice:   checkSingleChoice,
	models.MultipleChoice: checkMultipleChoice,
	models.TrueFalse:      checkTrueFalse,
	models.ShortAnswer:    acceptFreeText,
	models.Survey:         acceptFreeText,
	models.Descriptive:    acceptFreeText,
	models.Essay:          checkManual,
	models.File:           checkManual,
	models.Voice:          checkManual,
}

// CheckAnswer judges one answer against its question. The only error is an
// unrecognized question type; malformed data is reported in the details instead.
func CheckAnswer(q models.QuestionDefinition, value models.AnswerValue) (CheckOutcome, error) {
	check, ok := checkers[q.Type]
	if !ok {
		return CheckOutcome{}, fmt.Errorf("%w %q (question %d)", ErrUnknownQuestionType, q.Type, q.ID)
	}
	if q.SpecError != "" {
		return failed(q, models.CheckDetails{UserAnswer: value.Echo()}, q.SpecError), nil
	}
	return check(q, value), nil
}

func scored(q models.QuestionDefinition, correct bool, details models.CheckDetails) CheckOutcome {
	score := q.Answer.Settings.IncorrectPoints()
	if correct {
		score = q.Answer.Settings.CorrectPoints()
	}
	return CheckOutcome{Score: score, IsCorrect: correct, Details: details}
}

func failed(q models.QuestionDefinition, details models.CheckDetails, reason string) CheckOutcome {
	details.Error = reason
	return scored(q, false, details)
}

func checkSingleChoice(q models.QuestionDefinition, value models.AnswerValue) CheckOutcome {
	details := models.CheckDetails{UserAnswer: value.Echo()}

	if len(q.Answer.CorrectAnswer) == 0 || foldText(q.Answer.CorrectAnswer[0]) == "" {
		return failed(q, details, "question has no correct answer")
	}
	expected := q.Answer.CorrectAnswer[0]
	details.CorrectAnswer = &expected

	submitted, ok := value.Scalar()
	if !ok {
		return failed(q, details, "answer is missing or is not a single value")
	}
	return scored(q, foldText(submitted) == foldText(expected), details)
}

// checkMultipleChoice gives credit only for the exact set of correct options.
func checkMultipleChoice(q models.QuestionDefinition, value models.AnswerValue) CheckOutcome {
	details := models.CheckDetails{UserAnswer: value.Echo()}

	correct := optionSet(q.Answer.CorrectAnswer)
	if len(correct) == 0 {
		return failed(q, details, "question has no correct answers")
	}
	details.CorrectAnswers = append([]string(nil), q.Answer.CorrectAnswer...)

	submitted, ok := value.List()
	if !ok {
		return failed(q, details, "answer is missing or is not a list of options")
	}
	return scored(q, setsEqual(correct, optionSet(submitted)), details)
}

func checkTrueFalse(q models.QuestionDefinition, value models.AnswerValue) CheckOutcome {
	details := models.CheckDetails{UserAnswer: value.Echo()}

	if len(q.Answer.CorrectAnswer) == 0 {
		return failed(q, details, "question has no correct answer")
	}
	expected := q.Answer.CorrectAnswer[0]
	details.CorrectAnswer = &expected

	submitted, ok := value.Scalar()
	if !ok {
		return failed(q, details, "answer is missing or is not a single value")
	}
	return scored(q, isTruthy(submitted) == isTruthy(expected), details)
}

// acceptFreeText collects a response without judging it.
func acceptFreeText(q models.QuestionDefinition, value models.AnswerValue) CheckOutcome {
	return CheckOutcome{
		Score:     q.Answer.Settings.CorrectPoints(),
		IsCorrect: true,
		Details:   models.CheckDetails{UserAnswer: value.Echo()},
	}
}

// checkManual honors a verdict supplied by a grader and otherwise defers to one.
func checkManual(q models.QuestionDefinition, value models.AnswerValue) CheckOutcome {
	if verdict, ok := value.Verdict(); ok {
		echo, _ := value.Echo().(map[string]any)
		delete(echo, models.FieldManualCheckRequired)
		return scored(q, verdict, models.CheckDetails{UserAnswer: echo})
	}
	return CheckOutcome{
		Score:     0,
		IsCorrect: false,
		Details: models.CheckDetails{
			UserAnswer:          value.Echo(),
			ManualCheckRequired: true,
		},
	}
}
