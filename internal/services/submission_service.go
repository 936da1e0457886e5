package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/events"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/grading"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/metrics"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/repositories"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/validator"
)

type submissionService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	svcLogger *ServiceLogger
	validator *validator.Validator
}

func NewSubmissionService(repo repositories.Repository, publisher events.EventPublisher, m *metrics.Metrics, logger *slog.Logger, validator *validator.Validator) SubmissionService {
	return &submissionService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "grading", Component: "submission"}),
		validator: validator,
	}
}

// ===== SUBMIT =====

func (s *submissionService) Submit(ctx context.Context, testID uint, req *SubmitTestRequest, userID string) (resp *ResultResponse, err error) {
	op := s.svcLogger.WithOperation(ctx, "submit_test", userID)
	defer func() { op.LogResult(testID, "test", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	test, err := s.loadTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	sub, err := s.buildSubmission(ctx, test, req.Answers)
	if err != nil {
		return nil, err
	}

	aggregate, err := s.grade(sub)
	if err != nil {
		return nil, err
	}

	result, err := newResult(userID, testID, aggregate, req.Answers)
	if err != nil {
		return nil, err
	}

	if err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Result().Create(ctx, tx, result)
	}); err != nil {
		return nil, fmt.Errorf("failed to store result: %w", err)
	}

	s.publish(ctx, events.NewResultEvent(result, aggregate.CheckedAnswers, nil))
	s.svcLogger.LogGradingOutcome(ctx, userID, testID, result.ID, aggregate)

	return toResultResponse(result, aggregate.CheckedAnswers), nil
}

// ===== REGRADE =====

func (s *submissionService) Regrade(ctx context.Context, resultID uint, req *RegradeRequest, graderID string) (resp *ResultResponse, err error) {
	op := s.svcLogger.WithOperation(ctx, "regrade_result", graderID)
	defer func() { op.LogResult(resultID, "result", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	previous, err := s.repo.Result().GetByID(ctx, nil, resultID)
	if err != nil {
		return nil, notFoundAs(err, ErrResultNotFound)
	}
	if previous.IsSuperseded() {
		return nil, ErrResultSuperseded
	}
	if !previous.ManualCheckRequired {
		return nil, ErrResultNotPending
	}

	answers, err := previous.DecodeSubmittedAnswers()
	if err != nil {
		return nil, err
	}

	test, err := s.loadTest(ctx, previous.TestID)
	if err != nil {
		return nil, err
	}
	if errs := applyVerdicts(test, answers, req.Verdicts); len(errs) > 0 {
		return nil, errs
	}

	sub, err := s.buildSubmission(ctx, test, answers)
	if err != nil {
		return nil, err
	}
	aggregate, err := s.grade(sub)
	if err != nil {
		return nil, err
	}

	result, err := newResult(previous.UserID, previous.TestID, aggregate, answers)
	if err != nil {
		return nil, err
	}
	result.GradedBy = &graderID

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Result().Create(ctx, tx, result); err != nil {
			return err
		}
		if err := s.repo.Result().Supersede(ctx, tx, previous.ID, result.ID); err != nil {
			return err
		}
		entry, err := regradeAudit(ctx, previous, result, req.Verdicts, graderID)
		if err != nil {
			return err
		}
		return s.repo.Audit().Create(ctx, tx, entry)
	})
	if errors.Is(err, repositories.ErrStaleWrite) {
		return nil, ErrResultSuperseded
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store regraded result: %w", err)
	}

	op.LogAudit(AuditEventUpdate, result.ID, "result",
		map[string]interface{}{"result_id": previous.ID, "manual_check_required": true},
		map[string]interface{}{"result_id": result.ID, "manual_check_required": result.ManualCheckRequired, "percentage": result.Percentage},
	)
	s.publish(ctx, events.NewResultEvent(result, aggregate.CheckedAnswers, &previous.ID))
	s.svcLogger.LogGradingOutcome(ctx, result.UserID, result.TestID, result.ID, aggregate)

	return toResultResponse(result, aggregate.CheckedAnswers), nil
}

func regradeAudit(ctx context.Context, previous, regraded *models.Result, verdicts []ManualVerdict, graderID string) (*models.AuditLog, error) {
	entry, err := models.NewAuditLog(models.AuditResultRegraded, graderID, "result", previous.ID,
		fmt.Sprintf("Result %d regraded as result %d", previous.ID, regraded.ID),
		models.AuditChange{
			Before: map[string]interface{}{"result_id": previous.ID, "score": previous.Score, "manual_check_required": true},
			After: map[string]interface{}{
				"result_id":             regraded.ID,
				"score":                 regraded.Score,
				"percentage":            regraded.Percentage,
				"manual_check_required": regraded.ManualCheckRequired,
				"verdicts":              verdicts,
			},
		})
	if err != nil {
		return nil, err
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		entry.RequestID = &requestID
	}
	return entry, nil
}

// applyVerdicts writes each verdict into every stored answer of its question.
func applyVerdicts(test *models.Test, answers []models.SubmittedAnswer, verdicts []ManualVerdict) ValidationErrors {
	types := make(map[uint]models.QuestionType, len(test.Questions))
	for _, tq := range test.Questions {
		types[tq.QuestionID] = tq.Question.Type
	}

	var errs ValidationErrors
	for i, v := range verdicts {
		field := fmt.Sprintf("verdicts[%d].question_id", i)

		qType, ok := types[v.QuestionID]
		if !ok {
			errs = append(errs, *NewValidationError(field, "question is not part of the test", v.QuestionID))
			continue
		}
		if !qType.RequiresManualCheck() {
			errs = append(errs, *NewValidationError(field, ErrVerdictNotNeeded.Error(), v.QuestionID))
			continue
		}

		applied := false
		for j := range answers {
			if answers[j].QuestionID == v.QuestionID {
				answers[j].Value = answers[j].Value.WithVerdict(*v.IsCorrect)
				applied = true
			}
		}
		if !applied {
			errs = append(errs, *NewValidationError(field, "question was not answered", v.QuestionID))
		}
	}
	return errs
}

// ===== QUERIES =====

func (s *submissionService) GetResult(ctx context.Context, resultID uint) (*ResultResponse, error) {
	result, err := s.repo.Result().GetByID(ctx, nil, resultID)
	if err != nil {
		return nil, notFoundAs(err, ErrResultNotFound)
	}
	checked, err := result.DecodeCheckedAnswers()
	if err != nil {
		return nil, err
	}
	return toResultResponse(result, checked), nil
}

func (s *submissionService) ListResults(ctx context.Context, testID uint, filters repositories.ResultFilters) (*ResultListResponse, error) {
	if _, err := s.repo.Test().GetByID(ctx, nil, testID); err != nil {
		return nil, notFoundAs(err, ErrTestNotFound)
	}

	results, total, err := s.repo.Result().ListByTest(ctx, nil, testID, filters)
	if err != nil {
		return nil, err
	}

	resp := &ResultListResponse{
		Results: make([]*ResultResponse, 0, len(results)),
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}
	for _, r := range results {
		checked, err := r.DecodeCheckedAnswers()
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, toResultResponse(r, checked))
	}
	return resp, nil
}

// ===== HELPERS =====

func (s *submissionService) loadTest(ctx context.Context, testID uint) (*models.Test, error) {
	test, err := s.repo.Test().GetWithQuestions(ctx, nil, testID)
	if err != nil {
		return nil, notFoundAs(err, ErrTestNotFound)
	}
	return test, nil
}

// buildSubmission turns a stored test into the engine's read-only snapshot.
func (s *submissionService) buildSubmission(ctx context.Context, test *models.Test, answers []models.SubmittedAnswer) (grading.Submission, error) {
	sub := grading.Submission{
		Questions: make([]grading.TestQuestion, 0, len(test.Questions)),
		Answers:   answers,
		TimeLimit: test.TimeLimit,
	}

	for _, tq := range test.Questions {
		def, err := tq.Question.ToDefinition()
		if err != nil {
			// scored incorrect with the reason in its details
			s.logger.WarnContext(ctx, "Question answer spec is malformed", "test_id", test.ID, "question_id", tq.Question.ID, "error", err)
			s.repo.Test().InvalidateCache(ctx, test.ID)
		}
		sub.Questions = append(sub.Questions, grading.TestQuestion{
			Question: def,
			MaxScore: tq.MaxScore,
			Required: tq.Required,
		})
	}

	opts, err := test.DecodeGradeOptions()
	if err != nil {
		// drop the snapshot so a corrected test is picked up on the next submission
		s.repo.Test().InvalidateCache(ctx, test.ID)
		return sub, fmt.Errorf("%w: %w", ErrTestConfigInvalid, err)
	}
	if errs := s.validator.ValidateBusiness(opts); len(errs) > 0 {
		// graded anyway, a malformed scale degrades to first match or lowest band
		s.logger.WarnContext(ctx, "Test grade scale is malformed", "test_id", test.ID, "error", errs.Error())
	}
	sub.GradeOptions = opts

	return sub, nil
}

func (s *submissionService) grade(sub grading.Submission) (*models.AggregateResult, error) {
	start := time.Now()
	aggregate, err := grading.Aggregate(sub)
	if err != nil {
		s.metrics.ObserveRejected()
		return nil, badRequest(err)
	}
	s.metrics.ObserveGrading(aggregate, time.Since(start))
	return aggregate, nil
}

// publish never fails the request; the result is already stored.
func (s *submissionService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish result event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}

func newResult(userID string, testID uint, aggregate *models.AggregateResult, answers []models.SubmittedAnswer) (*models.Result, error) {
	checked, err := json.Marshal(aggregate.CheckedAnswers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode checked answers: %w", err)
	}
	submitted, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submitted answers: %w", err)
	}

	return &models.Result{
		UserID:              userID,
		TestID:              testID,
		Score:               aggregate.TotalScore,
		MaxScore:            aggregate.MaxPossibleScore,
		Percentage:          aggregate.Percentage,
		TimeSeconds:         aggregate.TotalTimeSeconds,
		Passed:              aggregate.IsPassed,
		Grade:               aggregate.Grade,
		Color:               aggregate.Color,
		Message:             aggregate.Message,
		ManualCheckRequired: aggregate.ManualCheckRequired,
		CheckedAnswers:      checked,
		SubmittedAnswers:    submitted,
		StartedAt:           aggregate.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:          aggregate.FinishedAt.UTC().Format(time.RFC3339),
	}, nil
}

func toResultResponse(r *models.Result, checked []models.CheckedAnswer) *ResultResponse {
	if checked == nil {
		checked = []models.CheckedAnswer{}
	}
	return &ResultResponse{
		ID:                  r.ID,
		UserID:              r.UserID,
		TestID:              r.TestID,
		Score:               r.Score,
		MaxScore:            r.MaxScore,
		Percentage:          r.Percentage,
		TimeSeconds:         r.TimeSeconds,
		Passed:              r.Passed,
		Grade:               r.Grade,
		Color:               r.Color,
		Message:             r.Message,
		ManualCheckRequired: r.ManualCheckRequired,
		CheckedAnswers:      checked,
		StartedAt:           r.StartedAt,
		FinishedAt:          r.FinishedAt,
		SupersededBy:        r.SupersededBy,
		GradedBy:            r.GradedBy,
		CreatedAt:           r.CreatedAt,
	}
}

func notFoundAs(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
