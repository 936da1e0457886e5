package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/repositories"
)

const (
	resultsSheet   = "Results"
	exportPageSize = 100
)

var resultHeaders = []string{
	"Result ID", "User ID", "Score", "Max Score", "Percentage", "Grade",
	"Status", "Time Spent (seconds)", "Started At", "Finished At", "Graded By",
}

type resultExportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewResultExportService(repo repositories.Repository, logger *slog.Logger) ResultExportService {
	return &resultExportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportResultsToExcel writes the current (not superseded) results of a test, one row
// per result.
func (s *resultExportService) ExportResultsToExcel(ctx context.Context, testID uint) ([]byte, error) {
	test, err := s.repo.Test().GetByID(ctx, nil, testID)
	if err != nil {
		return nil, notFoundAs(err, ErrTestNotFound)
	}

	results, err := s.allResults(ctx, testID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	if err := setRow(f, 1, toCells(resultHeaders)); err != nil {
		return nil, err
	}
	for i, r := range results {
		if err := setRow(f, i+2, resultRow(r)); err != nil {
			return nil, err
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{Title: fmt.Sprintf("Results: %s", test.Title)}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.InfoContext(ctx, "Exported test results", "test_id", testID, "rows", len(results))
	return buf.Bytes(), nil
}

func (s *resultExportService) allResults(ctx context.Context, testID uint) ([]*models.Result, error) {
	var all []*models.Result
	filters := repositories.ResultFilters{Limit: exportPageSize, SortBy: "created_at", SortOrder: "asc"}
	for {
		page, total, err := s.repo.Result().ListByTest(ctx, nil, testID, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list results: %w", err)
		}
		all = append(all, page...)
		filters.Offset += len(page)
		if len(page) == 0 || int64(filters.Offset) >= total {
			return all, nil
		}
	}
}

func resultRow(r *models.Result) []interface{} {
	grade := ""
	if r.Grade != nil {
		grade = *r.Grade
	}
	gradedBy := ""
	if r.GradedBy != nil {
		gradedBy = *r.GradedBy
	}

	return []interface{}{
		r.ID,
		r.UserID,
		r.Score,
		r.MaxScore,
		r.Percentage,
		grade,
		resultStatus(r),
		r.TimeSeconds,
		r.StartedAt,
		r.FinishedAt,
		gradedBy,
	}
}

func resultStatus(r *models.Result) string {
	switch {
	case r.ManualCheckRequired:
		return "Pending review"
	case r.Passed != nil && *r.Passed:
		return "Pass"
	default:
		return "Fail"
	}
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
