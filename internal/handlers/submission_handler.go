package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/repositories"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/services"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	exportService     services.ResultExportService
}

func NewSubmissionHandler(
	submissionService services.SubmissionService,
	exportService services.ResultExportService,
	logger utils.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		exportService:     exportService,
	}
}

// SubmitTest grades the caller's answers to a test
// @Summary Submit test
// @Tags results
// @Accept json
// @Produce json
// @Param id path uint true "Test ID"
// @Param submission body services.SubmitTestRequest true "Answers"
// @Success 201 {object} services.ResultResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id}/submit [post]
func (h *SubmissionHandler) SubmitTest(c *gin.Context) {
	testID := parseIDParam(c, "id")
	if testID == 0 {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting test", "test_id", testID)

	var req services.SubmitTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.submissionService.Submit(c.Request.Context(), testID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// RegradeResult applies manual verdicts to a result waiting for review
// @Summary Regrade result
// @Tags results
// @Accept json
// @Produce json
// @Param id path uint true "Result ID"
// @Param verdicts body services.RegradeRequest true "Manual verdicts"
// @Success 201 {object} services.ResultResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /results/{id}/regrade [post]
func (h *SubmissionHandler) RegradeResult(c *gin.Context) {
	resultID := parseIDParam(c, "id")
	if resultID == 0 {
		return
	}
	graderID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Regrading result", "result_id", resultID)

	var req services.RegradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.submissionService.Regrade(c.Request.Context(), resultID, &req, graderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetResult
// @Summary Get result
// @Tags results
// @Produce json
// @Param id path uint true "Result ID"
// @Success 200 {object} services.ResultResponse
// @Failure 404 {object} ErrorResponse
// @Router /results/{id} [get]
func (h *SubmissionHandler) GetResult(c *gin.Context) {
	resultID := parseIDParam(c, "id")
	if resultID == 0 {
		return
	}

	result, err := h.submissionService.GetResult(c.Request.Context(), resultID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListResults returns the results of a test, newest first by default
// @Summary List test results
// @Tags results
// @Produce json
// @Param id path uint true "Test ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param user_id query string false "Only this learner"
// @Param manual_check_required query bool false "Only pending or only graded results"
// @Param include_superseded query bool false "Include results replaced by a regrade"
// @Success 200 {object} services.ResultListResponse
// @Router /tests/{id}/results [get]
func (h *SubmissionHandler) ListResults(c *gin.Context) {
	testID := parseIDParam(c, "id")
	if testID == 0 {
		return
	}

	results, err := h.submissionService.ListResults(c.Request.Context(), testID, parseResultFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ExportResults downloads the results of a test as an Excel workbook
// @Summary Export test results
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Test ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id}/results/export [get]
func (h *SubmissionHandler) ExportResults(c *gin.Context) {
	testID := parseIDParam(c, "id")
	if testID == 0 {
		return
	}

	h.LogRequest(c, "Exporting results", "test_id", testID)

	data, err := h.exportService.ExportResultsToExcel(c.Request.Context(), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="test_%d_results.xlsx"`, testID))
	c.Data(http.StatusOK, xlsxContentType, data)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func parseResultFilters(c *gin.Context) repositories.ResultFilters {
	page := parseIntQuery(c, "page", 1)
	size := parseIntQuery(c, "size", defaultPageSize)
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	filters := repositories.ResultFilters{
		ManualCheckRequired: parseBoolQuery(c, "manual_check_required"),
		Limit:               size,
		Offset:              (page - 1) * size,
		SortBy:              c.Query("sort_by"),
		SortOrder:           c.Query("sort_order"),
	}
	if includeSuperseded := parseBoolQuery(c, "include_superseded"); includeSuperseded != nil {
		filters.IncludeSuperseded = *includeSuperseded
	}
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}
	return filters
}
