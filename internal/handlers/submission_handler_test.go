package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/errors"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/grading"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/metrics"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/repositories"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/services"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/utils"
)

// ===== MOCKS =====

type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Submit(ctx context.Context, testID uint, req *services.SubmitTestRequest, userID string) (*services.ResultResponse, error) {
	args := m.Called(ctx, testID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ResultResponse), args.Error(1)
}

func (m *MockSubmissionService) Regrade(ctx context.Context, resultID uint, req *services.RegradeRequest, graderID string) (*services.ResultResponse, error) {
	args := m.Called(ctx, resultID, req, graderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ResultResponse), args.Error(1)
}

func (m *MockSubmissionService) GetResult(ctx context.Context, resultID uint) (*services.ResultResponse, error) {
	args := m.Called(ctx, resultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ResultResponse), args.Error(1)
}

func (m *MockSubmissionService) ListResults(ctx context.Context, testID uint, filters repositories.ResultFilters) (*services.ResultListResponse, error) {
	args := m.Called(ctx, testID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ResultListResponse), args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportResultsToExcel(ctx context.Context, testID uint) ([]byte, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type stubVerifier struct {
	userID string
	err    error
}

func (s stubVerifier) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &casdoorsdk.Claims{User: casdoorsdk.User{Id: s.userID}}, nil
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

// ===== HELPERS =====

func newTestRouter(submissions *MockSubmissionService, exports *MockExportService, verifier TokenVerifier, health Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	NewHandlerManager(submissions, exports, verifier, metrics.New(prometheus.NewRegistry()), health, logger).SetupRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var asLearner = map[string]string{devUserIDHdr: "learner-1"}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ===== TESTS =====

func TestSubmitTest(t *testing.T) {
	submissions := &MockSubmissionService{}
	router := newTestRouter(submissions, &MockExportService{}, nil, nil)

	passed := true
	submissions.On("Submit", mock.Anything, uint(3), mock.AnythingOfType("*services.SubmitTestRequest"), "learner-1").
		Return(&services.ResultResponse{ID: 9, TestID: 3, UserID: "learner-1", Score: 1, MaxScore: 1, Percentage: 100, Passed: &passed}, nil)

	body := map[string]any{"answers": []map[string]any{{
		"question_id": 1,
		"value":       "Paris",
		"time_start":  "2025-05-20T09:00:00Z",
		"time_end":    "2025-05-20T09:00:30Z",
	}}}
	w := doRequest(router, http.MethodPost, "/api/v1/tests/3/submit", body, asLearner)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp services.ResultResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint(9), resp.ID)
	assert.Equal(t, 100.0, resp.Percentage)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	submissions.AssertExpectations(t)
}

func TestSubmitTest_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"engine rejects submission", fmt.Errorf("%w: %w", services.ErrBadRequest, grading.ErrNoAnswers), http.StatusBadRequest, "BAD_REQUEST"},
		{"time limit exceeded", &grading.TimeLimitError{LimitSeconds: 60, ElapsedSeconds: 90}, http.StatusBadRequest, "BAD_REQUEST"},
		{"validation", apperrors.ValidationErrors{{Field: "answers[0].question_id", Message: "is required"}}, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"missing test", services.ErrTestNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submissions := &MockSubmissionService{}
			router := newTestRouter(submissions, &MockExportService{}, nil, nil)
			submissions.On("Submit", mock.Anything, uint(3), mock.Anything, "learner-1").Return(nil, tt.err)

			w := doRequest(router, http.MethodPost, "/api/v1/tests/3/submit", map[string]any{"answers": []any{}}, asLearner)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestSubmitTest_RequestRejectedBeforeService(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		headers    map[string]string
		wantStatus int
	}{
		{"bad test id", "/api/v1/tests/abc/submit", `{"answers":[]}`, asLearner, http.StatusBadRequest},
		{"zero test id", "/api/v1/tests/0/submit", `{"answers":[]}`, asLearner, http.StatusBadRequest},
		{"malformed json", "/api/v1/tests/3/submit", `{"answers":`, asLearner, http.StatusBadRequest},
		{"anonymous caller", "/api/v1/tests/3/submit", `{"answers":[]}`, nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submissions := &MockSubmissionService{}
			router := newTestRouter(submissions, &MockExportService{}, nil, nil)

			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewBufferString(tt.body))
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			submissions.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRegradeResult(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"regraded", nil, http.StatusCreated},
		{"not pending", services.ErrResultNotPending, http.StatusConflict},
		{"already regraded", services.ErrResultSuperseded, http.StatusConflict},
		{"missing result", services.ErrResultNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submissions := &MockSubmissionService{}
			router := newTestRouter(submissions, &MockExportService{}, nil, nil)

			call := submissions.On("Regrade", mock.Anything, uint(5), mock.AnythingOfType("*services.RegradeRequest"), "grader-1")
			if tt.err != nil {
				call.Return(nil, tt.err)
			} else {
				call.Return(&services.ResultResponse{ID: 6}, nil)
			}

			body := map[string]any{"verdicts": []map[string]any{{"question_id": 2, "is_correct": true}}}
			w := doRequest(router, http.MethodPost, "/api/v1/results/5/regrade", body, map[string]string{devUserIDHdr: "grader-1"})

			assert.Equal(t, tt.wantStatus, w.Code)
			submissions.AssertExpectations(t)
		})
	}
}

func TestGetResult(t *testing.T) {
	submissions := &MockSubmissionService{}
	router := newTestRouter(submissions, &MockExportService{}, nil, nil)
	submissions.On("GetResult", mock.Anything, uint(4)).Return(&services.ResultResponse{ID: 4, ManualCheckRequired: true}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/results/4", nil, asLearner)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"manual_check_required":true`)
}

func TestListResults_Filters(t *testing.T) {
	submissions := &MockSubmissionService{}
	router := newTestRouter(submissions, &MockExportService{}, nil, nil)

	pending := true
	learner := "learner-7"
	want := repositories.ResultFilters{
		UserID:              &learner,
		ManualCheckRequired: &pending,
		IncludeSuperseded:   true,
		Limit:               10,
		Offset:              20,
		SortBy:              "percentage",
		SortOrder:           "desc",
	}
	submissions.On("ListResults", mock.Anything, uint(3), want).Return(&services.ResultListResponse{Total: 0, Limit: 10, Offset: 20}, nil)

	path := "/api/v1/tests/3/results?page=3&size=10&user_id=learner-7&manual_check_required=true&include_superseded=true&sort_by=percentage&sort_order=desc"
	w := doRequest(router, http.MethodGet, path, nil, asLearner)

	assert.Equal(t, http.StatusOK, w.Code)
	submissions.AssertExpectations(t)
}

func TestListResults_PageSize(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 20, 0},
		{"oversized page is capped", "?page=2&size=500", 100, 100},
		{"zero size uses default", "?page=3&size=0", 20, 40},
		{"negative page is first page", "?page=-1&size=10", 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submissions := &MockSubmissionService{}
			router := newTestRouter(submissions, &MockExportService{}, nil, nil)
			want := repositories.ResultFilters{Limit: tt.wantLimit, Offset: tt.wantOffset}
			submissions.On("ListResults", mock.Anything, uint(3), want).Return(&services.ResultListResponse{}, nil)

			w := doRequest(router, http.MethodGet, "/api/v1/tests/3/results"+tt.query, nil, asLearner)

			assert.Equal(t, http.StatusOK, w.Code)
			submissions.AssertExpectations(t)
		})
	}
}

func TestExportResults(t *testing.T) {
	exports := &MockExportService{}
	router := newTestRouter(&MockSubmissionService{}, exports, nil, nil)
	exports.On("ExportResultsToExcel", mock.Anything, uint(3)).Return([]byte("xlsx-bytes"), nil)

	w := doRequest(router, http.MethodGet, "/api/v1/tests/3/results/export", nil, asLearner)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "test_3_results.xlsx")
	assert.Equal(t, "xlsx-bytes", w.Body.String())
}

func TestAuthMiddleware_Casdoor(t *testing.T) {
	tests := []struct {
		name       string
		verifier   stubVerifier
		header     string
		wantStatus int
	}{
		{"valid token", stubVerifier{userID: "casdoor-user"}, "Bearer good-token", http.StatusOK},
		{"missing header", stubVerifier{userID: "casdoor-user"}, "", http.StatusUnauthorized},
		{"wrong scheme", stubVerifier{userID: "casdoor-user"}, "Basic abc", http.StatusUnauthorized},
		{"rejected token", stubVerifier{err: errors.New("token expired")}, "Bearer old-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submissions := &MockSubmissionService{}
			router := newTestRouter(submissions, &MockExportService{}, tt.verifier, nil)
			submissions.On("GetResult", mock.Anything, uint(1)).Return(&services.ResultResponse{ID: 1}, nil).Maybe()

			headers := map[string]string{devUserIDHdr: "spoofed"}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := doRequest(router, http.MethodGet, "/api/v1/results/1", nil, headers)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_SetsUserFromToken(t *testing.T) {
	submissions := &MockSubmissionService{}
	router := newTestRouter(submissions, &MockExportService{}, stubVerifier{userID: "casdoor-user"}, nil)
	submissions.On("Submit", mock.Anything, uint(3), mock.Anything, "casdoor-user").Return(&services.ResultResponse{ID: 1}, nil)

	headers := map[string]string{"Authorization": "Bearer token", devUserIDHdr: "spoofed"}
	w := doRequest(router, http.MethodPost, "/api/v1/tests/3/submit", map[string]any{"answers": []any{}}, headers)

	assert.Equal(t, http.StatusCreated, w.Code)
	submissions.AssertExpectations(t)
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		health     Pinger
		wantStatus int
	}{
		{"healthy", stubPinger{}, http.StatusOK},
		{"database down", stubPinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&MockSubmissionService{}, &MockExportService{}, nil, tt.health)
			w := doRequest(router, http.MethodGet, "/health", nil, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&MockSubmissionService{}, &MockExportService{}, nil, nil)
	doRequest(router, http.MethodGet, "/health", nil, nil)

	w := doRequest(router, http.MethodGet, "/metrics", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "grading_http_requests_total")
}

func TestRequestID_Propagated(t *testing.T) {
	router := newTestRouter(&MockSubmissionService{}, &MockExportService{}, nil, nil)
	w := doRequest(router, http.MethodGet, "/health", nil, map[string]string{requestIDHeader: "req-42"})
	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
}
