package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/metrics"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/services"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/utils"
)

const requestIDHeader = "X-Request-ID"

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HandlerManager struct {
	submissionHandler *SubmissionHandler
	verifier          TokenVerifier
	metrics           *metrics.Metrics
	health            Pinger
	logger            utils.Logger
}

func NewHandlerManager(
	submissionService services.SubmissionService,
	exportService services.ResultExportService,
	verifier TokenVerifier,
	m *metrics.Metrics,
	health Pinger,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		submissionHandler: NewSubmissionHandler(submissionService, exportService, logger),
		verifier:          verifier,
		metrics:           m,
		health:            health,
		logger:            logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(
		RequestID(),
		utils.LoggerMiddleware(hm.logger),
		utils.ContextLogger(hm.logger),
		gin.Recovery(),
		hm.metrics.Middleware(),
	)

	router.GET("/health", hm.HealthCheck)
	router.GET("/metrics", hm.metrics.Handler())

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.verifier, hm.logger))
	{
		tests := v1.Group("/tests")
		{
			tests.POST("/:id/submit", hm.submissionHandler.SubmitTest)
			tests.GET("/:id/results", hm.submissionHandler.ListResults)
			tests.GET("/:id/results/export", hm.submissionHandler.ExportResults)
		}

		results := v1.Group("/results")
		{
			results.GET("/:id", hm.submissionHandler.GetResult)
			results.POST("/:id/regrade", hm.submissionHandler.RegradeResult)
		}
	}
}

func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if hm.health != nil {
		if err := hm.health.Ping(ctx); err != nil {
			hm.logger.Warn("Health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "grading-service",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "grading-service",
	})
}

// RequestID reuses the caller's X-Request-ID or generates one, and exposes it to the
// gin context, the request context and the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(utils.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), services.RequestIDKey, requestID))
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}
