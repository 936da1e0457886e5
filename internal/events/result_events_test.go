package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestNewResultEvent(t *testing.T) {
	t.Run("graded result", func(t *testing.T) {
		grade := "5"
		result := &models.Result{ID: 10, TestID: 3, UserID: "u-1", Score: 8, MaxScore: 10, Percentage: 80, Passed: boolPtr(true), Grade: &grade}
		prev := uint(9)

		event := NewResultEvent(result, nil, &prev)

		assert.Equal(t, EventResultGraded, event.Type)
		assert.Equal(t, "test-3", event.Key)
		_, err := uuid.Parse(event.ID)
		assert.NoError(t, err)

		data, ok := event.Data.(ResultGradedEvent)
		require.True(t, ok)
		assert.True(t, data.Passed)
		assert.Equal(t, "5", *data.Grade)
		assert.Equal(t, uint(9), *data.Supersedes)
	})

	t.Run("pending result", func(t *testing.T) {
		result := &models.Result{ID: 11, TestID: 3, UserID: "u-1", ManualCheckRequired: true}
		checked := []models.CheckedAnswer{
			{QuestionID: 1},
			{QuestionID: 2, CheckDetails: models.CheckDetails{ManualCheckRequired: true}},
		}

		event := NewResultEvent(result, checked, nil)

		assert.Equal(t, EventManualReviewRequired, event.Type)
		data, ok := event.Data.(ManualReviewRequiredEvent)
		require.True(t, ok)
		assert.Equal(t, []uint{2}, data.QuestionIDs)
	})
}

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	event := NewResultEvent(&models.Result{ID: 1, TestID: 1, Passed: boolPtr(false)}, nil, nil)

	require.NoError(t, publisher.PublishEvent(context.Background(), event))
	require.Len(t, publisher.GetPublishedEvents(), 1)
	assert.Equal(t, event.ID, publisher.GetPublishedEvents()[0].ID)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())

	publisher.Err = errors.New("broker down")
	assert.Error(t, publisher.PublishEvent(context.Background(), event))
	assert.NoError(t, publisher.Close())
}
