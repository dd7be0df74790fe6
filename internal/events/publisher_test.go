package events

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVoiceEvent(t *testing.T) {
	event := NewVoiceEvent(EventAnswerSubmitted, AnswerSubmittedEvent{BlockInstanceID: 3, QuestionID: 7, UserID: "u1"})

	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)
	assert.Equal(t, EventAnswerSubmitted, event.Type)
	assert.Equal(t, "student-voice", event.Source)
	assert.False(t, event.Timestamp.IsZero())
}

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := NewMockEventPublisher(logger)
	ctx := context.Background()

	require.NoError(t, publisher.Publish(ctx, NewVoiceEvent(EventAnswerSubmitted, nil)))
	require.NoError(t, publisher.Publish(ctx, NewVoiceEvent(EventSurveyCompleted, nil)))
	require.NoError(t, publisher.Publish(ctx, NewVoiceEvent(EventAnswerSubmitted, nil)))

	assert.Len(t, publisher.GetPublishedEvents(), 3)
	assert.Len(t, publisher.EventsOfType(EventAnswerSubmitted), 2)
	assert.Len(t, publisher.EventsOfType(EventSurveyCompleted), 1)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())

	publisher.Err = errors.New("broker down")
	assert.Error(t, publisher.Publish(ctx, NewVoiceEvent(EventSurveyStarted, nil)))
	assert.Empty(t, publisher.GetPublishedEvents())
}
