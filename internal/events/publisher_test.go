package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewQuestionsChangedEvent(t *testing.T) {
	event := NewQuestionsChangedEvent(EventQuestionsAdded, models.CollectionDraft, []string{"a", "b"})

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventQuestionsAdded, event.Type)
	assert.Equal(t, "survey-service", event.Source)

	data, ok := event.Data.(QuestionsChangedEvent)
	require.True(t, ok)
	assert.Equal(t, 2, data.Count)
	assert.Equal(t, models.CollectionDraft, data.Collection)
}

func TestKafkaEventPublisher_PublishSurveyEvent(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NewSlogLogger(testLogger()))
	defer pubSub.Close()

	publisher := NewEventPublisher(pubSub, "survey-events", testLogger())

	event := NewTallyRecordedEvent([]string{"q1"}, 1, 0, 2, 1)
	require.NoError(t, publisher.PublishSurveyEvent(context.Background(), event))

	messages, err := pubSub.Subscribe(context.Background(), "survey-events")
	require.NoError(t, err)

	select {
	case msg := <-messages:
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, string(EventTallyRecorded), msg.Metadata.Get("event_type"))

		var decoded SurveyEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, EventTallyRecorded, decoded.Type)
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("expected a published message")
	}
}

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(testLogger())

	require.NoError(t, publisher.PublishSurveyEvent(context.Background(),
		NewQuestionsChangedEvent(EventQuestionsDeleted, models.CollectionFinal, []string{"x"})))

	events := publisher.GetPublishedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventQuestionsDeleted, events[0].Type)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())
}
