package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jjudge-oj/glossary/internal/mq"
	"github.com/jjudge-oj/glossary/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierPublishesEvent(t *testing.T) {
	publisher := &recordingPublisher{}
	notifier := NewNotifier(publisher, "glossary.events", nil)
	notifier.now = fixedNow

	notifier.Notify(context.Background(), types.EventTermDeleted, "t-1", "u-1")

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, "glossary.events", event.channel)
	assert.Equal(t, "term.deleted", event.attrs["type"])
	assert.Equal(t, "t-1", event.attrs[mq.AttrOrderingKey])

	var decoded types.GlossaryEvent
	require.NoError(t, json.Unmarshal(event.data, &decoded))
	assert.Equal(t, types.GlossaryEvent{
		Type:       types.EventTermDeleted,
		ResourceID: "t-1",
		ActorID:    "u-1",
		OccurredAt: fixedNow(),
	}, decoded)
}

func TestNilNotifierIsNoop(t *testing.T) {
	var notifier *Notifier
	notifier.Notify(context.Background(), types.EventTermCreated, "t-1", "")

	NewNotifier(nil, "glossary.events", nil).Notify(context.Background(), types.EventTermCreated, "t-1", "")
}
