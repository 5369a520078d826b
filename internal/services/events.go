package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jjudge-oj/glossary/internal/mq"
	"github.com/jjudge-oj/glossary/types"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// EventPublisher is implemented by mq.MQ.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// Notifier publishes glossary change events. A nil Notifier, or one without
// a publisher, drops events.
type Notifier struct {
	publisher EventPublisher
	channel   string
	logger    *zap.Logger
	now       func() time.Time
}

func NewNotifier(publisher EventPublisher, channel string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		publisher: publisher,
		channel:   channel,
		logger:    logger,
		now:       time.Now,
	}
}

// Notify publishes one event. Failures are logged and never returned: the
// write that triggered the event has already been committed.
func (n *Notifier) Notify(ctx context.Context, eventType types.EventType, resourceID, actorID string) {
	if n == nil || n.publisher == nil {
		return
	}

	event := types.GlossaryEvent{
		Type:       eventType,
		ResourceID: resourceID,
		ActorID:    actorID,
		OccurredAt: n.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("encode glossary event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	attrs := map[string]string{
		"type":             string(eventType),
		mq.AttrContentType: "application/json",
		mq.AttrOrderingKey: resourceID,
	}
	id, err := n.publisher.Publish(ctx, n.channel, data, attrs)
	if err != nil {
		n.logger.Warn("publish glossary event",
			zap.String("type", string(eventType)),
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
		return
	}
	n.logger.Debug("published glossary event",
		zap.String("type", string(eventType)),
		zap.String("resource_id", resourceID),
		zap.String("message_id", id),
	)
}
