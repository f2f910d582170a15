package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-admin/internal/events"
)

// EventSink receives events for asynchronous delivery.
type EventSink interface {
	Enqueue(event events.Event) bool
}

// NotificationService writes the audit trail for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	sink       EventSink
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// SetSink forwards every handled event to sink. Call before RegisterHandlers.
func (n *NotificationService) SetSink(sink EventSink) {
	n.sink = sink
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.SubscribeAll(n.handle)
}

func (n *NotificationService) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("username", event.Username),
		zap.String("request_id", event.RequestID),
		zap.Any("payload", event.Payload),
	}
	if event.Type == events.EventSignInFailed {
		n.logger.Warn("audit", fields...)
	} else {
		n.logger.Info("audit", fields...)
	}

	if n.sink != nil {
		n.sink.Enqueue(event)
	}
	return nil
}
