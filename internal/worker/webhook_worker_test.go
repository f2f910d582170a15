package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-admin/internal/config"
	"github.com/spec-kit/staff-admin/internal/events"
	"github.com/spec-kit/staff-admin/internal/service"
)

func TestNotificationWorkerDeliversEvents(t *testing.T) {
	received := make(chan events.Event, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e events.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&e))
		received <- e
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, zap.NewNop())
	webhook := StartNotificationWorker(ctx, notifications, config.NotificationConfig{WebhookURL: srv.URL, TimeoutSeconds: 2}, zap.NewNop())
	require.NotNil(t, webhook)

	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventStaffCreated, "admin", events.StaffChangedPayload{MSCB: "CB001"})))

	select {
	case e := <-received:
		assert.Equal(t, events.EventStaffCreated, e.Type)
		assert.Equal(t, "admin", e.Username)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook not delivered")
	}
	webhook.Stop()
}

func TestNotificationWorkerWithoutWebhook(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, zap.NewNop())
	webhook := StartNotificationWorker(context.Background(), notifications, config.NotificationConfig{}, zap.NewNop())
	assert.Nil(t, webhook)
	assert.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(events.EventSignedIn, "admin", nil)))
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	w := NewWebhookWorker("http://127.0.0.1:1", time.Second, 1, zap.NewNop())
	for i := 0; i < defaultQueueSize; i++ {
		require.True(t, w.Enqueue(events.NewEvent(events.EventSignedIn, "admin", nil)))
	}
	assert.False(t, w.Enqueue(events.NewEvent(events.EventSignedIn, "admin", nil)))
}

func TestEnqueueAfterStopDropsEvent(t *testing.T) {
	w := NewWebhookWorker("http://127.0.0.1:1", time.Second, 1, zap.NewNop())
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	assert.NotPanics(t, func() {
		assert.False(t, w.Enqueue(events.NewEvent(events.EventStaffCreated, "admin", nil)))
	})
}
