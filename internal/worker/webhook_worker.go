package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-admin/internal/events"
)

const defaultQueueSize = 128

// WebhookWorker delivers audit events to an HTTP endpoint off the request path.
type WebhookWorker struct {
	url     string
	client  *http.Client
	logger  *zap.Logger
	queue   chan events.Event
	workers int

	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// NewWebhookWorker builds a worker posting to url.
func NewWebhookWorker(url string, timeout time.Duration, workers int, logger *zap.Logger) *WebhookWorker {
	if workers <= 0 {
		workers = 1
	}
	return &WebhookWorker{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		queue:   make(chan events.Event, defaultQueueSize),
		workers: workers,
	}
}

// Start launches the delivery goroutines. They exit when ctx is done or Stop
// drains the queue.
func (w *WebhookWorker) Start(ctx context.Context) {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case event, ok := <-w.queue:
					if !ok {
						return
					}
					if err := w.deliver(ctx, event); err != nil {
						w.logger.Warn("webhook delivery failed",
							zap.String("event_id", event.ID),
							zap.String("event_type", string(event.Type)),
							zap.Error(err))
					}
				}
			}
		}()
	}
}

// Enqueue schedules event for delivery. It never blocks; a full queue or a
// stopped worker drops the event and reports false.
func (w *WebhookWorker) Enqueue(event events.Event) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		w.logger.Warn("webhook worker stopped, dropping event", zap.String("event_type", string(event.Type)))
		return false
	}
	select {
	case w.queue <- event:
		return true
	default:
		w.logger.Warn("webhook queue full, dropping event", zap.String("event_type", string(event.Type)))
		return false
	}
}

// Stop closes the queue and waits for in-flight deliveries.
func (w *WebhookWorker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *WebhookWorker) deliver(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if event.RequestID != "" {
		req.Header.Set("X-Request-ID", event.RequestID)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}
