package worker

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-admin/internal/config"
	"github.com/spec-kit/staff-admin/internal/service"
)

// StartNotificationWorker registers notification handlers and, when a webhook
// is configured, starts its delivery worker. The returned worker is nil when
// no webhook is configured.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, cfg config.NotificationConfig, logger *zap.Logger) *WebhookWorker {
	if notificationService == nil {
		return nil
	}

	var webhook *WebhookWorker
	if url := strings.TrimSpace(cfg.WebhookURL); url != "" {
		webhook = NewWebhookWorker(url, cfg.Timeout(), 2, logger)
		webhook.Start(ctx)
		notificationService.SetSink(webhook)
		logger.Info("audit webhook enabled", zap.String("url", url))
	}
	notificationService.RegisterHandlers()
	return webhook
}
