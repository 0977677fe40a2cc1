package services

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ecomkit/qualpay-connector/internal/application"
	"github.com/ecomkit/qualpay-connector/internal/infrastructure/qualpay"
)

// Events the connector subscribes to when it registers its own webhook.
var webhookEvents = []string{
	"transaction_status_update",
	"validate_url",
}

// WebhookService registers the notification endpoint with Qualpay and
// verifies inbound notifications against the shared secret.
type WebhookService struct {
	gateway  application.GatewayClient
	settings application.SettingsSource
	logger   *slog.Logger
}

func NewWebhookService(
	gateway application.GatewayClient,
	settings application.SettingsSource,
	logger *slog.Logger,
) *WebhookService {
	return &WebhookService{
		gateway:  gateway,
		settings: settings,
		logger:   logger,
	}
}

// EnsureWebhook returns the configured webhook if it still exists and is
// active, and registers a new one at notifyURL otherwise. The caller is
// responsible for storing the returned webhook id in the settings.
func (s *WebhookService) EnsureWebhook(ctx context.Context, notifyURL string) (*qualpay.Webhook, error) {
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, application.NewProcessingError(err)
	}
	creds := credentials(settings)

	if settings.WebhookID != "" {
		resp, err := s.gateway.GetWebhook(ctx, creds, settings.WebhookID)
		if err == nil && resp.Data.Status == "ACTIVE" {
			return &resp.Data, nil
		}
		s.logger.Warn("configured webhook is missing or inactive, registering a new one",
			"webhook_id", settings.WebhookID,
			"error", err,
		)
	}

	resp, err := s.gateway.CreateWebhook(ctx, creds, qualpay.CreateWebhookRequest{
		Label:     "ecomkit connector notifications",
		NotifyURL: notifyURL,
		Events:    webhookEvents,
		Status:    "ACTIVE",
	})
	if err != nil {
		if remoteErr, ok := qualpay.IsRemoteError(err); ok {
			return nil, application.NewDeclinedError(remoteErr.Code, remoteErr.Message)
		}
		return nil, application.NewProcessingError(err)
	}

	return &resp.Data, nil
}

// VerifyNotification authenticates raw webhook bytes against the current
// security key and returns the parsed event. The body and headers must be
// the unmodified values from the HTTP request.
func (s *WebhookService) VerifyNotification(ctx context.Context, body []byte, headers http.Header) (*qualpay.WebhookEvent, error) {
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, application.NewProcessingError(err)
	}

	signatures := headers.Values(qualpay.SignatureHeader)
	if err := qualpay.VerifySignature(body, signatures, settings.SecurityKey); err != nil {
		return nil, application.NewInvalidSignatureError(err)
	}

	event, err := qualpay.ParseEvent(body)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	return event, nil
}
