package application

import (
	"context"

	"github.com/ecomkit/qualpay-connector/internal/config"
	"github.com/ecomkit/qualpay-connector/internal/infrastructure/qualpay"
)

// GatewayClient is the slice of the Qualpay client the orchestration layer
// uses. Credentials travel with every call; the client holds none.
type GatewayClient interface {
	GetCustomer(ctx context.Context, creds qualpay.Credentials, customerID string) (*qualpay.CustomerResponse, error)
	CreateCustomer(ctx context.Context, creds qualpay.Credentials, req qualpay.CreateCustomerRequest) (*qualpay.CustomerResponse, error)
	GetWebhook(ctx context.Context, creds qualpay.Credentials, webhookID string) (*qualpay.WebhookResponse, error)
	CreateWebhook(ctx context.Context, creds qualpay.Credentials, req qualpay.CreateWebhookRequest) (*qualpay.WebhookResponse, error)
	Authorize(ctx context.Context, creds qualpay.Credentials, req qualpay.AuthorizationRequest) (*qualpay.TransactionResponse, error)
	Sale(ctx context.Context, creds qualpay.Credentials, req qualpay.SaleRequest) (*qualpay.TransactionResponse, error)
	Capture(ctx context.Context, creds qualpay.Credentials, req qualpay.CaptureRequest) (*qualpay.TransactionResponse, error)
	Void(ctx context.Context, creds qualpay.Credentials, req qualpay.VoidRequest) (*qualpay.TransactionResponse, error)
	Refund(ctx context.Context, creds qualpay.Credentials, req qualpay.RefundRequest) (*qualpay.TransactionResponse, error)
}

// SettingsSource returns the current merchant settings. Implementations must
// not cache across calls; settings can change between two payments.
type SettingsSource interface {
	Settings(ctx context.Context) (config.Settings, error)
}

// CardTokenStore persists the vault card token the gateway returns when a
// customer saves a card, keyed by customer and store.
type CardTokenStore interface {
	Token(ctx context.Context, customerID, storeID string) (string, error)
	Save(ctx context.Context, customerID, storeID, cardID string) error
	Delete(ctx context.Context, customerID, storeID string) error
}
