package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ecomkit/qualpay-connector/internal/application"
	"github.com/ecomkit/qualpay-connector/internal/application/services"
	"github.com/ecomkit/qualpay-connector/internal/config"
	"github.com/ecomkit/qualpay-connector/internal/domain"
	"github.com/ecomkit/qualpay-connector/internal/infrastructure/qualpay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	calls []string

	authorizeFn      func(qualpay.AuthorizationRequest) (*qualpay.TransactionResponse, error)
	saleFn           func(qualpay.SaleRequest) (*qualpay.TransactionResponse, error)
	captureFn        func(qualpay.CaptureRequest) (*qualpay.TransactionResponse, error)
	voidFn           func(qualpay.VoidRequest) (*qualpay.TransactionResponse, error)
	refundFn         func(qualpay.RefundRequest) (*qualpay.TransactionResponse, error)
	getCustomerFn    func(string) (*qualpay.CustomerResponse, error)
	createCustomerFn func(qualpay.CreateCustomerRequest) (*qualpay.CustomerResponse, error)
	getWebhookFn     func(string) (*qualpay.WebhookResponse, error)
	createWebhookFn  func(qualpay.CreateWebhookRequest) (*qualpay.WebhookResponse, error)
}

func approvedTransaction() *qualpay.TransactionResponse {
	return &qualpay.TransactionResponse{
		GatewayResponse: qualpay.GatewayResponse{Rcode: qualpay.GatewayCodeApproved, Rmsg: "Approved"},
		TransactionID:   "pg-123",
		AuthCode:        "T9999",
		AvsResult:       "Y",
	}
}

func (f *fakeGateway) Authorize(ctx context.Context, creds qualpay.Credentials, req qualpay.AuthorizationRequest) (*qualpay.TransactionResponse, error) {
	f.calls = append(f.calls, "authorize")
	if f.authorizeFn != nil {
		return f.authorizeFn(req)
	}
	return approvedTransaction(), nil
}

func (f *fakeGateway) Sale(ctx context.Context, creds qualpay.Credentials, req qualpay.SaleRequest) (*qualpay.TransactionResponse, error) {
	f.calls = append(f.calls, "sale")
	if f.saleFn != nil {
		return f.saleFn(req)
	}
	return approvedTransaction(), nil
}

func (f *fakeGateway) Capture(ctx context.Context, creds qualpay.Credentials, req qualpay.CaptureRequest) (*qualpay.TransactionResponse, error) {
	f.calls = append(f.calls, "capture")
	if f.captureFn != nil {
		return f.captureFn(req)
	}
	return approvedTransaction(), nil
}

func (f *fakeGateway) Void(ctx context.Context, creds qualpay.Credentials, req qualpay.VoidRequest) (*qualpay.TransactionResponse, error) {
	f.calls = append(f.calls, "void")
	if f.voidFn != nil {
		return f.voidFn(req)
	}
	return approvedTransaction(), nil
}

func (f *fakeGateway) Refund(ctx context.Context, creds qualpay.Credentials, req qualpay.RefundRequest) (*qualpay.TransactionResponse, error) {
	f.calls = append(f.calls, "refund")
	if f.refundFn != nil {
		return f.refundFn(req)
	}
	return approvedTransaction(), nil
}

func (f *fakeGateway) GetCustomer(ctx context.Context, creds qualpay.Credentials, customerID string) (*qualpay.CustomerResponse, error) {
	f.calls = append(f.calls, "get_customer")
	if f.getCustomerFn != nil {
		return f.getCustomerFn(customerID)
	}
	return &qualpay.CustomerResponse{}, nil
}

func (f *fakeGateway) CreateCustomer(ctx context.Context, creds qualpay.Credentials, req qualpay.CreateCustomerRequest) (*qualpay.CustomerResponse, error) {
	f.calls = append(f.calls, "create_customer")
	if f.createCustomerFn != nil {
		return f.createCustomerFn(req)
	}
	return &qualpay.CustomerResponse{}, nil
}

func (f *fakeGateway) GetWebhook(ctx context.Context, creds qualpay.Credentials, webhookID string) (*qualpay.WebhookResponse, error) {
	f.calls = append(f.calls, "get_webhook")
	if f.getWebhookFn != nil {
		return f.getWebhookFn(webhookID)
	}
	return &qualpay.WebhookResponse{}, nil
}

func (f *fakeGateway) CreateWebhook(ctx context.Context, creds qualpay.Credentials, req qualpay.CreateWebhookRequest) (*qualpay.WebhookResponse, error) {
	f.calls = append(f.calls, "create_webhook")
	if f.createWebhookFn != nil {
		return f.createWebhookFn(req)
	}
	return &qualpay.WebhookResponse{}, nil
}

type fakeSettings struct {
	settings config.Settings
	err      error
}

func (f fakeSettings) Settings(ctx context.Context) (config.Settings, error) {
	return f.settings, f.err
}

type fakeTokens struct {
	saved map[string]string
	err   error
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{saved: map[string]string{}}
}

func (f *fakeTokens) Token(ctx context.Context, customerID, storeID string) (string, error) {
	return f.saved[customerID+"/"+storeID], f.err
}

func (f *fakeTokens) Save(ctx context.Context, customerID, storeID, cardID string) error {
	if f.err != nil {
		return f.err
	}
	f.saved[customerID+"/"+storeID] = cardID
	return nil
}

func (f *fakeTokens) Delete(ctx context.Context, customerID, storeID string) error {
	delete(f.saved, customerID+"/"+storeID)
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings(tranType string) fakeSettings {
	return fakeSettings{settings: config.Settings{
		MerchantID:      "212000000001",
		SecurityKey:     "sek_test_key",
		UseSandbox:      true,
		TransactionType: tranType,
		ConnTimeout:     5 * time.Second,
	}}
}

func newService(gateway *fakeGateway, settings fakeSettings, tokens *fakeTokens) *services.PaymentService {
	return services.NewPaymentService(gateway, settings, tokens, discardLogger())
}

func testOrder() domain.Order {
	return domain.Order{
		ID:         "order-1",
		CustomerID: "cust-1",
		StoreID:    "store-1",
		Total:      19.99,
		CreatedAt:  time.Now().Add(-time.Minute),
	}
}

func testCommand() services.ProcessPaymentCommand {
	return services.ProcessPaymentCommand{
		Order: testOrder(),
		Checkout: services.CheckoutSummary{
			Lines:      []services.CartLine{{ProductName: "Mug", ProductCode: "MUG-01", Quantity: 1, UnitPrice: 17.99}},
			Tax:        2.00,
			OrderTotal: 19.99,
		},
		Card: services.CardDetails{Number: "4111111111111111", ExpDate: "1228", CVV2: "123"},
	}
}

func TestProcessPaymentSale(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newService(gateway, testSettings("Sale"), newFakeTokens())

	result, err := svc.ProcessPayment(context.Background(), testCommand())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, result.Status)
	assert.Equal(t, "pg-123", result.TransactionID)
	assert.Equal(t, "T9999", result.AuthorizationCode)
	assert.Equal(t, "Y", result.AvsResult)
	assert.Equal(t, []string{"sale"}, gateway.calls)
}

func TestProcessPaymentAuthorization(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newService(gateway, testSettings("Authorization"), newFakeTokens())

	result, err := svc.ProcessPayment(context.Background(), testCommand())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusAuthorized, result.Status)
	assert.Equal(t, []string{"authorize"}, gateway.calls)
}

func TestProcessPaymentRejectsUnknownTransactionType(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newService(gateway, testSettings("Recurring"), newFakeTokens())

	_, err := svc.ProcessPayment(context.Background(), testCommand())

	require.Error(t, err)
	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeInvalidInput, svcErr.Code)
	assert.Empty(t, gateway.calls, "no call may be attempted for an unknown transaction type")
}

func TestProcessPaymentDeclineSurfacesGatewayMessage(t *testing.T) {
	gateway := &fakeGateway{
		saleFn: func(req qualpay.SaleRequest) (*qualpay.TransactionResponse, error) {
			resp := &qualpay.TransactionResponse{
				GatewayResponse: qualpay.GatewayResponse{Rcode: "105", Rmsg: "Declined by issuer"},
			}
			return resp, &qualpay.RemoteError{Family: "payment gateway", Code: "105", Message: "Declined by issuer"}
		},
	}
	svc := newService(gateway, testSettings("Sale"), newFakeTokens())

	_, err := svc.ProcessPayment(context.Background(), testCommand())

	require.Error(t, err)
	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeDeclined, svcErr.Code)
	assert.Contains(t, svcErr.Message, "Declined by issuer")
}

func TestProcessPaymentTransportFailureIsGeneric(t *testing.T) {
	gateway := &fakeGateway{
		saleFn: func(req qualpay.SaleRequest) (*qualpay.TransactionResponse, error) {
			return nil, errors.Join(qualpay.ErrProcessing, &qualpay.TransportError{Err: errors.New("connection refused")})
		},
	}
	svc := newService(gateway, testSettings("Sale"), newFakeTokens())

	_, err := svc.ProcessPayment(context.Background(), testCommand())

	require.Error(t, err)
	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeProcessing, svcErr.Code)
}

func TestProcessPaymentSavesVaultToken(t *testing.T) {
	notFound := &qualpay.RemoteError{Family: "platform", Code: "13", Message: "Customer not found"}
	gateway := &fakeGateway{
		getCustomerFn: func(customerID string) (*qualpay.CustomerResponse, error) {
			return nil, notFound
		},
		saleFn: func(req qualpay.SaleRequest) (*qualpay.TransactionResponse, error) {
			assert.True(t, req.Tokenize)
			assert.Equal(t, "cust-1", req.CustomerID)
			resp := approvedTransaction()
			resp.CardID = "tok_99"
			return resp, nil
		},
	}
	tokens := newFakeTokens()
	svc := newService(gateway, testSettings("Sale"), tokens)

	cmd := testCommand()
	cmd.SaveCard = true
	cmd.Customer = services.CustomerDetails{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}

	result, err := svc.ProcessPayment(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, "tok_99", result.CardToken)
	assert.Equal(t, "tok_99", tokens.saved["cust-1/store-1"])
	assert.Equal(t, []string{"get_customer", "create_customer", "sale"}, gateway.calls)
}

func TestProcessPaymentUsesStoredToken(t *testing.T) {
	gateway := &fakeGateway{
		saleFn: func(req qualpay.SaleRequest) (*qualpay.TransactionResponse, error) {
			assert.Equal(t, "tok_42", req.CardID)
			assert.Empty(t, req.CardNumber)
			return approvedTransaction(), nil
		},
	}
	svc := newService(gateway, testSettings("Sale"), newFakeTokens())

	cmd := testCommand()
	cmd.Card = services.CardDetails{}
	cmd.StoredCardToken = "tok_42"

	_, err := svc.ProcessPayment(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, []string{"sale"}, gateway.calls)
}

func TestCapture(t *testing.T) {
	gateway := &fakeGateway{
		captureFn: func(req qualpay.CaptureRequest) (*qualpay.TransactionResponse, error) {
			assert.Equal(t, "pg-auth-1", req.TransactionID)
			assert.InDelta(t, 19.99, req.Amount, 0.001)
			return approvedTransaction(), nil
		},
	}
	svc := newService(gateway, testSettings("Authorization"), newFakeTokens())

	order := testOrder()
	order.AuthorizationTransactionID = "pg-auth-1"

	result, err := svc.Capture(context.Background(), services.CaptureCommand{Order: order})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, result.Status)
}

func TestCaptureWithoutAuthorizationFailsFast(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newService(gateway, testSettings("Authorization"), newFakeTokens())

	_, err := svc.Capture(context.Background(), services.CaptureCommand{Order: testOrder()})

	require.Error(t, err)
	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeInvalidInput, svcErr.Code)
	assert.Empty(t, gateway.calls)
}

func TestVoid(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newService(gateway, testSettings("Authorization"), newFakeTokens())

	order := testOrder()
	order.AuthorizationTransactionID = "pg-auth-1"

	result, err := svc.Void(context.Background(), services.VoidCommand{Order: order})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusVoided, result.Status)
	assert.Equal(t, []string{"void"}, gateway.calls)
}

func TestRefundStatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		amount   float64
		captured float64
		want     domain.PaymentStatus
	}{
		{"partial refund", 5.00, 10.00, domain.StatusPartiallyRefunded},
		{"full refund", 10.00, 10.00, domain.StatusRefunded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := &fakeGateway{}
			svc := newService(gateway, testSettings("Sale"), newFakeTokens())

			order := testOrder()
			order.CaptureTransactionID = "pg-cap-1"

			result, err := svc.Refund(context.Background(), services.RefundCommand{
				Order:          order,
				Amount:         tc.amount,
				CapturedAmount: tc.captured,
			})

			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Status)
		})
	}
}

func TestRefundRejectsExcessiveAmount(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newService(gateway, testSettings("Sale"), newFakeTokens())

	order := testOrder()
	order.CaptureTransactionID = "pg-cap-1"

	_, err := svc.Refund(context.Background(), services.RefundCommand{
		Order:          order,
		Amount:         15.00,
		CapturedAmount: 10.00,
	})

	require.Error(t, err)
	assert.Empty(t, gateway.calls)
}

func TestRecurringPaymentsNotSupported(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newService(gateway, testSettings("Sale"), newFakeTokens())

	_, err := svc.ProcessRecurringPayment(context.Background(), testCommand())
	require.Error(t, err)
	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeNotSupported, svcErr.Code)

	_, err = svc.CancelRecurringPayment(context.Background(), services.VoidCommand{Order: testOrder()})
	require.Error(t, err)

	assert.Empty(t, gateway.calls)
}

func TestCanRepostPayment(t *testing.T) {
	svc := newService(&fakeGateway{}, testSettings("Sale"), newFakeTokens())

	fresh := testOrder()
	fresh.PaymentStatus = domain.StatusPending
	fresh.CreatedAt = time.Now()
	assert.False(t, svc.CanRepostPayment(fresh))

	aged := fresh
	aged.CreatedAt = time.Now().Add(-10 * time.Second)
	assert.True(t, svc.CanRepostPayment(aged))

	paid := aged
	paid.PaymentStatus = domain.StatusPaid
	assert.False(t, svc.CanRepostPayment(paid))
}
