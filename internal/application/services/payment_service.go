package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ecomkit/qualpay-connector/internal/application"
	"github.com/ecomkit/qualpay-connector/internal/config"
	"github.com/ecomkit/qualpay-connector/internal/domain"
	"github.com/ecomkit/qualpay-connector/internal/infrastructure/qualpay"
	"github.com/google/uuid"
)

// PaymentService sequences gateway transactions for the store's checkout and
// order management flows. It keeps no state of its own; order state lives in
// the store's order record and vault tokens in the CardTokenStore.
type PaymentService struct {
	gateway  application.GatewayClient
	settings application.SettingsSource
	tokens   application.CardTokenStore
	logger   *slog.Logger
}

func NewPaymentService(
	gateway application.GatewayClient,
	settings application.SettingsSource,
	tokens application.CardTokenStore,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		gateway:  gateway,
		settings: settings,
		tokens:   tokens,
		logger:   logger,
	}
}

func credentials(s config.Settings) qualpay.Credentials {
	return qualpay.Credentials{
		MerchantID:  s.MerchantID,
		SecurityKey: s.SecurityKey,
		UseSandbox:  s.UseSandbox,
	}
}

// ProcessPayment runs an authorization or a sale, depending on the
// configured transaction type. On approval the result carries the new
// payment status plus the transaction id, auth code and AVS result to store
// on the order; when the customer asked to save their card, the vault token
// is persisted before returning.
func (s *PaymentService) ProcessPayment(ctx context.Context, cmd ProcessPaymentCommand) (*ProcessPaymentResult, error) {
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, application.NewProcessingError(err)
	}

	tranType, err := domain.ParseTransactionType(settings.TransactionType)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	creds := credentials(settings)

	tran := qualpay.TransactionRequest{
		Amount:     round2(cmd.Order.Total),
		PurchaseID: cmd.Order.ID,
		AmountTax:  round2(cmd.Checkout.Tax),
		LineItems:  AssembleLineItems(cmd.Checkout),
	}

	if cmd.StoredCardToken != "" {
		tran.CardID = cmd.StoredCardToken
		tran.CustomerID = cmd.Order.CustomerID
	} else {
		tran.CardNumber = cmd.Card.Number
		tran.ExpDate = cmd.Card.ExpDate
		tran.CVV2 = cmd.Card.CVV2
		tran.CardholderName = cmd.Card.HolderName
		tran.AvsZip = cmd.Card.Zip
	}

	if cmd.SaveCard && cmd.StoredCardToken == "" {
		customerID := cmd.Order.CustomerID
		if customerID == "" {
			customerID = uuid.NewString()
		}
		if err := s.ensureVaultCustomer(ctx, creds, customerID, cmd.Customer); err != nil {
			// A missing vault record only blocks tokenization, not the
			// payment itself.
			s.logger.Error("could not prepare vault customer, card will not be saved",
				"order_id", cmd.Order.ID,
				"customer_id", customerID,
				"error", err,
			)
		} else {
			tran.Tokenize = true
			tran.CustomerID = customerID
			tran.Email = cmd.Customer.Email
		}
	}

	var resp *qualpay.TransactionResponse
	switch tranType {
	case domain.TransactionTypeAuthorization:
		resp, err = s.gateway.Authorize(ctx, creds, qualpay.AuthorizationRequest{TransactionRequest: tran})
	case domain.TransactionTypeSale:
		resp, err = s.gateway.Sale(ctx, creds, qualpay.SaleRequest{TransactionRequest: tran})
	}
	if err != nil {
		return nil, s.mapGatewayError(cmd.Order, err)
	}

	result := &ProcessPaymentResult{
		TransactionID:     resp.TransactionID,
		AuthorizationCode: resp.AuthCode,
		AvsResult:         resp.AvsResult,
	}

	if tranType == domain.TransactionTypeAuthorization {
		result.Status = domain.StatusAuthorized
	} else {
		result.Status = domain.StatusPaid
	}

	if resp.CardID != "" {
		result.CardToken = resp.CardID
		if err := s.tokens.Save(ctx, tran.CustomerID, cmd.Order.StoreID, resp.CardID); err != nil {
			// The charge went through; losing the token just means the
			// customer re-enters the card next time.
			s.logger.Error("failed to persist vault card token",
				"order_id", cmd.Order.ID,
				"customer_id", tran.CustomerID,
				"error", err,
			)
		}
	}

	return result, nil
}

// Capture settles the full amount of a prior authorization.
func (s *PaymentService) Capture(ctx context.Context, cmd CaptureCommand) (*TransactionResult, error) {
	if cmd.Order.AuthorizationTransactionID == "" {
		return nil, application.NewInvalidInputError(errors.New("order has no authorization transaction id"))
	}

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, application.NewProcessingError(err)
	}

	resp, err := s.gateway.Capture(ctx, credentials(settings), qualpay.CaptureRequest{
		TransactionID: cmd.Order.AuthorizationTransactionID,
		Amount:        round2(cmd.Order.Total),
	})
	if err != nil {
		return nil, s.mapGatewayError(cmd.Order, err)
	}

	return &TransactionResult{Status: domain.StatusPaid, TransactionID: resp.TransactionID}, nil
}

// Void cancels a prior authorization in full.
func (s *PaymentService) Void(ctx context.Context, cmd VoidCommand) (*TransactionResult, error) {
	if cmd.Order.AuthorizationTransactionID == "" {
		return nil, application.NewInvalidInputError(errors.New("order has no authorization transaction id"))
	}

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, application.NewProcessingError(err)
	}

	resp, err := s.gateway.Void(ctx, credentials(settings), qualpay.VoidRequest{
		TransactionID: cmd.Order.AuthorizationTransactionID,
	})
	if err != nil {
		return nil, s.mapGatewayError(cmd.Order, err)
	}

	return &TransactionResult{Status: domain.StatusVoided, TransactionID: resp.TransactionID}, nil
}

// Refund returns part or all of a captured amount. The resulting status is
// PartiallyRefunded unless the refund covers the whole capture.
func (s *PaymentService) Refund(ctx context.Context, cmd RefundCommand) (*TransactionResult, error) {
	if cmd.Order.CaptureTransactionID == "" {
		return nil, application.NewInvalidInputError(errors.New("order has no capture transaction id"))
	}
	if cmd.Amount <= 0 || cmd.Amount > cmd.CapturedAmount {
		return nil, application.NewInvalidInputError(errors.New("refund amount must be positive and within the captured amount"))
	}

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, application.NewProcessingError(err)
	}

	resp, err := s.gateway.Refund(ctx, credentials(settings), qualpay.RefundRequest{
		TransactionID: cmd.Order.CaptureTransactionID,
		Amount:        round2(cmd.Amount),
	})
	if err != nil {
		return nil, s.mapGatewayError(cmd.Order, err)
	}

	return &TransactionResult{
		Status:        domain.RefundStatusFor(cmd.Amount, cmd.CapturedAmount),
		TransactionID: resp.TransactionID,
	}, nil
}

// ProcessRecurringPayment is intentionally unsupported; the store should
// offer another payment method for recurring products.
func (s *PaymentService) ProcessRecurringPayment(ctx context.Context, cmd ProcessPaymentCommand) (*ProcessPaymentResult, error) {
	return nil, application.NewNotSupportedError("recurring payments")
}

func (s *PaymentService) CancelRecurringPayment(ctx context.Context, cmd VoidCommand) (*TransactionResult, error) {
	return nil, application.NewNotSupportedError("recurring payments")
}

// CanRepostPayment reports whether the customer may retry paying for an
// order from the order details page.
func (s *PaymentService) CanRepostPayment(order domain.Order) bool {
	return order.CanRepostPayment(time.Now())
}

// StoredCardToken returns the customer's saved vault token, or empty when
// none exists.
func (s *PaymentService) StoredCardToken(ctx context.Context, customerID, storeID string) (string, error) {
	return s.tokens.Token(ctx, customerID, storeID)
}

func (s *PaymentService) ensureVaultCustomer(ctx context.Context, creds qualpay.Credentials, customerID string, customer CustomerDetails) error {
	_, err := s.gateway.GetCustomer(ctx, creds, customerID)
	if err == nil {
		return nil
	}
	if _, ok := qualpay.IsRemoteError(err); !ok {
		return err
	}

	_, err = s.gateway.CreateCustomer(ctx, creds, qualpay.CreateCustomerRequest{
		CustomerID: customerID,
		FirstName:  customer.FirstName,
		LastName:   customer.LastName,
		Email:      customer.Email,
	})
	return err
}

// mapGatewayError turns client errors into what the caller should see: a
// decline keeps the gateway's code and message; anything without a usable
// response is logged with order context and reported generically.
func (s *PaymentService) mapGatewayError(order domain.Order, err error) error {
	if remoteErr, ok := qualpay.IsRemoteError(err); ok {
		return application.NewDeclinedError(remoteErr.Code, remoteErr.Message)
	}

	s.logger.Error("gateway call failed without a usable response",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"error", err,
	)
	return application.NewProcessingError(err)
}
