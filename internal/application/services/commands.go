package services

import "github.com/ecomkit/qualpay-connector/internal/domain"

// CardDetails is raw card data collected at checkout. Left empty when the
// customer pays with a stored vault token.
type CardDetails struct {
	Number     string
	ExpDate    string
	CVV2       string
	HolderName string
	Zip        string
}

// CustomerDetails is the minimal identity sent to the vault when a customer
// asks to save their card.
type CustomerDetails struct {
	FirstName string
	LastName  string
	Email     string
}

type ProcessPaymentCommand struct {
	Order           domain.Order
	Checkout        CheckoutSummary
	Card            CardDetails
	Customer        CustomerDetails
	StoredCardToken string
	SaveCard        bool
}

type CaptureCommand struct {
	Order domain.Order
}

type VoidCommand struct {
	Order domain.Order
}

type RefundCommand struct {
	Order          domain.Order
	Amount         float64
	CapturedAmount float64
}

// ProcessPaymentResult carries everything the order record needs after an
// authorization or sale.
type ProcessPaymentResult struct {
	Status            domain.PaymentStatus
	TransactionID     string
	AuthorizationCode string
	AvsResult         string
	CardToken         string
}

type TransactionResult struct {
	Status        domain.PaymentStatus
	TransactionID string
}
