// Package domain holds the store-side payment model the connector maps
// gateway results onto. The order record itself is owned by the store's
// order management; only the fields the connector reads appear here.
package domain

import (
	"errors"
	"time"
)

// PaymentStatus is the store's view of where an order's payment stands.
type PaymentStatus string

const (
	StatusPending           PaymentStatus = "PENDING"
	StatusAuthorized        PaymentStatus = "AUTHORIZED"
	StatusPaid              PaymentStatus = "PAID"
	StatusVoided            PaymentStatus = "VOIDED"
	StatusRefunded          PaymentStatus = "REFUNDED"
	StatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// TransactionType selects how a new payment is processed. Authorization
// places a hold for later capture; Sale charges immediately.
type TransactionType string

const (
	TransactionTypeAuthorization TransactionType = "Authorization"
	TransactionTypeSale          TransactionType = "Sale"
)

var ErrUnsupportedTransactionType = errors.New("unsupported payment transaction type")

func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TransactionTypeAuthorization, TransactionTypeSale:
		return TransactionType(s), nil
	}
	return "", ErrUnsupportedTransactionType
}

// Order carries the order fields the connector needs to build and interpret
// gateway transactions.
type Order struct {
	ID            string
	CustomerID    string
	StoreID       string
	Total         float64
	PaymentStatus PaymentStatus
	CreatedAt     time.Time

	AuthorizationTransactionID string
	CaptureTransactionID       string
}

// repostCooldown guards against accidental double submission of a payment
// right after the order was placed. Not a security control.
const repostCooldown = 5 * time.Second

// CanRepostPayment reports whether a second payment attempt is allowed on
// this order.
func (o Order) CanRepostPayment(now time.Time) bool {
	if o.PaymentStatus != StatusPending {
		return false
	}
	return now.Sub(o.CreatedAt) >= repostCooldown
}

// RefundStatusFor maps a refund amount against the captured amount onto the
// resulting payment status.
func RefundStatusFor(refunded, captured float64) PaymentStatus {
	if refunded < captured {
		return StatusPartiallyRefunded
	}
	return StatusRefunded
}
