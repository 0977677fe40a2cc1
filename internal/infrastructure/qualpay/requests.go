package qualpay

import (
	"fmt"
	"net/http"
)

// Request is the closed set of calls this client can make. Every variant
// carries its fixed HTTP method and URL path; the client never builds either
// dynamically.
type Request interface {
	Method() string
	Path() string
}

// gatewayRequest variants belong to the payment gateway family and receive
// the merchant and developer ids before sending. withCredentials works on a
// value copy so the request the caller built is never mutated.
type gatewayRequest interface {
	Request
	withCredentials(merchantID int64, developerID string) Request
}

// LineItem is one level-3 purchase line. The wire format caps Description at
// 25 characters and ProductCode at 12; build them with NewLineItem so the
// caps are applied by truncation rather than rejected remotely.
type LineItem struct {
	CreditType  string  `json:"credit_type"`
	Description string  `json:"description"`
	MeasureUnit string  `json:"measure_unit"`
	ProductCode string  `json:"product_code"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

const (
	CreditTypeDebit  = "D"
	CreditTypeCredit = "C"

	maxDescriptionLen = 25
	maxProductCodeLen = 12
)

func NewLineItem(description, productCode string, quantity int, unitPrice float64) LineItem {
	return LineItem{
		CreditType:  CreditTypeDebit,
		Description: truncate(description, maxDescriptionLen),
		MeasureUnit: "*",
		ProductCode: truncate(productCode, maxProductCodeLen),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
}

// The wire limits count characters, so truncation works on runes; cutting
// bytes could split a multi-byte product name into invalid UTF-8.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// BillingCard is a card stored in (or being added to) the customer vault.
type BillingCard struct {
	CardID           string `json:"card_id,omitempty"`
	CardNumber       string `json:"card_number,omitempty"`
	ExpDate          string `json:"exp_date,omitempty"`
	CVV2             string `json:"cvv2,omitempty"`
	BillingFirstName string `json:"billing_first_name,omitempty"`
	BillingLastName  string `json:"billing_last_name,omitempty"`
	BillingZip       string `json:"billing_zip,omitempty"`
}

// Platform family: customer vault, webhooks and subscriptions.

type GetCustomerRequest struct {
	CustomerID string `json:"-"`
}

func (GetCustomerRequest) Method() string { return http.MethodGet }
func (r GetCustomerRequest) Path() string {
	return fmt.Sprintf("/platform/vault/customer/%s", r.CustomerID)
}

type CreateCustomerRequest struct {
	CustomerID    string        `json:"customer_id"`
	FirstName     string        `json:"customer_first_name,omitempty"`
	LastName      string        `json:"customer_last_name,omitempty"`
	Email         string        `json:"customer_email,omitempty"`
	Phone         string        `json:"customer_phone,omitempty"`
	BillingCards  []BillingCard `json:"billing_cards,omitempty"`
	AutoGenerated bool          `json:"auto_generate_customer_id,omitempty"`
}

func (CreateCustomerRequest) Method() string { return http.MethodPost }
func (CreateCustomerRequest) Path() string   { return "/platform/vault/customer" }

type GetCustomerCardsRequest struct {
	CustomerID string `json:"-"`
}

func (GetCustomerCardsRequest) Method() string { return http.MethodGet }
func (r GetCustomerCardsRequest) Path() string {
	return fmt.Sprintf("/platform/vault/customer/%s/billing", r.CustomerID)
}

type CreateCustomerCardRequest struct {
	CustomerID  string      `json:"-"`
	BillingCard BillingCard `json:"billing_cards"`
}

func (CreateCustomerCardRequest) Method() string { return http.MethodPost }
func (r CreateCustomerCardRequest) Path() string {
	return fmt.Sprintf("/platform/vault/customer/%s/billing", r.CustomerID)
}

type DeleteCustomerCardRequest struct {
	CustomerID string `json:"-"`
	CardID     string `json:"card_id"`
}

func (DeleteCustomerCardRequest) Method() string { return http.MethodDelete }
func (r DeleteCustomerCardRequest) Path() string {
	return fmt.Sprintf("/platform/vault/customer/%s/billing", r.CustomerID)
}

type GetWebhookRequest struct {
	WebhookID string `json:"-"`
}

func (GetWebhookRequest) Method() string { return http.MethodGet }
func (r GetWebhookRequest) Path() string {
	return fmt.Sprintf("/platform/webhook/%s", r.WebhookID)
}

type CreateWebhookRequest struct {
	Label         string   `json:"label"`
	NotifyURL     string   `json:"notification_url"`
	EmailAddress  []string `json:"email_address,omitempty"`
	Events        []string `json:"events"`
	WebhookNodeID string   `json:"webhook_node,omitempty"`
	Status        string   `json:"status,omitempty"`
}

func (CreateWebhookRequest) Method() string { return http.MethodPost }
func (CreateWebhookRequest) Path() string   { return "/platform/webhook" }

type CreateSubscriptionRequest struct {
	CustomerID   string  `json:"customer_id"`
	PlanID       int64   `json:"plan_id,omitempty"`
	DateStart    string  `json:"date_start"`
	Amount       float64 `json:"amt_tran,omitempty"`
	Interval     string  `json:"plan_frequency,omitempty"`
	UseExisting  bool    `json:"use_existing_customer,omitempty"`
	ProfileID    string  `json:"profile_id,omitempty"`
	CurrencyCode string  `json:"tran_currency,omitempty"`
}

func (CreateSubscriptionRequest) Method() string { return http.MethodPost }
func (CreateSubscriptionRequest) Path() string   { return "/platform/subscription" }

type CancelSubscriptionRequest struct {
	SubscriptionID string `json:"-"`
	CustomerID     string `json:"customer_id"`
}

func (CancelSubscriptionRequest) Method() string { return http.MethodPost }
func (r CancelSubscriptionRequest) Path() string {
	return fmt.Sprintf("/platform/subscription/%s/cancel", r.SubscriptionID)
}

// Payment gateway family: authorize, sale, capture, void, refund.

// TransactionRequest is the shared payload for authorizations and sales.
// Card fields and CardID (a vault token) are mutually exclusive; when
// Tokenize is set the gateway stores the card and returns its vault id, so
// the customer identity fields should be filled for first-time saves.
type TransactionRequest struct {
	MerchantID     int64      `json:"merchant_id,omitempty"`
	DeveloperID    string     `json:"developer_id,omitempty"`
	Amount         float64    `json:"amt_tran"`
	CurrencyCode   string     `json:"tran_currency,omitempty"`
	PurchaseID     string     `json:"purchase_id,omitempty"`
	CardNumber     string     `json:"card_number,omitempty"`
	ExpDate        string     `json:"exp_date,omitempty"`
	CVV2           string     `json:"cvv2,omitempty"`
	CardholderName string     `json:"cardholder_name,omitempty"`
	CardID         string     `json:"card_id,omitempty"`
	CustomerID     string     `json:"customer_id,omitempty"`
	Tokenize       bool       `json:"tokenize,omitempty"`
	AvsZip         string     `json:"avs_zip,omitempty"`
	Email          string     `json:"customer_email,omitempty"`
	LineItems      []LineItem `json:"line_items,omitempty"`
	AmountTax      float64    `json:"amt_tax,omitempty"`
}

type AuthorizationRequest struct {
	TransactionRequest
}

func (AuthorizationRequest) Method() string { return http.MethodPost }
func (AuthorizationRequest) Path() string   { return "/pg/auth" }
func (r AuthorizationRequest) withCredentials(merchantID int64, developerID string) Request {
	r.MerchantID = merchantID
	r.DeveloperID = developerID
	return r
}

type SaleRequest struct {
	TransactionRequest
}

func (SaleRequest) Method() string { return http.MethodPost }
func (SaleRequest) Path() string   { return "/pg/sale" }
func (r SaleRequest) withCredentials(merchantID int64, developerID string) Request {
	r.MerchantID = merchantID
	r.DeveloperID = developerID
	return r
}

type CaptureRequest struct {
	TransactionID string  `json:"-"`
	MerchantID    int64   `json:"merchant_id,omitempty"`
	DeveloperID   string  `json:"developer_id,omitempty"`
	Amount        float64 `json:"amt_tran"`
}

func (CaptureRequest) Method() string { return http.MethodPost }
func (r CaptureRequest) Path() string {
	return fmt.Sprintf("/pg/capture/%s", r.TransactionID)
}
func (r CaptureRequest) withCredentials(merchantID int64, developerID string) Request {
	r.MerchantID = merchantID
	r.DeveloperID = developerID
	return r
}

type VoidRequest struct {
	TransactionID string `json:"-"`
	MerchantID    int64  `json:"merchant_id,omitempty"`
	DeveloperID   string `json:"developer_id,omitempty"`
}

func (VoidRequest) Method() string { return http.MethodPost }
func (r VoidRequest) Path() string {
	return fmt.Sprintf("/pg/void/%s", r.TransactionID)
}
func (r VoidRequest) withCredentials(merchantID int64, developerID string) Request {
	r.MerchantID = merchantID
	r.DeveloperID = developerID
	return r
}

type RefundRequest struct {
	TransactionID string  `json:"-"`
	MerchantID    int64   `json:"merchant_id,omitempty"`
	DeveloperID   string  `json:"developer_id,omitempty"`
	Amount        float64 `json:"amt_tran"`
}

func (RefundRequest) Method() string { return http.MethodPost }
func (r RefundRequest) Path() string {
	return fmt.Sprintf("/pg/refund/%s", r.TransactionID)
}
func (r RefundRequest) withCredentials(merchantID int64, developerID string) Request {
	r.MerchantID = merchantID
	r.DeveloperID = developerID
	return r
}
