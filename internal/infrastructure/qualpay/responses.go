package qualpay

// The two response families use disjoint result code spaces. Platform
// responses carry an integer code where 0 means success; payment gateway
// responses carry a three-character rcode where "000" means approved. The
// interfaces below keep the generic wrappers from ever mixing them up.

const (
	PlatformCodeSuccess = 0
	GatewayCodeApproved = "000"
)

type platformResult interface {
	platformResult() (int, string)
}

type gatewayResult interface {
	gatewayResult() (string, string)
}

type PlatformResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (r PlatformResponse) platformResult() (int, string) {
	return r.Code, r.Message
}

type GatewayResponse struct {
	Rcode string `json:"rcode"`
	Rmsg  string `json:"rmsg"`
}

func (r GatewayResponse) gatewayResult() (string, string) {
	return r.Rcode, r.Rmsg
}

// VaultCustomer is the customer record held in the Qualpay vault.
type VaultCustomer struct {
	CustomerID   string        `json:"customer_id"`
	FirstName    string        `json:"customer_first_name"`
	LastName     string        `json:"customer_last_name"`
	Email        string        `json:"customer_email"`
	Phone        string        `json:"customer_phone"`
	BillingCards []BillingCard `json:"billing_cards"`
}

type CustomerResponse struct {
	PlatformResponse
	Data VaultCustomer `json:"data"`
}

type CustomerCardsResponse struct {
	PlatformResponse
	Data struct {
		BillingCards []BillingCard `json:"billing_cards"`
	} `json:"data"`
}

type Webhook struct {
	WebhookID int64    `json:"webhook_id"`
	Label     string   `json:"label"`
	NotifyURL string   `json:"notification_url"`
	Secret    string   `json:"secret"`
	Status    string   `json:"status"`
	Events    []string `json:"events"`
}

type WebhookResponse struct {
	PlatformResponse
	Data Webhook `json:"data"`
}

type Subscription struct {
	SubscriptionID int64  `json:"subscription_id"`
	CustomerID     string `json:"customer_id"`
	Status         string `json:"status"`
	DateStart      string `json:"date_start"`
}

type SubscriptionResponse struct {
	PlatformResponse
	Data Subscription `json:"data"`
}

// TransactionResponse covers all five payment gateway operations. CardID is
// only set when the request asked for tokenization; it is the vault token to
// persist for the customer.
type TransactionResponse struct {
	GatewayResponse
	TransactionID string `json:"pg_id"`
	AuthCode      string `json:"auth_code"`
	AvsResult     string `json:"avs_result"`
	Cvv2Result    string `json:"cvv2_result"`
	CardID        string `json:"card_id"`
	MerchantID    int64  `json:"merchant_id"`
}
