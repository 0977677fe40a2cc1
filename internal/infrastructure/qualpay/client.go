// Package qualpay is a typed client for the Qualpay platform and payment
// gateway APIs. Credentials are passed into every call rather than held on
// the client, so settings changes take effect on the next request.
package qualpay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	productionBaseURL = "https://api.qualpay.com"
	sandboxBaseURL    = "https://api-test.qualpay.com"

	// Identifies this integration in gateway-family requests.
	developerID = "ecomkit-connector"
)

// Credentials is the per-call snapshot of the merchant settings. The
// security key is the Basic auth secret; the merchant id must be the numeric
// string issued by Qualpay.
type Credentials struct {
	MerchantID  string
	SecurityKey string
	UseSandbox  bool
}

type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) resolveBaseURL(creds Credentials) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	if creds.UseSandbox {
		return sandboxBaseURL
	}
	return productionBaseURL
}

// Qualpay authenticates with Basic auth where the security key is the
// username and the password is empty.
func basicAuth(securityKey string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(securityKey+":"))
}

// send performs one call for any request variant. It returns a parsed
// response whenever one could be obtained, including structured error bodies
// recovered from non-2xx replies; a non-nil error means no usable response
// exists (bad configuration, transport failure, or an unparseable body).
func send[Resp any](c *Client, ctx context.Context, creds Credentials, req Request) (*Resp, error) {
	if _, err := strconv.ParseInt(creds.MerchantID, 10, 64); err != nil {
		return nil, &ConfigurationError{Field: "merchant id", Reason: "must be a numeric string"}
	}
	if creds.SecurityKey == "" {
		return nil, &ConfigurationError{Field: "security key", Reason: "is required"}
	}

	var bodyReader io.Reader
	if req.Method() != http.MethodGet {
		jsonData, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	url := c.resolveBaseURL(creds) + req.Path()
	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", basicAuth(creds.SecurityKey))
	if bodyReader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("qualpay request failed",
			"method", req.Method(),
			"path", req.Path(),
			"error", err,
		)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to read qualpay response",
			"path", req.Path(),
			"status", resp.StatusCode,
			"error", err,
		)
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		// Qualpay error replies usually carry the same body shape as
		// successes, so try to recover one. The raw text is logged either
		// way, before the recovery outcome decides the return.
		var recovered Resp
		recoverErr := json.Unmarshal(body, &recovered)
		c.logger.Error("qualpay returned an error response",
			"method", req.Method(),
			"path", req.Path(),
			"status", resp.StatusCode,
			"body", string(body),
			"recovered", recoverErr == nil,
		)
		if recoverErr != nil {
			return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return &recovered, nil
	}

	var parsed Resp
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Error("failed to decode qualpay response",
			"path", req.Path(),
			"status", resp.StatusCode,
			"error", err,
		)
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(body), Err: err}
	}

	return &parsed, nil
}

// requestPlatform sends a platform-family request and enforces its success
// code. A non-success code comes back as a RemoteError alongside the parsed
// response, so callers can still inspect the payload.
func requestPlatform[Resp platformResult](c *Client, ctx context.Context, creds Credentials, req Request) (*Resp, error) {
	resp, err := send[Resp](c, ctx, creds, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}

	if code, msg := (*resp).platformResult(); code != PlatformCodeSuccess {
		return resp, &RemoteError{Family: "platform", Code: strconv.Itoa(code), Message: msg}
	}

	return resp, nil
}

// requestGateway injects the merchant and developer ids into a copy of the
// request, sends it, and enforces the payment gateway approval code.
func requestGateway[Resp gatewayResult](c *Client, ctx context.Context, creds Credentials, req gatewayRequest) (*Resp, error) {
	merchantID, err := strconv.ParseInt(creds.MerchantID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing,
			&ConfigurationError{Field: "merchant id", Reason: "must be a numeric string"})
	}

	resp, err := send[Resp](c, ctx, creds, req.withCredentials(merchantID, developerID))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}

	if rcode, rmsg := (*resp).gatewayResult(); rcode != GatewayCodeApproved {
		return resp, &RemoteError{Family: "payment gateway", Code: rcode, Message: rmsg}
	}

	return resp, nil
}

func (c *Client) GetCustomer(ctx context.Context, creds Credentials, customerID string) (*CustomerResponse, error) {
	return requestPlatform[CustomerResponse](c, ctx, creds, GetCustomerRequest{CustomerID: customerID})
}

func (c *Client) CreateCustomer(ctx context.Context, creds Credentials, req CreateCustomerRequest) (*CustomerResponse, error) {
	return requestPlatform[CustomerResponse](c, ctx, creds, req)
}

func (c *Client) GetCustomerCards(ctx context.Context, creds Credentials, customerID string) (*CustomerCardsResponse, error) {
	return requestPlatform[CustomerCardsResponse](c, ctx, creds, GetCustomerCardsRequest{CustomerID: customerID})
}

func (c *Client) CreateCustomerCard(ctx context.Context, creds Credentials, req CreateCustomerCardRequest) (*CustomerResponse, error) {
	return requestPlatform[CustomerResponse](c, ctx, creds, req)
}

func (c *Client) DeleteCustomerCard(ctx context.Context, creds Credentials, req DeleteCustomerCardRequest) (*CustomerResponse, error) {
	return requestPlatform[CustomerResponse](c, ctx, creds, req)
}

func (c *Client) GetWebhook(ctx context.Context, creds Credentials, webhookID string) (*WebhookResponse, error) {
	return requestPlatform[WebhookResponse](c, ctx, creds, GetWebhookRequest{WebhookID: webhookID})
}

func (c *Client) CreateWebhook(ctx context.Context, creds Credentials, req CreateWebhookRequest) (*WebhookResponse, error) {
	return requestPlatform[WebhookResponse](c, ctx, creds, req)
}

func (c *Client) CreateSubscription(ctx context.Context, creds Credentials, req CreateSubscriptionRequest) (*SubscriptionResponse, error) {
	return requestPlatform[SubscriptionResponse](c, ctx, creds, req)
}

func (c *Client) CancelSubscription(ctx context.Context, creds Credentials, req CancelSubscriptionRequest) (*SubscriptionResponse, error) {
	return requestPlatform[SubscriptionResponse](c, ctx, creds, req)
}

func (c *Client) Authorize(ctx context.Context, creds Credentials, req AuthorizationRequest) (*TransactionResponse, error) {
	return requestGateway[TransactionResponse](c, ctx, creds, req)
}

func (c *Client) Sale(ctx context.Context, creds Credentials, req SaleRequest) (*TransactionResponse, error) {
	return requestGateway[TransactionResponse](c, ctx, creds, req)
}

func (c *Client) Capture(ctx context.Context, creds Credentials, req CaptureRequest) (*TransactionResponse, error) {
	return requestGateway[TransactionResponse](c, ctx, creds, req)
}

func (c *Client) Void(ctx context.Context, creds Credentials, req VoidRequest) (*TransactionResponse, error) {
	return requestGateway[TransactionResponse](c, ctx, creds, req)
}

func (c *Client) Refund(ctx context.Context, creds Credentials, req RefundRequest) (*TransactionResponse, error) {
	return requestGateway[TransactionResponse](c, ctx, creds, req)
}
