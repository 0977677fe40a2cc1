// Package rest exposes the connector to the store over a small JSON API.
// The store sends its own order fields with each call; nothing about orders
// is persisted here.
package rest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ecomkit/qualpay-connector/internal/application/services"
	"github.com/ecomkit/qualpay-connector/internal/domain"
)

type Handlers struct {
	payments *services.PaymentService
	webhooks *services.WebhookService
	logger   *slog.Logger
}

func NewHandlers(
	payments *services.PaymentService,
	webhooks *services.WebhookService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		payments: payments,
		webhooks: webhooks,
		logger:   logger,
	}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /payments/process", h.ProcessPayment)
	mux.HandleFunc("POST /payments/capture", h.Capture)
	mux.HandleFunc("POST /payments/void", h.Void)
	mux.HandleFunc("POST /payments/refund", h.Refund)
	mux.HandleFunc("POST /webhooks/qualpay", h.Webhook)
}

type orderDTO struct {
	OrderID                    string    `json:"order_id"`
	CustomerID                 string    `json:"customer_id"`
	StoreID                    string    `json:"store_id"`
	Total                      float64   `json:"total"`
	PaymentStatus              string    `json:"payment_status"`
	CreatedAt                  time.Time `json:"created_at"`
	AuthorizationTransactionID string    `json:"authorization_transaction_id"`
	CaptureTransactionID       string    `json:"capture_transaction_id"`
}

func (o orderDTO) toDomain() domain.Order {
	return domain.Order{
		ID:                         o.OrderID,
		CustomerID:                 o.CustomerID,
		StoreID:                    o.StoreID,
		Total:                      o.Total,
		PaymentStatus:              domain.PaymentStatus(o.PaymentStatus),
		CreatedAt:                  o.CreatedAt,
		AuthorizationTransactionID: o.AuthorizationTransactionID,
		CaptureTransactionID:       o.CaptureTransactionID,
	}
}

type cartLineDTO struct {
	ProductName string  `json:"product_name"`
	ProductCode string  `json:"product_code"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type attributeDTO struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type checkoutDTO struct {
	Lines            []cartLineDTO  `json:"lines"`
	Attributes       []attributeDTO `json:"attributes"`
	PaymentSurcharge float64        `json:"payment_surcharge"`
	ShippingCharge   float64        `json:"shipping_charge"`
	RequiresShipping bool           `json:"requires_shipping"`
	Tax              float64        `json:"tax"`
	OrderTotal       float64        `json:"order_total"`
}

func (c checkoutDTO) toSummary() services.CheckoutSummary {
	summary := services.CheckoutSummary{
		PaymentSurcharge: c.PaymentSurcharge,
		ShippingCharge:   c.ShippingCharge,
		RequiresShipping: c.RequiresShipping,
		Tax:              c.Tax,
		OrderTotal:       c.OrderTotal,
	}
	for _, line := range c.Lines {
		summary.Lines = append(summary.Lines, services.CartLine{
			ProductName: line.ProductName,
			ProductCode: line.ProductCode,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}
	for _, attr := range c.Attributes {
		summary.Attributes = append(summary.Attributes, services.AttributePrice{
			Name:  attr.Name,
			Price: attr.Price,
		})
	}
	return summary
}

type processRequest struct {
	Order    orderDTO    `json:"order"`
	Checkout checkoutDTO `json:"checkout"`
	Card     struct {
		Number     string `json:"number"`
		ExpDate    string `json:"exp_date"`
		CVV2       string `json:"cvv2"`
		HolderName string `json:"holder_name"`
		Zip        string `json:"zip"`
	} `json:"card"`
	Customer struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	} `json:"customer"`
	StoredCardToken string `json:"stored_card_token"`
	SaveCard        bool   `json:"save_card"`
}

type processResponse struct {
	Status            string `json:"status"`
	TransactionID     string `json:"transaction_id"`
	AuthorizationCode string `json:"authorization_code"`
	AvsResult         string `json:"avs_result"`
	CardToken         string `json:"card_token,omitempty"`
}

type transactionResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

func (h *Handlers) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err)
		return
	}

	result, err := h.payments.ProcessPayment(r.Context(), services.ProcessPaymentCommand{
		Order:    req.Order.toDomain(),
		Checkout: req.Checkout.toSummary(),
		Card: services.CardDetails{
			Number:     req.Card.Number,
			ExpDate:    req.Card.ExpDate,
			CVV2:       req.Card.CVV2,
			HolderName: req.Card.HolderName,
			Zip:        req.Card.Zip,
		},
		Customer: services.CustomerDetails{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
		},
		StoredCardToken: req.StoredCardToken,
		SaveCard:        req.SaveCard,
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Status:            string(result.Status),
		TransactionID:     result.TransactionID,
		AuthorizationCode: result.AuthorizationCode,
		AvsResult:         result.AvsResult,
		CardToken:         result.CardToken,
	})
}

func (h *Handlers) Capture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order orderDTO `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err)
		return
	}

	result, err := h.payments.Capture(r.Context(), services.CaptureCommand{Order: req.Order.toDomain()})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, transactionResponse{
		Status:        string(result.Status),
		TransactionID: result.TransactionID,
	})
}

func (h *Handlers) Void(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order orderDTO `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err)
		return
	}

	result, err := h.payments.Void(r.Context(), services.VoidCommand{Order: req.Order.toDomain()})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, transactionResponse{
		Status:        string(result.Status),
		TransactionID: result.TransactionID,
	})
}

func (h *Handlers) Refund(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order          orderDTO `json:"order"`
		Amount         float64  `json:"amount"`
		CapturedAmount float64  `json:"captured_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err)
		return
	}

	result, err := h.payments.Refund(r.Context(), services.RefundCommand{
		Order:          req.Order.toDomain(),
		Amount:         req.Amount,
		CapturedAmount: req.CapturedAmount,
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, transactionResponse{
		Status:        string(result.Status),
		TransactionID: result.TransactionID,
	})
}

// Webhook authenticates an inbound notification before acknowledging it.
// The body must be read raw; signature verification happens on the exact
// bytes Qualpay sent.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	event, err := h.webhooks.VerifyNotification(r.Context(), body, r.Header)
	if err != nil {
		h.logger.Warn("rejected webhook notification",
			"remote_addr", r.RemoteAddr,
			"error", err,
		)
		writeError(w, err, h.logger)
		return
	}

	h.logger.Info("accepted webhook notification",
		"webhook_id", event.WebhookID,
		"event", event.Event,
	)
	w.WriteHeader(http.StatusOK)
}
