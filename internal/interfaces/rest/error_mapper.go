package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ecomkit/qualpay-connector/internal/application"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Message: err.Error()})
}

func writeError(w http.ResponseWriter, err error, logger *slog.Logger) {
	svcErr, ok := application.IsServiceError(err)
	if !ok {
		logger.Error("unexpected error reached the handler", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Code: "INTERNAL", Message: "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Code {
	case application.ErrCodeDeclined:
		status = http.StatusPaymentRequired
	case application.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case application.ErrCodeNotSupported:
		status = http.StatusUnprocessableEntity
	case application.ErrCodeProcessing:
		status = http.StatusBadGateway
	case application.ErrCodeInvalidSignature:
		status = http.StatusForbidden
	}

	writeJSON(w, status, errorBody{Code: svcErr.Code, Message: svcErr.Message})
}
