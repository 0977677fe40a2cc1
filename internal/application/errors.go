package application

import (
	"errors"
	"fmt"
)

// ServiceError is what the orchestration layer hands back to the storefront
// or admin caller. Declined results keep the gateway's own message so the UI
// can show actionable text; transport and configuration failures collapse
// into a generic processing error after being logged with context.
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeProcessing       = "PROCESSING_ERROR"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeNotSupported     = "NOT_SUPPORTED"
	ErrCodeDeclined         = "PAYMENT_DECLINED"
	ErrCodeInvalidSignature = "INVALID_SIGNATURE"
)

func NewProcessingError(err error) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeProcessing,
		Message: "Payment could not be processed",
		Err:     err,
	}
}

func NewInvalidInputError(err error) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeInvalidInput,
		Message: "Invalid payment input",
		Err:     err,
	}
}

func NewNotSupportedError(feature string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeNotSupported,
		Message: fmt.Sprintf("%s are not supported", feature),
	}
}

func NewInvalidSignatureError(err error) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeInvalidSignature,
		Message: "Webhook signature verification failed",
		Err:     err,
	}
}

func NewDeclinedError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeDeclined,
		Message: fmt.Sprintf("[%s] %s", code, message),
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
