package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	countrydomain "github.com/smallbiznis/causeway/internal/countryconfig/domain"
	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
	invoicedomain "github.com/smallbiznis/causeway/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/causeway/internal/payment/domain"
	recurringdomain "github.com/smallbiznis/causeway/internal/recurring/domain"
	wizarddomain "github.com/smallbiznis/causeway/internal/wizard/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type            string            `json:"type"`
	Message         string            `json:"message"`
	PaymentIntentID string            `json:"payment_intent_id,omitempty"`
	Errors          []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErrs *ValidationErrors
	if errors.As(err, &vErrs) && vErrs != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErrs.Errors,
		}
	}

	var fieldErr *paymentdomain.FieldValidationError
	if errors.As(err, &fieldErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   fieldErr.Field,
					Code:    fieldErr.Code,
					Message: fieldErr.Message,
				},
			},
		}
	}

	// Card declines carry a donor-facing message; nothing else from the
	// gateway is surfaced verbatim.
	var cardErr *paymentdomain.GatewayCardError
	if errors.As(err, &cardErr) {
		return http.StatusPaymentRequired, errorPayload{
			Type:    "card_error",
			Message: cardErr.Message(),
		}
	}

	// The charge went through but recording it failed. The caller must
	// confirm by intent id instead of retrying the charge.
	var confirmErr *paymentdomain.BackendConfirmationError
	if errors.As(err, &confirmErr) {
		return http.StatusInternalServerError, errorPayload{
			Type:            "confirmation_failed",
			Message:         "Your payment was received but could not be confirmed. Please contact support before retrying.",
			PaymentIntentID: confirmErr.PaymentIntentID,
		}
	}

	var timeoutErr *paymentdomain.TimeoutError
	if errors.As(err, &timeoutErr) {
		return http.StatusAccepted, errorPayload{
			Type:            "payment_pending",
			Message:         "Your payment is still processing. Check back shortly using the payment reference.",
			PaymentIntentID: timeoutErr.PaymentIntentID,
		}
	}

	var transientErr *paymentdomain.GatewayTransientError
	switch {
	case errors.As(err, &transientErr),
		errors.Is(err, paymentdomain.ErrNetwork):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "The payment service is temporarily unavailable. Please try again.",
		}
	case errors.Is(err, paymentdomain.ErrActionIncomplete):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "card_error",
			Message: "Card authentication was not completed. Please try again.",
		}
	case errors.Is(err, donationdomain.ErrIntentPending):
		return http.StatusAccepted, errorPayload{
			Type:    "payment_pending",
			Message: "Your payment is still processing. Check back shortly.",
		}
	case errors.Is(err, wizarddomain.ErrSubmissionInFlight):
		return http.StatusConflict, errorPayload{
			Type:    "submission_in_flight",
			Message: "A payment for this session is already being processed.",
		}
	case errors.Is(err, wizarddomain.ErrAlreadyCompleted),
		errors.Is(err, wizarddomain.ErrNotReadyForPayment),
		errors.Is(err, recurringdomain.ErrInvalidTransition),
		errors.Is(err, recurringdomain.ErrNotDue),
		errors.Is(err, donationdomain.ErrIntentNotSucceeded):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, donationdomain.ErrInvalidDraft),
		errors.Is(err, countrydomain.ErrUnknownField),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, invoicedomain.ErrEmailDelivery):
		return http.StatusBadGateway, errorPayload{
			Type:    "email_delivery_failed",
			Message: "The receipt email could not be delivered.",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, countrydomain.ErrCountryNotFound),
		errors.Is(err, donationdomain.ErrDonationNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, recurringdomain.ErrSubscriptionNotFound),
		errors.Is(err, wizarddomain.ErrSessionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
