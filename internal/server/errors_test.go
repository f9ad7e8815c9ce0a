package server

import (
	"errors"
	"net/http"
	"testing"

	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
	paymentdomain "github.com/smallbiznis/causeway/internal/payment/domain"
	recurringdomain "github.com/smallbiznis/causeway/internal/recurring/domain"
	wizarddomain "github.com/smallbiznis/causeway/internal/wizard/domain"
)

func TestMapErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{
			"field validation",
			&paymentdomain.FieldValidationError{Field: "card_number", Code: "invalid", Message: "Enter a valid card number."},
			http.StatusBadRequest, "validation_error",
		},
		{
			"card decline",
			&paymentdomain.GatewayCardError{Code: paymentdomain.CardDeclined},
			http.StatusPaymentRequired, "card_error",
		},
		{
			"transient gateway",
			&paymentdomain.GatewayTransientError{Code: paymentdomain.ProcessingError},
			http.StatusServiceUnavailable, "service_unavailable",
		},
		{
			"network",
			paymentdomain.ErrNetwork,
			http.StatusServiceUnavailable, "service_unavailable",
		},
		{
			"confirmation failure",
			&paymentdomain.BackendConfirmationError{PaymentIntentID: "pi_1", Err: errors.New("db down")},
			http.StatusInternalServerError, "confirmation_failed",
		},
		{
			"confirmation timeout",
			&paymentdomain.TimeoutError{PaymentIntentID: "pi_2", Attempts: 30},
			http.StatusAccepted, "payment_pending",
		},
		{
			"intent pending",
			donationdomain.ErrIntentPending,
			http.StatusAccepted, "payment_pending",
		},
		{
			"submission in flight",
			wizarddomain.ErrSubmissionInFlight,
			http.StatusConflict, "submission_in_flight",
		},
		{
			"invalid transition",
			recurringdomain.ErrInvalidTransition,
			http.StatusConflict, "conflict",
		},
		{
			"subscription missing",
			recurringdomain.ErrSubscriptionNotFound,
			http.StatusNotFound, "not_found",
		},
		{
			"session missing",
			wizarddomain.ErrSessionNotFound,
			http.StatusNotFound, "not_found",
		},
		{
			"rate limited",
			ErrRateLimited,
			http.StatusTooManyRequests, "rate_limited",
		},
		{
			"unknown",
			errors.New("boom"),
			http.StatusInternalServerError, "internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			if status != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, status)
			}
			if payload.Type != tc.typ {
				t.Fatalf("expected type %q, got %q", tc.typ, payload.Type)
			}
		})
	}
}

func TestMapErrorCarriesIntentReference(t *testing.T) {
	_, payload := mapError(&paymentdomain.TimeoutError{PaymentIntentID: "pi_ref", Attempts: 30})
	if payload.PaymentIntentID != "pi_ref" {
		t.Fatalf("expected intent reference in payload, got %q", payload.PaymentIntentID)
	}

	_, payload = mapError(&paymentdomain.BackendConfirmationError{PaymentIntentID: "pi_rec", Err: errors.New("save failed")})
	if payload.PaymentIntentID != "pi_rec" {
		t.Fatalf("expected intent reference in payload, got %q", payload.PaymentIntentID)
	}
}

func TestMapErrorCardMessageIsDonorFacing(t *testing.T) {
	_, payload := mapError(&paymentdomain.GatewayCardError{Code: paymentdomain.InsufficientFunds})
	if payload.Message == "" || payload.Message == paymentdomain.InsufficientFunds {
		t.Fatalf("expected a donor-facing message, got %q", payload.Message)
	}
}
