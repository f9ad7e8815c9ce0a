// Package service keeps live wizard sessions and drives payments for them.
// Session state is in-memory: a wizard is a short-lived conversation and
// holds no durable data until its payment succeeds.
package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	countrydomain "github.com/smallbiznis/causeway/internal/countryconfig/domain"
	paymentdomain "github.com/smallbiznis/causeway/internal/payment/domain"
	"github.com/smallbiznis/causeway/internal/wizard/domain"
)

// View is the session snapshot returned to callers.
type View struct {
	SessionID   string                       `json:"session_id"`
	Step        domain.Step                  `json:"step"`
	State       domain.State                 `json:"-"`
	FieldErrors map[string]string            `json:"field_errors,omitempty"`
	Failure     string                       `json:"failure_message,omitempty"`
	Result      *paymentdomain.ProcessResult `json:"result,omitempty"`
}

type session struct {
	mu         sync.Mutex
	state      domain.State
	processing bool
	cancel     context.CancelFunc
	result     *paymentdomain.ProcessResult
}

// Manager owns all live wizard sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session

	countries    countrydomain.Service
	orchestrator paymentdomain.Orchestrator
	log          *zap.Logger
}

// ManagerParam defines dependencies for the wizard session manager.
type ManagerParam struct {
	fx.In

	Countries    countrydomain.Service
	Orchestrator paymentdomain.Orchestrator
	Log          *zap.Logger
}

// NewManager creates the wizard session manager.
func NewManager(p ManagerParam) *Manager {
	return &Manager{
		sessions:     make(map[string]*session),
		countries:    p.Countries,
		orchestrator: p.Orchestrator,
		log:          p.Log.Named("wizard.service"),
	}
}

// Create starts a wizard session for a donor in the given country.
func (m *Manager) Create(ctx context.Context, countryCode string) (View, error) {
	country, err := m.countries.Resolve(ctx, countryCode)
	if err != nil {
		return View{}, err
	}

	id := uuid.NewString()
	sess := &session{state: domain.NewState(country)}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	m.log.Info("wizard session started",
		zap.String("session_id", id),
		zap.String("country", country.Code),
	)
	return view(id, sess), nil
}

// Get returns the current snapshot of a session.
func (m *Manager) Get(id string) (View, error) {
	sess, err := m.lookup(id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return view(id, sess), nil
}

// Apply feeds one event through the reducer.
func (m *Manager) Apply(ctx context.Context, id string, event domain.Event) (View, error) {
	sess, err := m.lookup(id)
	if err != nil {
		return View{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.processing {
		return View{}, domain.ErrSubmissionInFlight
	}
	if sess.state.Step == domain.StepCompleted {
		return View{}, domain.ErrAlreadyCompleted
	}

	// SetCountry events carry only the code from the API; resolve the
	// full config before reducing.
	if sc, ok := event.(domain.SetCountry); ok && sc.Country.Code == "" {
		return View{}, countrydomain.ErrCountryNotFound
	}

	sess.state = domain.Reduce(sess.state, event)
	return view(id, sess), nil
}

// ResolveCountry builds a SetCountry event from a country code.
func (m *Manager) ResolveCountry(ctx context.Context, code string) (domain.SetCountry, error) {
	country, err := m.countries.Resolve(ctx, code)
	if err != nil {
		return domain.SetCountry{}, err
	}
	return domain.SetCountry{Country: country}, nil
}

// Submit runs the payment for a session sitting at the payment step. Only
// one submission can be in flight per session; concurrent calls fail with
// ErrSubmissionInFlight instead of double-charging.
func (m *Manager) Submit(ctx context.Context, id string, card paymentdomain.Card) (View, error) {
	sess, err := m.lookup(id)
	if err != nil {
		return View{}, err
	}

	sess.mu.Lock()
	if sess.processing {
		sess.mu.Unlock()
		return View{}, domain.ErrSubmissionInFlight
	}
	switch sess.state.Step {
	case domain.StepPaymentCollection:
	case domain.StepCompleted:
		sess.mu.Unlock()
		return View{}, domain.ErrAlreadyCompleted
	default:
		sess.mu.Unlock()
		return View{}, domain.ErrNotReadyForPayment
	}
	sess.processing = true
	draft := sess.state.Draft

	// The payment owns a cancellable context so ending the session tears
	// down any in-flight confirmation polling.
	payCtx, cancel := context.WithCancel(ctx)
	sess.cancel = cancel
	sess.mu.Unlock()

	result, payErr := m.orchestrator.ProcessPayment(payCtx, draft, card)
	cancel()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.processing = false
	sess.cancel = nil

	if payErr != nil {
		sess.state = domain.Reduce(sess.state, domain.PaymentFailed{Message: failureMessage(payErr)})
		return view(id, sess), payErr
	}

	sess.result = result
	sess.state = domain.Reduce(sess.state, domain.PaymentAttempted{PaymentIntentID: result.Donation.PaymentIntentID})
	sess.state = domain.Reduce(sess.state, domain.PaymentSucceeded{})
	m.log.Info("wizard session completed",
		zap.String("session_id", id),
		zap.String("donation_id", result.Donation.ID.String()),
	)
	return view(id, sess), nil
}

// End tears a session down, cancelling any in-flight payment polling.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	if sess.cancel != nil {
		sess.cancel()
	}
	sess.mu.Unlock()

	m.log.Info("wizard session ended", zap.String("session_id", id))
	return nil
}

func (m *Manager) lookup(id string) (*session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func view(id string, sess *session) View {
	return View{
		SessionID:   id,
		Step:        sess.state.Step,
		State:       sess.state,
		FieldErrors: sess.state.FieldErrors,
		Failure:     sess.state.FailureMessage,
		Result:      sess.result,
	}
}

// failureMessage keeps the donor-facing text in the session snapshot. The
// confirmation and timeout cases must carry the payment-intent id: a reload
// or second tab only sees this snapshot, and without the reference the
// donor cannot reach support about a charge that may have gone through.
func failureMessage(err error) string {
	var cardErr *paymentdomain.GatewayCardError
	var fieldErr *paymentdomain.FieldValidationError
	var confirmErr *paymentdomain.BackendConfirmationError
	var timeoutErr *paymentdomain.TimeoutError
	switch {
	case errors.As(err, &cardErr):
		return cardErr.Message()
	case errors.As(err, &fieldErr):
		return fieldErr.Message
	case errors.As(err, &confirmErr):
		return "Your payment was received but could not be confirmed. Do not submit again; contact support with reference " + confirmErr.PaymentIntentID + "."
	case errors.As(err, &timeoutErr):
		return "Your payment is still processing. Check back shortly using reference " + timeoutErr.PaymentIntentID + "."
	default:
		return "Your payment could not be completed. Please try again."
	}
}
