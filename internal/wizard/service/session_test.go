package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	countrydomain "github.com/smallbiznis/causeway/internal/countryconfig/domain"
	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
	paymentdomain "github.com/smallbiznis/causeway/internal/payment/domain"
	"github.com/smallbiznis/causeway/internal/wizard/domain"
)

type fakeCountries struct{}

func (f *fakeCountries) List(ctx context.Context) ([]countrydomain.CountryConfig, error) {
	return countrydomain.Defaults(), nil
}

func (f *fakeCountries) Resolve(ctx context.Context, code string) (countrydomain.CountryConfig, error) {
	for _, c := range countrydomain.Defaults() {
		if c.Code == code {
			return c, nil
		}
	}
	return countrydomain.CountryConfig{}, countrydomain.ErrCountryNotFound
}

func (f *fakeCountries) ValidateField(field, value, code string) countrydomain.FieldResult {
	return countrydomain.Validate(field, value, code)
}

type fakeOrchestrator struct {
	mu      sync.Mutex
	calls   int
	block   chan struct{}
	failErr error
}

func (f *fakeOrchestrator) ProcessPayment(ctx context.Context, draft donationdomain.DonationDraft, card paymentdomain.Card) (*paymentdomain.ProcessResult, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	failErr := f.failErr
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failErr != nil {
		return nil, failErr
	}

	node, _ := snowflake.NewNode(1)
	return &paymentdomain.ProcessResult{
		Donation: &donationdomain.Donation{
			ID:              node.Generate(),
			PaymentIntentID: "pi_wizard",
			PaymentStatus:   donationdomain.PaymentStatusSucceeded,
		},
	}, nil
}

func setup(t *testing.T) (*Manager, *fakeOrchestrator) {
	t.Helper()
	orchestrator := &fakeOrchestrator{}
	manager := NewManager(ManagerParam{
		Countries:    &fakeCountries{},
		Orchestrator: orchestrator,
		Log:          zap.NewNop(),
	})
	return manager, orchestrator
}

func atPaymentStep(t *testing.T, m *Manager) string {
	t.Helper()
	ctx := context.Background()

	created, err := m.Create(ctx, "IN")
	require.NoError(t, err)
	id := created.SessionID

	_, err = m.Apply(ctx, id, domain.SetAmount{Amount: 2500, Type: donationdomain.DonationTypeOneTime})
	require.NoError(t, err)
	_, err = m.Apply(ctx, id, domain.Next{})
	require.NoError(t, err)

	for field, value := range map[string]string{
		countrydomain.FieldFullName:   "Asha Rao",
		countrydomain.FieldEmail:      "asha@example.com",
		countrydomain.FieldPhone:      "9876543210",
		countrydomain.FieldState:      "Karnataka",
		countrydomain.FieldCity:       "Bengaluru",
		countrydomain.FieldPostalCode: "560001",
		countrydomain.FieldAddress:    "12 MG Road",
	} {
		_, err = m.Apply(ctx, id, domain.SetDonorField{Field: field, Value: value})
		require.NoError(t, err)
	}

	_, err = m.Apply(ctx, id, domain.Next{})
	require.NoError(t, err)
	view, err := m.Apply(ctx, id, domain.Next{})
	require.NoError(t, err)
	require.Equal(t, domain.StepPaymentCollection, view.Step)
	return id
}

func testCard() paymentdomain.Card {
	return paymentdomain.Card{Number: "4242424242424242", ExpMonth: 12, ExpYear: 2030, CVC: "123"}
}

func TestSubmitCompletesSession(t *testing.T) {
	m, orchestrator := setup(t)
	id := atPaymentStep(t, m)

	view, err := m.Submit(context.Background(), id, testCard())
	require.NoError(t, err)
	require.Equal(t, domain.StepCompleted, view.Step)
	require.NotNil(t, view.Result)
	require.Equal(t, 1, orchestrator.calls)
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	m, orchestrator := setup(t)
	id := atPaymentStep(t, m)

	orchestrator.block = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = m.Submit(context.Background(), id, testCard())
	}()

	// Wait for the first submission to take the processing flag.
	require.Eventually(t, func() bool {
		orchestrator.mu.Lock()
		defer orchestrator.mu.Unlock()
		return orchestrator.calls == 1
	}, time.Second, time.Millisecond)

	_, err := m.Submit(context.Background(), id, testCard())
	require.ErrorIs(t, err, domain.ErrSubmissionInFlight)

	close(orchestrator.block)
	wg.Wait()
	require.Equal(t, 1, orchestrator.calls)
}

func TestSubmitFailureAllowsRetry(t *testing.T) {
	m, orchestrator := setup(t)
	id := atPaymentStep(t, m)
	ctx := context.Background()

	orchestrator.failErr = &paymentdomain.GatewayCardError{Code: paymentdomain.CardDeclined}
	view, err := m.Submit(ctx, id, testCard())
	require.Error(t, err)
	require.Equal(t, domain.StepPaymentCollection, view.Step)
	require.NotEmpty(t, view.Failure)

	orchestrator.mu.Lock()
	orchestrator.failErr = nil
	orchestrator.mu.Unlock()

	view, err = m.Submit(ctx, id, testCard())
	require.NoError(t, err)
	require.Equal(t, domain.StepCompleted, view.Step)
}

func TestSubmitConfirmationFailureKeepsPaymentReference(t *testing.T) {
	m, orchestrator := setup(t)
	id := atPaymentStep(t, m)
	ctx := context.Background()

	orchestrator.failErr = &paymentdomain.BackendConfirmationError{
		PaymentIntentID: "pi_reconcile_42",
		Err:             errors.New("insert failed"),
	}
	view, err := m.Submit(ctx, id, testCard())
	require.Error(t, err)
	require.Contains(t, view.Failure, "pi_reconcile_42")
	require.NotContains(t, view.Failure, "try again")

	// The reference must survive a later snapshot read, not just the
	// submit response.
	view, err = m.Get(id)
	require.NoError(t, err)
	require.Contains(t, view.Failure, "pi_reconcile_42")
}

func TestSubmitTimeoutKeepsPaymentReference(t *testing.T) {
	m, orchestrator := setup(t)
	id := atPaymentStep(t, m)

	orchestrator.failErr = &paymentdomain.TimeoutError{PaymentIntentID: "pi_slow_7", Attempts: 30}
	view, err := m.Submit(context.Background(), id, testCard())
	require.Error(t, err)
	require.Contains(t, view.Failure, "pi_slow_7")
}

func TestSubmitRequiresPaymentStep(t *testing.T) {
	m, _ := setup(t)
	created, err := m.Create(context.Background(), "IN")
	require.NoError(t, err)

	_, err = m.Submit(context.Background(), created.SessionID, testCard())
	require.ErrorIs(t, err, domain.ErrNotReadyForPayment)
}

func TestEndCancelsInFlightPayment(t *testing.T) {
	m, orchestrator := setup(t)
	id := atPaymentStep(t, m)

	orchestrator.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background(), id, testCard())
		done <- err
	}()

	require.Eventually(t, func() bool {
		orchestrator.mu.Lock()
		defer orchestrator.mu.Unlock()
		return orchestrator.calls == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, m.End(id))

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("submission did not stop after session end")
	}

	_, err := m.Get(id)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestGetUnknownSession(t *testing.T) {
	m, _ := setup(t)
	_, err := m.Get("missing")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}
