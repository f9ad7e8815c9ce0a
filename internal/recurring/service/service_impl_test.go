package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/smallbiznis/causeway/internal/clock"
	"github.com/smallbiznis/causeway/internal/config"
	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
	donationrepo "github.com/smallbiznis/causeway/internal/donation/repository"
	"github.com/smallbiznis/causeway/internal/metrics"
	paymentdomain "github.com/smallbiznis/causeway/internal/payment/domain"
	"github.com/smallbiznis/causeway/internal/recurring/domain"
	"github.com/smallbiznis/causeway/internal/recurring/repository"
)

var testMetrics = metrics.New()

type fakeGateway struct {
	createCalls int
	createFn    func(call int, req paymentdomain.CreateIntentRequest) (*paymentdomain.PaymentIntent, error)
}

func (f *fakeGateway) CreatePaymentMethod(ctx context.Context, card paymentdomain.Card, billing paymentdomain.BillingDetails) (*paymentdomain.PaymentMethod, error) {
	return &paymentdomain.PaymentMethod{ID: "pm_1"}, nil
}

func (f *fakeGateway) CreatePaymentIntent(ctx context.Context, req paymentdomain.CreateIntentRequest) (*paymentdomain.PaymentIntent, error) {
	f.createCalls++
	if f.createFn != nil {
		return f.createFn(f.createCalls, req)
	}
	return &paymentdomain.PaymentIntent{ID: "pi_renewal", Status: paymentdomain.IntentSucceeded}, nil
}

func (f *fakeGateway) ConfirmCardPayment(ctx context.Context, intentID, paymentMethodID string) (*paymentdomain.PaymentIntent, error) {
	return nil, nil
}

func (f *fakeGateway) CreateSetupIntent(ctx context.Context, paymentMethodID string) (*paymentdomain.SetupIntent, error) {
	return nil, nil
}

func (f *fakeGateway) ConfirmCardSetup(ctx context.Context, setupIntentID, paymentMethodID string) (*paymentdomain.SetupIntent, error) {
	return nil, nil
}

func (f *fakeGateway) GetPaymentIntent(ctx context.Context, intentID string) (*paymentdomain.PaymentIntent, error) {
	return nil, nil
}

type fixture struct {
	svc     domain.Service
	conn    *gorm.DB
	gateway *fakeGateway
	node    *snowflake.Node
	clock   *clock.FakeClock
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&donationdomain.Donation{},
		&domain.RecurringSubscription{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	gateway := &fakeGateway{}
	fakeClock := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))

	svc := NewService(ServiceParam{
		Config:    config.Config{RecurringMaxAttempts: 3},
		DB:        conn,
		GenID:     node,
		Clock:     fakeClock,
		Repo:      repository.Provide(),
		Donations: donationrepo.Provide(),
		Gateway:   gateway,
		Metrics:   testMetrics,
		Log:       zap.NewNop(),
	})
	return &fixture{svc: svc, conn: conn, gateway: gateway, node: node, clock: fakeClock}
}

func (f *fixture) enrolled(t *testing.T) *domain.RecurringSubscription {
	t.Helper()
	donation := &donationdomain.Donation{
		ID:              f.node.Generate(),
		Amount:          1000,
		Currency:        "USD",
		Type:            donationdomain.DonationTypeMonthly,
		Donor:           donationdomain.Donor{FullName: "Sam Lee", Email: "sam@example.com", Country: "US"},
		PaymentStatus:   donationdomain.PaymentStatusSucceeded,
		PaymentIntentID: "pi_" + f.node.Generate().String(),
		Metadata:        datatypes.JSONMap{donationdomain.MetadataKeyPaymentMethod: "pm_stored"},
		CreatedAt:       f.clock.Now(),
	}
	require.NoError(t, f.conn.Create(donation).Error)

	sub, err := f.svc.Enroll(context.Background(), donation)
	require.NoError(t, err)
	return sub
}

func TestEnrollCreatesActiveSubscription(t *testing.T) {
	f := setup(t)
	sub := f.enrolled(t)

	require.Equal(t, domain.StatusActive, sub.Status)
	require.Equal(t, 1, sub.PaymentCount)
	require.NotNil(t, sub.NextPaymentAt)
	require.Equal(t, f.clock.Now().AddDate(0, 1, 0), sub.NextPaymentAt.UTC())
}

func TestPauseAndResume(t *testing.T) {
	f := setup(t)
	sub := f.enrolled(t)
	ctx := context.Background()

	paused, err := f.svc.Pause(ctx, sub.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaused, paused.Status)
	require.NotNil(t, paused.PausedAt)

	resumed, err := f.svc.Resume(ctx, sub.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, resumed.Status)
	require.NotNil(t, resumed.ResumedAt)
}

func TestResumeRequiresPaused(t *testing.T) {
	f := setup(t)
	sub := f.enrolled(t)

	_, err := f.svc.Resume(context.Background(), sub.ID.String())
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelIsIdempotent(t *testing.T) {
	f := setup(t)
	sub := f.enrolled(t)
	ctx := context.Background()

	cancelled, err := f.svc.Cancel(ctx, sub.ID.String(), "donor request")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationReason)
	require.Nil(t, cancelled.NextPaymentAt)

	again, err := f.svc.Cancel(ctx, sub.ID.String(), "second request")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, again.Status)
	// The original reason survives the repeat call.
	require.Equal(t, "donor request", *again.CancellationReason)
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	f := setup(t)
	sub := f.enrolled(t)
	ctx := context.Background()

	_, err := f.svc.Cancel(ctx, sub.ID.String(), "")
	require.NoError(t, err)

	_, err = f.svc.Pause(ctx, sub.ID.String())
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.svc.Resume(ctx, sub.ID.String())
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestProcessPaymentChargesAndReschedules(t *testing.T) {
	f := setup(t)
	sub := f.enrolled(t)
	ctx := context.Background()

	f.clock.Advance(32 * 24 * time.Hour)

	updated, err := f.svc.ProcessPayment(ctx, sub.ID.String())
	require.NoError(t, err)
	require.Equal(t, 2, updated.PaymentCount)
	require.Equal(t, 0, updated.FailedPaymentCount)
	require.Equal(t, f.clock.Now().AddDate(0, 1, 0), updated.NextPaymentAt.UTC())
	require.Equal(t, 1, f.gateway.createCalls)
}

func TestProcessPaymentNotDue(t *testing.T) {
	f := setup(t)
	sub := f.enrolled(t)

	_, err := f.svc.ProcessPayment(context.Background(), sub.ID.String())
	require.ErrorIs(t, err, domain.ErrNotDue)
	require.Equal(t, 0, f.gateway.createCalls)
}

func TestProcessPaymentRetriesTransientOnly(t *testing.T) {
	f := setup(t)
	sub := f.enrolled(t)
	ctx := context.Background()
	f.clock.Advance(32 * 24 * time.Hour)

	f.gateway.createFn = func(call int, req paymentdomain.CreateIntentRequest) (*paymentdomain.PaymentIntent, error) {
		if call < 3 {
			return nil, &paymentdomain.GatewayTransientError{Code: paymentdomain.ProcessingError}
		}
		return &paymentdomain.PaymentIntent{ID: "pi_renewal", Status: paymentdomain.IntentSucceeded}, nil
	}

	updated, err := f.svc.ProcessPayment(ctx, sub.ID.String())
	require.NoError(t, err)
	require.Equal(t, 3, f.gateway.createCalls)
	require.Equal(t, 2, updated.PaymentCount)
}

func TestProcessPaymentCardDeclineNotRetried(t *testing.T) {
	f := setup(t)
	sub := f.enrolled(t)
	ctx := context.Background()
	f.clock.Advance(32 * 24 * time.Hour)

	f.gateway.createFn = func(call int, req paymentdomain.CreateIntentRequest) (*paymentdomain.PaymentIntent, error) {
		return nil, &paymentdomain.GatewayCardError{Code: paymentdomain.CardDeclined}
	}

	_, err := f.svc.ProcessPayment(ctx, sub.ID.String())

	var cardErr *paymentdomain.GatewayCardError
	require.ErrorAs(t, err, &cardErr)
	require.Equal(t, 1, f.gateway.createCalls)

	current, err := f.svc.Get(ctx, sub.ID.String())
	require.NoError(t, err)
	require.Equal(t, 1, current.FailedPaymentCount)
	require.Equal(t, domain.StatusActive, current.Status)
}

func TestProcessPaymentCompletesAtMaxCount(t *testing.T) {
	f := setup(t)
	sub := f.enrolled(t)
	ctx := context.Background()

	require.NoError(t, f.conn.Model(&domain.RecurringSubscription{}).
		Where("id = ?", sub.ID).
		Update("max_payment_count", 2).Error)

	f.clock.Advance(32 * 24 * time.Hour)

	updated, err := f.svc.ProcessPayment(ctx, sub.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	require.Nil(t, updated.NextPaymentAt)
}
