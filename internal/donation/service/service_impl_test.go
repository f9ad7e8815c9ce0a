package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/causeway/internal/clock"
	"github.com/smallbiznis/causeway/internal/donation/domain"
	"github.com/smallbiznis/causeway/internal/donation/repository"
	paymentdomain "github.com/smallbiznis/causeway/internal/payment/domain"
)

type fakeGateway struct {
	createIntentFn func(ctx context.Context, req paymentdomain.CreateIntentRequest) (*paymentdomain.PaymentIntent, error)
	getIntentFn    func(ctx context.Context, intentID string) (*paymentdomain.PaymentIntent, error)
}

func (f *fakeGateway) CreatePaymentMethod(ctx context.Context, card paymentdomain.Card, billing paymentdomain.BillingDetails) (*paymentdomain.PaymentMethod, error) {
	return &paymentdomain.PaymentMethod{ID: "pm_test"}, nil
}

func (f *fakeGateway) CreatePaymentIntent(ctx context.Context, req paymentdomain.CreateIntentRequest) (*paymentdomain.PaymentIntent, error) {
	if f.createIntentFn != nil {
		return f.createIntentFn(ctx, req)
	}
	return &paymentdomain.PaymentIntent{ID: "pi_test", ClientSecret: "pi_test_secret", Status: paymentdomain.IntentRequiresConfirmation}, nil
}

func (f *fakeGateway) ConfirmCardPayment(ctx context.Context, intentID, paymentMethodID string) (*paymentdomain.PaymentIntent, error) {
	return &paymentdomain.PaymentIntent{ID: intentID, Status: paymentdomain.IntentSucceeded}, nil
}

func (f *fakeGateway) CreateSetupIntent(ctx context.Context, paymentMethodID string) (*paymentdomain.SetupIntent, error) {
	return &paymentdomain.SetupIntent{ID: "seti_test", Status: paymentdomain.IntentRequiresConfirmation}, nil
}

func (f *fakeGateway) ConfirmCardSetup(ctx context.Context, setupIntentID, paymentMethodID string) (*paymentdomain.SetupIntent, error) {
	return &paymentdomain.SetupIntent{ID: setupIntentID, Status: paymentdomain.IntentSucceeded}, nil
}

func (f *fakeGateway) GetPaymentIntent(ctx context.Context, intentID string) (*paymentdomain.PaymentIntent, error) {
	if f.getIntentFn != nil {
		return f.getIntentFn(ctx, intentID)
	}
	return &paymentdomain.PaymentIntent{ID: intentID, Status: paymentdomain.IntentSucceeded}, nil
}

func setupService(t *testing.T, gateway paymentdomain.Gateway) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Donation{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:      conn,
		GenID:   node,
		Clock:   clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)),
		Repo:    repository.Provide(),
		Gateway: gateway,
		Log:     zap.NewNop(),
	})
	return svc, conn
}

func testDraft() domain.DonationDraft {
	return domain.DonationDraft{
		Amount:   2500,
		Currency: "INR",
		Type:     domain.DonationTypeOneTime,
		Donor: domain.Donor{
			FullName:   "Asha Rao",
			Email:      "asha@example.com",
			Phone:      "9876543210",
			Country:    "IN",
			State:      "Karnataka",
			City:       "Bengaluru",
			PostalCode: "560001",
			Address:    "12 MG Road",
		},
	}
}

func TestSaveAfterPaymentPersistsOnce(t *testing.T) {
	svc, conn := setupService(t, &fakeGateway{})
	ctx := context.Background()

	first, err := svc.SaveAfterPayment(ctx, testDraft(), "pi_123", domain.PaymentStatusSucceeded)
	require.NoError(t, err)
	require.Equal(t, "pi_123", first.PaymentIntentID)
	require.Equal(t, domain.PaymentStatusSucceeded, first.PaymentStatus)

	second, err := svc.SaveAfterPayment(ctx, testDraft(), "pi_123", domain.PaymentStatusSucceeded)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, conn.Model(&domain.Donation{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSaveAfterPaymentRejectsNonSucceeded(t *testing.T) {
	svc, conn := setupService(t, &fakeGateway{})

	_, err := svc.SaveAfterPayment(context.Background(), testDraft(), "pi_456", domain.PaymentStatusFailed)
	require.ErrorIs(t, err, domain.ErrIntentNotSucceeded)

	var count int64
	require.NoError(t, conn.Model(&domain.Donation{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestSaveAfterPaymentRejectsInvalidDraft(t *testing.T) {
	svc, _ := setupService(t, &fakeGateway{})

	draft := testDraft()
	draft.Amount = 0
	_, err := svc.SaveAfterPayment(context.Background(), draft, "pi_789", domain.PaymentStatusSucceeded)
	require.ErrorIs(t, err, domain.ErrInvalidDraft)
}

func TestConfirmByIntentReturnsRecordedDonation(t *testing.T) {
	svc, _ := setupService(t, &fakeGateway{})
	ctx := context.Background()

	saved, err := svc.SaveAfterPayment(ctx, testDraft(), "pi_abc", domain.PaymentStatusSucceeded)
	require.NoError(t, err)

	found, err := svc.ConfirmByIntent(ctx, "pi_abc")
	require.NoError(t, err)
	require.Equal(t, saved.ID, found.ID)
}

func TestConfirmByIntentPendingWhileProcessing(t *testing.T) {
	gateway := &fakeGateway{
		getIntentFn: func(ctx context.Context, intentID string) (*paymentdomain.PaymentIntent, error) {
			return &paymentdomain.PaymentIntent{ID: intentID, Status: paymentdomain.IntentProcessing}, nil
		},
	}
	svc, _ := setupService(t, gateway)

	_, err := svc.ConfirmByIntent(context.Background(), "pi_processing")
	require.ErrorIs(t, err, domain.ErrIntentPending)
}

func TestConfirmByIntentNotFoundForAbandonedIntent(t *testing.T) {
	gateway := &fakeGateway{
		getIntentFn: func(ctx context.Context, intentID string) (*paymentdomain.PaymentIntent, error) {
			return &paymentdomain.PaymentIntent{ID: intentID, Status: paymentdomain.IntentCanceled}, nil
		},
	}
	svc, _ := setupService(t, gateway)

	_, err := svc.ConfirmByIntent(context.Background(), "pi_canceled")
	require.ErrorIs(t, err, domain.ErrDonationNotFound)
}

func TestCreateIntentReturnsHandle(t *testing.T) {
	svc, conn := setupService(t, &fakeGateway{})

	handle, err := svc.CreateIntent(context.Background(), testDraft(), "pm_card")
	require.NoError(t, err)
	require.Equal(t, "pi_test", handle.PaymentIntentID)
	require.Equal(t, "pi_test_secret", handle.ClientSecret)

	// Opening an intent must not write a donation row.
	var count int64
	require.NoError(t, conn.Model(&domain.Donation{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}
