package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	countrydomain "github.com/smallbiznis/causeway/internal/countryconfig/domain"
	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
)

func india() countrydomain.CountryConfig {
	return countrydomain.CountryConfig{
		Code:            "IN",
		CurrencyCode:    "INR",
		CurrencySymbol:  "₹",
		MinDonation:     200,
		TaxBenefit:      true,
		TaxSectionLabel: "Section 80G",
	}
}

func unitedStates() countrydomain.CountryConfig {
	return countrydomain.CountryConfig{
		Code:         "US",
		CurrencyCode: "USD",
		MinDonation:  5,
	}
}

func fillDonor(s State) State {
	for field, value := range map[string]string{
		countrydomain.FieldFullName:   "Asha Rao",
		countrydomain.FieldEmail:      "asha@example.com",
		countrydomain.FieldPhone:      "9876543210",
		countrydomain.FieldState:      "Karnataka",
		countrydomain.FieldCity:       "Bengaluru",
		countrydomain.FieldPostalCode: "560001",
		countrydomain.FieldAddress:    "12 MG Road",
	} {
		s = Reduce(s, SetDonorField{Field: field, Value: value})
	}
	return s
}

func TestFullFlowToCompletion(t *testing.T) {
	s := NewState(india())
	require.Equal(t, StepAmountSelection, s.Step)
	require.Equal(t, "INR", s.Draft.Currency)

	s = Reduce(s, SetAmount{Amount: 2500, Type: donationdomain.DonationTypeOneTime})
	s = Reduce(s, Next{})
	require.Equal(t, StepDonorDetails, s.Step)

	s = fillDonor(s)
	s = Reduce(s, Next{})
	require.Equal(t, StepReview, s.Step)

	s = Reduce(s, Next{})
	require.Equal(t, StepPaymentCollection, s.Step)

	s = Reduce(s, PaymentAttempted{PaymentIntentID: "pi_1"})
	s = Reduce(s, PaymentSucceeded{})
	require.Equal(t, StepCompleted, s.Step)
	require.Equal(t, "pi_1", s.PaymentIntentID)
}

func TestMinimumDonationGate(t *testing.T) {
	s := NewState(india())

	s = Reduce(s, SetAmount{Amount: 100, Type: donationdomain.DonationTypeOneTime})
	require.Equal(t, "below_minimum", s.FieldErrors["amount"])

	s = Reduce(s, Next{})
	require.Equal(t, StepAmountSelection, s.Step)

	s = Reduce(s, SetAmount{Amount: 200, Type: donationdomain.DonationTypeOneTime})
	require.Empty(t, s.FieldErrors["amount"])
	s = Reduce(s, Next{})
	require.Equal(t, StepDonorDetails, s.Step)
}

func TestDonorValidationBlocksReview(t *testing.T) {
	s := NewState(india())
	s = Reduce(s, SetAmount{Amount: 500, Type: donationdomain.DonationTypeOneTime})
	s = Reduce(s, Next{})

	s = Reduce(s, SetDonorField{Field: countrydomain.FieldPhone, Value: "12345"})
	require.Equal(t, "invalid_phone", s.FieldErrors[countrydomain.FieldPhone])

	s = Reduce(s, Next{})
	require.Equal(t, StepDonorDetails, s.Step)
	require.NotEmpty(t, s.FieldErrors)
}

func TestInvalidTaxIDRejected(t *testing.T) {
	s := NewState(india())
	s = Reduce(s, SetAmount{Amount: 500})
	s = Reduce(s, Next{})
	s = fillDonor(s)

	s = Reduce(s, SetDonorField{Field: countrydomain.FieldTaxID, Value: "NOTAPAN"})
	require.Equal(t, "invalid_tax_id", s.FieldErrors[countrydomain.FieldTaxID])

	s = Reduce(s, SetDonorField{Field: countrydomain.FieldTaxID, Value: "ABCDE1234F"})
	require.Empty(t, s.FieldErrors[countrydomain.FieldTaxID])
}

func TestBackwardNavigationKeepsData(t *testing.T) {
	s := NewState(india())
	s = Reduce(s, SetAmount{Amount: 2500})
	s = Reduce(s, Next{})
	s = fillDonor(s)
	s = Reduce(s, Next{})
	require.Equal(t, StepReview, s.Step)

	s = Reduce(s, Back{})
	require.Equal(t, StepDonorDetails, s.Step)
	require.Equal(t, "Asha Rao", s.Draft.Donor.FullName)

	s = Reduce(s, Back{})
	require.Equal(t, StepAmountSelection, s.Step)
	require.EqualValues(t, 2500, s.Draft.Amount)
}

func TestCountryChangeInvalidatesDependentFields(t *testing.T) {
	s := NewState(india())
	s = Reduce(s, SetAmount{Amount: 2500})
	s = Reduce(s, Next{})
	s = fillDonor(s)
	s = Reduce(s, SetDonorField{Field: countrydomain.FieldTaxID, Value: "ABCDE1234F"})

	s = Reduce(s, SetCountry{Country: unitedStates()})
	require.Equal(t, "US", s.Draft.Donor.Country)
	require.Equal(t, "USD", s.Draft.Currency)
	require.Empty(t, s.Draft.Donor.Phone)
	require.Empty(t, s.Draft.Donor.PostalCode)
	require.Nil(t, s.Draft.Donor.TaxID)

	// Country-independent fields survive.
	require.Equal(t, "Asha Rao", s.Draft.Donor.FullName)
	require.Equal(t, "asha@example.com", s.Draft.Donor.Email)
}

func TestPaymentFailureStaysOnPaymentStep(t *testing.T) {
	s := NewState(india())
	s = Reduce(s, SetAmount{Amount: 2500})
	s = Reduce(s, Next{})
	s = fillDonor(s)
	s = Reduce(s, Next{})
	s = Reduce(s, Next{})
	require.Equal(t, StepPaymentCollection, s.Step)

	s = Reduce(s, PaymentFailed{Message: "Your card was declined."})
	require.Equal(t, StepPaymentCollection, s.Step)
	require.Equal(t, "Your card was declined.", s.FailureMessage)

	// The donor can step back to review and return without losing data.
	s = Reduce(s, Back{})
	require.Equal(t, StepReview, s.Step)
	require.Empty(t, s.FailureMessage)
}

func TestEventsOutOfPlaceAreIgnored(t *testing.T) {
	s := NewState(india())

	unchanged := Reduce(s, PaymentSucceeded{})
	require.Equal(t, s.Step, unchanged.Step)

	unchanged = Reduce(s, SetDonorField{Field: countrydomain.FieldEmail, Value: "x@y.z"})
	require.Empty(t, unchanged.Draft.Donor.Email)
}
