// Package domain implements the donation wizard as a pure state machine.
// Reduce is a function of state and event only; all I/O lives in the
// session layer.
package domain

import (
	"strings"

	countrydomain "github.com/smallbiznis/causeway/internal/countryconfig/domain"
	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
)

// Step is the wizard's current screen.
type Step string

const (
	StepAmountSelection   Step = "amount_selection"
	StepDonorDetails      Step = "donor_details"
	StepReview            Step = "review"
	StepPaymentCollection Step = "payment_collection"
	StepCompleted         Step = "completed"
)

// State is the full wizard state. It is a value: Reduce never mutates its
// input, it returns a new state.
type State struct {
	Step        Step
	Draft       donationdomain.DonationDraft
	Country     countrydomain.CountryConfig
	FieldErrors map[string]string

	// PaymentIntentID is set once payment has been attempted, so a
	// failed attempt can be resumed without opening a second intent.
	PaymentIntentID string
	FailureMessage  string
}

// NewState starts a wizard at amount selection for the given country.
func NewState(country countrydomain.CountryConfig) State {
	return State{
		Step: StepAmountSelection,
		Draft: donationdomain.DonationDraft{
			Currency: country.CurrencyCode,
			Type:     donationdomain.DonationTypeOneTime,
			Donor:    donationdomain.Donor{Country: country.Code},
		},
		Country:     country,
		FieldErrors: map[string]string{},
	}
}

// Event is a wizard input.
type Event interface{ isWizardEvent() }

// SetAmount chooses the donation amount and cadence.
type SetAmount struct {
	Amount      int64
	Type        donationdomain.DonationType
	CampaignRef string
}

// SetCountry switches the donor country. Country-dependent fields already
// entered are invalidated and must be re-entered.
type SetCountry struct {
	Country countrydomain.CountryConfig
}

// SetDonorField records one donor-details input.
type SetDonorField struct {
	Field string
	Value string
}

// Next advances to the following step when the current one is valid.
type Next struct{}

// Back returns to the previous step. Entered data is kept.
type Back struct{}

// PaymentAttempted records that a payment intent was opened.
type PaymentAttempted struct{ PaymentIntentID string }

// PaymentSucceeded finishes the wizard.
type PaymentSucceeded struct{}

// PaymentFailed keeps the wizard on the payment step with a message the
// donor can act on.
type PaymentFailed struct{ Message string }

func (SetAmount) isWizardEvent()        {}
func (SetCountry) isWizardEvent()       {}
func (SetDonorField) isWizardEvent()    {}
func (Next) isWizardEvent()             {}
func (Back) isWizardEvent()             {}
func (PaymentAttempted) isWizardEvent() {}
func (PaymentSucceeded) isWizardEvent() {}
func (PaymentFailed) isWizardEvent()    {}

// Reduce applies one event to the wizard. Unknown or out-of-place events
// leave the state unchanged.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case SetAmount:
		return reduceSetAmount(s, ev)
	case SetCountry:
		return reduceSetCountry(s, ev)
	case SetDonorField:
		return reduceSetDonorField(s, ev)
	case Next:
		return reduceNext(s)
	case Back:
		return reduceBack(s)
	case PaymentAttempted:
		if s.Step == StepPaymentCollection {
			s.PaymentIntentID = ev.PaymentIntentID
		}
		return s
	case PaymentSucceeded:
		if s.Step == StepPaymentCollection {
			s.Step = StepCompleted
			s.FailureMessage = ""
		}
		return s
	case PaymentFailed:
		if s.Step == StepPaymentCollection {
			s.FailureMessage = ev.Message
		}
		return s
	default:
		return s
	}
}

func reduceSetAmount(s State, ev SetAmount) State {
	if s.Step != StepAmountSelection {
		return s
	}
	s.FieldErrors = copyErrors(s.FieldErrors)
	s.Draft.Amount = ev.Amount
	if ev.Type.Valid() {
		s.Draft.Type = ev.Type
	}
	if ev.CampaignRef != "" {
		ref := ev.CampaignRef
		s.Draft.CampaignRef = &ref
	}
	if ev.Amount < s.Country.MinDonation {
		s.FieldErrors["amount"] = "below_minimum"
	} else {
		delete(s.FieldErrors, "amount")
	}
	return s
}

func reduceSetCountry(s State, ev SetCountry) State {
	if s.Step == StepPaymentCollection || s.Step == StepCompleted {
		return s
	}
	if ev.Country.Code == s.Country.Code {
		return s
	}

	s.Country = ev.Country
	s.Draft.Currency = ev.Country.CurrencyCode
	s.Draft.Donor.Country = ev.Country.Code

	// Country-dependent inputs no longer make sense under the new rules.
	s.Draft.Donor.Phone = ""
	s.Draft.Donor.PostalCode = ""
	s.Draft.Donor.TaxID = nil

	s.FieldErrors = copyErrors(s.FieldErrors)
	for _, field := range countrydomain.CountryDependentFields {
		delete(s.FieldErrors, field)
	}
	// Minimum donation may differ per country.
	if s.Draft.Amount > 0 && s.Draft.Amount < ev.Country.MinDonation {
		s.FieldErrors["amount"] = "below_minimum"
	} else {
		delete(s.FieldErrors, "amount")
	}
	return s
}

func reduceSetDonorField(s State, ev SetDonorField) State {
	if s.Step != StepDonorDetails {
		return s
	}

	value := strings.TrimSpace(ev.Value)
	switch ev.Field {
	case countrydomain.FieldFullName:
		s.Draft.Donor.FullName = value
	case countrydomain.FieldEmail:
		s.Draft.Donor.Email = value
	case countrydomain.FieldPhone:
		s.Draft.Donor.Phone = value
	case countrydomain.FieldState:
		s.Draft.Donor.State = value
	case countrydomain.FieldCity:
		s.Draft.Donor.City = value
	case countrydomain.FieldPostalCode:
		s.Draft.Donor.PostalCode = value
	case countrydomain.FieldAddress:
		s.Draft.Donor.Address = value
	case countrydomain.FieldTaxID:
		if value == "" {
			s.Draft.Donor.TaxID = nil
		} else {
			s.Draft.Donor.TaxID = &value
		}
	default:
		return s
	}

	s.FieldErrors = copyErrors(s.FieldErrors)
	result := countrydomain.Validate(ev.Field, value, s.Draft.Donor.Country)
	if result.Valid {
		delete(s.FieldErrors, ev.Field)
	} else {
		s.FieldErrors[ev.Field] = result.Code
	}
	return s
}

func reduceNext(s State) State {
	switch s.Step {
	case StepAmountSelection:
		if s.amountValid() {
			s.Step = StepDonorDetails
		}
	case StepDonorDetails:
		if errs := s.donorErrors(); len(errs) == 0 {
			s.Step = StepReview
		} else {
			s.FieldErrors = errs
		}
	case StepReview:
		s.Step = StepPaymentCollection
	}
	return s
}

func reduceBack(s State) State {
	switch s.Step {
	case StepDonorDetails:
		s.Step = StepAmountSelection
	case StepReview:
		s.Step = StepDonorDetails
	case StepPaymentCollection:
		s.Step = StepReview
		s.FailureMessage = ""
	}
	return s
}

func (s State) amountValid() bool {
	return s.Draft.Amount >= s.Country.MinDonation && s.Draft.Amount > 0
}

// donorErrors validates every donor field against the country's rules.
func (s State) donorErrors() map[string]string {
	errs := map[string]string{}
	donor := s.Draft.Donor

	taxID := ""
	if donor.TaxID != nil {
		taxID = *donor.TaxID
	}
	fields := map[string]string{
		countrydomain.FieldFullName:   donor.FullName,
		countrydomain.FieldEmail:      donor.Email,
		countrydomain.FieldPhone:      donor.Phone,
		countrydomain.FieldState:      donor.State,
		countrydomain.FieldCity:       donor.City,
		countrydomain.FieldPostalCode: donor.PostalCode,
		countrydomain.FieldAddress:    donor.Address,
		countrydomain.FieldTaxID:      taxID,
	}
	for field, value := range fields {
		if result := countrydomain.Validate(field, value, donor.Country); !result.Valid {
			errs[field] = result.Code
		}
	}
	return errs
}

func copyErrors(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
