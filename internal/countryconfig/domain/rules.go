package domain

import "regexp"

// Field names accepted by ValidateField.
const (
	FieldFullName   = "full_name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldState      = "state"
	FieldCity       = "city"
	FieldPostalCode = "postal_code"
	FieldAddress    = "address"
	FieldTaxID      = "tax_id"
)

// FieldResult reports the outcome of a single-field validation.
type FieldResult struct {
	Valid   bool   `json:"valid"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ValidationRuleSet holds the country-dependent validation rules. Countries
// without an entry fall back to DefaultRules.
type ValidationRuleSet struct {
	PhonePattern  *regexp.Regexp
	PostalPattern *regexp.Regexp
	TaxIDPattern  *regexp.Regexp
	TaxIDLabel    string
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// DefaultRules applies when a country has no dedicated rule set.
var DefaultRules = ValidationRuleSet{
	PhonePattern:  regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,14}$`),
	PostalPattern: regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 \-]{2,9}$`),
}

// RulesByCountry is the data-driven lookup replacing per-country branching.
var RulesByCountry = map[string]ValidationRuleSet{
	"IN": {
		PhonePattern:  regexp.MustCompile(`^[6-9][0-9]{9}$`),
		PostalPattern: regexp.MustCompile(`^[1-9][0-9]{5}$`),
		TaxIDPattern:  regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`),
		TaxIDLabel:    "PAN",
	},
	"US": {
		PhonePattern:  regexp.MustCompile(`^[0-9]{10}$`),
		PostalPattern: regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`),
	},
	"GB": {
		PhonePattern:  regexp.MustCompile(`^0[0-9]{9,10}$`),
		PostalPattern: regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? ?[0-9][A-Z]{2}$`),
	},
	"SG": {
		PhonePattern:  regexp.MustCompile(`^[689][0-9]{7}$`),
		PostalPattern: regexp.MustCompile(`^[0-9]{6}$`),
	},
	"AU": {
		PhonePattern:  regexp.MustCompile(`^04[0-9]{8}$`),
		PostalPattern: regexp.MustCompile(`^[0-9]{4}$`),
	},
	"CA": {
		PhonePattern:  regexp.MustCompile(`^[0-9]{10}$`),
		PostalPattern: regexp.MustCompile(`^[A-Za-z][0-9][A-Za-z] ?[0-9][A-Za-z][0-9]$`),
	},
}

// RulesFor returns the rule set for a country code.
func RulesFor(code string) ValidationRuleSet {
	if rules, ok := RulesByCountry[code]; ok {
		return rules
	}
	return DefaultRules
}

// EmailPattern exposes the shared email rule.
func EmailPattern() *regexp.Regexp { return emailPattern }

// CountryDependentFields lists donor fields whose format depends on the
// selected country; the wizard invalidates them when the country changes.
var CountryDependentFields = []string{FieldPhone, FieldPostalCode, FieldTaxID}

// Defaults is the compiled fallback country list used when the catalog
// table is unavailable, so the wizard is never blocked on this dependency.
func Defaults() []CountryConfig {
	return []CountryConfig{
		{Code: "IN", Name: "India", CurrencyCode: "INR", CurrencySymbol: "₹", MinDonation: 200, TaxBenefit: true, TaxSectionLabel: "Section 80G", StateLabel: "State", PostalLabel: "PIN code"},
		{Code: "US", Name: "United States", CurrencyCode: "USD", CurrencySymbol: "$", MinDonation: 5, StateLabel: "State", PostalLabel: "ZIP code"},
		{Code: "GB", Name: "United Kingdom", CurrencyCode: "GBP", CurrencySymbol: "£", MinDonation: 2, StateLabel: "County", PostalLabel: "Postcode"},
		{Code: "SG", Name: "Singapore", CurrencyCode: "SGD", CurrencySymbol: "S$", MinDonation: 5, StateLabel: "District", PostalLabel: "Postal code"},
		{Code: "AU", Name: "Australia", CurrencyCode: "AUD", CurrencySymbol: "A$", MinDonation: 5, StateLabel: "State", PostalLabel: "Postcode"},
		{Code: "CA", Name: "Canada", CurrencyCode: "CAD", CurrencySymbol: "C$", MinDonation: 5, StateLabel: "Province", PostalLabel: "Postal code"},
	}
}
