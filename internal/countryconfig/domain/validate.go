package domain

import "strings"

// Validate applies the country's rule set to a single donor field. It is a
// pure function of (field, value, country); the rule set is resolved
// locally so no network call happens per keystroke.
func Validate(field, value, code string) FieldResult {
	code = strings.ToUpper(strings.TrimSpace(code))
	rules := RulesFor(code)
	value = strings.TrimSpace(value)

	invalid := func(errCode, message string) FieldResult {
		return FieldResult{Valid: false, Field: field, Code: errCode, Message: message}
	}

	switch field {
	case FieldFullName:
		if len(value) < 2 {
			return invalid("invalid_full_name", "please enter your full name")
		}
	case FieldEmail:
		if !EmailPattern().MatchString(value) {
			return invalid("invalid_email", "please enter a valid email address")
		}
	case FieldPhone:
		if !rules.PhonePattern.MatchString(value) {
			return invalid("invalid_phone", "please enter a valid phone number")
		}
	case FieldState, FieldCity, FieldAddress:
		if value == "" {
			return invalid("required", "this field is required")
		}
	case FieldPostalCode:
		if !rules.PostalPattern.MatchString(value) {
			return invalid("invalid_postal_code", "please enter a valid postal code")
		}
	case FieldTaxID:
		// Optional: validated only when non-empty.
		if value == "" {
			return FieldResult{Valid: true, Field: field}
		}
		if rules.TaxIDPattern != nil && !rules.TaxIDPattern.MatchString(value) {
			label := rules.TaxIDLabel
			if label == "" {
				label = "tax id"
			}
			return invalid("invalid_tax_id", "please enter a valid "+label)
		}
	default:
		return invalid("unknown_field", "unknown field")
	}

	return FieldResult{Valid: true, Field: field}
}
