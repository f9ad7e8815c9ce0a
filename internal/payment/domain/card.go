package domain

import (
	"strings"
	"time"
)

// ValidateCard checks card input locally before anything is sent to the
// gateway. It returns a FieldValidationError describing the first problem
// found, or nil when the card is well formed.
func ValidateCard(card Card, now time.Time) *FieldValidationError {
	number := strings.ReplaceAll(strings.ReplaceAll(card.Number, " ", ""), "-", "")
	if number == "" {
		return &FieldValidationError{Field: "card_number", Code: "required", Message: "Card number is required."}
	}
	if len(number) < 12 || len(number) > 19 || !digitsOnly(number) {
		return &FieldValidationError{Field: "card_number", Code: "invalid", Message: "Enter a valid card number."}
	}
	if !luhnValid(number) {
		return &FieldValidationError{Field: "card_number", Code: "invalid", Message: "Enter a valid card number."}
	}
	if card.ExpMonth < 1 || card.ExpMonth > 12 {
		return &FieldValidationError{Field: "exp_month", Code: "invalid", Message: "Enter a valid expiry month."}
	}
	if card.ExpYear < 100 {
		card.ExpYear += 2000
	}
	endOfMonth := time.Date(card.ExpYear, time.Month(card.ExpMonth)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.Before(endOfMonth) {
		return &FieldValidationError{Field: "exp_year", Code: "expired", Message: "This card has expired."}
	}
	if l := len(card.CVC); l < 3 || l > 4 || !digitsOnly(card.CVC) {
		return &FieldValidationError{Field: "cvc", Code: "invalid", Message: "Enter a valid security code."}
	}
	return nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
