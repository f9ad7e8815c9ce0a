package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateIndianFields(t *testing.T) {
	cases := []struct {
		name  string
		field string
		value string
		valid bool
		code  string
	}{
		{"valid mobile", FieldPhone, "9876543210", true, ""},
		{"landline prefix rejected", FieldPhone, "1234567890", false, "invalid_phone"},
		{"valid pin", FieldPostalCode, "560001", true, ""},
		{"pin starting with zero", FieldPostalCode, "060001", false, "invalid_postal_code"},
		{"pin too short", FieldPostalCode, "5600", false, "invalid_postal_code"},
		{"valid pan", FieldTaxID, "ABCDE1234F", true, ""},
		{"lowercase pan rejected", FieldTaxID, "abcde1234f", false, "invalid_tax_id"},
		{"empty pan accepted", FieldTaxID, "", true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Validate(tc.field, tc.value, "IN")
			require.Equal(t, tc.valid, result.Valid)
			if !tc.valid {
				require.Equal(t, tc.code, result.Code)
			}
		})
	}
}

func TestValidateFallsBackToDefaultRules(t *testing.T) {
	// No dedicated rule set for DE; the generic patterns apply.
	require.True(t, Validate(FieldPhone, "+49 3012 3456", "DE").Valid)
	require.True(t, Validate(FieldPostalCode, "10115", "DE").Valid)
	require.False(t, Validate(FieldPostalCode, "!", "DE").Valid)
}

func TestValidateCountryAgnosticFields(t *testing.T) {
	require.False(t, Validate(FieldFullName, "A", "US").Valid)
	require.True(t, Validate(FieldFullName, "Asha Rao", "US").Valid)

	require.False(t, Validate(FieldEmail, "not-an-email", "US").Valid)
	require.True(t, Validate(FieldEmail, "asha@example.org", "US").Valid)

	for _, field := range []string{FieldState, FieldCity, FieldAddress} {
		require.False(t, Validate(field, "  ", "US").Valid, field)
		require.True(t, Validate(field, "x", "US").Valid, field)
	}
}

func TestValidateGBPostcode(t *testing.T) {
	require.True(t, Validate(FieldPostalCode, "SW1A 1AA", "GB").Valid)
	require.False(t, Validate(FieldPostalCode, "12345", "GB").Valid)
}

func TestValidateUnknownField(t *testing.T) {
	result := Validate("favourite_colour", "blue", "US")
	require.False(t, result.Valid)
	require.Equal(t, "unknown_field", result.Code)
}

func TestValidateNormalizesCountryCode(t *testing.T) {
	require.True(t, Validate(FieldPhone, "9876543210", " in ").Valid)
	require.False(t, Validate(FieldPhone, "1234567890", " in ").Valid)
}
