package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var cardNow = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

func validCard() Card {
	return Card{Number: "4242424242424242", ExpMonth: 12, ExpYear: 2030, CVC: "123"}
}

func TestValidateCardAccepts(t *testing.T) {
	require.Nil(t, ValidateCard(validCard(), cardNow))

	// Separators and two-digit years are tolerated.
	card := validCard()
	card.Number = "4242 4242-4242 4242"
	card.ExpYear = 30
	require.Nil(t, ValidateCard(card, cardNow))

	// A card expiring this month is still good until month end.
	card = validCard()
	card.ExpMonth = int(cardNow.Month())
	card.ExpYear = cardNow.Year()
	require.Nil(t, ValidateCard(card, cardNow))
}

func TestValidateCardNumber(t *testing.T) {
	card := validCard()
	card.Number = ""
	err := ValidateCard(card, cardNow)
	require.NotNil(t, err)
	require.Equal(t, "card_number", err.Field)
	require.Equal(t, "required", err.Code)

	card.Number = "4242"
	err = ValidateCard(card, cardNow)
	require.NotNil(t, err)
	require.Equal(t, "invalid", err.Code)

	// Fails the checksum by one digit.
	card.Number = "4242424242424241"
	err = ValidateCard(card, cardNow)
	require.NotNil(t, err)
	require.Equal(t, "card_number", err.Field)

	card.Number = "42424242424242ab"
	err = ValidateCard(card, cardNow)
	require.NotNil(t, err)
	require.Equal(t, "card_number", err.Field)
}

func TestValidateCardExpiry(t *testing.T) {
	card := validCard()
	card.ExpMonth = 13
	err := ValidateCard(card, cardNow)
	require.NotNil(t, err)
	require.Equal(t, "exp_month", err.Field)

	card = validCard()
	card.ExpMonth = int(cardNow.Month()) - 1
	card.ExpYear = cardNow.Year()
	err = ValidateCard(card, cardNow)
	require.NotNil(t, err)
	require.Equal(t, "exp_year", err.Field)
	require.Equal(t, "expired", err.Code)
}

func TestValidateCardCVC(t *testing.T) {
	for _, cvc := range []string{"", "12", "12345", "12a"} {
		card := validCard()
		card.CVC = cvc
		err := ValidateCard(card, cardNow)
		require.NotNil(t, err, cvc)
		require.Equal(t, "cvc", err.Field)
	}

	card := validCard()
	card.CVC = "1234"
	require.Nil(t, ValidateCard(card, cardNow))
}
