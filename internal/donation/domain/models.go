// Package domain contains the durable donation record and its draft form.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// DonationType distinguishes one-time from recurring cadences.
type DonationType string

const (
	DonationTypeOneTime   DonationType = "one_time"
	DonationTypeMonthly   DonationType = "monthly"
	DonationTypeQuarterly DonationType = "quarterly"
	DonationTypeYearly    DonationType = "yearly"
)

func (t DonationType) Valid() bool {
	switch t {
	case DonationTypeOneTime, DonationTypeMonthly, DonationTypeQuarterly, DonationTypeYearly:
		return true
	}
	return false
}

func (t DonationType) Recurring() bool {
	return t.Valid() && t != DonationTypeOneTime
}

// PaymentStatus mirrors the gateway intent status observed at save time.
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Donor is collected by the wizard's donor-details step and immutable once
// submitted with a donation.
type Donor struct {
	FullName   string  `json:"full_name" gorm:"column:donor_name;type:text;not null"`
	Email      string  `json:"email" gorm:"column:donor_email;type:text;not null"`
	Phone      string  `json:"phone" gorm:"column:donor_phone;type:text;not null"`
	Country    string  `json:"country" gorm:"column:donor_country;type:text;not null"`
	State      string  `json:"state" gorm:"column:donor_state;type:text;not null;default:''"`
	City       string  `json:"city" gorm:"column:donor_city;type:text;not null;default:''"`
	PostalCode string  `json:"postal_code" gorm:"column:donor_postal_code;type:text;not null;default:''"`
	Address    string  `json:"address" gorm:"column:donor_address;type:text;not null;default:''"`
	TaxID      *string `json:"tax_id,omitempty" gorm:"column:donor_tax_id;type:text"`
}

// DonationDraft is the in-memory, not-yet-persisted donation collected by
// the wizard. It has no durable identity until a charge succeeds.
type DonationDraft struct {
	Amount      int64                  `json:"amount"`
	Currency    string                 `json:"currency"`
	Type        DonationType           `json:"donation_type"`
	CampaignRef *string                `json:"campaign_ref,omitempty"`
	Donor       Donor                  `json:"donor"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// MetadataKeyPaymentMethod stores the gateway payment method token on a
// recurring donation so later off-session charges can reuse it.
const MetadataKeyPaymentMethod = "payment_method_id"

// Donation is the durable record. A row exists if and only if the matching
// payment intent reached "succeeded".
type Donation struct {
	ID              snowflake.ID      `json:"id" gorm:"primaryKey"`
	Amount          int64             `json:"amount" gorm:"not null"`
	Currency        string            `json:"currency" gorm:"type:text;not null"`
	Type            DonationType      `json:"donation_type" gorm:"column:donation_type;type:text;not null"`
	CampaignRef     *string           `json:"campaign_ref,omitempty" gorm:"type:text"`
	Donor           Donor             `json:"donor" gorm:"embedded"`
	PaymentStatus   PaymentStatus     `json:"payment_status" gorm:"type:text;not null"`
	PaymentIntentID string            `json:"payment_intent_id" gorm:"type:text;not null;uniqueIndex:ux_donations_payment_intent"`
	Metadata        datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt       time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Donation) TableName() string { return "donations" }
