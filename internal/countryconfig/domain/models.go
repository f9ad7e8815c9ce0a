// Package domain contains the country configuration catalog and the
// data-driven validation rules derived from it.
package domain

import "time"

// CountryConfig drives currency display, minimum donation gating, and
// tax-benefit eligibility for a country. Read-only once loaded.
type CountryConfig struct {
	Code            string    `json:"code" gorm:"primaryKey;type:text"`
	Name            string    `json:"name" gorm:"type:text;not null"`
	CurrencyCode    string    `json:"currency_code" gorm:"type:text;not null"`
	CurrencySymbol  string    `json:"currency_symbol" gorm:"type:text;not null"`
	MinDonation     int64     `json:"min_donation" gorm:"not null"`
	TaxBenefit      bool      `json:"tax_benefit" gorm:"not null;default:false"`
	TaxSectionLabel string    `json:"tax_section_label" gorm:"type:text;not null;default:''"`
	StateLabel      string    `json:"state_label" gorm:"type:text;not null;default:'State'"`
	PostalLabel     string    `json:"postal_label" gorm:"type:text;not null;default:'Postal code'"`
	CreatedAt       time.Time `json:"-" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time `json:"-" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CountryConfig) TableName() string { return "country_configs" }
