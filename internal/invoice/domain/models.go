// Package domain contains invoice records and their numbering sequence.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Invoice is the tax receipt issued for exactly one donation. The invoice
// number and donation linkage never change once assigned, even across
// content regeneration.
type Invoice struct {
	ID                     snowflake.ID `json:"id" gorm:"primaryKey"`
	InvoiceNumber          string       `json:"invoice_number" gorm:"type:text;not null;uniqueIndex:ux_invoices_number"`
	DonationID             snowflake.ID `json:"donation_id" gorm:"not null;uniqueIndex:ux_invoices_donation"`
	TaxExemptionApplicable bool         `json:"tax_exemption_applicable" gorm:"not null;default:false"`
	EmailSent              bool         `json:"email_sent" gorm:"not null;default:false"`
	EmailSentAt            *time.Time   `json:"email_sent_at,omitempty"`
	ContentRevision        int          `json:"content_revision" gorm:"not null;default:1"`
	CreatedAt              time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt              time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceSequence is the per-year counter behind invoice numbers.
type InvoiceSequence struct {
	Year  int   `gorm:"primaryKey"`
	Value int64 `gorm:"not null;default:0"`
}

// TableName sets the database table name.
func (InvoiceSequence) TableName() string { return "invoice_sequences" }
