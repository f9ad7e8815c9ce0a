// Package domain contains the recurring subscription lifecycle.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the subscription lifecycle state. cancelled and completed are
// terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// RecurringSubscription schedules repeat charges for a recurring donation.
type RecurringSubscription struct {
	ID                 snowflake.ID `json:"id" gorm:"primaryKey"`
	DonationID         snowflake.ID `json:"donation_id" gorm:"not null;index:ix_recurring_donation"`
	Status             Status       `json:"status" gorm:"type:text;not null;index:ix_recurring_status"`
	NextPaymentAt      *time.Time   `json:"next_payment_at,omitempty"`
	PaymentCount       int          `json:"payment_count" gorm:"not null;default:0"`
	FailedPaymentCount int          `json:"failed_payment_count" gorm:"not null;default:0"`
	MaxPaymentCount    int          `json:"max_payment_count" gorm:"not null;default:0"`
	CancellationReason *string      `json:"cancellation_reason,omitempty" gorm:"type:text"`
	PausedAt           *time.Time   `json:"paused_at,omitempty"`
	ResumedAt          *time.Time   `json:"resumed_at,omitempty"`
	CancelledAt        *time.Time   `json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time   `json:"completed_at,omitempty"`
	CreatedAt          time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (RecurringSubscription) TableName() string { return "recurring_subscriptions" }

// transitions is the full set of allowed status changes.
var transitions = map[Status]map[Status]bool{
	StatusActive: {
		StatusPaused:    true,
		StatusCancelled: true,
		StatusCompleted: true,
	},
	StatusPaused: {
		StatusActive:    true,
		StatusCancelled: true,
	},
}

// CanTransition reports whether from may change to to.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}
