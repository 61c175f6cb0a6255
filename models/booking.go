package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPendingPayment      BookingStatus = "pending_payment"
	BookingWaitingConfirmation BookingStatus = "waiting_confirmation"
	BookingConfirmed           BookingStatus = "confirmed"
	BookingCompleted           BookingStatus = "completed"
	BookingCancelled           BookingStatus = "cancelled"
	BookingRejected            BookingStatus = "rejected"
)

// ActiveBookingStatuses hold room units.
var ActiveBookingStatuses = []BookingStatus{
	BookingPendingPayment,
	BookingWaitingConfirmation,
	BookingConfirmed,
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPendingPayment, BookingWaitingConfirmation, BookingConfirmed,
		BookingCompleted, BookingCancelled, BookingRejected:
		return true
	}
	return false
}

func (s BookingStatus) IsActive() bool {
	for _, a := range ActiveBookingStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// CancellableByUser reports whether the guest may still cancel.
func (s BookingStatus) CancellableByUser() bool {
	return s == BookingPendingPayment || s == BookingWaitingConfirmation
}

const (
	CancelledByUser   = "user"
	CancelledByTenant = "tenant"
	CancelledBySystem = "system"

	CancelReasonPaymentTimeout = "payment timeout"
)

type Booking struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"index;not null" json:"userId"`
	PropertyID      uint            `gorm:"index;not null" json:"propertyId"`
	CheckIn         time.Time       `gorm:"not null;index" json:"checkIn"`
	CheckOut        time.Time       `gorm:"not null;index" json:"checkOut"`
	Guests          int             `gorm:"not null" json:"guests"`
	Nights          int             `gorm:"not null" json:"nights"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"totalPrice"`
	Status          BookingStatus   `gorm:"size:30;not null;index" json:"status"`
	PaymentProofURL string          `json:"paymentProofUrl,omitempty"`
	PaymentProofAt  *time.Time      `json:"paymentProofAt,omitempty"`
	PaymentDeadline *time.Time      `gorm:"index" json:"paymentDeadline,omitempty"`
	CancelReason    string          `gorm:"size:255" json:"cancelReason,omitempty"`
	CancelledBy     string          `gorm:"size:20" json:"cancelledBy,omitempty"`
	ConfirmedAt     *time.Time      `json:"confirmedAt,omitempty"`
	ReminderSentAt  *time.Time      `json:"reminderSentAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	User     *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Property *Property     `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Items    []BookingItem `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"items"`
}

type BookingItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	BookingID uint            `gorm:"index;not null" json:"bookingId"`
	RoomID    uint            `gorm:"index;not null" json:"roomId"`
	Units     int             `gorm:"not null" json:"units"`
	Nights    int             `gorm:"not null" json:"nights"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	Room      *Room           `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}
