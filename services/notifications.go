package services

import (
	"context"

	"staycation/models"
)

// Notifier delivers transactional email. Implemented by mail.Notifier.
type Notifier interface {
	SendVerification(ctx context.Context, user models.User, token string) error
	SendPasswordReset(ctx context.Context, user models.User, token string) error
	SendBookingCreated(ctx context.Context, b *models.Booking) error
	SendPaymentConfirmed(ctx context.Context, b *models.Booking) error
	SendPaymentRejected(ctx context.Context, b *models.Booking) error
	SendBookingCancelled(ctx context.Context, b *models.Booking) error
	SendCheckInReminder(ctx context.Context, b *models.Booking) error
}
