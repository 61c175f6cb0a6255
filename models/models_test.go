package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankAccountValidate(t *testing.T) {
	acc := BankAccount{BankName: "Bank Central Asia", BankCode: " bca ", AccountNumber: "1234567890", AccountHolder: "Budi"}
	require.NoError(t, acc.Validate())
	assert.Equal(t, "BCA", acc.BankCode)

	acc.AccountNumber = "12345"
	assert.EqualError(t, acc.Validate(), "account number for BCA must have 10 digits")

	acc = BankAccount{BankName: "CIMB Niaga", BankCode: "cimb", AccountNumber: "123456789012", AccountHolder: "Ani"}
	assert.EqualError(t, acc.Validate(), "account number for CIMB must have 13 to 14 digits")

	acc = BankAccount{BankName: "Other", BankCode: "XYZ", AccountNumber: "12ab56", AccountHolder: "Ani"}
	assert.Error(t, acc.Validate())

	acc = BankAccount{BankName: "Other", BankCode: "XYZ", AccountNumber: "123456", AccountHolder: "Ani"}
	assert.NoError(t, acc.Validate())
}

func TestBookingStatus(t *testing.T) {
	assert.True(t, BookingPendingPayment.CancellableByUser())
	assert.True(t, BookingWaitingConfirmation.CancellableByUser())
	assert.False(t, BookingConfirmed.CancellableByUser())
	assert.False(t, BookingCompleted.CancellableByUser())

	assert.True(t, BookingConfirmed.IsActive())
	assert.False(t, BookingCancelled.IsActive())
	assert.False(t, BookingRejected.IsActive())

	assert.True(t, BookingRejected.Valid())
	assert.False(t, BookingStatus("expired").Valid())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleTenant.Valid())
	assert.False(t, Role("superuser").Valid())
}

func TestVerificationTokenExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := VerificationToken{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, tok.Expired(now))
	assert.True(t, tok.Expired(now.Add(time.Hour)))
}
