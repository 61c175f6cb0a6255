package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staycation/config"
	"staycation/models"
)

func newCronService(t *testing.T, f *fixture, n *fakeNotifier, now string) (*CronService, *BookingService) {
	t.Helper()
	bookings := newBookingService(t, f, n)
	bookings.now = fixedClock(now)
	cron := NewCronService(f.db, bookings, n, nopLogger())
	cron.now = fixedClock(now)
	return cron, bookings
}

func TestCancelExpiredSweep(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&f.room).Update("total_units", 3).Error)
	n := &fakeNotifier{}
	cron, bookings := newCronService(t, f, n, "2025-10-01T08:00:00Z")
	ctx := context.Background()

	expired, err := bookings.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-03"))
	require.NoError(t, err)
	fresh, err := bookings.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-03"))
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", expired.ID).
		Update("payment_deadline", time.Date(2025, 10, 1, 7, 0, 0, 0, time.UTC)).Error)

	res, err := cron.CancelExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Succeeded)

	var got models.Booking
	require.NoError(t, f.db.First(&got, expired.ID).Error)
	assert.Equal(t, models.BookingCancelled, got.Status)
	assert.Equal(t, models.CancelReasonPaymentTimeout, got.CancelReason)
	assert.Equal(t, models.CancelledBySystem, got.CancelledBy)

	var untouched models.Booking
	require.NoError(t, f.db.First(&untouched, fresh.ID).Error)
	assert.Equal(t, models.BookingPendingPayment, untouched.Status)
	assert.Equal(t, 1, n.count("cancelled"))
}

func TestCancelExpiredSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	n := &fakeNotifier{}
	cron, bookings := newCronService(t, f, n, "2025-10-01T08:00:00Z")
	ctx := context.Background()

	b, err := bookings.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-03"))
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", b.ID).
		Update("payment_deadline", time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)).Error)

	n.fail = true
	res, err := cron.CancelExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Zero(t, res.Failed)
}

func TestSweepLock(t *testing.T) {
	f := newFixture(t)
	cron, _ := newCronService(t, f, &fakeNotifier{}, "2025-10-01T08:00:00Z")

	require.True(t, cron.tryLock(JobCancelExpired))
	_, err := cron.CancelExpired(context.Background())
	assert.ErrorIs(t, err, ErrSweepRunning)

	// other jobs are not blocked
	_, err = cron.CompleteStays(context.Background())
	assert.NoError(t, err)

	cron.unlock(JobCancelExpired)
	_, err = cron.CancelExpired(context.Background())
	assert.NoError(t, err)
}

func TestRemindersAndCompletion(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&f.room).Update("total_units", 3).Error)
	n := &fakeNotifier{}
	cron, bookings := newCronService(t, f, n, "2025-10-31T08:00:00Z")
	ctx := context.Background()

	tomorrow, err := bookings.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-03"))
	require.NoError(t, err)
	later, err := bookings.Create(ctx, f.guest.ID, f.booking("2025-11-02", "2025-11-03"))
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Booking{}).Where("id IN ?", []uint{tomorrow.ID, later.ID}).
		Update("status", models.BookingConfirmed).Error)

	res, err := cron.SendReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, tomorrow.ID, n.last("reminder").bookingID)

	res, err = cron.SendReminders(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Processed)

	// three days later both stays are over
	cron.now = fixedClock("2025-11-03T02:00:00Z")
	res, err = cron.CompleteStays(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)

	var got models.Booking
	require.NoError(t, f.db.First(&got, later.ID).Error)
	assert.Equal(t, models.BookingCompleted, got.Status)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	f := newFixture(t)
	cron, _ := newCronService(t, f, &fakeNotifier{}, "2025-10-01T08:00:00Z")

	_, err := cron.Scheduler(config.CronConfig{CancelSpec: "@every 5m", ReminderSpec: "0 9 * * *", CompleteSpec: "0 1 * * *"})
	assert.NoError(t, err)

	_, err = cron.Scheduler(config.CronConfig{CancelSpec: "every now and then", ReminderSpec: "0 9 * * *", CompleteSpec: "0 1 * * *"})
	assert.Error(t, err)
}
