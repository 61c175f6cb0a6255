package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staycation/models"
)

func newBookingService(t *testing.T, f *fixture, n *fakeNotifier) *BookingService {
	t.Helper()
	s := NewBookingService(f.db, n, NewLocalStorage(t.TempDir(), 1<<20), testBookingConfig, nopLogger())
	s.now = fixedClock("2025-10-01T08:00:00Z")
	return s
}

func requireStatus(t *testing.T, err error, status int) *AppError {
	t.Helper()
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.Status, appErr.Message)
	return appErr
}

func (f *fixture) booking(checkIn, checkOut string) CreateBookingInput {
	return CreateBookingInput{
		PropertyID: f.property.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     2,
		Items:      []BookingItemInput{{RoomID: f.room.ID, Units: 1}},
	}
}

func TestValidateStay(t *testing.T) {
	today := mustDate(t, "2025-10-01")

	nights, err := ValidateStay(mustDate(t, "2025-11-01"), mustDate(t, "2025-11-05"), today, 30)
	require.NoError(t, err)
	assert.Equal(t, 4, nights)

	_, err = ValidateStay(mustDate(t, "2025-11-05"), mustDate(t, "2025-11-05"), today, 30)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = ValidateStay(mustDate(t, "2025-11-01"), mustDate(t, "2025-12-02"), today, 30)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = ValidateStay(mustDate(t, "2025-09-30"), mustDate(t, "2025-10-02"), today, 30)
	requireStatus(t, err, http.StatusBadRequest)

	// checking in today is fine
	_, err = ValidateStay(today, mustDate(t, "2025-10-02"), today.Add(15*time.Hour), 30)
	assert.NoError(t, err)
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	n := &fakeNotifier{}
	s := newBookingService(t, f, n)
	ctx := context.Background()

	first, err := s.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-05"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingPendingPayment, first.Status)
	assert.Equal(t, 4, first.Nights)
	require.NotNil(t, first.PaymentDeadline)
	assert.True(t, s.now().Add(time.Hour).Equal(*first.PaymentDeadline))
	assert.Equal(t, 1, n.count("created"))

	_, err = s.Create(ctx, f.guest.ID, f.booking("2025-11-03", "2025-11-06"))
	requireStatus(t, err, http.StatusConflict)

	second, err := s.Create(ctx, f.guest.ID, f.booking("2025-11-05", "2025-11-08"))
	require.NoError(t, err)
	assert.Equal(t, 3, second.Nights)
}

func TestCancelledBookingFreesRoom(t *testing.T) {
	f := newFixture(t)
	s := newBookingService(t, f, &fakeNotifier{})
	ctx := context.Background()

	b, err := s.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-05"))
	require.NoError(t, err)
	_, err = s.Cancel(ctx, f.guest.ID, b.ID, "plans changed")
	require.NoError(t, err)

	_, err = s.Create(ctx, f.guest.ID, f.booking("2025-11-03", "2025-11-06"))
	assert.NoError(t, err)
}

func TestCreateBookingMultiUnitAndCapacity(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&f.room).Update("total_units", 3).Error)
	s := newBookingService(t, f, &fakeNotifier{})
	ctx := context.Background()

	in := f.booking("2025-11-03", "2025-11-05")
	in.Guests = 5
	_, err := s.Create(ctx, f.guest.ID, in)
	requireStatus(t, err, http.StatusBadRequest)

	in.Items = []BookingItemInput{{RoomID: f.room.ID, Units: 2}, {RoomID: f.room.ID, Units: 1}}
	b, err := s.Create(ctx, f.guest.ID, in)
	require.NoError(t, err)
	require.Len(t, b.Items, 1)
	assert.Equal(t, 3, b.Items[0].Units)
	assert.True(t, decimal.NewFromInt(6_000_000).Equal(b.TotalPrice), b.TotalPrice.String())

	in.Guests = 1
	in.Items = []BookingItemInput{{RoomID: f.room.ID, Units: 1}}
	_, err = s.Create(ctx, f.guest.ID, in)
	requireStatus(t, err, http.StatusConflict)
}

func TestCreateBookingLegacyRoomAndForeignRoom(t *testing.T) {
	f := newFixture(t)
	s := newBookingService(t, f, &fakeNotifier{})
	ctx := context.Background()

	other := models.Property{TenantID: f.tenant.ID, Name: "Other", City: "Bandung"}
	require.NoError(t, f.db.Create(&other).Error)
	foreign := models.Room{PropertyID: other.ID, Name: "Standard", Capacity: 2, BasePrice: decimal.NewFromInt(300_000), TotalUnits: 1}
	require.NoError(t, f.db.Create(&foreign).Error)

	in := CreateBookingInput{PropertyID: f.property.ID, CheckIn: "2025-11-01", CheckOut: "2025-11-02", Guests: 1, RoomID: foreign.ID}
	_, err := s.Create(ctx, f.guest.ID, in)
	requireStatus(t, err, http.StatusBadRequest)

	in.RoomID = f.room.ID
	b, err := s.Create(ctx, f.guest.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Items[0].Units)
}

func TestCreateBookingAppliesPriceRules(t *testing.T) {
	f := newFixture(t)
	rule := models.PriceRule{
		PropertyID: f.property.ID, Name: "weekend", Type: models.PriceRulePercentage,
		Value: decimal.NewFromInt(30), DayScope: models.DayScopeWeekend, IsActive: true,
		StartDate: mustDate(t, "2025-10-01"), EndDate: mustDate(t, "2025-12-31"),
	}
	require.NoError(t, f.db.Create(&rule).Error)
	s := newBookingService(t, f, &fakeNotifier{})

	// Fri, Sat, Sun nights
	b, err := s.Create(context.Background(), f.guest.ID, f.booking("2025-10-31", "2025-11-03"))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3_600_000).Equal(b.TotalPrice), b.TotalPrice.String())
}

func TestBlockedRoomCannotBeBooked(t *testing.T) {
	f := newFixture(t)
	block := models.RoomBlock{RoomID: f.room.ID, StartDate: mustDate(t, "2025-11-02"), EndDate: mustDate(t, "2025-11-04")}
	require.NoError(t, f.db.Create(&block).Error)
	s := newBookingService(t, f, &fakeNotifier{})

	_, err := s.Create(context.Background(), f.guest.ID, f.booking("2025-11-03", "2025-11-05"))
	requireStatus(t, err, http.StatusConflict)

	_, err = s.Create(context.Background(), f.guest.ID, f.booking("2025-11-04", "2025-11-05"))
	assert.NoError(t, err)
}

func TestCancelRequiresCancellableStatus(t *testing.T) {
	f := newFixture(t)
	n := &fakeNotifier{}
	s := newBookingService(t, f, n)
	ctx := context.Background()

	b, err := s.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-05"))
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", b.ID).Update("status", models.BookingConfirmed).Error)

	_, err = s.Cancel(ctx, f.guest.ID, b.ID, "too late")
	requireStatus(t, err, http.StatusBadRequest)

	// strangers cannot see it at all
	_, err = s.Cancel(ctx, f.host.ID, b.ID, "")
	requireStatus(t, err, http.StatusNotFound)
}

func TestCancelPendingBooking(t *testing.T) {
	f := newFixture(t)
	n := &fakeNotifier{}
	s := newBookingService(t, f, n)
	ctx := context.Background()

	b, err := s.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-05"))
	require.NoError(t, err)

	cancelled, err := s.Cancel(ctx, f.guest.ID, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.Equal(t, models.CancelledByUser, cancelled.CancelledBy)
	assert.Equal(t, "guest@example.com", n.last("cancelled").to)

	_, err = s.Cancel(ctx, f.guest.ID, b.ID, "")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestTenantConfirmAndReject(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&f.room).Update("total_units", 2).Error)
	n := &fakeNotifier{}
	s := newBookingService(t, f, n)
	ctx := context.Background()

	b1, err := s.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-05"))
	require.NoError(t, err)
	b2, err := s.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-05"))
	require.NoError(t, err)

	_, err = s.Confirm(ctx, f.host.ID, b1.ID)
	requireStatus(t, err, http.StatusBadRequest)

	for _, id := range []uint{b1.ID, b2.ID} {
		require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status": models.BookingWaitingConfirmation, "payment_proof_url": "/api/uploads/payment-proofs/x.png",
		}).Error)
	}

	_, err = s.Confirm(ctx, f.guest.ID, b1.ID)
	require.Error(t, err)

	confirmed, err := s.Confirm(ctx, f.host.ID, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, 1, n.count("confirmed"))

	rejected, err := s.Reject(ctx, f.host.ID, b2.ID, "amount does not match")
	require.NoError(t, err)
	assert.Equal(t, models.BookingRejected, rejected.Status)
	assert.Equal(t, 1, n.count("rejected"))

	_, err = s.TenantCancel(ctx, f.host.ID, b1.ID, "")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestTenantCancelUnpaid(t *testing.T) {
	f := newFixture(t)
	s := newBookingService(t, f, &fakeNotifier{})
	ctx := context.Background()

	b, err := s.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-05"))
	require.NoError(t, err)
	cancelled, err := s.TenantCancel(ctx, f.host.ID, b.ID, "maintenance")
	require.NoError(t, err)
	assert.Equal(t, models.CancelledByTenant, cancelled.CancelledBy)
	assert.Equal(t, "maintenance", cancelled.CancelReason)
}

func TestGetBookingVisibility(t *testing.T) {
	f := newFixture(t)
	s := newBookingService(t, f, &fakeNotifier{})
	ctx := context.Background()

	b, err := s.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-05"))
	require.NoError(t, err)

	_, err = s.Get(ctx, f.guest.ID, models.RoleUser, b.ID)
	assert.NoError(t, err)
	_, err = s.Get(ctx, f.host.ID, models.RoleTenant, b.ID)
	assert.NoError(t, err)
	_, err = s.Get(ctx, 999, models.RoleAdmin, b.ID)
	assert.NoError(t, err)

	stranger := models.User{Name: "Other", Email: "other@example.com", Role: models.RoleTenant}
	require.NoError(t, f.db.Create(&stranger).Error)
	_, err = s.Get(ctx, stranger.ID, models.RoleTenant, b.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestListForUserFiltersStatus(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&f.room).Update("total_units", 5).Error)
	s := newBookingService(t, f, &fakeNotifier{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-02"))
		require.NoError(t, err)
	}
	list, page, err := s.ListForUser(ctx, f.guest.ID, "", NewPageQuery(1, 2))
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, int64(3), page.Total)
	assert.True(t, page.HasNext)

	list, _, err = s.ListForUser(ctx, f.guest.ID, "cancelled", NewPageQuery(1, 10))
	require.NoError(t, err)
	assert.Empty(t, list)

	_, _, err = s.ListForUser(ctx, f.guest.ID, "expired", NewPageQuery(1, 10))
	requireStatus(t, err, http.StatusBadRequest)
}

func TestQuoteDoesNotBook(t *testing.T) {
	f := newFixture(t)
	s := newBookingService(t, f, &fakeNotifier{})
	q, err := s.Quote(context.Background(), f.booking("2025-11-03", "2025-11-05"))
	require.NoError(t, err)
	assert.True(t, q.Available)
	assert.Equal(t, 2, q.Nights)
	assert.Len(t, q.Items[0].Days, 2)
	assert.True(t, decimal.NewFromInt(2_000_000).Equal(q.Total))

	var count int64
	require.NoError(t, f.db.Model(&models.Booking{}).Count(&count).Error)
	assert.Zero(t, count)
}
