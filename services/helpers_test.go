package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"staycation/config"
	"staycation/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type sentMail struct {
	kind      string
	to        string
	token     string
	bookingID uint
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeNotifier) record(kind, to, token string, bookingID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return assertErr("mail down")
	}
	f.sent = append(f.sent, sentMail{kind: kind, to: to, token: token, bookingID: bookingID})
	return nil
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func (f *fakeNotifier) SendVerification(_ context.Context, u models.User, token string) error {
	return f.record("verification", u.Email, token, 0)
}

func (f *fakeNotifier) SendPasswordReset(_ context.Context, u models.User, token string) error {
	return f.record("reset", u.Email, token, 0)
}

func (f *fakeNotifier) booking(kind string, b *models.Booking) error {
	to := ""
	if b.User != nil {
		to = b.User.Email
	}
	return f.record(kind, to, "", b.ID)
}

func (f *fakeNotifier) SendBookingCreated(_ context.Context, b *models.Booking) error {
	return f.booking("created", b)
}

func (f *fakeNotifier) SendPaymentConfirmed(_ context.Context, b *models.Booking) error {
	return f.booking("confirmed", b)
}

func (f *fakeNotifier) SendPaymentRejected(_ context.Context, b *models.Booking) error {
	return f.booking("rejected", b)
}

func (f *fakeNotifier) SendBookingCancelled(_ context.Context, b *models.Booking) error {
	return f.booking("cancelled", b)
}

func (f *fakeNotifier) SendCheckInReminder(_ context.Context, b *models.Booking) error {
	return f.booking("reminder", b)
}

func (f *fakeNotifier) last(kind string) *sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].kind == kind {
			m := f.sent[i]
			return &m
		}
	}
	return nil
}

func (f *fakeNotifier) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if m.kind == kind {
			n++
		}
	}
	return n
}

var testBookingConfig = config.BookingConfig{
	MaxNights:       30,
	PaymentTimeout:  time.Hour,
	VerificationTTL: time.Hour,
	ResetTTL:        time.Hour,
}

// fixture is a tenant with one property and one single-unit room.
type fixture struct {
	db       *gorm.DB
	guest    models.User
	host     models.User
	tenant   models.Tenant
	property models.Property
	room     models.Room
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{db: db}

	f.guest = models.User{Name: "Guest", Email: "guest@example.com", Role: models.RoleUser, IsEmailVerified: true}
	require.NoError(t, db.Create(&f.guest).Error)
	f.host = models.User{Name: "Host", Email: "host@example.com", Role: models.RoleTenant, IsEmailVerified: true}
	require.NoError(t, db.Create(&f.host).Error)
	f.tenant = models.Tenant{UserID: f.host.ID, CompanyName: "Host Stays"}
	require.NoError(t, db.Create(&f.tenant).Error)

	f.property = models.Property{TenantID: f.tenant.ID, Name: "Villa Ubud", City: "Gianyar"}
	require.NoError(t, db.Create(&f.property).Error)
	f.room = models.Room{PropertyID: f.property.ID, Name: "Deluxe", Capacity: 2, BasePrice: decimal.NewFromInt(1_000_000), TotalUnits: 1}
	require.NoError(t, db.Create(&f.room).Error)
	return f
}

func fixedClock(s string) func() time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
