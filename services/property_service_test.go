package services

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staycation/models"
)

func seedSearch(t *testing.T, f *fixture) (pool, wifi models.Amenity, beach models.Property) {
	t.Helper()
	pool = models.Amenity{Name: "Pool"}
	wifi = models.Amenity{Name: "WiFi"}
	require.NoError(t, f.db.Create(&pool).Error)
	require.NoError(t, f.db.Create(&wifi).Error)
	require.NoError(t, f.db.Model(&f.property).Association("Amenities").Append(&pool, &wifi))

	beach = models.Property{TenantID: f.tenant.ID, Name: "Beach House", City: "Badung", Amenities: []models.Amenity{wifi}}
	require.NoError(t, f.db.Create(&beach).Error)
	rooms := []models.Room{
		{PropertyID: beach.ID, Name: "Family", Capacity: 4, BasePrice: decimal.NewFromInt(2_500_000), TotalUnits: 2},
		{PropertyID: beach.ID, Name: "Single", Capacity: 1, BasePrice: decimal.NewFromInt(400_000), TotalUnits: 1},
	}
	require.NoError(t, f.db.Create(&rooms).Error)

	// a property without rooms never shows up
	empty := models.Property{TenantID: f.tenant.ID, Name: "Empty Lot", City: "Gianyar"}
	require.NoError(t, f.db.Create(&empty).Error)
	return pool, wifi, beach
}

func newPropertyService(f *fixture, cache *Cache) *PropertyService {
	return NewPropertyService(f.db, cache, nil, nil, nopLogger())
}

func names(items []PropertyListItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestSearchFilters(t *testing.T) {
	f := newFixture(t)
	pool, wifi, _ := seedSearch(t, f)
	s := newPropertyService(f, nil)
	ctx := context.Background()

	res, err := s.Search(ctx, PropertySearch{SortBy: "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beach House", "Villa Ubud"}, names(res.Items))
	assert.Equal(t, int64(2), res.Pagination.Total)

	res, err = s.Search(ctx, PropertySearch{City: "gian"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Villa Ubud"}, names(res.Items))

	res, err = s.Search(ctx, PropertySearch{Guests: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beach House"}, names(res.Items))

	res, err = s.Search(ctx, PropertySearch{Amenities: joinIDs(pool.ID, wifi.ID)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Villa Ubud"}, names(res.Items))

	res, err = s.Search(ctx, PropertySearch{MinPrice: "2000000"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beach House"}, names(res.Items))

	res, err = s.Search(ctx, PropertySearch{SortBy: "price", Order: "asc"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Beach House", res.Items[0].Name)
	assert.True(t, decimal.NewFromInt(400_000).Equal(res.Items[0].MinPrice.Decimal))

	res, err = s.Search(ctx, PropertySearch{Q: "VILLA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Villa Ubud"}, names(res.Items))

	_, err = s.Search(ctx, PropertySearch{SortBy: "rating"})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = s.Search(ctx, PropertySearch{CheckIn: "2025-11-01"})
	requireStatus(t, err, http.StatusBadRequest)
}

func joinIDs(ids ...uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

func TestSearchExcludesFullyBookedProperties(t *testing.T) {
	f := newFixture(t)
	seedSearch(t, f)
	bookings := newBookingService(t, f, &fakeNotifier{})
	_, err := bookings.Create(context.Background(), f.guest.ID, f.booking("2025-11-01", "2025-11-05"))
	require.NoError(t, err)

	s := newPropertyService(f, nil)
	res, err := s.Search(context.Background(), PropertySearch{CheckIn: "2025-11-03", CheckOut: "2025-11-04"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beach House"}, names(res.Items))

	res, err = s.Search(context.Background(), PropertySearch{CheckIn: "2025-11-05", CheckOut: "2025-11-06"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
}

func TestSearchCountsUnitsPerNight(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&f.room).Update("total_units", 2).Error)
	bookings := newBookingService(t, f, &fakeNotifier{})
	ctx := context.Background()

	// back to back stays take one unit each, never two on the same night
	_, err := bookings.Create(ctx, f.guest.ID, f.booking("2025-11-01", "2025-11-03"))
	require.NoError(t, err)
	_, err = bookings.Create(ctx, f.guest.ID, f.booking("2025-11-03", "2025-11-05"))
	require.NoError(t, err)

	q, err := bookings.Quote(ctx, f.booking("2025-11-01", "2025-11-05"))
	require.NoError(t, err)
	assert.True(t, q.Available)

	s := newPropertyService(f, nil)
	res, err := s.Search(ctx, PropertySearch{CheckIn: "2025-11-01", CheckOut: "2025-11-05"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Villa Ubud"}, names(res.Items))

	_, err = bookings.Create(ctx, f.guest.ID, f.booking("2025-11-02", "2025-11-04"))
	require.NoError(t, err)
	res, err = s.Search(ctx, PropertySearch{CheckIn: "2025-11-01", CheckOut: "2025-11-05"})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestSearchPagination(t *testing.T) {
	f := newFixture(t)
	seedSearch(t, f)
	s := newPropertyService(f, nil)

	res, err := s.Search(context.Background(), PropertySearch{SortBy: "name", Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Villa Ubud"}, names(res.Items))
	assert.Equal(t, 2, res.Pagination.TotalPages)
	assert.False(t, res.Pagination.HasNext)
	assert.True(t, res.Pagination.HasPrev)
}

func TestSearchUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	f := newFixture(t)
	s := newPropertyService(f, NewCache(rdb, nopLogger()))
	ctx := context.Background()

	res, err := s.Search(ctx, PropertySearch{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.NotEmpty(t, mr.Keys())

	// a write behind the service's back is not seen until invalidation
	require.NoError(t, f.db.Model(&f.property).Update("name", "Renamed").Error)
	res, err = s.Search(ctx, PropertySearch{})
	require.NoError(t, err)
	assert.Equal(t, "Villa Ubud", res.Items[0].Name)

	s.InvalidateListings(ctx)
	assert.Empty(t, mr.Keys())
	res, err = s.Search(ctx, PropertySearch{})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", res.Items[0].Name)
}

func TestDetailUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	f := newFixture(t)
	require.NoError(t, f.db.Create(&models.BankAccount{
		TenantID: f.tenant.ID, BankName: "Bank Central Asia", BankCode: "BCA", AccountNumber: "1234567890", AccountHolder: "Host Stays",
	}).Error)
	s := newPropertyService(f, NewCache(rdb, nopLogger()))
	ctx := context.Background()

	detail, err := s.GetDetail(ctx, f.property.ID)
	require.NoError(t, err)
	require.Len(t, detail.Rooms, 1)
	require.NotNil(t, detail.Host)
	assert.Equal(t, "Host Stays", detail.Host.CompanyName)
	assert.NotEmpty(t, mr.Keys())

	require.NoError(t, f.db.Model(&f.property).Update("name", "Renamed").Error)
	cached, err := s.GetDetail(ctx, f.property.ID)
	require.NoError(t, err)
	assert.Equal(t, "Villa Ubud", cached.Name)
	require.Len(t, cached.Rooms, 1)
	assert.Equal(t, "Deluxe", cached.Rooms[0].Name)
	assert.True(t, decimal.NewFromInt(1_000_000).Equal(cached.Rooms[0].BasePrice))
	require.NotNil(t, cached.Host)
	require.Len(t, cached.Host.BankAccounts, 1)
	assert.Equal(t, "1234567890", cached.Host.BankAccounts[0].AccountNumber)

	s.InvalidateListings(ctx)
	fresh, err := s.GetDetail(ctx, f.property.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fresh.Name)
}

func TestPropertyOwnershipAndDelete(t *testing.T) {
	f := newFixture(t)
	s := newPropertyService(f, nil)
	ctx := context.Background()

	name := "Hijacked"
	_, err := s.Update(ctx, f.guest.ID, f.property.ID, PropertyUpdateInput{Name: &name})
	requireStatus(t, err, http.StatusForbidden)

	name = "Villa Ubud Retreat"
	updated, err := s.Update(ctx, f.host.ID, f.property.ID, PropertyUpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	bookings := newBookingService(t, f, &fakeNotifier{})
	bookings.now = fixedClock("2099-01-01T00:00:00Z")
	_, err = bookings.Create(ctx, f.guest.ID, f.booking("2099-02-01", "2099-02-03"))
	require.NoError(t, err)

	err = s.Delete(ctx, f.host.ID, f.property.ID)
	requireStatus(t, err, http.StatusBadRequest)

	require.NoError(t, f.db.Model(&models.Booking{}).Where("property_id = ?", f.property.ID).Update("status", models.BookingCancelled).Error)
	require.NoError(t, s.Delete(ctx, f.host.ID, f.property.ID))

	_, err = s.GetDetail(ctx, f.property.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestCreatePropertyGeocodes(t *testing.T) {
	f := newFixture(t)
	s := NewPropertyService(f.db, nil, stubGeocoder{lat: -8.5, lng: 115.26}, nil, nopLogger())

	p, err := s.Create(context.Background(), f.host.ID, PropertyInput{Name: "Rice Field Villa", City: "Ubud", Address: "Jl. Raya"}, nil)
	require.NoError(t, err)
	require.NotNil(t, p.Latitude)
	assert.Equal(t, -8.5, *p.Latitude)
	assert.Equal(t, 115.26, *p.Longitude)

	_, err = s.Create(context.Background(), f.host.ID, PropertyInput{Name: "X", City: "Y", AmenityIDs: []uint{99}}, nil)
	requireStatus(t, err, http.StatusBadRequest)
}

type stubGeocoder struct {
	lat, lng float64
}

func (g stubGeocoder) Geocode(context.Context, ...string) (float64, float64, error) {
	return g.lat, g.lng, nil
}

func TestPropertyDetailAndCalendar(t *testing.T) {
	f := newFixture(t)
	s := newPropertyService(f, nil)
	ctx := context.Background()

	b := models.Booking{UserID: f.guest.ID, PropertyID: f.property.ID, CheckIn: mustDate(t, "2025-11-01"), CheckOut: mustDate(t, "2025-11-02"),
		Guests: 1, Nights: 1, TotalPrice: decimal.NewFromInt(1), Status: models.BookingCompleted}
	require.NoError(t, f.db.Create(&b).Error)
	require.NoError(t, f.db.Create(&models.Review{BookingID: b.ID, UserID: f.guest.ID, PropertyID: f.property.ID, Rating: 4}).Error)

	detail, err := s.GetDetail(ctx, f.property.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Rooms, 1)
	assert.Equal(t, 4.0, detail.AvgRating)
	assert.Equal(t, int64(1), detail.ReviewCount)

	days, err := s.Calendar(ctx, f.property.ID, "2025-11")
	require.NoError(t, err)
	require.Len(t, days, 30)
	assert.True(t, days[0].IsWeekend)
	assert.True(t, days[0].Available)
	assert.True(t, decimal.NewFromInt(1_000_000).Equal(*days[0].MinPrice))

	_, err = s.Calendar(ctx, f.property.ID, "November")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCategoriesAndAmenities(t *testing.T) {
	f := newFixture(t)
	s := newPropertyService(f, nil)
	ctx := context.Background()

	_, err := s.CreateCategory(ctx, "Villa")
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, "Villa")
	requireStatus(t, err, http.StatusBadRequest)

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.CreateAmenity(ctx, "Parking", "car")
	require.NoError(t, err)
	amenities, err := s.ListAmenities(ctx)
	require.NoError(t, err)
	assert.Len(t, amenities, 1)
}
