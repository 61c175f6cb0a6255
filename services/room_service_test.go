package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoomService(f *fixture) *RoomService {
	return NewRoomService(f.db, NewCache(nil, nopLogger()), nil, nopLogger())
}

func TestRoomCreateAndUpdate(t *testing.T) {
	f := newFixture(t)
	s := newRoomService(f)
	ctx := context.Background()

	_, err := s.Create(ctx, f.host.ID, RoomInput{PropertyID: f.property.ID, Name: "Suite", Capacity: 3})
	requireStatus(t, err, http.StatusBadRequest)

	room, err := s.Create(ctx, f.host.ID, RoomInput{
		PropertyID: f.property.ID,
		Name:       "  Suite ",
		Capacity:   3,
		BasePrice:  decimal.RequireFromString("1500000.555"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Suite", room.Name)
	assert.Equal(t, 1, room.TotalUnits)
	assert.Equal(t, "1500000.56", room.BasePrice.StringFixed(2))

	_, err = s.Create(ctx, f.guest.ID, RoomInput{PropertyID: f.property.ID, Name: "Nope", Capacity: 1, BasePrice: decimal.NewFromInt(1)})
	require.Error(t, err)

	units := 3
	updated, err := s.Update(ctx, f.host.ID, room.ID, RoomUpdateInput{TotalUnits: &units})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.TotalUnits)
	assert.Equal(t, "Suite", updated.Name)

	zero := decimal.Zero
	_, err = s.Update(ctx, f.host.ID, room.ID, RoomUpdateInput{BasePrice: &zero})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestRoomDeleteRefusesActiveBookings(t *testing.T) {
	f := newFixture(t)
	s := newRoomService(f)
	bookings := newBookingService(t, f, &fakeNotifier{})
	ctx := context.Background()

	b, err := bookings.Create(ctx, f.guest.ID, f.booking("2030-01-10", "2030-01-12"))
	require.NoError(t, err)

	err = s.Delete(ctx, f.host.ID, f.room.ID)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = bookings.Cancel(ctx, f.guest.ID, b.ID, "")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, f.host.ID, f.room.ID))

	_, err = s.Get(ctx, f.room.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestRoomBlocksAffectAvailability(t *testing.T) {
	f := newFixture(t)
	s := newRoomService(f)
	ctx := context.Background()

	avail, err := s.Availability(ctx, f.room.ID, "2030-03-01", "2030-03-05", 1)
	require.NoError(t, err)
	assert.True(t, avail.Available)

	block, err := s.AddBlock(ctx, f.host.ID, f.room.ID, RoomBlockInput{StartDate: "2030-03-03", EndDate: "2030-03-04", Reason: "renovation"})
	require.NoError(t, err)

	avail, err = s.Availability(ctx, f.room.ID, "2030-03-01", "2030-03-05", 1)
	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.Equal(t, 0, avail.AvailableUnits)

	// the block ends before the 4th
	avail, err = s.Availability(ctx, f.room.ID, "2030-03-04", "2030-03-06", 1)
	require.NoError(t, err)
	assert.True(t, avail.Available)

	blocks, err := s.ListBlocks(ctx, f.room.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	_, err = s.AddBlock(ctx, f.host.ID, f.room.ID, RoomBlockInput{StartDate: "2030-03-05", EndDate: "2030-03-05"})
	requireStatus(t, err, http.StatusBadRequest)

	err = s.DeleteBlock(ctx, f.guest.ID, f.room.ID, block.ID)
	require.Error(t, err)
	require.NoError(t, s.DeleteBlock(ctx, f.host.ID, f.room.ID, block.ID))
	err = s.DeleteBlock(ctx, f.host.ID, f.room.ID, block.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestRoomPrices(t *testing.T) {
	f := newFixture(t)
	s := newRoomService(f)

	prices, err := s.Prices(context.Background(), f.room.ID, "2030-03-04", "2030-03-06")
	require.NoError(t, err)
	assert.Equal(t, 2, prices.Nights)
	require.Len(t, prices.Days, 2)
	assert.Equal(t, "2030-03-04", prices.Days[0].Date)

	sum := decimal.Zero
	for _, d := range prices.Days {
		sum = sum.Add(d.Price)
	}
	assert.True(t, sum.Equal(prices.Total))

	_, err = s.Prices(context.Background(), f.room.ID, "2030-03-06", "2030-03-04")
	requireStatus(t, err, http.StatusBadRequest)
}
