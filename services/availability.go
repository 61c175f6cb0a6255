package services

import (
	"time"

	"gorm.io/gorm"

	"staycation/models"
)

// Occupancy holds booked units per room per day and maintenance blocks for a date window.
type Occupancy struct {
	booked map[uint]map[string]int
	blocks map[uint][]models.RoomBlock
}

type bookedRow struct {
	RoomID   uint
	Units    int
	CheckIn  time.Time
	CheckOut time.Time
}

// LoadOccupancy reads active bookings and blocks touching [from, to) for the given rooms.
func LoadOccupancy(db *gorm.DB, roomIDs []uint, from, to time.Time) (*Occupancy, error) {
	occ := &Occupancy{booked: map[uint]map[string]int{}, blocks: map[uint][]models.RoomBlock{}}
	if len(roomIDs) == 0 {
		return occ, nil
	}

	var rows []bookedRow
	err := db.Table("booking_items").
		Select("booking_items.room_id, booking_items.units, bookings.check_in, bookings.check_out").
		Joins("JOIN bookings ON bookings.id = booking_items.booking_id").
		Where("booking_items.room_id IN ?", roomIDs).
		Where("bookings.status IN ?", models.ActiveBookingStatuses).
		Where("bookings.check_in < ? AND bookings.check_out > ?", to, from).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		start, end := r.CheckIn, r.CheckOut
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		days := occ.booked[r.RoomID]
		if days == nil {
			days = map[string]int{}
			occ.booked[r.RoomID] = days
		}
		EachDay(start, end, func(day time.Time) {
			days[day.Format(DateLayout)] += r.Units
		})
	}

	var blocks []models.RoomBlock
	err = db.Where("room_id IN ? AND start_date < ? AND end_date > ?", roomIDs, to, from).
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		occ.blocks[b.RoomID] = append(occ.blocks[b.RoomID], b)
	}
	return occ, nil
}

func (o *Occupancy) BookedUnits(roomID uint, day time.Time) int {
	return o.booked[roomID][TruncateDay(day).Format(DateLayout)]
}

func (o *Occupancy) Blocked(roomID uint, day time.Time) bool {
	day = TruncateDay(day)
	for _, b := range o.blocks[roomID] {
		if !day.Before(TruncateDay(b.StartDate)) && day.Before(TruncateDay(b.EndDate)) {
			return true
		}
	}
	return false
}

func (o *Occupancy) AvailableUnits(room models.Room, day time.Time) int {
	if o.Blocked(room.ID, day) {
		return 0
	}
	free := room.TotalUnits - o.BookedUnits(room.ID, day)
	if free < 0 {
		return 0
	}
	return free
}

// MinAvailable is the number of units free on every night of [from, to).
func (o *Occupancy) MinAvailable(room models.Room, from, to time.Time) int {
	min := room.TotalUnits
	EachDay(from, to, func(day time.Time) {
		if free := o.AvailableUnits(room, day); free < min {
			min = free
		}
	})
	return min
}
