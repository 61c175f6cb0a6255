package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"staycation/models"
)

type TenantProfileInput struct {
	CompanyName  *string               `json:"companyName" binding:"omitempty,max=150"`
	Phone        *string               `json:"phone" binding:"omitempty,max=20"`
	BankAccounts *[]models.BankAccount `json:"bankAccounts"`
}

type TenantBookingQuery struct {
	Status     string `form:"status"`
	PropertyID uint   `form:"propertyId"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type ReportQuery struct {
	From       string `form:"from"`
	To         string `form:"to"`
	PropertyID uint   `form:"propertyId"`
	GroupBy    string `form:"groupBy"`
}

type RoomCalendarDay struct {
	Date           string          `json:"date"`
	BookedUnits    int             `json:"bookedUnits"`
	AvailableUnits int             `json:"availableUnits"`
	Blocked        bool            `json:"blocked"`
	Price          decimal.Decimal `json:"price"`
	IsWeekend      bool            `json:"isWeekend"`
	IsHoliday      bool            `json:"isHoliday"`
}

type RoomCalendar struct {
	RoomID     uint              `json:"roomId"`
	RoomName   string            `json:"roomName"`
	TotalUnits int               `json:"totalUnits"`
	Days       []RoomCalendarDay `json:"days"`
}

type SalesRow struct {
	Key      string          `json:"key"`
	Label    string          `json:"label"`
	Bookings int             `json:"bookings"`
	Nights   int             `json:"nights"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type SalesReport struct {
	From          string          `json:"from"`
	To            string          `json:"to"`
	GroupBy       string          `json:"groupBy"`
	Rows          []SalesRow      `json:"rows"`
	TotalBookings int             `json:"totalBookings"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

type OccupancyRow struct {
	PropertyID          uint    `json:"propertyId"`
	PropertyName        string  `json:"propertyName"`
	AvailableRoomNights int     `json:"availableRoomNights"`
	BookedRoomNights    int     `json:"bookedRoomNights"`
	OccupancyRate       float64 `json:"occupancyRate"`
}

type OccupancyReport struct {
	From          string         `json:"from"`
	To            string         `json:"to"`
	Rows          []OccupancyRow `json:"rows"`
	OccupancyRate float64        `json:"occupancyRate"`
}

// statuses that count as revenue
var revenueStatuses = []models.BookingStatus{models.BookingConfirmed, models.BookingCompleted}

type TenantService struct {
	db       *gorm.DB
	cache    *Cache
	bookings *BookingService
	log      *zap.Logger
	now      func() time.Time
}

func NewTenantService(db *gorm.DB, cache *Cache, bookings *BookingService, log *zap.Logger) *TenantService {
	return &TenantService{db: db, cache: cache, bookings: bookings, log: log, now: time.Now}
}

func (s *TenantService) Profile(ctx context.Context, userID uint) (*models.Tenant, error) {
	tenant, err := TenantFor(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	var full models.Tenant
	if err := s.db.WithContext(ctx).Preload("User").Preload("BankAccounts").First(&full, tenant.ID).Error; err != nil {
		return nil, err
	}
	return &full, nil
}

// UpdateProfile replaces the bank account list when one is given.
func (s *TenantService) UpdateProfile(ctx context.Context, userID uint, in TenantProfileInput) (*models.Tenant, error) {
	tenant, err := TenantFor(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if in.BankAccounts != nil {
		for i := range *in.BankAccounts {
			acc := &(*in.BankAccounts)[i]
			if err := acc.Validate(); err != nil {
				return nil, BadRequest("bank account %d: %s", i+1, err.Error())
			}
			acc.ID = 0
			acc.TenantID = tenant.ID
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if in.CompanyName != nil {
			updates["company_name"] = strings.TrimSpace(*in.CompanyName)
		}
		if in.Phone != nil {
			updates["phone"] = strings.TrimSpace(*in.Phone)
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Tenant{}).Where("id = ?", tenant.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.BankAccounts != nil {
			if err := tx.Where("tenant_id = ?", tenant.ID).Delete(&models.BankAccount{}).Error; err != nil {
				return err
			}
			if len(*in.BankAccounts) > 0 {
				if err := tx.Create(in.BankAccounts).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// property pages show the host's bank accounts
	s.cache.DeletePrefix(ctx, propertyCachePrefix)
	return s.Profile(ctx, userID)
}

func (s *TenantService) propertyIDs(ctx context.Context, tenantID, propertyID uint) *gorm.DB {
	q := s.db.WithContext(ctx).Session(&gorm.Session{NewDB: true}).
		Table("properties").Select("id").Where("tenant_id = ?", tenantID)
	if propertyID != 0 {
		q = q.Where("id = ?", propertyID)
	}
	return q
}

func (s *TenantService) Bookings(ctx context.Context, userID uint, in TenantBookingQuery) ([]models.Booking, Pagination, error) {
	tenant, err := TenantFor(ctx, s.db, userID)
	if err != nil {
		return nil, Pagination{}, err
	}
	st, err := parseStatus(in.Status)
	if err != nil {
		return nil, Pagination{}, err
	}
	db := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("bookings.property_id IN (?)", s.propertyIDs(ctx, tenant.ID, in.PropertyID))
	if st != "" {
		db = db.Where("bookings.status = ?", st)
	}
	return s.bookings.page(db, NewPageQuery(in.Page, in.Limit))
}

// Calendar shows, per room and day of month, booked and free units and the nightly price.
func (s *TenantService) Calendar(ctx context.Context, userID, propertyID uint, month string) ([]RoomCalendar, error) {
	from, to, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	p, err := OwnedProperty(ctx, s.db, userID, propertyID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var rooms []models.Room
	if err := db.Where("property_id = ?", p.ID).Order("id").Find(&rooms).Error; err != nil {
		return nil, err
	}
	occ, err := LoadOccupancy(db, roomIDs(rooms), from, to)
	if err != nil {
		return nil, err
	}
	calc, err := LoadPriceCalculator(db, p.ID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]RoomCalendar, 0, len(rooms))
	for _, room := range rooms {
		rc := RoomCalendar{RoomID: room.ID, RoomName: room.Name, TotalUnits: room.TotalUnits}
		EachDay(from, to, func(day time.Time) {
			price := calc.PriceForDay(room, day)
			rc.Days = append(rc.Days, RoomCalendarDay{
				Date:           price.Date,
				BookedUnits:    occ.BookedUnits(room.ID, day),
				AvailableUnits: occ.AvailableUnits(room, day),
				Blocked:        occ.Blocked(room.ID, day),
				Price:          price.Price,
				IsWeekend:      price.IsWeekend,
				IsHoliday:      price.IsHoliday,
			})
		})
		out = append(out, rc)
	}
	return out, nil
}

// reportRange parses an inclusive [from, to] day range, defaulting to the last 30 days.
func (s *TenantService) reportRange(in ReportQuery) (time.Time, time.Time, error) {
	today := TruncateDay(s.now())
	from, to := today.AddDate(0, 0, -29), today
	var err error
	if in.From != "" {
		if from, err = ParseDate(in.From); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if in.To != "" {
		if to, err = ParseDate(in.To); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, BadRequest("to must not be before from")
	}
	if to.Sub(from) > 366*24*time.Hour {
		return time.Time{}, time.Time{}, BadRequest("report range cannot exceed one year")
	}
	return from, to, nil
}

// SalesReport sums revenue of confirmed and completed bookings checking in within the range.
func (s *TenantService) SalesReport(ctx context.Context, userID uint, in ReportQuery) (*SalesReport, error) {
	groupBy := in.GroupBy
	if groupBy == "" {
		groupBy = "property"
	}
	if groupBy != "property" && groupBy != "day" {
		return nil, BadRequest("groupBy must be property or day")
	}
	from, to, err := s.reportRange(in)
	if err != nil {
		return nil, err
	}
	tenant, err := TenantFor(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	var list []models.Booking
	err = s.db.WithContext(ctx).
		Preload("Property", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("property_id IN (?)", s.propertyIDs(ctx, tenant.ID, in.PropertyID)).
		Where("status IN ?", revenueStatuses).
		Where("check_in >= ? AND check_in < ?", from, to.AddDate(0, 0, 1)).
		Find(&list).Error
	if err != nil {
		return nil, err
	}

	report := &SalesReport{
		From:         from.Format(DateLayout),
		To:           to.Format(DateLayout),
		GroupBy:      groupBy,
		TotalRevenue: decimal.Zero,
	}
	rows := map[string]*SalesRow{}
	for _, b := range list {
		var key, label string
		if groupBy == "day" {
			key = b.CheckIn.UTC().Format(DateLayout)
			label = key
		} else {
			key = strconv.FormatUint(uint64(b.PropertyID), 10)
			if b.Property != nil {
				label = b.Property.Name
			}
		}
		row := rows[key]
		if row == nil {
			row = &SalesRow{Key: key, Label: label, Revenue: decimal.Zero}
			rows[key] = row
		}
		row.Bookings++
		row.Nights += b.Nights
		row.Revenue = row.Revenue.Add(b.TotalPrice)
		report.TotalBookings++
		report.TotalRevenue = report.TotalRevenue.Add(b.TotalPrice)
	}
	for _, row := range rows {
		report.Rows = append(report.Rows, *row)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		if groupBy == "day" {
			return report.Rows[i].Key < report.Rows[j].Key
		}
		return report.Rows[i].Revenue.GreaterThan(report.Rows[j].Revenue)
	})
	return report, nil
}

type occupancyRow struct {
	PropertyID uint
	Units      int
	CheckIn    time.Time
	CheckOut   time.Time
}

// OccupancyReport divides booked room nights by sellable room nights per property.
func (s *TenantService) OccupancyReport(ctx context.Context, userID uint, in ReportQuery) (*OccupancyReport, error) {
	from, to, err := s.reportRange(in)
	if err != nil {
		return nil, err
	}
	end := to.AddDate(0, 0, 1)
	days := NightsBetween(from, end)
	tenant, err := TenantFor(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var props []models.Property
	q := db.Preload("Rooms").Where("tenant_id = ?", tenant.ID).Order("id")
	if in.PropertyID != 0 {
		q = q.Where("id = ?", in.PropertyID)
	}
	if err := q.Find(&props).Error; err != nil {
		return nil, err
	}

	counted := append(append([]models.BookingStatus{}, models.ActiveBookingStatuses...), models.BookingCompleted)
	var booked []occupancyRow
	err = db.Table("booking_items").
		Select("bookings.property_id, booking_items.units, bookings.check_in, bookings.check_out").
		Joins("JOIN bookings ON bookings.id = booking_items.booking_id").
		Where("bookings.property_id IN (?)", s.propertyIDs(ctx, tenant.ID, in.PropertyID)).
		Where("bookings.status IN ?", counted).
		Where("bookings.check_in < ? AND bookings.check_out > ?", end, from).
		Scan(&booked).Error
	if err != nil {
		return nil, err
	}
	nightsByProperty := map[uint]int{}
	for _, r := range booked {
		start, stop := r.CheckIn, r.CheckOut
		if start.Before(from) {
			start = from
		}
		if stop.After(end) {
			stop = end
		}
		nightsByProperty[r.PropertyID] += NightsBetween(start, stop) * r.Units
	}

	report := &OccupancyReport{From: from.Format(DateLayout), To: to.Format(DateLayout)}
	var totalAvail, totalBooked int
	for _, p := range props {
		units := 0
		for _, r := range p.Rooms {
			units += r.TotalUnits
		}
		row := OccupancyRow{
			PropertyID:          p.ID,
			PropertyName:        p.Name,
			AvailableRoomNights: units * days,
			BookedRoomNights:    nightsByProperty[p.ID],
		}
		row.OccupancyRate = occupancyRate(row.BookedRoomNights, row.AvailableRoomNights)
		totalAvail += row.AvailableRoomNights
		totalBooked += row.BookedRoomNights
		report.Rows = append(report.Rows, row)
	}
	report.OccupancyRate = occupancyRate(totalBooked, totalAvail)
	return report, nil
}

// occupancyRate is a percentage rounded to two decimals.
func occupancyRate(booked, available int) float64 {
	if available == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(booked)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(available))).
		Round(2).
		InexactFloat64()
}
