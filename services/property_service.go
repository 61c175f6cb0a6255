package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"staycation/models"
)

const (
	propertyCachePrefix = "properties:"
	catalogCachePrefix  = "catalog:"
	searchCacheTTL      = 5 * time.Minute
	catalogCacheTTL     = time.Hour
)

type PropertySearch struct {
	City       string `form:"city"`
	Guests     int    `form:"guests"`
	CheckIn    string `form:"checkIn"`
	CheckOut   string `form:"checkOut"`
	MinPrice   string `form:"minPrice"`
	MaxPrice   string `form:"maxPrice"`
	Amenities  string `form:"amenities"`
	CategoryID uint   `form:"categoryId"`
	Q          string `form:"q"`
	SortBy     string `form:"sortBy"`
	Order      string `form:"order"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

// parsed search filters
type propertyFilter struct {
	city       string
	q          string
	categoryID uint
	guests     int
	amenityIDs []uint
	minPrice   *decimal.Decimal
	maxPrice   *decimal.Decimal
	checkIn    time.Time
	checkOut   time.Time
	hasDates   bool
	freeRooms  []uint // rooms with a unit free on every night, set for dated searches
	sortBy     string
	desc       bool
	page       PageQuery
}

func parseDecimal(name, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, BadRequest("%s must be a non-negative number", name)
	}
	return &d, nil
}

func parseIDList(name, raw string) ([]uint, error) {
	var ids []uint
	seen := map[uint]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, BadRequest("%s must be a comma separated list of ids", name)
		}
		if !seen[uint(id)] {
			seen[uint(id)] = true
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

func (in PropertySearch) parse() (*propertyFilter, error) {
	f := &propertyFilter{
		city:       strings.ToLower(strings.TrimSpace(in.City)),
		q:          strings.ToLower(strings.TrimSpace(in.Q)),
		categoryID: in.CategoryID,
		guests:     in.Guests,
		page:       NewPageQuery(in.Page, in.Limit),
	}
	if in.Guests < 0 {
		return nil, BadRequest("guests must not be negative")
	}
	var err error
	if f.amenityIDs, err = parseIDList("amenities", in.Amenities); err != nil {
		return nil, err
	}
	if f.minPrice, err = parseDecimal("minPrice", in.MinPrice); err != nil {
		return nil, err
	}
	if f.maxPrice, err = parseDecimal("maxPrice", in.MaxPrice); err != nil {
		return nil, err
	}
	if f.minPrice != nil && f.maxPrice != nil && f.minPrice.GreaterThan(*f.maxPrice) {
		return nil, BadRequest("minPrice must not exceed maxPrice")
	}

	if (in.CheckIn == "") != (in.CheckOut == "") {
		return nil, BadRequest("checkIn and checkOut must be given together")
	}
	if in.CheckIn != "" {
		if f.checkIn, err = ParseDate(in.CheckIn); err != nil {
			return nil, err
		}
		if f.checkOut, err = ParseDate(in.CheckOut); err != nil {
			return nil, err
		}
		if !f.checkOut.After(f.checkIn) {
			return nil, BadRequest("checkOut must be after checkIn")
		}
		f.hasDates = true
	}

	switch in.SortBy {
	case "", "createdAt":
		f.sortBy = "properties.created_at"
	case "price":
		f.sortBy = "min_price"
	case "name":
		f.sortBy = "properties.name"
	default:
		return nil, BadRequest("sortBy must be one of price, name, createdAt")
	}
	switch strings.ToLower(in.Order) {
	case "":
		f.desc = in.SortBy == "" || in.SortBy == "createdAt"
	case "asc":
	case "desc":
		f.desc = true
	default:
		return nil, BadRequest("order must be asc or desc")
	}
	return f, nil
}

// cacheKey is stable for equivalent searches.
func (f *propertyFilter) cacheKey() string {
	v := url.Values{}
	v.Set("city", f.city)
	v.Set("q", f.q)
	v.Set("category", strconv.FormatUint(uint64(f.categoryID), 10))
	v.Set("guests", strconv.Itoa(f.guests))
	ids := make([]string, len(f.amenityIDs))
	for i, id := range f.amenityIDs {
		ids[i] = strconv.FormatUint(uint64(id), 10)
	}
	v.Set("amenities", strings.Join(ids, ","))
	if f.minPrice != nil {
		v.Set("min", f.minPrice.String())
	}
	if f.maxPrice != nil {
		v.Set("max", f.maxPrice.String())
	}
	v.Set("sort", f.sortBy)
	v.Set("desc", strconv.FormatBool(f.desc))
	v.Set("page", strconv.Itoa(f.page.Page))
	v.Set("limit", strconv.Itoa(f.page.Limit))
	return propertyCachePrefix + "search:" + v.Encode()
}

// scope restricts properties to the filter. Room level filters go through a subquery
// so the same scope works for Count and Find.
func (f *propertyFilter) scope(db *gorm.DB) *gorm.DB {
	if f.city != "" {
		db = db.Where("LOWER(properties.city) LIKE ?", "%"+f.city+"%")
	}
	if f.q != "" {
		db = db.Where("LOWER(properties.name) LIKE ?", "%"+f.q+"%")
	}
	if f.categoryID != 0 {
		db = db.Where("properties.category_id = ?", f.categoryID)
	}
	if len(f.amenityIDs) > 0 {
		sub := db.Session(&gorm.Session{NewDB: true}).
			Table("property_amenities").
			Select("property_id").
			Where("amenity_id IN ?", f.amenityIDs).
			Group("property_id").
			Having("COUNT(DISTINCT amenity_id) = ?", len(f.amenityIDs))
		db = db.Where("properties.id IN (?)", sub)
	}

	rooms := db.Session(&gorm.Session{NewDB: true}).
		Table("rooms").
		Select("rooms.property_id").
		Where("rooms.deleted_at IS NULL")
	if f.minPrice != nil {
		rooms = rooms.Where("rooms.base_price >= ?", *f.minPrice)
	}
	if f.maxPrice != nil {
		rooms = rooms.Where("rooms.base_price <= ?", *f.maxPrice)
	}
	if f.hasDates {
		rooms = rooms.Where("rooms.id IN ?", f.freeRooms)
	}
	rooms = rooms.Group("rooms.property_id")
	if f.guests > 0 {
		rooms = rooms.Having("SUM(rooms.capacity * rooms.total_units) >= ?", f.guests)
	}
	return db.Where("properties.id IN (?)", rooms)
}

type PropertySearchResult struct {
	Items      []PropertyListItem `json:"items"`
	Pagination Pagination         `json:"pagination"`
}

type PropertyInput struct {
	Name        string   `json:"name" form:"name" binding:"required,max=150"`
	Description string   `json:"description" form:"description"`
	Address     string   `json:"address" form:"address" binding:"max=255"`
	City        string   `json:"city" form:"city" binding:"required,max=100"`
	Province    string   `json:"province" form:"province" binding:"max=100"`
	CategoryID  *uint    `json:"categoryId" form:"categoryId"`
	Latitude    *float64 `json:"latitude" form:"latitude" binding:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" form:"longitude" binding:"omitempty,longitude"`
	AmenityIDs  []uint   `json:"amenityIds" form:"amenityIds"`
	Images      []string `json:"images" form:"-"`
}

type PropertyUpdateInput struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=150"`
	Description *string   `json:"description"`
	Address     *string   `json:"address" binding:"omitempty,max=255"`
	City        *string   `json:"city" binding:"omitempty,min=1,max=100"`
	Province    *string   `json:"province" binding:"omitempty,max=100"`
	CategoryID  *uint     `json:"categoryId"`
	Latitude    *float64  `json:"latitude" binding:"omitempty,latitude"`
	Longitude   *float64  `json:"longitude" binding:"omitempty,longitude"`
	AmenityIDs  *[]uint   `json:"amenityIds"`
	Images      *[]string `json:"images"`
}

type CalendarDay struct {
	Date      string           `json:"date"`
	MinPrice  *decimal.Decimal `json:"minPrice"`
	Available bool             `json:"available"`
	IsWeekend bool             `json:"isWeekend"`
	IsHoliday bool             `json:"isHoliday"`
}

type PropertyService struct {
	db       *gorm.DB
	cache    *Cache
	geocoder Geocoder
	uploader ImageUploader
	log      *zap.Logger
}

func NewPropertyService(db *gorm.DB, cache *Cache, geocoder Geocoder, uploader ImageUploader, log *zap.Logger) *PropertyService {
	return &PropertyService{db: db, cache: cache, geocoder: geocoder, uploader: uploader, log: log}
}

func (s *PropertyService) Search(ctx context.Context, in PropertySearch) (*PropertySearchResult, error) {
	f, err := in.parse()
	if err != nil {
		return nil, err
	}

	// availability changes with every booking, so dated searches skip the cache
	cacheable := !f.hasDates
	key := f.cacheKey()
	if cacheable {
		var cached PropertySearchResult
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	db := s.db.WithContext(ctx)
	if f.hasDates {
		if f.freeRooms, err = s.freeRooms(ctx, f); err != nil {
			return nil, err
		}
	}
	var total int64
	if err := db.Model(&models.Property{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return nil, err
	}

	order := f.sortBy
	if f.desc {
		order += " DESC"
	}
	var props []models.Property
	err = db.Model(&models.Property{}).
		Select("properties.*, (SELECT MIN(rooms.base_price) FROM rooms WHERE rooms.property_id = properties.id AND rooms.deleted_at IS NULL) AS min_price").
		Scopes(f.scope).
		Preload("Category").
		Preload("Amenities").
		Order(order).
		Order("properties.id").
		Limit(f.page.Limit).
		Offset(f.page.Offset()).
		Find(&props).Error
	if err != nil {
		return nil, err
	}

	items, err := s.withRatings(ctx, props)
	if err != nil {
		return nil, err
	}
	result := &PropertySearchResult{Items: items, Pagination: f.page.Pagination(total)}
	if cacheable {
		s.cache.Set(ctx, key, result, searchCacheTTL)
	}
	return result, nil
}

// freeRooms checks availability night by night, the same way a booking does.
func (s *PropertyService) freeRooms(ctx context.Context, f *propertyFilter) ([]uint, error) {
	db := s.db.WithContext(ctx)
	q := db.Select("id", "property_id", "total_units")
	if f.minPrice != nil {
		q = q.Where("base_price >= ?", *f.minPrice)
	}
	if f.maxPrice != nil {
		q = q.Where("base_price <= ?", *f.maxPrice)
	}
	var rooms []models.Room
	if err := q.Find(&rooms).Error; err != nil {
		return nil, err
	}
	occ, err := LoadOccupancy(db, roomIDs(rooms), f.checkIn, f.checkOut)
	if err != nil {
		return nil, err
	}
	free := []uint{}
	for _, r := range rooms {
		if occ.MinAvailable(r, f.checkIn, f.checkOut) > 0 {
			free = append(free, r.ID)
		}
	}
	return free, nil
}

type ratingRow struct {
	PropertyID  uint
	AvgRating   float64
	ReviewCount int64
}

func (s *PropertyService) ratings(ctx context.Context, ids []uint) (map[uint]ratingRow, error) {
	out := map[uint]ratingRow{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []ratingRow
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("property_id, AVG(rating) AS avg_rating, COUNT(*) AS review_count").
		Where("property_id IN ?", ids).
		Group("property_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.PropertyID] = r
	}
	return out, nil
}

func (s *PropertyService) withRatings(ctx context.Context, props []models.Property) ([]PropertyListItem, error) {
	ids := make([]uint, len(props))
	for i, p := range props {
		ids[i] = p.ID
	}
	ratings, err := s.ratings(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]PropertyListItem, len(props))
	for i, p := range props {
		items[i] = newPropertyListItem(p, ratings[p.ID])
	}
	return items, nil
}

func roundRating(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func detailCacheKey(id uint) string {
	return fmt.Sprintf("%sdetail:%d", propertyCachePrefix, id)
}

// GetDetail returns a property with rooms, amenities, host bank accounts and rating summary.
func (s *PropertyService) GetDetail(ctx context.Context, id uint) (*PropertyListItem, error) {
	var cached PropertyListItem
	if s.cache.Get(ctx, detailCacheKey(id), &cached) {
		return &cached, nil
	}

	var p models.Property
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Amenities").
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("rooms.base_price") }).
		Preload("Tenant.BankAccounts").
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("property not found")
	}
	if err != nil {
		return nil, err
	}
	for _, r := range p.Rooms {
		if !p.MinPrice.Valid || r.BasePrice.LessThan(p.MinPrice.Decimal) {
			p.MinPrice = decimal.NullDecimal{Decimal: r.BasePrice, Valid: true}
		}
	}

	items, err := s.withRatings(ctx, []models.Property{p})
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, detailCacheKey(id), items[0], searchCacheTTL)
	return &items[0], nil
}

// Calendar lists, for each day of month, the lowest room price after price rules and
// whether any unit is still free.
func (s *PropertyService) Calendar(ctx context.Context, id uint, month string) ([]CalendarDay, error) {
	from, to, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var p models.Property
	if err := db.Preload("Rooms").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("property not found")
		}
		return nil, err
	}
	calc, err := LoadPriceCalculator(db, p.ID, from, to)
	if err != nil {
		return nil, err
	}
	occ, err := LoadOccupancy(db, roomIDs(p.Rooms), from, to)
	if err != nil {
		return nil, err
	}

	var days []CalendarDay
	EachDay(from, to, func(day time.Time) {
		cd := CalendarDay{
			Date:      day.Format(DateLayout),
			IsWeekend: IsWeekend(day),
			IsHoliday: calc.IsHoliday(day),
		}
		for _, room := range p.Rooms {
			price := calc.PriceForDay(room, day).Price
			if cd.MinPrice == nil || price.LessThan(*cd.MinPrice) {
				pp := price
				cd.MinPrice = &pp
			}
			if occ.AvailableUnits(room, day) > 0 {
				cd.Available = true
			}
		}
		days = append(days, cd)
	})
	return days, nil
}

func roomIDs(rooms []models.Room) []uint {
	ids := make([]uint, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}
	return ids
}

// LoadPriceCalculator reads active rules and holidays touching [from, to) for a property.
func LoadPriceCalculator(db *gorm.DB, propertyID uint, from, to time.Time) (*PriceCalculator, error) {
	var rules []models.PriceRule
	err := db.Where("property_id = ? AND is_active = ? AND start_date < ? AND end_date >= ?", propertyID, true, to, from).
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	var holidays []models.Holiday
	if err := db.Where("start_date < ? AND end_date >= ?", to, from).Find(&holidays).Error; err != nil {
		return nil, err
	}
	return NewPriceCalculator(rules, holidays), nil
}

// TenantFor returns the tenant profile of userID, creating an empty one if missing.
func TenantFor(ctx context.Context, db *gorm.DB, userID uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := db.WithContext(ctx).Where(models.Tenant{UserID: userID}).FirstOrCreate(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// OwnedProperty loads a property and checks that userID's tenant profile owns it.
func OwnedProperty(ctx context.Context, db *gorm.DB, userID, propertyID uint) (*models.Property, error) {
	tenant, err := TenantFor(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	var p models.Property
	err = db.WithContext(ctx).First(&p, propertyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("property not found")
	}
	if err != nil {
		return nil, err
	}
	if p.TenantID != tenant.ID {
		return nil, Forbidden("you do not own this property")
	}
	return &p, nil
}

func (s *PropertyService) invalidate(ctx context.Context) {
	s.cache.DeletePrefix(ctx, propertyCachePrefix)
}

func (s *PropertyService) amenities(ctx context.Context, ids []uint) ([]models.Amenity, error) {
	if len(ids) == 0 {
		return []models.Amenity{}, nil
	}
	var list []models.Amenity
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	if len(list) != len(ids) {
		return nil, BadRequest("unknown amenity id")
	}
	return list, nil
}

func (s *PropertyService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return BadRequest("unknown category id")
	}
	return nil
}

func (s *PropertyService) geocode(ctx context.Context, p *models.Property) {
	if s.geocoder == nil || (p.Latitude != nil && p.Longitude != nil) {
		return
	}
	lat, lng, err := s.geocoder.Geocode(ctx, p.Address, p.City, p.Province)
	if err != nil {
		s.log.Warn("geocoding failed", zap.String("city", p.City), zap.Error(err))
		return
	}
	p.Latitude, p.Longitude = &lat, &lng
}

func (s *PropertyService) Create(ctx context.Context, userID uint, in PropertyInput, files []*multipart.FileHeader) (*models.Property, error) {
	tenant, err := TenantFor(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	amenities, err := s.amenities(ctx, in.AmenityIDs)
	if err != nil {
		return nil, err
	}
	images := append([]string{}, in.Images...)
	if len(files) > 0 {
		urls, err := UploadImages(ctx, s.uploader, files, "properties")
		if err != nil {
			return nil, err
		}
		images = append(images, urls...)
	}

	p := &models.Property{
		TenantID:    tenant.ID,
		CategoryID:  in.CategoryID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Address:     in.Address,
		City:        strings.TrimSpace(in.City),
		Province:    in.Province,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Images:      images,
		Amenities:   amenities,
	}
	s.geocode(ctx, p)
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Info("property created", zap.Uint("property_id", p.ID), zap.Uint("tenant_id", tenant.ID))
	return p, nil
}

func (s *PropertyService) Update(ctx context.Context, userID, id uint, in PropertyUpdateInput) (*models.Property, error) {
	p, err := OwnedProperty(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	relocated := false
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Address != nil {
		p.Address, relocated = *in.Address, true
	}
	if in.City != nil {
		p.City, relocated = strings.TrimSpace(*in.City), true
	}
	if in.Province != nil {
		p.Province, relocated = *in.Province, true
	}
	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = in.CategoryID
	}
	if in.Images != nil {
		p.Images = *in.Images
	}
	if in.Latitude != nil || in.Longitude != nil {
		p.Latitude, p.Longitude = in.Latitude, in.Longitude
	} else if relocated {
		p.Latitude, p.Longitude = nil, nil
	}
	s.geocode(ctx, p)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Amenities", "Rooms", "Tenant", "Category").Save(p).Error; err != nil {
			return err
		}
		if in.AmenityIDs != nil {
			amenities, err := s.amenities(ctx, *in.AmenityIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(p).Association("Amenities").Replace(amenities); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.reload(ctx, p.ID)
}

func (s *PropertyService) reload(ctx context.Context, id uint) (*models.Property, error) {
	var p models.Property
	if err := s.db.WithContext(ctx).Preload("Category").Preload("Amenities").Preload("Rooms").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete soft deletes a property and its rooms. Properties with upcoming or running
// bookings cannot be deleted.
func (s *PropertyService) Delete(ctx context.Context, userID, id uint) error {
	p, err := OwnedProperty(ctx, s.db, userID, id)
	if err != nil {
		return err
	}
	var active int64
	err = s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("property_id = ? AND status IN ? AND check_out > ?", p.ID, models.ActiveBookingStatuses, TruncateDay(time.Now())).
		Count(&active).Error
	if err != nil {
		return err
	}
	if active > 0 {
		return BadRequest("property has active bookings")
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", p.ID).Delete(&models.Room{}).Error; err != nil {
			return err
		}
		return tx.Delete(p).Error
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.Info("property deleted", zap.Uint("property_id", p.ID))
	return nil
}

func (s *PropertyService) AddImages(ctx context.Context, userID, id uint, files []*multipart.FileHeader) (*models.Property, error) {
	p, err := OwnedProperty(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	urls, err := UploadImages(ctx, s.uploader, files, "properties")
	if err != nil {
		return nil, err
	}
	p.Images = append(p.Images, urls...)
	if err := s.db.WithContext(ctx).Model(p).Update("images", p.Images).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

// ListForTenant returns the caller's own properties with their rooms.
func (s *PropertyService) ListForTenant(ctx context.Context, userID uint, page PageQuery) ([]models.Property, Pagination, error) {
	tenant, err := TenantFor(ctx, s.db, userID)
	if err != nil {
		return nil, Pagination{}, err
	}
	db := s.db.WithContext(ctx).Model(&models.Property{}).Where("tenant_id = ?", tenant.ID)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}
	var props []models.Property
	err = db.Preload("Category").Preload("Amenities").Preload("Rooms").
		Order("created_at DESC").Limit(page.Limit).Offset(page.Offset()).
		Find(&props).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return props, page.Pagination(total), nil
}

func (s *PropertyService) ListCategories(ctx context.Context) ([]models.Category, error) {
	key := catalogCachePrefix + "categories"
	var list []models.Category
	if s.cache.Get(ctx, key, &list) {
		return list, nil
	}
	if err := s.db.WithContext(ctx).Order("name").Find(&list).Error; err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, list, catalogCacheTTL)
	return list, nil
}

func (s *PropertyService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	c := &models.Category{Name: strings.TrimSpace(name)}
	if c.Name == "" {
		return nil, BadRequest("name is required")
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, BadRequest("category already exists")
		}
		return nil, err
	}
	s.cache.Delete(ctx, catalogCachePrefix+"categories")
	return c, nil
}

func (s *PropertyService) ListAmenities(ctx context.Context) ([]models.Amenity, error) {
	key := catalogCachePrefix + "amenities"
	var list []models.Amenity
	if s.cache.Get(ctx, key, &list) {
		return list, nil
	}
	if err := s.db.WithContext(ctx).Order("name").Find(&list).Error; err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, list, catalogCacheTTL)
	return list, nil
}

func (s *PropertyService) CreateAmenity(ctx context.Context, name, icon string) (*models.Amenity, error) {
	a := &models.Amenity{Name: strings.TrimSpace(name), Icon: icon}
	if a.Name == "" {
		return nil, BadRequest("name is required")
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, BadRequest("amenity already exists")
		}
		return nil, err
	}
	s.cache.Delete(ctx, catalogCachePrefix+"amenities")
	return a, nil
}

// InvalidateListings drops cached search and detail pages, e.g. after room or review changes.
func (s *PropertyService) InvalidateListings(ctx context.Context) {
	s.invalidate(ctx)
}
