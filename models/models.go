package models

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tenant{},
		&BankAccount{},
		&Category{},
		&Amenity{},
		&Property{},
		&Room{},
		&RoomBlock{},
		&PriceRule{},
		&Holiday{},
		&Booking{},
		&BookingItem{},
		&Review{},
		&VerificationToken{},
	}
}
