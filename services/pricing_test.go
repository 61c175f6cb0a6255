package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staycation/models"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func uintPtr(v uint) *uint { return &v }

func TestPriceForDayPercentageWeekendRule(t *testing.T) {
	room := models.Room{ID: 1, BasePrice: decimal.NewFromInt(1_000_000)}
	rules := []models.PriceRule{{
		ID: 1, Name: "weekend", Type: models.PriceRulePercentage, Value: decimal.NewFromInt(30),
		DayScope: models.DayScopeWeekend, IsActive: true,
		StartDate: mustDate(t, "2025-11-01"), EndDate: mustDate(t, "2025-11-30"),
	}}
	calc := NewPriceCalculator(rules, nil)

	saturday := calc.PriceForDay(room, mustDate(t, "2025-11-01"))
	assert.True(t, saturday.IsWeekend)
	assert.True(t, decimal.NewFromInt(1_300_000).Equal(saturday.Price), saturday.Price.String())
	require.NotNil(t, saturday.RuleID)

	monday := calc.PriceForDay(room, mustDate(t, "2025-11-03"))
	assert.False(t, monday.IsWeekend)
	assert.True(t, room.BasePrice.Equal(monday.Price))
	assert.Nil(t, monday.RuleID)
}

func TestPriceForDayFixedRuleOverrides(t *testing.T) {
	room := models.Room{ID: 1, BasePrice: decimal.NewFromInt(1_000_000)}
	rules := []models.PriceRule{{
		ID: 2, Type: models.PriceRuleFixed, Value: decimal.NewFromInt(900_000),
		DayScope: models.DayScopeAll, IsActive: true,
		StartDate: mustDate(t, "2025-11-01"), EndDate: mustDate(t, "2025-11-01"),
	}}
	calc := NewPriceCalculator(rules, nil)

	assert.True(t, decimal.NewFromInt(900_000).Equal(calc.PriceForDay(room, mustDate(t, "2025-11-01")).Price))
	assert.True(t, room.BasePrice.Equal(calc.PriceForDay(room, mustDate(t, "2025-11-02")).Price))
}

func TestPriceRuleOrdering(t *testing.T) {
	room := models.Room{ID: 7, BasePrice: decimal.NewFromInt(500_000)}
	start, end := mustDate(t, "2025-12-01"), mustDate(t, "2025-12-31")
	rules := []models.PriceRule{
		{ID: 1, Type: models.PriceRuleFixed, Value: decimal.NewFromInt(100), DayScope: models.DayScopeAll, IsActive: true, StartDate: start, EndDate: end},
		{ID: 2, RoomID: uintPtr(7), Type: models.PriceRuleFixed, Value: decimal.NewFromInt(200), DayScope: models.DayScopeAll, IsActive: true, StartDate: start, EndDate: end},
		{ID: 3, RoomID: uintPtr(8), Type: models.PriceRuleFixed, Value: decimal.NewFromInt(300), DayScope: models.DayScopeAll, IsActive: true, StartDate: start, EndDate: end},
		{ID: 4, Type: models.PriceRuleFixed, Value: decimal.NewFromInt(400), DayScope: models.DayScopeAll, IsActive: false, StartDate: start, EndDate: end},
	}
	calc := NewPriceCalculator(rules, nil)
	assert.True(t, decimal.NewFromInt(200).Equal(calc.PriceForDay(room, mustDate(t, "2025-12-10")).Price))

	other := models.Room{ID: 9, BasePrice: decimal.NewFromInt(500_000)}
	assert.True(t, decimal.NewFromInt(100).Equal(calc.PriceForDay(other, mustDate(t, "2025-12-10")).Price))
}

func TestHolidayScopedRule(t *testing.T) {
	room := models.Room{ID: 1, BasePrice: decimal.NewFromInt(1_000_000)}
	holidays := []models.Holiday{{Name: "Christmas", StartDate: mustDate(t, "2025-12-25"), EndDate: mustDate(t, "2025-12-26")}}
	rules := []models.PriceRule{{
		ID: 1, Type: models.PriceRulePercentage, Value: decimal.NewFromInt(-10),
		DayScope: models.DayScopeHoliday, IsActive: true,
		StartDate: mustDate(t, "2025-12-01"), EndDate: mustDate(t, "2025-12-31"),
	}}
	calc := NewPriceCalculator(rules, holidays)

	xmas := calc.PriceForDay(room, mustDate(t, "2025-12-26"))
	assert.True(t, xmas.IsHoliday)
	assert.True(t, decimal.NewFromInt(900_000).Equal(xmas.Price))
	assert.False(t, calc.PriceForDay(room, mustDate(t, "2025-12-27")).IsHoliday)
}

func TestStayTotal(t *testing.T) {
	room := models.Room{ID: 1, BasePrice: decimal.NewFromInt(1_000_000)}
	rules := []models.PriceRule{{
		ID: 1, Type: models.PriceRulePercentage, Value: decimal.NewFromInt(30),
		DayScope: models.DayScopeWeekend, IsActive: true,
		StartDate: mustDate(t, "2025-10-01"), EndDate: mustDate(t, "2025-12-31"),
	}}
	calc := NewPriceCalculator(rules, nil)

	// Fri, Sat, Sun nights
	total := calc.StayTotal(room, mustDate(t, "2025-10-31"), mustDate(t, "2025-11-03"), 2)
	assert.True(t, decimal.NewFromInt(7_200_000).Equal(total), total.String())
	assert.Len(t, calc.Breakdown(room, mustDate(t, "2025-10-31"), mustDate(t, "2025-11-03")), 3)
}
