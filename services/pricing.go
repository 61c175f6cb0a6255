package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"staycation/models"
)

var hundred = decimal.NewFromInt(100)

type DayPrice struct {
	Date      string          `json:"date"`
	BasePrice decimal.Decimal `json:"basePrice"`
	Price     decimal.Decimal `json:"price"`
	IsWeekend bool            `json:"isWeekend"`
	IsHoliday bool            `json:"isHoliday"`
	RuleID    *uint           `json:"ruleId,omitempty"`
	RuleName  string          `json:"ruleName,omitempty"`
}

// PriceCalculator overlays a property's price rules on room base prices.
type PriceCalculator struct {
	rules    []models.PriceRule
	holidays []models.Holiday
}

// NewPriceCalculator orders rules so that room specific rules win over property wide ones,
// and older rules win over newer ones.
func NewPriceCalculator(rules []models.PriceRule, holidays []models.Holiday) *PriceCalculator {
	sorted := make([]models.PriceRule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := sorted[i].RoomID != nil, sorted[j].RoomID != nil
		if ri != rj {
			return ri
		}
		return sorted[i].ID < sorted[j].ID
	})
	return &PriceCalculator{rules: sorted, holidays: holidays}
}

func (p *PriceCalculator) IsHoliday(day time.Time) bool {
	day = TruncateDay(day)
	for _, h := range p.holidays {
		if !day.Before(TruncateDay(h.StartDate)) && !day.After(TruncateDay(h.EndDate)) {
			return true
		}
	}
	return false
}

func (p *PriceCalculator) matchRule(room models.Room, day time.Time, weekend, holiday bool) *models.PriceRule {
	for i := range p.rules {
		r := &p.rules[i]
		if r.RoomID != nil && *r.RoomID != room.ID {
			continue
		}
		if day.Before(TruncateDay(r.StartDate)) || day.After(TruncateDay(r.EndDate)) {
			continue
		}
		switch r.DayScope {
		case models.DayScopeWeekend:
			if !weekend {
				continue
			}
		case models.DayScopeHoliday:
			if !holiday {
				continue
			}
		}
		return r
	}
	return nil
}

// ApplyRule returns the nightly price after a single rule.
func ApplyRule(base decimal.Decimal, rule models.PriceRule) decimal.Decimal {
	switch rule.Type {
	case models.PriceRuleFixed:
		return rule.Value.Round(2)
	case models.PriceRulePercentage:
		factor := decimal.NewFromInt(1).Add(rule.Value.Div(hundred))
		price := base.Mul(factor).Round(2)
		if price.IsNegative() {
			return decimal.Zero
		}
		return price
	}
	return base
}

// PriceForDay prices one unit of room for the night starting on day.
func (p *PriceCalculator) PriceForDay(room models.Room, day time.Time) DayPrice {
	day = TruncateDay(day)
	dp := DayPrice{
		Date:      day.Format(DateLayout),
		BasePrice: room.BasePrice,
		Price:     room.BasePrice,
		IsWeekend: IsWeekend(day),
		IsHoliday: p.IsHoliday(day),
	}
	if rule := p.matchRule(room, day, dp.IsWeekend, dp.IsHoliday); rule != nil {
		dp.Price = ApplyRule(room.BasePrice, *rule)
		id := rule.ID
		dp.RuleID = &id
		dp.RuleName = rule.Name
	}
	return dp
}

// Breakdown prices every night in [checkIn, checkOut) for one unit.
func (p *PriceCalculator) Breakdown(room models.Room, checkIn, checkOut time.Time) []DayPrice {
	var days []DayPrice
	EachDay(checkIn, checkOut, func(day time.Time) {
		days = append(days, p.PriceForDay(room, day))
	})
	return days
}

// StayTotal is the sum of nightly prices for the stay multiplied by units.
func (p *PriceCalculator) StayTotal(room models.Room, checkIn, checkOut time.Time, units int) decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Breakdown(room, checkIn, checkOut) {
		total = total.Add(d.Price)
	}
	return total.Mul(decimal.NewFromInt(int64(units)))
}
