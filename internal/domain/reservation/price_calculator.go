package reservation

import (
	"time"

	"trailer-rental/internal/domain/trailer"
)

const day = 24 * time.Hour

// Price applies the tiered tariff: one day, two days, then a flat rate for
// every further day.
func Price(pricing trailer.Pricing, days int) Money {
	switch {
	case days <= 0:
		return NewMoney(0)
	case days == 1:
		return NewMoney(pricing.OneDay())
	case days == 2:
		return NewMoney(pricing.TwoDays())
	default:
		return NewMoney(pricing.TwoDays() + int64(days-2)*pricing.AdditionalDays())
	}
}

// RentalDays counts started 24h blocks between start and end.
func RentalDays(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		d = -d
	}
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	return days
}

func PriceFor(pricing trailer.Pricing, p Period) Money {
	return Price(pricing, p.Days())
}

// HoldAmount is the amount blocked at authorization: the rental price plus
// a buffer of extra days to cover a late return.
func HoldAmount(pricing trailer.Pricing, total Money, bufferDays int) Money {
	if bufferDays <= 0 {
		return total
	}
	return total.Add(NewMoney(pricing.AdditionalDays()).Times(int64(bufferDays)))
}
