package reservation

import (
	"time"
)

type Period struct {
	start time.Time
	end   time.Time
}

func NewPeriod(start, end time.Time) (Period, error) {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{start: start, end: end}, nil
}

func (p Period) Start() time.Time { return p.start }
func (p Period) End() time.Time   { return p.end }

func (p Period) Days() int {
	return RentalDays(p.start, p.end)
}

// Overlaps uses closed intervals: touching boundaries conflict.
func (p Period) Overlaps(other Period) bool {
	return !p.start.After(other.end) && !p.end.Before(other.start)
}

// Contains reports whether t lies in [start, end+grace].
func (p Period) Contains(t time.Time, grace time.Duration) bool {
	return !t.Before(p.start) && !t.After(p.end.Add(grace))
}

// ExtendedByDay moves the end one calendar day forward in loc, keeping the
// wall-clock time across DST changes.
func (p Period) ExtendedByDay(loc *time.Location) Period {
	return Period{start: p.start, end: p.end.In(loc).AddDate(0, 0, 1)}
}

// Money is an amount in whole currency units.
type Money struct {
	amount int64
}

func NewMoney(amount int64) Money {
	return Money{amount: amount}
}

func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount + other.amount}
}

func (m Money) Times(n int64) Money {
	return Money{amount: m.amount * n}
}

func (m Money) IsZero() bool {
	return m.amount == 0
}
