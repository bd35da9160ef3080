// server/internal/finance/period.go
package finance

import (
	"time"

	"car-dealership-api-server/internal/models"
)

// Period selects a reporting window anchored on "now".
type Period string

const (
	PeriodMonthly   Period = "monthly" // current calendar month
	PeriodSixMonths Period = "6months" // first of month, 5 months back
	PeriodYearly    Period = "yearly"  // Jan 1 of current year
)

// ParsePeriod validates a period selector from the query string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodMonthly, PeriodSixMonths, PeriodYearly:
		return Period(s), nil
	}
	return "", models.ErrInvalidPeriod
}

// Range returns the inclusive window [start 00:00:00, today 23:59:59] in
// now's location.
func (p Period) Range(now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	var start time.Time
	switch p {
	case PeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	case PeriodSixMonths:
		// time.Date normalizes month underflow, e.g. Feb - 5 = previous Sep.
		start = time.Date(now.Year(), now.Month()-5, 1, 0, 0, 0, 0, loc)
	case PeriodYearly:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
	}
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, loc)
	return start, end
}

// GroupKeyLayout returns the time layout used to bucket the expense
// sub-report: the monthly report groups raw expenses by calendar day, the
// longer windows by calendar month.
func (p Period) GroupKeyLayout() string {
	if p == PeriodMonthly {
		return "2006-01-02"
	}
	return "2006-01"
}
