// Package month handles YYYY-MM billing period strings.
package month

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Month is a calendar month in UTC.
type Month struct {
	Year int
	Mon  time.Month
}

var ErrInvalid = errors.New("invalid_month")

// Parse accepts a strict YYYY-MM string and rejects impossible months.
func Parse(value string) (Month, error) {
	value = strings.TrimSpace(value)
	parsed, err := time.ParseInLocation("2006-01", value, time.UTC)
	if err != nil {
		return Month{}, ErrInvalid
	}
	return Month{Year: parsed.Year(), Mon: parsed.Month()}, nil
}

// String renders the canonical YYYY-MM form.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Mon))
}

// Bounds returns the half-open UTC interval [start, end) covering the month.
func (m Month) Bounds() (time.Time, time.Time) {
	start := time.Date(m.Year, m.Mon, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Of returns the month containing the given instant, in UTC.
func Of(t time.Time) Month {
	t = t.UTC()
	return Month{Year: t.Year(), Mon: t.Month()}
}
