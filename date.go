package mkresume

import (
	"fmt"
	"time"

	"github.com/alnah/go-mkresume/internal/dateutil"
)

// Date is a calendar date written YYYY-MM-DD or YYYY-MM. Month dates fall
// on the first day of the month and remember their precision.
type Date struct {
	t         time.Time
	precision dateutil.Precision
}

// ParseDate parses YYYY-MM-DD or YYYY-MM.
func ParseDate(s string) (Date, error) {
	t, p, err := dateutil.ParseDate(s)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t, precision: p}, nil
}

// NewDate returns the day-precision date of t.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Time returns the date at midnight UTC. Templates format it with the
// date filter.
func (d Date) Time() time.Time { return d.t }

func (d Date) IsZero() bool { return d.t.IsZero() }

// MonthOnly reports whether the source omitted the day.
func (d Date) MonthOnly() bool { return d.precision == dateutil.PrecisionMonth }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// String returns the date in the form it was written.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	if d.MonthOnly() {
		return d.t.Format("2006-01")
	}
	return d.t.Format("2006-01-02")
}

// UnmarshalYAML implements the goccy/go-yaml unmarshaler interface.
func (d *Date) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML writes the date back in its source form.
func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

// DateRange is a period. A nil To means the period is ongoing.
type DateRange struct {
	From Date  `yaml:"from"`
	To   *Date `yaml:"to,omitempty"`
}

// Ongoing reports whether the range has no end.
func (r DateRange) Ongoing() bool { return r.To == nil }

// Valid reports whether the end, when present, does not precede the start.
func (r DateRange) Valid() bool {
	return r.To == nil || !r.To.Before(r.From)
}

func (r DateRange) String() string {
	if r.To == nil {
		return r.From.String() + " - present"
	}
	return r.From.String() + " - " + r.To.String()
}
