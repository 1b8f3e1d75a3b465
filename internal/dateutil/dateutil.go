// Package dateutil parses résumé dates and formats them for templates.
//
// Two formatting dialects are supported. A layout containing '%' uses
// strftime directives (%Y, %b, %-d, ...). Any other layout uses the
// user-friendly tokens of ParseDateFormat (YYYY, MMM, D, ...) or one of
// the named DatePresets.
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
)

var (
	// ErrInvalidDateFormat indicates an invalid date format string.
	ErrInvalidDateFormat = errors.New("invalid date format")
	// ErrInvalidDate indicates a date value matching no accepted layout.
	ErrInvalidDate = errors.New("invalid date")
)

// MaxDateFormatLength limits format string length to prevent abuse.
const MaxDateFormatLength = 50

// Precision records how much of a date was present in the source text.
type Precision int

const (
	PrecisionDay Precision = iota
	PrecisionMonth
)

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []struct {
	layout    string
	precision Precision
}{
	{"2006-01-02", PrecisionDay},
	{"2006-01", PrecisionMonth},
}

// ParseDate parses YYYY-MM-DD or YYYY-MM. Month precision dates fall on day 1.
func ParseDate(s string) (time.Time, Precision, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if len(s) != len(l.layout) {
			continue
		}
		if t, err := time.Parse(l.layout, s); err == nil {
			return t, l.precision, nil
		}
	}
	return time.Time{}, 0, fmt.Errorf("%w: %q (want YYYY-MM-DD or YYYY-MM)", ErrInvalidDate, s)
}

// dateTokens maps user-friendly tokens to Go time format components.
// Ordered by length descending for greedy matching.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets provides named shortcuts for common date formats.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"month":    "MMM YYYY",
	"year":     "YYYY",
}

// ParseDateFormat converts a user-friendly format string to Go's time format.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D
// Use brackets to escape literal text: [Date] preserves "Date" literally.
// Any non-token characters outside brackets are preserved as literals.
// Returns ErrInvalidDateFormat if the format is empty, too long, or has unclosed brackets.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var result strings.Builder
	result.Grow(len(format) + 10)

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			result.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				result.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}

		if !matched {
			result.WriteByte(format[i])
			i++
		}
	}

	return result.String(), nil
}

// Format renders t with a strftime layout, a preset name, or friendly tokens.
func Format(t time.Time, layout string) (string, error) {
	if strings.Contains(layout, "%") {
		return Strftime(t, layout)
	}
	if preset, ok := DatePresets[strings.ToLower(layout)]; ok {
		layout = preset
	}
	goFmt, err := ParseDateFormat(layout)
	if err != nil {
		return "", err
	}
	return t.Format(goFmt), nil
}

// unpadded backs the '-' flag (%-d, %-m). Each flagged directive is
// rewritten to a spare specification byte before compiling the pattern.
var unpadded = []struct {
	directive byte
	alias     byte
	value     func(time.Time) int
}{
	{'d', 0x01, time.Time.Day},
	{'m', 0x02, func(t time.Time) int { return int(t.Month()) }},
	{'y', 0x03, func(t time.Time) int { return t.Year() % 100 }},
	{'j', 0x04, time.Time.YearDay},
	{'H', 0x05, time.Time.Hour},
	{'I', 0x06, func(t time.Time) int {
		if h := t.Hour() % 12; h != 0 {
			return h
		}
		return 12
	}},
	{'M', 0x07, time.Time.Minute},
	{'S', 0x08, time.Time.Second},
}

var strftimeOptions = func() []strftime.Option {
	opts := make([]strftime.Option, 0, len(unpadded))
	for _, u := range unpadded {
		value := u.value
		opts = append(opts, strftime.WithSpecification(u.alias, strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			return strconv.AppendInt(b, int64(value(t)), 10)
		})))
	}
	return opts
}()

// Strftime formats t using C strftime directives. A '-' flag after '%'
// suppresses zero padding (%-d, %-m). Unknown directives and a stray
// trailing '%' are ErrInvalidDateFormat.
func Strftime(t time.Time, format string) (string, error) {
	s, err := strftime.Format(rewriteUnpadded(format), t, strftimeOptions...)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidDateFormat, format, err)
	}
	return s, nil
}

func rewriteUnpadded(format string) string {
	if !strings.Contains(format, "%-") {
		return format
	}
	var b strings.Builder
	b.Grow(len(format))
	for i := 0; i < len(format); i++ {
		c := format[i]
		b.WriteByte(c)
		if c != '%' || i+1 >= len(format) {
			continue
		}
		next := format[i+1]
		if next == '%' {
			b.WriteByte(next)
			i++
			continue
		}
		if next != '-' || i+2 >= len(format) {
			continue
		}
		for _, u := range unpadded {
			if u.directive == format[i+2] {
				b.WriteByte(u.alias)
				i += 2
				break
			}
		}
	}
	return b.String()
}
