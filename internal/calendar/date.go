// Package calendar implements the civil-date arithmetic behind the weekly
// and monthly views: week boundaries, inclusive date ranges, week paging
// and the 42-cell month grid.
//
// Dates travel as YYYY-MM-DD strings. They are civil dates, not instants,
// so every computation happens on UTC midnights where AddDate never
// crosses a DST boundary.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only layout dates are rendered in
const DateLayout = "2006-01-02"

// ErrInvalidDate is matched by every *InvalidDateError
var ErrInvalidDate = errors.New("invalid date")

// InvalidDateError reports a value that cannot be read as a calendar date,
// or a month outside 1..12.
type InvalidDateError struct {
	Value  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid date %q", e.Value)
	}
	return fmt.Sprintf("invalid date %q: %s", e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidDate) true for any InvalidDateError
func (e *InvalidDateError) Is(target error) bool {
	return target == ErrInvalidDate
}

// accepted string layouts, tried in order
var stringLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate reads a YYYY-MM-DD string strictly and returns its UTC midnight.
// Day overflow such as 2024-02-30 is rejected rather than rolled over.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: s, Reason: "expected YYYY-MM-DD"}
	}
	return t, nil
}

// FormatDate normalizes a date representation to YYYY-MM-DD.
//
// Accepted inputs are time.Time (its own location decides the civil day),
// *time.Time, strings in YYYY-MM-DD or RFC 3339 form, and Unix millisecond
// timestamps given as int or int64, read in the local zone.
func FormatDate(v any) (string, error) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return "", &InvalidDateError{Value: "0001-01-01", Reason: "zero time"}
		}
		return d.Format(DateLayout), nil
	case *time.Time:
		if d == nil {
			return "", &InvalidDateError{Value: "<nil>", Reason: "nil time"}
		}
		return FormatDate(*d)
	case string:
		return formatString(d)
	case int64:
		return time.UnixMilli(d).In(time.Local).Format(DateLayout), nil
	case int:
		return time.UnixMilli(int64(d)).In(time.Local).Format(DateLayout), nil
	default:
		return "", &InvalidDateError{Value: fmt.Sprintf("%v", v), Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

func formatString(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", &InvalidDateError{Value: s, Reason: "empty"}
	}
	for _, layout := range stringLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", &InvalidDateError{Value: s, Reason: "unrecognized format"}
}

// DaysInMonth returns the number of days of month in year
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthRange returns the first and last date of a month
func MonthRange(year, month int) (string, string, error) {
	if err := checkMonth(month); err != nil {
		return "", "", err
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout), nil
}

var monthNames = [12]string{
	"1월", "2월", "3월", "4월", "5월", "6월",
	"7월", "8월", "9월", "10월", "11월", "12월",
}

// MonthName returns the display label of month (1..12)
func MonthName(month int) (string, error) {
	if err := checkMonth(month); err != nil {
		return "", err
	}
	return monthNames[month-1], nil
}

// MonthNames returns a copy of the label table
func MonthNames() []string {
	out := make([]string, len(monthNames))
	copy(out, monthNames[:])
	return out
}

func checkMonth(month int) error {
	if month < 1 || month > 12 {
		return &InvalidDateError{Value: fmt.Sprintf("month %d", month), Reason: "month must be within 1..12"}
	}
	return nil
}
