package app

import (
	"fmt"
)

// fixed-date public holidays of South Korea. Lunar holidays (Seollal,
// Chuseok, Buddha's Birthday) move every year and are not listed.
var solarHolidays = []struct {
	month, day int
	name       string
}{
	{1, 1, "신정"},
	{3, 1, "삼일절"},
	{5, 5, "어린이날"},
	{6, 6, "현충일"},
	{8, 15, "광복절"},
	{10, 3, "개천절"},
	{10, 9, "한글날"},
	{12, 25, "성탄절"},
}

// GetHolidays returns the fixed public holidays of year keyed by date
func GetHolidays(year int) map[string]string {
	holidays := make(map[string]string, len(solarHolidays))
	for _, h := range solarHolidays {
		holidays[formatDate(year, h.month, h.day)] = h.name
	}
	return holidays
}

// holidaysBetween returns the holidays within from..to (inclusive)
func holidaysBetween(from, to string) map[string]string {
	out := make(map[string]string)
	if len(from) < 4 || len(to) < 4 {
		return out
	}
	var fromYear, toYear int
	if _, err := fmt.Sscanf(from[:4], "%d", &fromYear); err != nil {
		return out
	}
	if _, err := fmt.Sscanf(to[:4], "%d", &toYear); err != nil {
		return out
	}
	for year := fromYear; year <= toYear; year++ {
		for date, name := range GetHolidays(year) {
			if date >= from && date <= to {
				out[date] = name
			}
		}
	}
	return out
}

// formatDate formats a date as YYYY-MM-DD
func formatDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
