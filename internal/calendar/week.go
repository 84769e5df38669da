package calendar

import "time"

// Range is an inclusive seven-day week
type Range struct {
	WeekStart string `json:"weekStart"`
	WeekEnd   string `json:"weekEnd"`
}

// Contains reports whether date falls inside the week
func (r Range) Contains(date string) bool {
	return r.WeekStart <= date && date <= r.WeekEnd
}

// WeekRange returns the week containing date. With mondayStart the week
// runs Monday..Sunday (ISO), otherwise Sunday..Saturday.
func WeekRange(date string, mondayStart bool) (Range, error) {
	t, err := ParseDate(date)
	if err != nil {
		return Range{}, err
	}
	start := startOfWeek(t, mondayStart)
	return Range{
		WeekStart: start.Format(DateLayout),
		WeekEnd:   start.AddDate(0, 0, 6).Format(DateLayout),
	}, nil
}

// DatesInRange lists every date from..to inclusive in ascending order.
// A reversed range yields an empty slice.
func DatesInRange(from, to string) ([]string, error) {
	start, err := ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(to)
	if err != nil {
		return nil, err
	}

	dates := []string{}
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		dates = append(dates, cur.Format(DateLayout))
	}
	return dates, nil
}

// PreviousWeek returns the Monday of the week before weekStart
func PreviousWeek(weekStart string) (string, error) {
	return shiftWeek(weekStart, -7)
}

// NextWeek returns the Monday of the week after weekStart
func NextWeek(weekStart string) (string, error) {
	return shiftWeek(weekStart, 7)
}

func shiftWeek(weekStart string, days int) (string, error) {
	t, err := ParseDate(weekStart)
	if err != nil {
		return "", err
	}
	return startOfWeek(t.AddDate(0, 0, days), true).Format(DateLayout), nil
}

// startOfWeek rewinds t to Monday (ISO) or Sunday
func startOfWeek(t time.Time, mondayStart bool) time.Time {
	offset := int(t.Weekday())
	if mondayStart {
		// Sunday is the 7th ISO weekday
		offset = (offset + 6) % 7
	}
	return t.AddDate(0, 0, -offset)
}
