package calendar

import "time"

// GridSize is six Monday-start weeks
const GridSize = 42

// Clock supplies the current instant
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Day is one cell of a month grid
type Day struct {
	Date           string `json:"date"`
	DayOfMonth     int    `json:"day"`
	IsCurrentMonth bool   `json:"isCurrentMonth"`
	IsToday        bool   `json:"isToday"`
}

// Calendar binds the clock-dependent operations to a Clock
type Calendar struct {
	clock Clock
}

// New returns a Calendar reading time from clock, or from the system clock
// when clock is nil.
func New(clock Clock) *Calendar {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Calendar{clock: clock}
}

// Now returns the clock's current instant
func (c *Calendar) Now() time.Time {
	return c.clock.Now()
}

// Today returns the current civil date in the clock's location
func (c *Calendar) Today() string {
	return c.clock.Now().Format(DateLayout)
}

// CurrentWeek returns the week containing today
func (c *Calendar) CurrentWeek(mondayStart bool) Range {
	// Today always parses
	r, _ := WeekRange(c.Today(), mondayStart)
	return r
}

// Grid builds the 42-day Monday-start grid for month of year. Cells outside
// the month come from the neighbouring months.
func (c *Calendar) Grid(year, month int) ([]Day, error) {
	if err := checkMonth(month); err != nil {
		return nil, err
	}

	today := c.Today()
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	start := startOfWeek(first, true)

	days := make([]Day, 0, GridSize)
	for cur := start; len(days) < GridSize; cur = cur.AddDate(0, 0, 1) {
		date := cur.Format(DateLayout)
		days = append(days, Day{
			Date:           date,
			DayOfMonth:     cur.Day(),
			IsCurrentMonth: cur.Month() == first.Month() && cur.Year() == first.Year(),
			IsToday:        date == today,
		})
	}
	return days, nil
}
