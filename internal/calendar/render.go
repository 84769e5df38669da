package calendar

import (
	"fmt"
	"strings"
)

// RenderGrid draws a month grid as text. Days for which marked returns
// true get a "*", today is bracketed and days outside the month show as
// ".".
func RenderGrid(year, month int, days []Day, marked func(date string) bool) string {
	name, _ := MonthName(month)

	var b strings.Builder
	fmt.Fprintf(&b, "%d %s (* = entry, [] = today)\n", year, name)
	b.WriteString(" Mon  Tue  Wed  Thu  Fri  Sat  Sun\n")
	for i, d := range days {
		cell := fmt.Sprintf("%2d", d.DayOfMonth)
		if !d.IsCurrentMonth {
			cell = " ."
		}
		mark := " "
		if marked != nil && marked(d.Date) {
			mark = "*"
		}
		if d.IsToday {
			fmt.Fprintf(&b, "[%s%s]", cell, mark)
		} else {
			fmt.Fprintf(&b, " %s%s ", cell, mark)
		}
		if i%7 == 6 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}
