package core

import (
	"fmt"
	"time"
)

// weekdayNames is indexed by time.Weekday (Sunday first).
var weekdayNames = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// DateLabels holds the display strings derived from one date.
type DateLabels struct {
	Today string // "2024년 3월 15일 (금)"
	Month string // "2024년 3월"
}

// FormatDate returns the day and month labels for t.
func FormatDate(t time.Time) DateLabels {
	year, month, day := t.Date()
	return DateLabels{
		Today: fmt.Sprintf("%d년 %d월 %d일 (%s)", year, int(month), day, weekdayNames[t.Weekday()]),
		Month: fmt.Sprintf("%d년 %d월", year, int(month)),
	}
}

// Label returns the month display string, e.g. "2024년 3월".
func (m Month) Label() string {
	return FormatDate(time.Time(m)).Month
}
