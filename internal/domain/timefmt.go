package domain

import (
	"fmt"
	"time"
)

const TimestampLayout = "2006-01-02 15:04:05 Mon"

func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// FormatClock renders a duration in seconds as HH:MM:SS on a 24h clock, so
// hours wrap after a day.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", (total/3600)%24, (total/60)%60, total%60)
}
