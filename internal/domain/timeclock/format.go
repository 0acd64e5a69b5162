package timeclock

import (
	"fmt"
	"time"
)

// Minutes truncates d to whole minutes.
func Minutes(d time.Duration) int64 {
	return int64(d / time.Minute)
}

// FormatDuration renders d as zero-padded HH:MM. Hours are not capped at 24
// and negative values render as 00:00.
func FormatDuration(d time.Duration) string {
	minutes := Minutes(d)
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatBalance renders d with an explicit sign; zero is "+00:00".
func FormatBalance(d time.Duration) string {
	minutes := Minutes(d)
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}
