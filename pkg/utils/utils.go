package utils

import (
	"fmt"
	"time"
)

// FormatRoundedDuration renders d in its largest whole unit: 42s, 5m, 3h.
func FormatRoundedDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%dh", seconds/3600)
	}
	return fmt.Sprintf("%dm", seconds/60)
}
