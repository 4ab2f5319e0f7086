package core

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as MM:SS, truncating the fraction.
func FormatTime(sec float64) string {
	sec = math.Max(sec, 0)
	m := int(sec) / 60
	s := int(sec) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatTimeRange renders "MM:SS - MM:SS" for a timestamp interval.
func FormatTimeRange(start, end float64) string {
	return fmt.Sprintf("%s - %s", FormatTime(start), FormatTime(end))
}
