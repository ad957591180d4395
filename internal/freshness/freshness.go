package freshness

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// magnitudes buckets elapsed time into whole seconds, minutes, hours, or days.
// Each bucket applies while the age is strictly below D.
var magnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "%ds %s", DivBy: time.Second},
	{D: time.Hour, Format: "%dm %s", DivBy: time.Minute},
	{D: humanize.Day, Format: "%dh %s", DivBy: time.Hour},
	{D: time.Duration(math.MaxInt64), Format: "%dd %s", DivBy: humanize.Day},
}

var epoch = time.Unix(0, 0)

// Format renders an elapsed duration as a coarse human string, e.g. "45s ago",
// "2m ago", "2h ago" or "2d ago". Units are truncated by integer division.
// Negative durations are treated as zero.
func Format(age time.Duration) string {
	if age < 0 {
		age = 0
	}
	return humanize.CustomRelTime(epoch, epoch.Add(age), "ago", "from now", magnitudes)
}

// FormatSeconds is Format for an age expressed in whole seconds.
func FormatSeconds(seconds int64) string {
	return Format(time.Duration(seconds) * time.Second)
}

// Since renders the time elapsed between t and now.
// A zero t renders as "unknown".
func Since(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return Format(now.Sub(t))
}
