package monitoring

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Unix millisecond epoch for 2000-01-01. Raw timestamps below this are
// taken to be epoch seconds and scaled up.
const year2000Millis = 946684800000

// normalizeTimestampMillis converts an epoch-like value of unknown
// resolution into milliseconds. Upstream analyzers are inconsistent:
// some report seconds (TikTok createTime), others milliseconds.
func normalizeTimestampMillis(v float64) int64 {
	if v <= 0 {
		return 0
	}
	if v < year2000Millis {
		return int64(v * 1000)
	}
	return int64(v)
}

// relativeAge renders a timestamp as a human-readable age ("2 days ago")
func relativeAge(tsMillis int64, now time.Time) string {
	if tsMillis <= 0 {
		return "recently"
	}
	return humanize.RelTime(time.UnixMilli(tsMillis), now, "ago", "from now")
}

// formatCount renders an engagement count with digit grouping ("12,345")
func formatCount(n int64) string {
	return humanize.Comma(n)
}
