// Package format renders numbers, sizes and times for display.
package format

import (
	"cmp"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultDatePattern is used when Date is given an empty pattern.
const DefaultDatePattern = "YYYY-MM-DD HH:mm:ss"

// Date renders t using the tokens YYYY, MM, DD, HH, mm and ss.
// The zero time renders as "-".
func Date(t time.Time, pattern string) string {
	if t.IsZero() {
		return "-"
	}
	if pattern == "" {
		pattern = DefaultDatePattern
	}

	r := strings.NewReplacer(
		"YYYY", strconv.Itoa(t.Year()),
		"MM", pad2(int(t.Month())),
		"DD", pad2(t.Day()),
		"HH", pad2(t.Hour()),
		"mm", pad2(t.Minute()),
		"ss", pad2(t.Second()),
	)
	return r.Replace(pattern)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// Number renders v with a fixed number of decimals. NaN and infinities
// render as "0".
func Number(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// Bytes renders a byte count as an IEC size, e.g. "1.5 GiB".
func Bytes(n uint64) string {
	return humanize.IBytes(n)
}

// Percentage returns value/total*100 rounded to decimals places, or 0 when
// total is 0.
func Percentage(value, total float64, decimals int) float64 {
	if total == 0 {
		return 0
	}
	p := value / total * 100
	scale := math.Pow(10, float64(max(decimals, 0)))
	return math.Round(p*scale) / scale
}

// Clamp limits v to [lo, hi].
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// Average returns the arithmetic mean of values, or 0 for an empty slice.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Max returns the largest element, or 0 for an empty slice.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = max(m, v)
	}
	return m
}

// Min returns the smallest element, or 0 for an empty slice.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = min(m, v)
	}
	return m
}

// TimeAgo renders t relative to now, e.g. "3 minutes ago".
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}
