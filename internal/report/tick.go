// Package report formats prepared chart data for people: axis tick labels,
// the chart caption, and plain-text or JSON dumps.
package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// significant digits kept by FormatTick
const tickPrecision = 6

var magnitudes = strings.NewReplacer("M", "mil", "G", "bil", "T", "tri")

// FormatTick renders a y-axis value with an SI prefix, trailing zeros
// trimmed, and the large-magnitude prefixes spelled out:
// 1500000000 -> "1.5bil", 2500000 -> "2.5mil", 42000 -> "42k".
func FormatTick(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	value, prefix := humanize.ComputeSI(round(v))
	return magnitudes.Replace(strconv.FormatFloat(round(value), 'f', -1, 64) + prefix)
}

func round(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', tickPrecision, 64), 64)
	if err != nil {
		return v
	}
	return r
}
