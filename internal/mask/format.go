package mask

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

// BRL formats an amount in cents as Brazilian reais: 123456 -> "R$ 1.234,56".
func BRL(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	reais := humanize.FormatInteger("#.###,", int(cents/100))
	return fmt.Sprintf("%sR$ %s,%02d", sign, reais, cents%100)
}

// FileSize renders a byte count with IEC units, e.g. "1.5 MiB".
func FileSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// CompactNumber abbreviates counters shown on the site: 1500 -> "1.5K".
func CompactNumber(n int64) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	default:
		return humanize.FormatInteger("#.###,", int(n))
	}
}
