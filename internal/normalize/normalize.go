package normalize

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// RepToRaw converts a display-ready reputation score back into its
// approximate raw integer form (inverse of the log10 display mapping).
func RepToRaw(rep float64) int64 {
	r := (rep-25)/9 + 9
	sign := 1.0
	if r < 0 {
		sign = -1
	}
	return int64(sign * math.Pow(10, r))
}

// ParseSBD extracts the numeric amount from a legacy currency string such
// as "2.000 SBD". The asset tag is discarded, not validated.
func ParseSBD(s string) (decimal.Decimal, error) {
	num, _, _ := strings.Cut(strings.TrimSpace(s), " ")
	if num == "" {
		return decimal.Decimal{}, fmt.Errorf("ParseSBD: empty amount in %q", s)
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("ParseSBD: parse %q: %w", s, err)
	}
	return d, nil
}
