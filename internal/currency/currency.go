// Package currency formats and parses amounts in the Indian short notation
// used throughout the auction UI: 100000 = "1L" (lakh), 10000000 = "1Cr"
// (crore). Amounts are integers in the currency's minor unit.
package currency

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	lakh  = 100_000
	crore = 10_000_000
)

// Format renders an amount in Indian short notation ("50L", "2.5Cr").
// Amounts below one lakh fall back to a plain grouped number.
func Format(amount int64) string {
	if amount == 0 {
		return "0"
	}
	switch {
	case amount >= crore:
		return formatUnit(amount, crore, "Cr")
	case amount >= lakh:
		return formatUnit(amount, lakh, "L")
	default:
		return strconv.FormatInt(amount, 10)
	}
}

func formatUnit(amount, unit int64, suffix string) string {
	if amount%unit == 0 {
		return fmt.Sprintf("%d%s", amount/unit, suffix)
	}
	return fmt.Sprintf("%.1f%s", float64(amount)/float64(unit), suffix)
}

// Parse converts a formatted amount ("50L", "2.5Cr", "₹5,00,000", "500000")
// to its value in minor units.
func Parse(s string) (int64, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "₹", "")
	v = strings.ReplaceAll(v, ",", "")
	if v == "" {
		return 0, nil
	}

	unit := int64(1)
	switch {
	case strings.HasSuffix(v, "CR"):
		unit = crore
		v = strings.TrimSuffix(v, "CR")
	case strings.HasSuffix(v, "L"):
		unit = lakh
		v = strings.TrimSuffix(v, "L")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return int64(f * float64(unit)), nil
}
