package utils

import (
	"math"
	"strconv"
)

// FormatUSD renders an amount with thousands separators and no decimals,
// e.g. 1234567.89 -> "1,234,567".
func FormatUSD(amount float64) string {
	n := int64(math.Round(amount))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	for i := len(digits) - 3; i > 0; i -= 3 {
		digits = digits[:i] + "," + digits[i:]
	}
	if neg {
		digits = "-" + digits
	}
	return digits
}

// FormatPrice renders a token price with enough precision for sub-cent
// assets: 8 decimals below one dollar, 2 otherwise.
func FormatPrice(price float64) string {
	if price != 0 && math.Abs(price) < 1 {
		return strconv.FormatFloat(price, 'f', 8, 64)
	}
	return strconv.FormatFloat(price, 'f', 2, 64)
}
