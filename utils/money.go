package utils

import (
	"math"
	"strconv"
	"strings"
)

// FormatPrice formats a dollar amount with two decimals and comma thousands
// separators, e.g. 1234.5 -> "$1,234.50"
func FormatPrice(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	cents := int64(math.Round(amount * 100))
	whole := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	// Pre-allocate: digits + separators + sign + $ + decimals
	b.Grow(len(whole) + len(whole)/3 + 5)
	if neg {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	// Insert separators from the left.
	rem := len(whole) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(whole[:rem])
	for i := rem; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}

	b.WriteByte('.')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}
