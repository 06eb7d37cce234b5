package utils

import "strconv"

// FormatCLP formats a whole-unit peso amount with dot thousand separators,
// e.g. 1500000 -> "$1.500.000".
func FormatCLP(amount int) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	digits := strconv.Itoa(amount)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}

	if neg {
		return "-$" + string(out)
	}
	return "$" + string(out)
}
