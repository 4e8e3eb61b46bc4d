package currency

import (
	"fmt"
	"math"
	"strings"
)

// Format renders an amount with its currency code, e.g. "1,234 USD" or
// "89.50 EUR". Whole amounts drop the decimals. No conversion is done.
func Format(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))

	negative := amount < 0
	if negative {
		amount = -amount
	}

	cents := math.Round(amount * 100)
	whole := math.Floor(cents / 100)
	frac := int(cents - whole*100)

	formatted := addThousandsSeparator(fmt.Sprintf("%.0f", whole), ",")
	if frac != 0 {
		formatted += fmt.Sprintf(".%02d", frac)
	}
	if negative {
		formatted = "-" + formatted
	}

	if code == "" {
		return formatted
	}
	return formatted + " " + code
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
