package output

import "github.com/shopspring/decimal"

// FormatCost renders a total as "$" followed by the shortest decimal that
// round-trips the float64, e.g. 9.940000000000001 -> "$9.940000000000001".
// With roundCents the total is rounded half away from zero to two places.
func FormatCost(total float64, roundCents bool) string {
	d := decimal.NewFromFloat(total)
	if roundCents {
		return "$" + d.StringFixed(2)
	}
	return "$" + d.String()
}
