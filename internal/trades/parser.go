package trades

import (
	"strconv"
	"strings"
)

// ParseQuantity splits a ledger quantity string "<amount> <symbol>" into its
// numeric amount and token symbol. Any malformed input (missing separator,
// extra fields, non-numeric amount) yields (0, ""): the leg then fails token
// matching and its group is rejected for a missing leg, so a bad quantity can
// never reach a ratio computation.
func ParseQuantity(quantity string) (float64, string) {
	fields := strings.Fields(quantity)
	if len(fields) != 2 {
		return 0, ""
	}

	amount, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, ""
	}

	return amount, fields[1]
}
