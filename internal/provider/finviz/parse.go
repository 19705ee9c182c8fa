package finviz

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Cell parsing helpers. Screener cells arrive as JSON numbers or as
// display strings ("1.2B", "-3.25%", "12,345,678", "N/A").

func toString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// toDecimal parses a cell into a decimal, resolving percent signs,
// thousands separators and B/M/K magnitude suffixes. Unparseable cells
// become zero.
func toDecimal(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val)
	case int64:
		return decimal.NewFromInt(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case string:
		return parseDecimalString(val)
	default:
		return decimal.Zero
	}
}

func parseDecimalString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || strings.EqualFold(s, "N/A") {
		return decimal.Zero
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")

	multiplier := decimal.NewFromInt(1)
	switch {
	case strings.HasSuffix(s, "B"):
		multiplier = decimal.NewFromInt(1_000_000_000)
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		multiplier = decimal.NewFromInt(1_000_000)
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		multiplier = decimal.NewFromInt(1_000)
		s = strings.TrimSuffix(s, "K")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}

	return d.Mul(multiplier)
}

// toInt64 parses a cell into an int64, truncating fractions
func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case float64:
		return int64(val)
	case int64:
		return val
	case int:
		return int64(val)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		if s == "" {
			return 0
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		// Display strings may carry a magnitude suffix
		return parseDecimalString(s).IntPart()
	default:
		return 0
	}
}
