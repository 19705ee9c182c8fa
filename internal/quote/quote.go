package quote

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quote is a single screened stock record. It lives for one run only.
type Quote struct {
	Symbol         string
	Price          decimal.Decimal
	Volume         int64
	PercentChange  decimal.Decimal
	MarketCap      decimal.Decimal
	RelativeVolume decimal.Decimal
}

// Metric is the numeric field used to rank quotes
type Metric string

const (
	MetricVolume Metric = "volume"
	MetricChange Metric = "change"
)

// ParseMetric converts a config string to a Metric
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "volume":
		return MetricVolume, nil
	case "change":
		return MetricChange, nil
	default:
		return "", fmt.Errorf("unknown ranking metric: %q", s)
	}
}

// Value returns the quote's value for the given metric
func (q Quote) Value(m Metric) decimal.Decimal {
	switch m {
	case MetricChange:
		return q.PercentChange
	default:
		return decimal.NewFromInt(q.Volume)
	}
}
