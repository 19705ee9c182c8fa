package quote

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/marketbrief/pkg/logger"
)

func volQuote(symbol string, volume int64) Quote {
	return Quote{
		Symbol: symbol,
		Price:  decimal.NewFromFloat(10.0),
		Volume: volume,
	}
}

func chgQuote(symbol string, change float64) Quote {
	return Quote{
		Symbol:        symbol,
		Price:         decimal.NewFromFloat(10.0),
		PercentChange: decimal.NewFromFloat(change),
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		input   string
		want    Metric
		wantErr bool
	}{
		{"volume", MetricVolume, false},
		{"change", MetricChange, false},
		{"marketcap", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMetric(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseMetric(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseMetric(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRank_TopNByVolume(t *testing.T) {
	// 25 quotes in, 20 out
	quotes := make([]Quote, 0, 25)
	for i := 0; i < 25; i++ {
		quotes = append(quotes, volQuote(fmt.Sprintf("SYM%02d", i), int64(1000*(i+1))))
	}

	ranked := Rank(quotes, MetricVolume, 20)
	require.Len(t, ranked, 20)

	// Descending by volume
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Volume, ranked[i].Volume,
			"ranked[%d] out of order", i)
	}

	// Highest volume first, the 5 lowest dropped
	assert.Equal(t, "SYM24", ranked[0].Symbol)
	assert.Equal(t, "SYM05", ranked[19].Symbol)
}

func TestRank_ShorterThanN(t *testing.T) {
	quotes := []Quote{
		volQuote("AAPL", 1_000_000),
		volQuote("MSFT", 900_000),
	}

	ranked := Rank(quotes, MetricVolume, 20)
	require.Len(t, ranked, 2)
	assert.Equal(t, "AAPL", ranked[0].Symbol)
	assert.Equal(t, "MSFT", ranked[1].Symbol)
}

func TestRank_TieBreakBySymbol(t *testing.T) {
	quotes := []Quote{
		volQuote("ZZZ", 500),
		volQuote("AAA", 500),
		volQuote("MMM", 500),
		volQuote("BBB", 900),
	}

	ranked := Rank(quotes, MetricVolume, 20)
	require.Len(t, ranked, 4)

	// BBB wins on volume, equal volumes in ascending symbol order
	assert.Equal(t, []string{"BBB", "AAA", "MMM", "ZZZ"}, symbols(ranked))
}

func TestRank_ByChange(t *testing.T) {
	quotes := []Quote{
		chgQuote("AAPL", 2.5),
		chgQuote("MSFT", 1.0),
		chgQuote("TSLA", -3.2),
		chgQuote("NVDA", 7.8),
	}

	ranked := Rank(quotes, MetricChange, 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"NVDA", "AAPL", "MSFT"}, symbols(ranked))
}

func TestRank_EmptyInput(t *testing.T) {
	ranked := Rank(nil, MetricVolume, 20)
	assert.Empty(t, ranked)

	ranked = Rank([]Quote{}, MetricChange, 20)
	assert.Empty(t, ranked)
}

func TestRank_Idempotent(t *testing.T) {
	quotes := []Quote{
		volQuote("AAPL", 1_000_000),
		volQuote("MSFT", 900_000),
		volQuote("GOOG", 900_000),
		volQuote("AMZN", 100_000),
	}

	once := Rank(quotes, MetricVolume, 20)
	twice := Rank(once, MetricVolume, 20)

	assert.Equal(t, once, twice, "ranking an already-ranked list must be identity")
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	quotes := []Quote{
		volQuote("MSFT", 900_000),
		volQuote("AAPL", 1_000_000),
	}

	_ = Rank(quotes, MetricVolume, 1)

	assert.Equal(t, "MSFT", quotes[0].Symbol, "input slice must not be reordered")
}

func TestRanker_Rank(t *testing.T) {
	r := NewRanker(MetricVolume, 2, logger.NewNop())

	ranked := r.Rank([]Quote{
		volQuote("AAPL", 100),
		volQuote("MSFT", 300),
		volQuote("GOOG", 200),
	})

	require.Len(t, ranked, 2)
	assert.Equal(t, []string{"MSFT", "GOOG"}, symbols(ranked))

	// Empty input must not panic and yields empty output
	assert.Empty(t, r.Rank(nil))
}

func symbols(quotes []Quote) []string {
	out := make([]string, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, q.Symbol)
	}
	return out
}
