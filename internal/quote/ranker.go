package quote

import (
	"sort"

	"github.com/wonny/marketbrief/pkg/logger"
)

// Ranker selects the top N quotes by a single metric
type Ranker struct {
	metric Metric
	topN   int
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(metric Metric, topN int, log *logger.Logger) *Ranker {
	return &Ranker{
		metric: metric,
		topN:   topN,
		logger: log,
	}
}

// Rank returns the top N quotes sorted descending by the configured metric.
// Equal metric values are ordered by ascending symbol so a run is
// deterministic regardless of provider ordering.
func (r *Ranker) Rank(quotes []Quote) []Quote {
	ranked := Rank(quotes, r.metric, r.topN)

	if len(ranked) > 0 {
		r.logger.WithFields(map[string]interface{}{
			"total_input": len(quotes),
			"ranked":      len(ranked),
			"metric":      string(r.metric),
			"top_symbol":  ranked[0].Symbol,
		}).Info("Ranking completed")
	} else {
		r.logger.WithField("metric", string(r.metric)).Info("Ranking completed with no quotes")
	}

	return ranked
}

// Rank is the pure ranking function behind Ranker. Empty input yields
// empty output. Ranking an already-ranked list of size <= n returns the
// same list.
func Rank(quotes []Quote, metric Metric, n int) []Quote {
	ranked := make([]Quote, len(quotes))
	copy(ranked, quotes)

	sort.Slice(ranked, func(i, j int) bool {
		vi := ranked[i].Value(metric)
		vj := ranked[j].Value(metric)

		if cmp := vi.Cmp(vj); cmp != 0 {
			return cmp > 0 // descending by metric
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	return ranked
}
