package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/marketbrief/internal/quote"
	"github.com/wonny/marketbrief/pkg/logger"
)

// NoResultsMessage is the body text for a run where no stock passed the
// screener filters. The email is still sent so subscribers can tell an
// empty day from a broken job.
const NoResultsMessage = "No qualifying stocks today."

// Report is the rendered email content for one run
type Report struct {
	Subject string
	Text    string
	HTML    string
}

// Formatter renders a ranked list into an email body
type Formatter struct {
	metric quote.Metric
	logger *logger.Logger
}

// NewFormatter creates a new formatter
func NewFormatter(metric quote.Metric, log *logger.Logger) *Formatter {
	return &Formatter{
		metric: metric,
		logger: log,
	}
}

var metricLabels = map[quote.Metric]string{
	quote.MetricVolume: "trading volume",
	quote.MetricChange: "percent change",
}

// Build renders the report for the given ranked list. It never fails:
// an empty list produces the no-results body, not an error.
func (f *Formatter) Build(ranked []quote.Quote, now time.Time) Report {
	date := now.Format("2006-01-02")
	label := metricLabels[f.metric]

	rpt := Report{
		Subject: fmt.Sprintf("Market Brief %s — top movers by %s", date, label),
	}

	if len(ranked) == 0 {
		rpt.Text = NoResultsMessage + "\n"
		rpt.HTML = fmt.Sprintf("<h3>Market Brief %s</h3><p>%s</p>", date, NoResultsMessage)
		f.logger.Info("Formatted empty report")
		return rpt
	}

	rpt.Text = f.buildText(ranked, date, label)
	rpt.HTML = f.buildHTML(ranked, date, label)

	f.logger.WithFields(map[string]interface{}{
		"quotes": len(ranked),
		"metric": string(f.metric),
	}).Info("Report formatted")

	return rpt
}

// buildText renders the plain-text table
func (f *Formatter) buildText(ranked []quote.Quote, date, label string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Top %d movers by %s — %s\n\n", len(ranked), label, date)
	fmt.Fprintf(&b, "%4s  %-8s %12s %10s %16s %14s\n", "#", "SYMBOL", "PRICE", "CHANGE", "VOLUME", "MKT CAP")

	for i, q := range ranked {
		fmt.Fprintf(&b, "%4d  %-8s %12s %10s %16s %14s\n",
			i+1,
			q.Symbol,
			q.Price.StringFixed(2),
			formatChange(q.PercentChange),
			formatCount(q.Volume),
			formatCap(q.MarketCap),
		)
	}

	return b.String()
}

var htmlTemplate = template.Must(template.New("report").Parse(`<h3>Market Brief {{.Date}}</h3>
<p>Top {{len .Rows}} movers by {{.Label}}.</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>#</th><th>Symbol</th><th>Price</th><th>Change</th><th>Volume</th><th>Mkt Cap</th></tr>
{{- range .Rows}}
<tr><td>{{.Rank}}</td><td>{{.Symbol}}</td><td>{{.Price}}</td><td>{{.Change}}</td><td>{{.Volume}}</td><td>{{.MarketCap}}</td></tr>
{{- end}}
</table>
`))

type htmlRow struct {
	Rank      int
	Symbol    string
	Price     string
	Change    string
	Volume    string
	MarketCap string
}

// buildHTML renders the HTML table
func (f *Formatter) buildHTML(ranked []quote.Quote, date, label string) string {
	rows := make([]htmlRow, 0, len(ranked))
	for i, q := range ranked {
		rows = append(rows, htmlRow{
			Rank:      i + 1,
			Symbol:    q.Symbol,
			Price:     q.Price.StringFixed(2),
			Change:    formatChange(q.PercentChange),
			Volume:    formatCount(q.Volume),
			MarketCap: formatCap(q.MarketCap),
		})
	}

	var b strings.Builder
	err := htmlTemplate.Execute(&b, struct {
		Date  string
		Label string
		Rows  []htmlRow
	}{Date: date, Label: label, Rows: rows})
	if err != nil {
		// Template data is fully under our control; fall back to text on
		// the off chance execution fails
		f.logger.WithError(err).Error("HTML report rendering failed")
		return "<pre>" + template.HTMLEscapeString(f.buildText(ranked, date, label)) + "</pre>"
	}

	return b.String()
}

// formatChange renders a percent change with an explicit sign
func formatChange(change decimal.Decimal) string {
	s := change.StringFixed(2)
	if change.Sign() > 0 {
		s = "+" + s
	}
	return s + "%"
}

// formatCount renders an integer with thousands separators
func formatCount(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

var (
	billion  = decimal.NewFromInt(1_000_000_000)
	million  = decimal.NewFromInt(1_000_000)
	thousand = decimal.NewFromInt(1_000)
)

// formatCap renders a market cap in compact form (2.80B, 450.00M)
func formatCap(cap decimal.Decimal) string {
	switch {
	case cap.IsZero():
		return "N/A"
	case cap.GreaterThanOrEqual(billion):
		return cap.Div(billion).StringFixed(2) + "B"
	case cap.GreaterThanOrEqual(million):
		return cap.Div(million).StringFixed(2) + "M"
	case cap.GreaterThanOrEqual(thousand):
		return cap.Div(thousand).StringFixed(2) + "K"
	default:
		return cap.StringFixed(0)
	}
}
