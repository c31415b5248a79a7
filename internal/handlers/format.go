package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"github.com/VxVxN/stockinsight/internal/models"
)

const noData = "—"

var templateFuncs = template.FuncMap{
	"dict": dict,
}

// dict builds a map from alternating keys and values so templates can pass
// several values to a nested template.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict expects key/value pairs")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

type cell struct {
	Text  string
	Class string
}

type tableView struct {
	Headers []string
	Rows    [][]cell
}

func newDataTable(records []models.QuarterlyRecord) *tableView {
	t := &tableView{Headers: []string{"Quarter"}}
	for _, m := range models.Metrics {
		t.Headers = append(t.Headers, m.Title())
	}

	for _, r := range records {
		row := []cell{{Text: r.Period}}
		for _, m := range models.Metrics {
			row = append(row, valueCell(m, m.Value(r)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func newGrowthTable(growth []models.GrowthRecord) *tableView {
	t := &tableView{Headers: []string{
		"Quarter",
		"Sales QoQ Growth",
		"Operating Profit QoQ Growth",
		"OPM% QoQ Growth",
		"OPM% Change (pp)",
		"Net Profit QoQ Growth",
		"EPS QoQ Growth",
	}}

	for _, g := range growth {
		t.Rows = append(t.Rows, []cell{
			{Text: g.Period},
			growthCell(g.Sales, "%"),
			growthCell(g.OperatingProfit, "%"),
			growthCell(g.OPMPercent, "%"),
			growthCell(g.OPMChange, " pp"),
			growthCell(g.NetProfit, "%"),
			growthCell(g.EPS, "%"),
		})
	}
	return t
}

func valueCell(m models.Metric, v null.Float) cell {
	if !models.Finite(v) {
		return cell{Text: noData, Class: "no-data"}
	}
	switch m {
	case models.MetricOPM:
		return cell{Text: formatNumber(v.Float64) + "%"}
	case models.MetricEPS:
		return cell{Text: "₹ " + formatNumber(v.Float64)}
	default:
		return cell{Text: "₹ " + formatNumber(v.Float64) + " Cr"}
	}
}

func growthCell(v null.Float, unit string) cell {
	if !models.Finite(v) {
		return cell{Text: noData, Class: "no-data"}
	}
	c := cell{Text: formatNumber(v.Float64) + unit}
	switch {
	case v.Float64 > 0:
		c.Class = "positive"
	case v.Float64 < 0:
		c.Class = "negative"
	}
	return c
}

// formatNumber renders v with two decimals and thousands separators.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return noData
	}
	s := decimal.NewFromFloat(v).StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var sb strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(digit)
	}
	return sign + sb.String() + "." + frac
}
