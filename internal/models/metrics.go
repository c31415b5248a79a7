package models

import "github.com/guregu/null/v6"

type Metric string

const (
	MetricSales           Metric = "sales"
	MetricOperatingProfit Metric = "operating_profit"
	MetricOPM             Metric = "opm_percent"
	MetricNetProfit       Metric = "net_profit"
	MetricEPS             Metric = "eps"
)

// Metrics lists the tracked metrics in display order.
var Metrics = []Metric{MetricSales, MetricOperatingProfit, MetricOPM, MetricNetProfit, MetricEPS}

func ParseMetric(s string) (Metric, bool) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

func (m Metric) Title() string {
	switch m {
	case MetricSales:
		return "Sales"
	case MetricOperatingProfit:
		return "Operating Profit"
	case MetricOPM:
		return "OPM%"
	case MetricNetProfit:
		return "Net Profit"
	case MetricEPS:
		return "EPS"
	default:
		return string(m)
	}
}

// Unit is the axis label used for the metric.
func (m Metric) Unit() string {
	switch m {
	case MetricOPM:
		return "Percentage"
	case MetricEPS:
		return "Earnings per Share"
	default:
		return "₹ Crores"
	}
}

// Value returns the metric's value in r.
func (m Metric) Value(r QuarterlyRecord) null.Float {
	switch m {
	case MetricSales:
		return r.Sales
	case MetricOperatingProfit:
		return r.OperatingProfit
	case MetricOPM:
		return r.OPMPercent
	case MetricNetProfit:
		return r.NetProfit
	case MetricEPS:
		return r.EPS
	default:
		return null.Float{}
	}
}

type GrowthRecord struct {
	Period          string     `json:"period"`
	Sales           null.Float `json:"sales"`
	OperatingProfit null.Float `json:"operating_profit"`
	OPMPercent      null.Float `json:"opm_percent"`
	NetProfit       null.Float `json:"net_profit"`
	EPS             null.Float `json:"eps"`
	// OPMChange is the percentage-point difference of OPM% against the prior quarter.
	OPMChange null.Float `json:"opm_change"`
}

// Value returns the growth of metric m in g.
func (g GrowthRecord) Value(m Metric) null.Float {
	switch m {
	case MetricSales:
		return g.Sales
	case MetricOperatingProfit:
		return g.OperatingProfit
	case MetricOPM:
		return g.OPMPercent
	case MetricNetProfit:
		return g.NetProfit
	case MetricEPS:
		return g.EPS
	default:
		return null.Float{}
	}
}
