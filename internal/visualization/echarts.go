// Package visualization renders quarterly trends as interactive and static charts.
package visualization

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/VxVxN/stockinsight/internal/models"
)

var metricColors = map[models.Metric]string{
	models.MetricSales:           "#5470c6",
	models.MetricOperatingProfit: "#3ba272",
	models.MetricOPM:             "#ee6666",
	models.MetricNetProfit:       "#9a60b4",
	models.MetricEPS:             "#fc8452",
}

// NewTrendsPage builds one line chart per tracked metric.
func NewTrendsPage(fin *models.CompanyFinancials, theme string) *components.Page {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s - Financial Performance Trends", fin.CompanyName)
	page.SetLayout(components.PageFlexLayout)

	for _, metric := range models.Metrics {
		page.AddCharts(NewMetricChart(fin, metric, theme))
	}
	return page
}

func NewMetricChart(fin *models.CompanyFinancials, metric models.Metric, theme string) *charts.Line {
	line := charts.NewLine()

	chartTheme := types.ThemeWesteros
	if theme == "dark" {
		chartTheme = types.ThemeChalk
	}

	title := metric.Title()
	if metric.Unit() == "₹ Crores" {
		title += " (₹ Crores)"
	}

	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%s, last %d quarters", fin.CompanyName, len(fin.Records)),
			Left:     "center",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  chartTheme,
			Width:  "560px",
			Height: "360px",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithGridOpts(opts.Grid{
			Left:         "12%",
			Right:        "6%",
			Bottom:       "15%",
			ContainLabel: opts.Bool(true),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:         "Quarter",
			NameLocation: "center",
			NameGap:      35,
			Type:         "category",
			AxisLabel: &opts.AxisLabel{
				Rotate: 30,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         metric.Unit(),
			NameLocation: "center",
			NameGap:      55,
			Type:         "value",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
				LineStyle: &opts.LineStyle{
					Type: "dashed",
				},
			},
		}),
	)

	quarters := make([]string, len(fin.Records))
	values := make([]opts.LineData, len(fin.Records))
	for i, r := range fin.Records {
		quarters[i] = r.Period
		if v := metric.Value(r); v.Valid {
			values[i] = opts.LineData{Value: v.Float64, Symbol: "circle", SymbolSize: 8}
		} else {
			values[i] = opts.LineData{Value: nil, Symbol: "none"}
		}
	}

	line.SetXAxis(quarters)
	line.AddSeries(metric.Title(), values,
		charts.WithLineChartOpts(opts.LineChart{
			ShowSymbol:   opts.Bool(true),
			ConnectNulls: opts.Bool(false),
		}),
		charts.WithLineStyleOpts(opts.LineStyle{
			Color: metricColors[metric],
			Width: 3,
		}),
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color: metricColors[metric],
		}),
	)

	return line
}
