// Package growth computes quarter-over-quarter deltas for quarterly records.
package growth

import (
	"math"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"github.com/VxVxN/stockinsight/internal/models"
)

// Precision is the number of decimal places growth values are rounded to.
const Precision = 2

// Calculate returns one growth record per input record. The first record never
// has defined growth; every later record is compared with its predecessor only.
func Calculate(records []models.QuarterlyRecord) []models.GrowthRecord {
	result := make([]models.GrowthRecord, len(records))

	for i, record := range records {
		result[i].Period = record.Period
		if i == 0 {
			continue
		}

		prev := records[i-1]
		result[i].Sales = Percent(prev.Sales, record.Sales)
		result[i].OperatingProfit = Percent(prev.OperatingProfit, record.OperatingProfit)
		result[i].OPMPercent = Percent(prev.OPMPercent, record.OPMPercent)
		result[i].NetProfit = Percent(prev.NetProfit, record.NetProfit)
		result[i].EPS = Percent(prev.EPS, record.EPS)
		result[i].OPMChange = Change(prev.OPMPercent, record.OPMPercent)
	}

	return result
}

// Percent is (cur - prev) / |prev| * 100 rounded to Precision. It is null when
// either value is missing or non-finite, or when prev is zero.
func Percent(prev, cur null.Float) null.Float {
	if !usable(prev) || !usable(cur) || prev.Float64 == 0 {
		return null.Float{}
	}

	v := (cur.Float64 - prev.Float64) / math.Abs(prev.Float64) * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}

	return null.FloatFrom(Round(v))
}

// Change is the rounded difference cur - prev, null when either is unusable.
func Change(prev, cur null.Float) null.Float {
	if !usable(prev) || !usable(cur) {
		return null.Float{}
	}

	v := cur.Float64 - prev.Float64
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}

	return null.FloatFrom(Round(v))
}

// Round rounds v half away from zero to Precision decimal places. Non-finite
// values are returned unchanged.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	rounded, _ := decimal.NewFromFloat(v).Round(Precision).Float64()
	return rounded
}

func usable(v null.Float) bool {
	return v.Valid && !math.IsNaN(v.Float64) && !math.IsInf(v.Float64, 0)
}
