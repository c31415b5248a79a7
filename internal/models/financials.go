package models

import (
	"fmt"
	"math"
	"time"

	"github.com/guregu/null/v6"
)

// CroreDivisor converts raw rupee amounts into crores.
const CroreDivisor = 10_000_000

type QuarterlyRecord struct {
	Period          string     `json:"period"`
	EndDate         time.Time  `json:"end_date"`
	Sales           null.Float `json:"sales"`
	OperatingProfit null.Float `json:"operating_profit"`
	OPMPercent      null.Float `json:"opm_percent"`
	NetProfit       null.Float `json:"net_profit"`
	EPS             null.Float `json:"eps"`
}

func (q *QuarterlyRecord) IsEmpty() bool {
	return !q.Sales.Valid && !q.OperatingProfit.Valid &&
		!q.OPMPercent.Valid && !q.NetProfit.Valid && !q.EPS.Valid
}

// DeriveOPM fills OPMPercent from operating profit and sales when both are known
// and sales is non-zero.
func (q *QuarterlyRecord) DeriveOPM() {
	if !Finite(q.OperatingProfit) || !Finite(q.Sales) || q.Sales.Float64 == 0 {
		q.OPMPercent = null.Float{}
		return
	}
	q.OPMPercent = finiteOrNull(q.OperatingProfit.Float64 / q.Sales.Float64 * 100)
}

// DropNonFinite turns NaN and infinite values into nulls.
func (q *QuarterlyRecord) DropNonFinite() {
	for _, v := range []*null.Float{&q.Sales, &q.OperatingProfit, &q.OPMPercent, &q.NetProfit, &q.EPS} {
		if !Finite(*v) {
			*v = null.Float{}
		}
	}
}

// Finite reports whether v holds a usable number.
func Finite(v null.Float) bool {
	return v.Valid && !math.IsNaN(v.Float64) && !math.IsInf(v.Float64, 0)
}

func finiteOrNull(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

type CompanyFinancials struct {
	Symbol      string            `json:"symbol"`
	CompanyName string            `json:"company_name"`
	Currency    string            `json:"currency,omitempty"`
	Records     []QuarterlyRecord `json:"records"`
}

// DropNonFinite applies QuarterlyRecord.DropNonFinite to every record.
func (c *CompanyFinancials) DropNonFinite() {
	for i := range c.Records {
		c.Records[i].DropNonFinite()
	}
}

// PeriodLabel formats the calendar quarter containing t as "2024-Q3".
func PeriodLabel(t time.Time) string {
	return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
}
