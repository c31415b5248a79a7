package yahoo

type summaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *apiError       `json:"error"`
	} `json:"quoteSummary"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type summaryResult struct {
	Price *struct {
		LongName  string `json:"longName"`
		ShortName string `json:"shortName"`
		Currency  string `json:"currency"`
	} `json:"price"`
	IncomeStatementHistoryQuarterly *struct {
		Statements []incomeStatement `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistoryQuarterly"`
	EarningsHistory *struct {
		History []earningsEntry `json:"history"`
	} `json:"earningsHistory"`
	DefaultKeyStatistics *struct {
		SharesOutstanding *rawValue `json:"sharesOutstanding"`
	} `json:"defaultKeyStatistics"`
}

// rawValue is Yahoo's {"raw": 1.5, "fmt": "1.50"} number envelope.
type rawValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

func (v *rawValue) value() (float64, bool) {
	if v == nil || v.Raw == nil {
		return 0, false
	}
	return *v.Raw, true
}

type dateValue struct {
	Raw int64  `json:"raw"`
	Fmt string `json:"fmt"`
}

type incomeStatement struct {
	EndDate                *dateValue `json:"endDate"`
	TotalRevenue           *rawValue  `json:"totalRevenue"`
	OperatingIncome        *rawValue  `json:"operatingIncome"`
	TotalOperatingExpenses *rawValue  `json:"totalOperatingExpenses"`
	NetIncome              *rawValue  `json:"netIncome"`
}

type earningsEntry struct {
	Quarter   *dateValue `json:"quarter"`
	EPSActual *rawValue  `json:"epsActual"`
}
