package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/VxVxN/stockinsight/internal/gemini"
	"github.com/VxVxN/stockinsight/internal/growth"
	"github.com/VxVxN/stockinsight/internal/models"
	"github.com/VxVxN/stockinsight/internal/yahoo"
)

type FinancialsResponse struct {
	*models.CompanyFinancials
	Growth []models.GrowthRecord `json:"growth"`
}

type AnalysisResponse struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Summary     string `json:"summary"`
}

func (controller *Controller) GetFinancials(w http.ResponseWriter, r *http.Request) {
	fin, ok := controller.fetchForAPI(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, FinancialsResponse{
		CompanyFinancials: fin,
		Growth:            growth.Calculate(fin.Records),
	})
}

func (controller *Controller) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	apiKey := controller.resolveKey(strings.TrimSpace(r.Header.Get("X-Gemini-Api-Key")))
	if apiKey == "" {
		jsonError(w, http.StatusBadRequest, analysisFailure(gemini.ErrMissingAPIKey))
		return
	}

	fin, ok := controller.fetchForAPI(w, r)
	if !ok {
		return
	}

	summary, err := controller.summarizer.Summarize(r.Context(), apiKey, fin)
	if err != nil {
		controller.logger.Warn("Failed to generate analysis", "symbol", fin.Symbol, "error", err)
		jsonError(w, http.StatusBadGateway, analysisFailure(err))
		return
	}

	writeJSON(w, http.StatusOK, AnalysisResponse{
		Symbol:      fin.Symbol,
		CompanyName: fin.CompanyName,
		Summary:     summary,
	})
}

// fetchForAPI loads the {symbol} URL parameter and writes a JSON error when
// that fails.
func (controller *Controller) fetchForAPI(w http.ResponseWriter, r *http.Request) (*models.CompanyFinancials, bool) {
	symbol, err := yahoo.NormalizeSymbol(chi.URLParam(r, "symbol"), controller.exchangeSuffix)
	if err != nil {
		status, msg := fetchFailure(err)
		jsonError(w, status, msg)
		return nil, false
	}

	fin, err := controller.fetchFinancials(r.Context(), symbol)
	if err != nil {
		status, msg := fetchFailure(err)
		controller.logger.Warn("Failed to fetch financials", "symbol", symbol, "status", status, "error", err)
		jsonError(w, status, msg)
		return nil, false
	}

	return fin, true
}
