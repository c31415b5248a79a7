package handlers

import (
	"net/http"
	"strings"
)

// AnalysisHandler re-fetches the symbol, renders the dashboard and fills the
// analysis section with the model's summary or the reason there is none.
func (controller *Controller) AnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	view, fin, status := controller.loadDashboard(r, r.PostFormValue("symbol"))
	if fin == nil {
		controller.render(w, status, "dashboard.html", view)
		return
	}

	view.Analysis = &analysisView{}
	summary, err := controller.summarizer.Summarize(r.Context(), controller.resolveKey(strings.TrimSpace(r.PostFormValue("api_key"))), fin)
	if err != nil {
		controller.logger.Warn("Failed to generate analysis", "symbol", fin.Symbol, "error", err)
		view.Analysis.Error = analysisFailure(err)
	} else {
		view.Analysis.Text = summary
	}

	controller.render(w, http.StatusOK, "dashboard.html", view)
}

// resolveKey prefers the key supplied with the request over the configured one.
func (controller *Controller) resolveKey(requestKey string) string {
	if requestKey != "" {
		return requestKey
	}
	return controller.apiKey
}
