package handlers

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/VxVxN/stockinsight/internal/models"
	"github.com/VxVxN/stockinsight/internal/visualization"
)

// ChartPNGHandler serves a static PNG of one metric for embedding elsewhere.
func (controller *Controller) ChartPNGHandler(w http.ResponseWriter, r *http.Request) {
	metric, ok := models.ParseMetric(chi.URLParam(r, "metric"))
	if !ok {
		jsonError(w, http.StatusBadRequest, "unknown metric")
		return
	}

	fin, ok := controller.fetchForAPI(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := visualization.WriteMetricPNG(&buf, fin, metric); err != nil {
		controller.logger.Error("Failed to draw chart", "symbol", fin.Symbol, "metric", metric, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to draw chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}
