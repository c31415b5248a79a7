package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/VxVxN/stockinsight/internal/database"
	"github.com/VxVxN/stockinsight/internal/growth"
	"github.com/VxVxN/stockinsight/internal/models"
	"github.com/VxVxN/stockinsight/internal/visualization"
	"github.com/VxVxN/stockinsight/internal/yahoo"
)

type analysisView struct {
	Text  string
	Error string
}

type dashboardView struct {
	Symbol      string
	CompanyName string
	Theme       string
	Error       string
	Note        string
	Data        *tableView
	Growth      *tableView
	Charts      template.HTML
	ChartsError string
	Analysis    *analysisView
	ServerKey   bool
}

func (controller *Controller) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	view, _, status := controller.loadDashboard(r, r.URL.Query().Get("symbol"))
	controller.render(w, status, "dashboard.html", view)
}

// loadDashboard fetches the symbol's quarters and builds every section of the
// dashboard except the analysis. A failed fetch is reported in view.Error.
func (controller *Controller) loadDashboard(r *http.Request, rawSymbol string) (*dashboardView, *models.CompanyFinancials, int) {
	view := &dashboardView{
		Theme:     themeOf(r),
		ServerKey: controller.apiKey != "",
	}

	if strings.TrimSpace(rawSymbol) == "" {
		view.Error = "Please enter a stock symbol."
		return view, nil, http.StatusBadRequest
	}

	symbol, err := yahoo.NormalizeSymbol(rawSymbol, controller.exchangeSuffix)
	if err != nil {
		view.Symbol = rawSymbol
		status, msg := fetchFailure(err)
		view.Error = msg
		return view, nil, status
	}
	view.Symbol = symbol

	fin, err := controller.fetchFinancials(r.Context(), symbol)
	if err != nil {
		status, msg := fetchFailure(err)
		controller.logger.Warn("Failed to fetch financials",
			"symbol", symbol,
			"status", status,
			"error", err)
		view.Error = msg
		return view, nil, status
	}

	view.CompanyName = fin.CompanyName
	view.Data = newDataTable(fin.Records)
	view.Growth = newGrowthTable(growth.Calculate(fin.Records))

	var buf bytes.Buffer
	if err := visualization.NewTrendsPage(fin, view.Theme).Render(&buf); err != nil {
		controller.logger.Error("Failed to render charts", "symbol", symbol, "error", err)
		view.ChartsError = "Charts are unavailable for this stock."
	} else {
		view.Charts = template.HTML(buf.String())
	}

	if err := controller.watchlist.Touch(r.Context(), symbol, fin.CompanyName); err != nil {
		controller.logger.Warn("Failed to update watchlist", "symbol", symbol, "error", err)
	}
	note, err := controller.watchlist.GetNote(r.Context(), symbol)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		controller.logger.Warn("Failed to load note", "symbol", symbol, "error", err)
	}
	view.Note = note

	return view, fin, http.StatusOK
}

// fetchFinancials loads symbol from the provider with non-finite values
// turned into nulls.
func (controller *Controller) fetchFinancials(ctx context.Context, symbol string) (*models.CompanyFinancials, error) {
	fin, err := controller.provider.FetchQuarterly(ctx, symbol)
	if err != nil {
		return nil, err
	}
	fin.DropNonFinite()
	return fin, nil
}

func (controller *Controller) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := controller.templates.ExecuteTemplate(&buf, name, data); err != nil {
		controller.logger.Error("Failed to render template", "template", name, "error", err)
		http.Error(w, fmt.Sprintf("failed to render %s", name), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func themeOf(r *http.Request) string {
	if r.URL.Query().Get("theme") == "dark" || r.FormValue("theme") == "dark" {
		return "dark"
	}
	return "light"
}
