package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/VxVxN/stockinsight/internal/catalog"
	"github.com/VxVxN/stockinsight/internal/database"
)

func (controller *Controller) IndexHandler(w http.ResponseWriter, r *http.Request) {
	watchlist, err := controller.watchlist.List(r.Context())
	if err != nil {
		controller.logger.Warn("Failed to list watchlist", "error", err)
	}

	data := struct {
		Theme     string
		Symbols   []catalog.Symbol
		Watchlist []database.WatchlistEntry
		ServerKey bool
	}{
		Theme:     themeOf(r),
		Symbols:   controller.catalog.Symbols(),
		Watchlist: watchlist,
		ServerKey: controller.apiKey != "",
	}

	controller.render(w, http.StatusOK, "index.html", data)
}

func (controller *Controller) GetCatalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(controller.catalog.Symbols())
}
