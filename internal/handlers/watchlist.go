package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/VxVxN/stockinsight/internal/database"
)

func (controller *Controller) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := controller.watchlist.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []database.WatchlistEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
