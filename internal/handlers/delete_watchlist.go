package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/VxVxN/stockinsight/internal/database"
)

type DeleteWatchlistRequest struct {
	Symbol string `json:"symbol"`
}

func (controller *Controller) DeleteWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	var req DeleteWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	symbol, ok := controller.watchlistSymbol(w, req.Symbol)
	if !ok {
		return
	}

	err := controller.watchlist.Delete(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Symbol removed from watchlist",
	})
}
