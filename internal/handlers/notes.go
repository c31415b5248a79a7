package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/VxVxN/stockinsight/internal/database"
	"github.com/VxVxN/stockinsight/internal/yahoo"
)

type SaveNoteRequest struct {
	Symbol string `json:"symbol"`
	Note   string `json:"note"`
}

type GetNoteResponse struct {
	Symbol string `json:"symbol"`
	Note   string `json:"note"`
}

func (controller *Controller) GetSymbolNote(w http.ResponseWriter, r *http.Request) {
	symbol, ok := controller.watchlistSymbol(w, r.URL.Query().Get("symbol"))
	if !ok {
		return
	}

	note, err := controller.watchlist.GetNote(r.Context(), symbol)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetNoteResponse{
		Symbol: symbol,
		Note:   note,
	})
}

func (controller *Controller) SaveSymbolNote(w http.ResponseWriter, r *http.Request) {
	var req SaveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	symbol, ok := controller.watchlistSymbol(w, req.Symbol)
	if !ok {
		return
	}

	err := controller.watchlist.SaveNote(r.Context(), symbol, req.Note)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Note saved successfully",
	})
}

func (controller *Controller) DeleteSymbolNote(w http.ResponseWriter, r *http.Request) {
	symbol, ok := controller.watchlistSymbol(w, r.URL.Query().Get("symbol"))
	if !ok {
		return
	}

	err := controller.watchlist.DeleteNote(r.Context(), symbol)
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
		"message": "Note deleted successfully",
	})
}

// watchlistSymbol normalizes raw the way the dashboard does so notes and
// watchlist entries are keyed by the same symbol.
func (controller *Controller) watchlistSymbol(w http.ResponseWriter, raw string) (string, bool) {
	symbol, err := yahoo.NormalizeSymbol(raw, controller.exchangeSuffix)
	if err != nil {
		http.Error(w, sentence(err), http.StatusBadRequest)
		return "", false
	}
	return symbol, true
}
