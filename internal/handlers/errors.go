package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/VxVxN/stockinsight/internal/gemini"
	"github.com/VxVxN/stockinsight/internal/parser"
	"github.com/VxVxN/stockinsight/internal/yahoo"
)

// fetchFailure maps a provider error to an HTTP status and a message meant
// for the person looking at the dashboard.
func fetchFailure(err error) (int, string) {
	switch {
	case errors.Is(err, yahoo.ErrInvalidSymbol):
		return http.StatusBadRequest, sentence(err)
	case errors.Is(err, yahoo.ErrSymbolNotFound),
		errors.Is(err, yahoo.ErrNoQuarterlyData),
		errors.Is(err, yahoo.ErrSalesUnavailable),
		errors.Is(err, parser.ErrCompanyNotFound):
		return http.StatusNotFound, sentence(err)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Timed out fetching data from the market data provider."
	default:
		return http.StatusBadGateway, fmt.Sprintf("Error fetching data: %v", err)
	}
}

func analysisFailure(err error) string {
	if errors.Is(err, gemini.ErrMissingAPIKey) {
		return "Please enter your Gemini API key to generate analysis."
	}
	return fmt.Sprintf("Error generating analysis: %v. Please check your API key and try again.", err)
}

func sentence(err error) string {
	msg := []rune(err.Error())
	if len(msg) == 0 {
		return ""
	}
	msg[0] = unicode.ToUpper(msg[0])
	s := string(msg)
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

// writeJSON encodes v before sending any header so an encoding failure can
// still be reported as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
