// Package parser reads quarterly financial exports from CSV files so the
// dashboard can run against offline data.
package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"github.com/VxVxN/stockinsight/internal/models"
)

var ErrCompanyNotFound = errors.New("no CSV export for symbol")

// CSVSource looks up "<SYMBOL>_<Company Name>.csv" files below rootPath and
// keeps the latest quarterLimit quarters of each. A limit of zero keeps all.
type CSVSource struct {
	rootPath     string
	quarterLimit int
	logger       *slog.Logger
}

func NewCSVSource(rootPath string, quarterLimit int, logger *slog.Logger) *CSVSource {
	return &CSVSource{rootPath: rootPath, quarterLimit: quarterLimit, logger: logger}
}

type MetricHandler func(*models.QuarterlyRecord, float64)

func (p *CSVSource) getMetricHandlers() map[string]MetricHandler {
	return map[string]MetricHandler{
		"sales":            func(r *models.QuarterlyRecord, v float64) { r.Sales = null.FloatFrom(v) },
		"revenue":          func(r *models.QuarterlyRecord, v float64) { r.Sales = null.FloatFrom(v) },
		"operating profit": func(r *models.QuarterlyRecord, v float64) { r.OperatingProfit = null.FloatFrom(v) },
		"opm%":             func(r *models.QuarterlyRecord, v float64) { r.OPMPercent = null.FloatFrom(v) },
		"net profit":       func(r *models.QuarterlyRecord, v float64) { r.NetProfit = null.FloatFrom(v) },
		"eps":              func(r *models.QuarterlyRecord, v float64) { r.EPS = null.FloatFrom(v) },
	}
}

// FetchQuarterly satisfies the same contract as the Yahoo client.
func (p *CSVSource) FetchQuarterly(ctx context.Context, symbol string) (*models.CompanyFinancials, error) {
	path, err := p.findFile(symbol)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Parsing file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fin, err := p.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	fileSymbol, company := extractSymbolAndCompany(path)
	fin.Symbol = fileSymbol
	fin.CompanyName = company
	return fin, nil
}

// Symbols lists the symbols that have an export below the root path.
func (p *CSVSource) Symbols() ([]string, error) {
	var symbols []string
	err := filepath.Walk(p.rootPath, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(strings.ToLower(info.Name()), ".csv") {
			return nil
		}
		symbol, _ := extractSymbolAndCompany(filePath)
		symbols = append(symbols, symbol)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (p *CSVSource) findFile(symbol string) (string, error) {
	var found string
	err := filepath.Walk(p.rootPath, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if found != "" || info.IsDir() || !strings.HasSuffix(strings.ToLower(info.Name()), ".csv") {
			return nil
		}
		if fileSymbol, _ := extractSymbolAndCompany(filePath); strings.EqualFold(fileSymbol, symbol) {
			found = filePath
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk directory: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: %s", ErrCompanyNotFound, symbol)
	}
	return found, nil
}

// Parse reads one export: the header row holds quarter labels, each further
// row one metric. Unknown rows are skipped and unparsable cells become null.
func (p *CSVSource) Parse(r io.Reader) (*models.CompanyFinancials, error) {
	records, err := p.readCSV(r)
	if err != nil {
		return nil, err
	}

	header := records[0]
	quarters := make([]*models.QuarterlyRecord, len(header))
	for colIdx := 1; colIdx < len(header); colIdx++ {
		label := strings.TrimSpace(header[colIdx])
		if label == "" || label == "LTM" {
			continue
		}
		year, quarter, err := ParseQuarter(label)
		if err != nil {
			p.logger.Debug("Skipping column", "label", label, "err", err)
			continue
		}
		quarters[colIdx] = &models.QuarterlyRecord{
			Period:  fmt.Sprintf("%d-Q%d", year, quarter),
			EndDate: quarterEnd(year, quarter),
		}
	}

	handlers := p.getMetricHandlers()
	hasOPMRow := false

	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		record := records[rowIdx]
		if len(record) == 0 {
			continue
		}

		metricName := strings.ToLower(strings.TrimSpace(record[0]))
		handler, ok := handlers[metricName]
		if !ok {
			continue
		}
		if metricName == "opm%" {
			hasOPMRow = true
		}

		for colIdx := 1; colIdx < len(record) && colIdx < len(quarters); colIdx++ {
			if quarters[colIdx] == nil {
				continue
			}
			value, err := parseValue(record[colIdx])
			if err != nil {
				continue
			}
			handler(quarters[colIdx], value)
		}
	}

	fin := &models.CompanyFinancials{}
	for _, q := range quarters {
		if q == nil {
			continue
		}
		if !hasOPMRow {
			q.DeriveOPM()
		}
		fin.Records = append(fin.Records, *q)
	}
	if len(fin.Records) == 0 {
		return nil, fmt.Errorf("no quarter columns found")
	}

	sort.SliceStable(fin.Records, func(i, j int) bool {
		return fin.Records[i].EndDate.Before(fin.Records[j].EndDate)
	})
	if p.quarterLimit > 0 && len(fin.Records) > p.quarterLimit {
		fin.Records = fin.Records[len(fin.Records)-p.quarterLimit:]
	}

	return fin, nil
}

func (p *CSVSource) readCSV(file io.Reader) ([][]string, error) {
	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("insufficient rows: %d", len(records))
	}

	return records, nil
}

func extractSymbolAndCompany(filePath string) (string, string) {
	filename := filepath.Base(filePath)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	symbol, company, ok := strings.Cut(filename, "_")
	if !ok || company == "" {
		return strings.ToUpper(filename), strings.ToUpper(filename)
	}
	return strings.ToUpper(symbol), company
}

func parseValue(valueStr string) (float64, error) {
	valueStr = strings.TrimSpace(valueStr)
	valueStr = strings.ReplaceAll(valueStr, ",", "")
	valueStr = strings.ReplaceAll(valueStr, " ", "")
	valueStr = strings.ReplaceAll(valueStr, "\"", "")
	valueStr = strings.ReplaceAll(valueStr, "%", "")
	valueStr = strings.TrimPrefix(valueStr, "₹")

	if valueStr == "" || valueStr == "-" {
		return 0, fmt.Errorf("empty or invalid value")
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("non-finite value: %s", valueStr)
	}
	return value, nil
}

// ParseQuarter accepts "2024-Q3" and "2024-3".
func ParseQuarter(q string) (int, int, error) {
	if len(q) < 6 {
		return 0, 0, fmt.Errorf("invalid quarter format: %s", q)
	}

	year, err := strconv.Atoi(q[:4])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year: %w", err)
	}

	quarter, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(q[5:]), "Q"))
	if err != nil || quarter < 1 || quarter > 4 {
		return 0, 0, fmt.Errorf("invalid quarter: %s", q)
	}

	return year, quarter, nil
}

func quarterEnd(year, quarter int) time.Time {
	return time.Date(year, time.Month(quarter*3)+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}
