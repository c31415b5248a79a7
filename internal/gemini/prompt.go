package gemini

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/guregu/null/v6"

	"github.com/VxVxN/stockinsight/internal/models"
)

var promptTemplate = template.Must(template.New("prompt").Parse(
	`Analyze the financial performance of {{.Company}} based on the following quarterly data (values in Crores INR, except EPS):

{{.Table}}
Please provide a comprehensive analysis covering:
1. Sales trend and growth pattern
2. Operating profit margin (OPM%) trajectory and what it indicates
3. Net profit performance and its relation to operating profit
4. EPS growth and what it means for investors
5. Overall financial health and future outlook based on these trends

Keep the analysis professional yet accessible for retail investors.
Highlight any concerning trends or positive indicators.
Provide specific insights about each financial metric.
`))

// BuildPrompt renders the analysis request for fin.
func BuildPrompt(fin *models.CompanyFinancials) (string, error) {
	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, struct {
		Company string
		Table   string
	}{
		Company: fin.CompanyName,
		Table:   formatTable(fin.Records),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

func formatTable(records []models.QuarterlyRecord) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)

	header := []string{"Quarter"}
	for _, m := range models.Metrics {
		header = append(header, m.Title())
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for _, r := range records {
		row := []string{r.Period}
		for _, m := range models.Metrics {
			row = append(row, formatValue(m.Value(r)))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}

	tw.Flush()
	return sb.String()
}

func formatValue(v null.Float) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}
