package visualization

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/VxVxN/stockinsight/internal/models"
)

// WriteMetricPNG draws one metric of fin as a PNG line chart. Quarters with
// no value are left out of the line but keep their tick on the X axis.
func WriteMetricPNG(w io.Writer, fin *models.CompanyFinancials, metric models.Metric) error {
	p := plot.New()

	p.Title.Text = fmt.Sprintf("%s - %s", fin.CompanyName, metric.Title())
	p.X.Label.Text = "Quarter"
	p.Y.Label.Text = metric.Unit()

	labels := make([]string, len(fin.Records))
	pts := make(plotter.XYs, 0, len(fin.Records))
	for i, r := range fin.Records {
		labels[i] = r.Period
		if v := metric.Value(r); v.Valid {
			pts = append(pts, plotter.XY{X: float64(i), Y: v.Float64})
		}
	}
	p.NominalX(labels...)

	if len(pts) > 0 {
		if err := plotutil.AddLinePoints(p, metric.Title(), pts); err != nil {
			return fmt.Errorf("failed to add line: %w", err)
		}
	}

	writer, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}

	if _, err := writer.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}
