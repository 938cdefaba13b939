// Package explore renders the descriptive plots and statistics of the
// exploration stage. Everything here is a side effect: nothing downstream
// consumes its output.
package explore

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/cardiogo/cardiogo/dataset"
	"github.com/cardiogo/cardiogo/pkg/errors"
)

// Histogram writes a fixed-bin histogram of a numeric column as PNG.
// Missing values are excluded from the bins.
func Histogram(t *dataset.Table, col string, bins int, path string) error {
	c, err := t.Col(col)
	if err != nil {
		return err
	}
	if bins < 1 {
		return errors.NewValidationError("bins", "must be at least 1", bins)
	}

	values := make(plotter.Values, 0, len(c.Values))
	for _, v := range c.Values {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return errors.Wrapf(errors.ErrEmptyData, "explore.Histogram: %q", col)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Distribution of %s", col)
	p.X.Label.Text = col
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return errors.Wrapf(err, "explore.Histogram: %q", col)
	}
	p.Add(h)

	return errors.Wrapf(p.Save(6*vg.Inch, 4*vg.Inch, path), "explore.Histogram: save %s", path)
}

// ScatterByClass writes a scatter of ycol against xcol, one glyph color per
// distinct value of classCol, as PNG. classCol may be numeric (the raw
// multi-level severity label) or categorical; rows missing any of the three
// values are excluded from the plot.
func ScatterByClass(t *dataset.Table, xcol, ycol, classCol, path string) error {
	xc, err := t.Col(xcol)
	if err != nil {
		return err
	}
	yc, err := t.Col(ycol)
	if err != nil {
		return err
	}
	cc, err := t.Col(classCol)
	if err != nil {
		return err
	}

	groups := make(map[float64]plotter.XYs)
	for i := range xc.Values {
		x, y, cls := xc.Values[i], yc.Values[i], cc.Values[i]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(cls) {
			continue
		}
		groups[cls] = append(groups[cls], plotter.XY{X: x, Y: y})
	}
	if len(groups) == 0 {
		return errors.Wrapf(errors.ErrEmptyData, "explore.ScatterByClass: %q vs %q", xcol, ycol)
	}

	classes := make([]float64, 0, len(groups))
	for cls := range groups {
		classes = append(classes, cls)
	}
	sort.Float64s(classes)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s by %s", ycol, xcol, classCol)
	p.X.Label.Text = xcol
	p.Y.Label.Text = ycol

	for i, cls := range classes {
		s, err := plotter.NewScatter(groups[cls])
		if err != nil {
			return errors.Wrap(err, "explore.ScatterByClass")
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(s)
		p.Legend.Add(classLabel(cc, cls), s)
	}
	p.Legend.Top = true

	return errors.Wrapf(p.Save(6*vg.Inch, 4*vg.Inch, path), "explore.ScatterByClass: save %s", path)
}

// WriteAll renders the three exploration plots into dir: histograms of age
// and chol with the configured bin count, and the age-vs-chol scatter
// colored by the original multi-level num label. The scatter uses the raw
// severity levels, not the binarized label.
func WriteAll(t *dataset.Table, bins int, dir string) error {
	if err := Histogram(t, "age", bins, filepath.Join(dir, "age_hist.png")); err != nil {
		return err
	}
	if err := Histogram(t, "chol", bins, filepath.Join(dir, "chol_hist.png")); err != nil {
		return err
	}
	return ScatterByClass(t, "age", "chol", "num", filepath.Join(dir, "age_chol_scatter.png"))
}

func classLabel(c *dataset.Column, value float64) string {
	if c.Kind == dataset.Categorical {
		return c.Levels[int(value)]
	}
	return fmt.Sprintf("%s=%g", c.Name, value)
}
