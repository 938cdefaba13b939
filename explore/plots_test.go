package explore

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cardiogo/cardiogo/dataset"
)

func plotTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New([]dataset.Column{
		{Name: "age", Kind: dataset.Numeric, Values: []float64{63, 67, 67, 37, 41, 56, math.NaN(), 57}},
		{Name: "chol", Kind: dataset.Numeric, Values: []float64{233, 286, 229, 250, 204, 236, 268, 354}},
		{Name: "num", Kind: dataset.Numeric, Values: []float64{0, 2, 1, 0, 0, 0, 3, 0}},
	})
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	return tbl
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("missing plot %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Errorf("plot %s is empty", path)
	}
}

func TestHistogram(t *testing.T) {
	tbl := plotTable(t)
	path := filepath.Join(t.TempDir(), "age_hist.png")

	if err := Histogram(tbl, "age", 5, path); err != nil {
		t.Fatalf("Histogram() error = %v", err)
	}
	assertPNG(t, path)
}

func TestHistogramErrors(t *testing.T) {
	tbl := plotTable(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		col  string
		bins int
	}{
		{"unknown column", "nope", 5},
		{"zero bins", "age", 0},
		{"negative bins", "age", -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Histogram(tbl, tt.col, tt.bins, filepath.Join(dir, "out.png"))
			if err == nil {
				t.Errorf("Histogram(%q, %d) error = nil, want error", tt.col, tt.bins)
			}
		})
	}
}

func TestHistogramAllMissing(t *testing.T) {
	tbl, err := dataset.New([]dataset.Column{
		{Name: "x", Kind: dataset.Numeric, Values: []float64{math.NaN(), math.NaN()}},
	})
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	if err := Histogram(tbl, "x", 5, filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Error("Histogram() on all-missing column: error = nil, want error")
	}
}

func TestScatterByClass(t *testing.T) {
	tbl := plotTable(t)
	path := filepath.Join(t.TempDir(), "scatter.png")

	if err := ScatterByClass(tbl, "age", "chol", "num", path); err != nil {
		t.Fatalf("ScatterByClass() error = %v", err)
	}
	assertPNG(t, path)
}

func TestScatterByClassUnknownColumn(t *testing.T) {
	tbl := plotTable(t)
	path := filepath.Join(t.TempDir(), "scatter.png")

	if err := ScatterByClass(tbl, "age", "chol", "nope", path); err == nil {
		t.Error("ScatterByClass() with unknown class column: error = nil, want error")
	}
}

func TestWriteAll(t *testing.T) {
	tbl := plotTable(t)
	dir := t.TempDir()

	if err := WriteAll(tbl, 5, dir); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	for _, name := range []string{"age_hist.png", "chol_hist.png", "age_chol_scatter.png"} {
		assertPNG(t, filepath.Join(dir, name))
	}
}
