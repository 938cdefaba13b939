package preprocessing

import (
	"math"
	"testing"

	"github.com/cardiogo/cardiogo/dataset"
)

// labelTable builds a single-column table whose num column repeats each
// severity value according to counts[severity].
func labelTable(t *testing.T, counts []int) *dataset.Table {
	t.Helper()
	var values []float64
	var ids []float64
	for severity, n := range counts {
		for i := 0; i < n; i++ {
			values = append(values, float64(severity))
			ids = append(ids, float64(len(ids)))
		}
	}
	tbl, err := dataset.New([]dataset.Column{
		{Name: "id", Kind: dataset.Numeric, Values: ids},
		{Name: "num", Kind: dataset.Numeric, Values: values},
	})
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	return tbl
}

func TestBinarizeLabel(t *testing.T) {
	// the Cleveland severity distribution: 160 healthy, 54+35+35+13 diseased
	tbl := labelTable(t, []int{160, 54, 35, 35, 13})

	out, err := BinarizeLabel(tbl, "num")
	if err != nil {
		t.Fatalf("BinarizeLabel() error = %v", err)
	}

	if got := out.NumRows(); got != 297 {
		t.Errorf("NumRows() = %d, want 297", got)
	}
	counts, err := out.LevelCounts("num")
	if err != nil {
		t.Fatalf("LevelCounts() error = %v", err)
	}
	if counts[0] != 160 || counts[1] != 137 {
		t.Errorf("binary counts = %v, want [160 137]", counts)
	}
	if counts[0]+counts[1] != out.NumRows() {
		t.Errorf("count(0)+count(1) = %d, want %d", counts[0]+counts[1], out.NumRows())
	}

	col, err := out.Col("num")
	if err != nil {
		t.Fatalf("Col() error = %v", err)
	}
	if col.Kind != dataset.Categorical {
		t.Error("binarized column should be categorical")
	}
	if col.Levels[0] != "no disease" || col.Levels[1] != "disease" {
		t.Errorf("Levels = %v, want [no disease, disease]", col.Levels)
	}
	for i, v := range col.Values {
		if v != 0 && v != 1 {
			t.Fatalf("row %d: value %v outside {0,1}", i, v)
		}
	}

	// source table untouched
	orig, _ := tbl.Col("num")
	if orig.Kind != dataset.Numeric {
		t.Error("BinarizeLabel mutated the source table")
	}
}

func TestBinarizeLabelErrors(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"missing label", []float64{0, math.NaN(), 1}},
		{"out of range", []float64{0, 5, 1}},
		{"non-integer", []float64{0, 1.5, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := dataset.New([]dataset.Column{
				{Name: "num", Kind: dataset.Numeric, Values: tt.values},
			})
			if err != nil {
				t.Fatalf("dataset.New() error = %v", err)
			}
			if _, err := BinarizeLabel(tbl, "num"); err == nil {
				t.Error("BinarizeLabel() expected error, got nil")
			}
		})
	}
}

func TestStratifiedSplit(t *testing.T) {
	tbl := labelTable(t, []int{160, 54, 35, 35, 13})
	binary, err := BinarizeLabel(tbl, "num")
	if err != nil {
		t.Fatalf("BinarizeLabel() error = %v", err)
	}

	train, test, err := StratifiedSplit(binary, "num", 0.8, 123)
	if err != nil {
		t.Fatalf("StratifiedSplit() error = %v", err)
	}

	n := binary.NumRows()
	if train.NumRows()+test.NumRows() != n {
		t.Errorf("split not exhaustive: %d + %d != %d", train.NumRows(), test.NumRows(), n)
	}
	ratio := float64(test.NumRows()) / float64(n)
	if math.Abs(ratio-0.2) > 0.01 {
		t.Errorf("test fraction = %.3f, want ~0.2", ratio)
	}

	// disjointness via the unique id column
	seen := make(map[float64]bool)
	for _, part := range []*dataset.Table{train, test} {
		ids, err := part.Col("id")
		if err != nil {
			t.Fatalf("Col(id) error = %v", err)
		}
		for _, id := range ids.Values {
			if seen[id] {
				t.Fatalf("row id %v appears in both partitions", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != n {
		t.Errorf("union covers %d rows, want %d", len(seen), n)
	}

	// stratification: class proportions approximately preserved
	trainCounts, _ := train.LevelCounts("num")
	wantTrain0 := int(math.Round(0.8 * 160))
	if trainCounts[0] != wantTrain0 {
		t.Errorf("train class-0 count = %d, want %d", trainCounts[0], wantTrain0)
	}

	// determinism: same seed, same membership
	train2, test2, err := StratifiedSplit(binary, "num", 0.8, 123)
	if err != nil {
		t.Fatalf("StratifiedSplit() second run error = %v", err)
	}
	if !sameIDs(t, train, train2) || !sameIDs(t, test, test2) {
		t.Error("same seed produced different split membership")
	}

	// different seed, different membership (overwhelmingly likely)
	train3, _, err := StratifiedSplit(binary, "num", 0.8, 456)
	if err != nil {
		t.Fatalf("StratifiedSplit() third run error = %v", err)
	}
	if sameIDs(t, train, train3) {
		t.Error("different seeds produced identical split membership")
	}
}

func TestStratifiedSplitValidation(t *testing.T) {
	tbl := labelTable(t, []int{3, 3})
	binary, err := BinarizeLabel(tbl, "num")
	if err != nil {
		t.Fatalf("BinarizeLabel() error = %v", err)
	}

	for _, frac := range []float64{0, 1, -0.5, 1.5} {
		if _, _, err := StratifiedSplit(binary, "num", frac, 1); err == nil {
			t.Errorf("StratifiedSplit(frac=%v) expected error", frac)
		}
	}
	// numeric column cannot stratify
	if _, _, err := StratifiedSplit(binary, "id", 0.8, 1); err == nil {
		t.Error("StratifiedSplit() on numeric column expected error")
	}
}

func TestOverSample(t *testing.T) {
	tbl := labelTable(t, []int{160, 54, 35, 35, 13})
	binary, err := BinarizeLabel(tbl, "num")
	if err != nil {
		t.Fatalf("BinarizeLabel() error = %v", err)
	}
	train, _, err := StratifiedSplit(binary, "num", 0.8, 123)
	if err != nil {
		t.Fatalf("StratifiedSplit() error = %v", err)
	}

	balanced, err := OverSample(train, "num", 1000, 123)
	if err != nil {
		t.Fatalf("OverSample() error = %v", err)
	}

	if got := balanced.NumRows(); got != 1000 {
		t.Errorf("NumRows() = %d, want 1000", got)
	}
	counts, err := balanced.LevelCounts("num")
	if err != nil {
		t.Fatalf("LevelCounts() error = %v", err)
	}
	if counts[0] != 500 || counts[1] != 500 {
		t.Errorf("class counts = %v, want [500 500]", counts)
	}

	// every original training row of each class is retained
	trainIDs := make(map[float64]bool)
	ids, _ := train.Col("id")
	for _, id := range ids.Values {
		trainIDs[id] = true
	}
	balIDs := make(map[float64]bool)
	bids, _ := balanced.Col("id")
	for _, id := range bids.Values {
		balIDs[id] = true
	}
	for id := range trainIDs {
		if !balIDs[id] {
			t.Fatalf("original row id %v missing from balanced set", id)
		}
	}
	// no rows from outside the training partition
	for id := range balIDs {
		if !trainIDs[id] {
			t.Fatalf("balanced set contains id %v not present in training partition", id)
		}
	}

	// determinism
	balanced2, err := OverSample(train, "num", 1000, 123)
	if err != nil {
		t.Fatalf("OverSample() second run error = %v", err)
	}
	b1, _ := balanced.Col("id")
	b2, _ := balanced2.Col("id")
	for i := range b1.Values {
		if b1.Values[i] != b2.Values[i] {
			t.Fatalf("same seed produced different balanced composition at row %d", i)
		}
	}
}

func TestOverSampleOddTarget(t *testing.T) {
	tbl := labelTable(t, []int{10, 5})
	binary, err := BinarizeLabel(tbl, "num")
	if err != nil {
		t.Fatalf("BinarizeLabel() error = %v", err)
	}

	balanced, err := OverSample(binary, "num", 101, 7)
	if err != nil {
		t.Fatalf("OverSample() error = %v", err)
	}
	if got := balanced.NumRows(); got != 101 {
		t.Errorf("NumRows() = %d, want 101", got)
	}
	counts, _ := balanced.LevelCounts("num")
	if counts[0] != 51 || counts[1] != 50 {
		t.Errorf("class counts = %v, want [51 50]", counts)
	}
}

func TestOverSampleEmptyClass(t *testing.T) {
	// a class level with zero rows cannot be sampled from
	tbl, err := dataset.New([]dataset.Column{
		{Name: "num", Kind: dataset.Categorical, Values: []float64{0, 0, 0}, Levels: []string{"no disease", "disease"}},
	})
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	if _, err := OverSample(tbl, "num", 10, 1); err == nil {
		t.Error("OverSample() expected error for empty class")
	}
}

func sameIDs(t *testing.T, a, b *dataset.Table) bool {
	t.Helper()
	ca, err := a.Col("id")
	if err != nil {
		t.Fatalf("Col(id) error = %v", err)
	}
	cb, err := b.Col("id")
	if err != nil {
		t.Fatalf("Col(id) error = %v", err)
	}
	if len(ca.Values) != len(cb.Values) {
		return false
	}
	for i := range ca.Values {
		if ca.Values[i] != cb.Values[i] {
			return false
		}
	}
	return true
}
