package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/cardiogo/cardiogo/pkg/errors"
)

const sampleCSV = `63.0,1.0,1.0,145.0,233.0,1.0,2.0,150.0,0.0,2.3,3.0,0.0,6.0,0
67.0,1.0,4.0,160.0,286.0,0.0,2.0,108.0,1.0,1.5,2.0,3.0,3.0,2
67.0,1.0,4.0,120.0,229.0,0.0,2.0,129.0,1.0,2.6,2.0,2.0,7.0,1
37.0,0.0,3.0,130.0,250.0,0.0,0.0,187.0,0.0,3.5,3.0,0.0,3.0,0
41.0,0.0,2.0,130.0,204.0,0.0,2.0,172.0,0.0,1.4,1.0,?,3.0,0
56.0,1.0,2.0,120.0,236.0,0.0,1.0,178.0,0.0,0.8,1.0,0.0,?,0
`

func TestReadTable(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader(sampleCSV), ClevelandColumns)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	if got := tbl.NumRows(); got != 6 {
		t.Errorf("NumRows() = %d, want 6", got)
	}
	if got := tbl.NumCols(); got != 14 {
		t.Errorf("NumCols() = %d, want 14", got)
	}

	// missing sentinels must stay detectable, never become zero
	ca, err := tbl.Col("ca")
	if err != nil {
		t.Fatalf("Col(ca) error = %v", err)
	}
	if got := ca.MissingCount(); got != 1 {
		t.Errorf("ca.MissingCount() = %d, want 1", got)
	}
	if !math.IsNaN(ca.Values[4]) {
		t.Errorf("ca row 4 = %v, want NaN", ca.Values[4])
	}
	thal, err := tbl.Col("thal")
	if err != nil {
		t.Fatalf("Col(thal) error = %v", err)
	}
	if got := thal.MissingCount(); got != 1 {
		t.Errorf("thal.MissingCount() = %d, want 1", got)
	}

	age, err := tbl.Col("age")
	if err != nil {
		t.Fatalf("Col(age) error = %v", err)
	}
	if age.Values[0] != 63 {
		t.Errorf("age row 0 = %v, want 63", age.Values[0])
	}
}

func TestReadTableErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantSchema bool
	}{
		{
			name:       "column count mismatch",
			input:      "63.0,1.0,1.0\n",
			wantSchema: true,
		},
		{
			name:  "unparsable field",
			input: strings.Replace(sampleCSV, "63.0", "abc", 1),
		},
		{
			name:  "empty input",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.input), ClevelandColumns)
			if err == nil {
				t.Fatal("ReadTable() expected error, got nil")
			}
			var se *errors.SchemaError
			if got := errors.As(err, &se); got != tt.wantSchema {
				t.Errorf("SchemaError = %v, want %v (err: %v)", got, tt.wantSchema, err)
			}
		})
	}
}

func TestCoerceCleveland(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader(sampleCSV), ClevelandColumns)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	rows := tbl.NumRows()

	coerced, err := CoerceCleveland(tbl)
	if err != nil {
		t.Fatalf("CoerceCleveland() error = %v", err)
	}

	// no rows silently dropped
	if got := coerced.NumRows(); got != rows {
		t.Errorf("NumRows() = %d, want %d", got, rows)
	}

	tests := []struct {
		col        string
		wantLevels []string
	}{
		{"sex", []string{"Female", "Male"}},
		{"cp", []string{"typical angina", "atypical angina", "non-anginal", "asymptomatic"}},
		{"restecg", []string{"normal", "st-t abnormality", "lv hypertrophy"}},
	}
	for _, tt := range tests {
		t.Run(tt.col, func(t *testing.T) {
			c, err := coerced.Col(tt.col)
			if err != nil {
				t.Fatalf("Col(%s) error = %v", tt.col, err)
			}
			if c.Kind != Categorical {
				t.Errorf("Kind = %v, want Categorical", c.Kind)
			}
			if len(c.Levels) != len(tt.wantLevels) {
				t.Fatalf("Levels = %v, want %v", c.Levels, tt.wantLevels)
			}
			for i, lvl := range tt.wantLevels {
				if c.Levels[i] != lvl {
					t.Errorf("Levels[%d] = %q, want %q", i, c.Levels[i], lvl)
				}
			}
		})
	}

	// row 0: sex=1 -> Male, cp=1 -> typical angina
	sex, _ := coerced.Col("sex")
	if sex.Values[0] != 1 {
		t.Errorf("sex row 0 level index = %v, want 1 (Male)", sex.Values[0])
	}
	cp, _ := coerced.Col("cp")
	if cp.Values[0] != 0 {
		t.Errorf("cp row 0 level index = %v, want 0 (typical angina)", cp.Values[0])
	}

	// original table untouched
	origSex, _ := tbl.Col("sex")
	if origSex.Kind != Numeric {
		t.Error("Coerce mutated the source table")
	}
}

func TestCoerceUnknownCode(t *testing.T) {
	input := strings.Replace(sampleCSV, "63.0,1.0,1.0", "63.0,5.0,1.0", 1)
	tbl, err := ReadTable(strings.NewReader(input), ClevelandColumns)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if _, err := tbl.Coerce("sex", SexLabels); err == nil {
		t.Error("Coerce() expected error for unmapped code, got nil")
	}
}

func TestSelect(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader(sampleCSV), ClevelandColumns)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	// duplicate indices are how oversampling replicates rows
	sub, err := tbl.Select([]int{1, 1, 3})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got := sub.NumRows(); got != 3 {
		t.Fatalf("NumRows() = %d, want 3", got)
	}
	age, _ := sub.Col("age")
	want := []float64{67, 67, 37}
	for i, w := range want {
		if age.Values[i] != w {
			t.Errorf("age[%d] = %v, want %v", i, age.Values[i], w)
		}
	}

	if _, err := tbl.Select([]int{99}); err == nil {
		t.Error("Select() expected error for out-of-range index")
	}
}

func TestMatrix(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader(sampleCSV), ClevelandColumns)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	X, err := tbl.Matrix("age", "chol", "trestbps")
	if err != nil {
		t.Fatalf("Matrix() error = %v", err)
	}
	r, c := X.Dims()
	if r != 6 || c != 3 {
		t.Fatalf("Dims() = (%d, %d), want (6, 3)", r, c)
	}
	if X.At(1, 1) != 286 {
		t.Errorf("X[1,1] = %v, want 286", X.At(1, 1))
	}

	if _, err := tbl.Matrix("nonexistent"); err == nil {
		t.Error("Matrix() expected error for unknown column")
	}
}

func TestHeadAndDescribe(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader(sampleCSV), ClevelandColumns)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	coerced, err := CoerceCleveland(tbl)
	if err != nil {
		t.Fatalf("CoerceCleveland() error = %v", err)
	}

	head := coerced.Head(3)
	if !strings.Contains(head, "age") || !strings.Contains(head, "Male") {
		t.Errorf("Head() missing expected content:\n%s", head)
	}
	// missing cells render as NA, not zero
	if !strings.Contains(coerced.Head(6), "NA") {
		t.Error("Head() should render missing values as NA")
	}

	desc := coerced.Describe()
	if !strings.Contains(desc, "mean") || !strings.Contains(desc, "Female") {
		t.Errorf("Describe() missing expected content:\n%s", desc)
	}
}
