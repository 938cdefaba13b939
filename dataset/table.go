// Package dataset provides loading and in-memory representation of the
// Cleveland heart-disease table.
//
// A Table is a fixed-schema, column-oriented frame. Every column is backed
// by float64 values; categorical columns store level indices and keep their
// level labels alongside. Missing values are NaN, never zero, so they stay
// detectable through every later stage.
package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/cardiogo/cardiogo/pkg/errors"
)

// Kind distinguishes numeric columns from coerced categorical ones.
type Kind int

const (
	// Numeric columns hold continuous or integer-coded values.
	Numeric Kind = iota
	// Categorical columns hold level indices into their Levels slice.
	Categorical
)

// Column is a single named column of a Table.
type Column struct {
	Name   string
	Kind   Kind
	Values []float64 // level indices for categorical columns; NaN marks missing
	Levels []string  // nil for numeric columns
}

// MissingCount returns the number of NaN entries in the column.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Table is an immutable-by-convention column frame. Operations that change
// data return a new Table; no stage mutates a table it did not create.
type Table struct {
	cols  []Column
	index map[string]int
}

// New creates a table from columns. All columns must have the same length.
func New(cols []Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.New")
	}
	n := len(cols[0].Values)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if len(c.Values) != n {
			return nil, errors.NewDimensionError("dataset.New", n, len(c.Values), 0)
		}
		if _, dup := index[c.Name]; dup {
			return nil, errors.NewValidationError("cols", "duplicate column name", c.Name)
		}
		index[c.Name] = i
	}
	return &Table{cols: cols, index: index}, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Values)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in schema order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Col returns the named column.
func (t *Table) Col(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownColumn, "dataset.Col: %q", name)
	}
	return &t.cols[i], nil
}

// Coerce returns a new table with the named numeric column converted to a
// categorical column. labels maps each raw code to its semantic level name;
// level indices follow the ascending order of the raw codes. NaN entries
// stay NaN. A value outside labels is an error, not a silent drop.
func (t *Table) Coerce(name string, labels map[float64]string) (*Table, error) {
	col, err := t.Col(name)
	if err != nil {
		return nil, err
	}
	if col.Kind == Categorical {
		return nil, errors.NewValidationError("name", "column already categorical", name)
	}

	codes := make([]float64, 0, len(labels))
	for code := range labels {
		codes = append(codes, code)
	}
	sort.Float64s(codes)
	levelOf := make(map[float64]int, len(codes))
	levels := make([]string, len(codes))
	for i, code := range codes {
		levelOf[code] = i
		levels[i] = labels[code]
	}

	values := make([]float64, len(col.Values))
	for i, v := range col.Values {
		if math.IsNaN(v) {
			values[i] = math.NaN()
			continue
		}
		idx, ok := levelOf[v]
		if !ok {
			return nil, errors.NewValueError("dataset.Coerce",
				errors.Newf("column %q: code %v has no label", name, v).Error())
		}
		values[i] = float64(idx)
	}

	out := t.shallowCopy()
	out.cols[t.index[name]] = Column{Name: name, Kind: Categorical, Values: values, Levels: levels}
	return out, nil
}

// WithColumn returns a new table with the named column replaced.
func (t *Table) WithColumn(col Column) (*Table, error) {
	i, ok := t.index[col.Name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownColumn, "dataset.WithColumn: %q", col.Name)
	}
	if len(col.Values) != t.NumRows() {
		return nil, errors.NewDimensionError("dataset.WithColumn", t.NumRows(), len(col.Values), 0)
	}
	out := t.shallowCopy()
	out.cols[i] = col
	return out, nil
}

// Select returns a new table containing the given rows, in order. Indices
// may repeat, which is how oversampling duplicates rows.
func (t *Table) Select(rows []int) (*Table, error) {
	n := t.NumRows()
	for _, r := range rows {
		if r < 0 || r >= n {
			return nil, errors.NewValidationError("rows", "row index out of range", r)
		}
	}
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		values := make([]float64, len(rows))
		for j, r := range rows {
			values[j] = c.Values[r]
		}
		cols[i] = Column{Name: c.Name, Kind: c.Kind, Values: values, Levels: c.Levels}
	}
	return New(cols)
}

// Matrix extracts the named columns into an n_rows x len(names) dense
// matrix, the estimator input format. Missing values pass through as NaN.
func (t *Table) Matrix(names ...string) (*mat.Dense, error) {
	if len(names) == 0 {
		return nil, errors.NewValidationError("names", "no columns requested", names)
	}
	n := t.NumRows()
	out := mat.NewDense(n, len(names), nil)
	for j, name := range names {
		col, err := t.Col(name)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			out.Set(i, j, col.Values[i])
		}
	}
	return out, nil
}

// Vector extracts a single column as an n_rows x 1 matrix.
func (t *Table) Vector(name string) (*mat.Dense, error) {
	return t.Matrix(name)
}

// LevelCounts returns per-level occurrence counts for a categorical column,
// indexed like its Levels slice. Missing entries are not counted.
func (t *Table) LevelCounts(name string) ([]int, error) {
	col, err := t.Col(name)
	if err != nil {
		return nil, err
	}
	if col.Kind != Categorical {
		return nil, errors.NewValidationError("name", "column is not categorical", name)
	}
	counts := make([]int, len(col.Levels))
	for _, v := range col.Values {
		if math.IsNaN(v) {
			continue
		}
		counts[int(v)]++
	}
	return counts, nil
}

func (t *Table) shallowCopy() *Table {
	cols := make([]Column, len(t.cols))
	copy(cols, t.cols)
	index := make(map[string]int, len(t.index))
	for k, v := range t.index {
		index[k] = v
	}
	return &Table{cols: cols, index: index}
}
