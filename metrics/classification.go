// Package metrics computes classification evaluation measures: the
// confusion matrix and its derived statistics.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/cardiogo/cardiogo/pkg/errors"
)

// DegenerateLabelsError reports that a label set collapsed to a single
// level, which makes the confusion matrix undefined. Callers are expected
// to catch it and surface a diagnostic instead of failing.
type DegenerateLabelsError struct {
	Side     string // "true" or "predicted"
	Distinct int
}

func (e *DegenerateLabelsError) Error() string {
	return fmt.Sprintf("confusion matrix undefined: %s labels have %d distinct level(s), need at least 2",
		e.Side, e.Distinct)
}

// Confusion is a square tabulation of actual against predicted labels.
// Rows index the actual class, columns the predicted one; Classes gives
// the label order for both axes.
type Confusion struct {
	Classes []int
	Counts  [][]int
}

// ConfusionMatrix tabulates yTrue against yPred. Both inputs are
// n_samples x 1 matrices of integer-valued labels. If either side has
// fewer than two distinct levels, a DegenerateLabelsError is returned so
// the caller can take the diagnostic path.
func ConfusionMatrix(yTrue, yPred mat.Matrix) (*Confusion, error) {
	rows, _ := yTrue.Dims()
	pRows, _ := yPred.Dims()
	if rows == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "metrics.ConfusionMatrix")
	}
	if pRows != rows {
		return nil, errors.NewDimensionError("metrics.ConfusionMatrix", rows, pRows, 0)
	}

	if n := distinctCount(yTrue); n < 2 {
		return nil, errors.WithStack(&DegenerateLabelsError{Side: "true", Distinct: n})
	}
	if n := distinctCount(yPred); n < 2 {
		return nil, errors.WithStack(&DegenerateLabelsError{Side: "predicted", Distinct: n})
	}

	// label order: union of both sides, ascending
	seen := make(map[int]bool)
	var classes []int
	for i := 0; i < rows; i++ {
		for _, v := range []int{int(yTrue.At(i, 0)), int(yPred.At(i, 0))} {
			if !seen[v] {
				seen[v] = true
				classes = append(classes, v)
			}
		}
	}
	sort.Ints(classes)

	idx := make(map[int]int, len(classes))
	for i, cls := range classes {
		idx[cls] = i
	}
	counts := make([][]int, len(classes))
	for i := range counts {
		counts[i] = make([]int, len(classes))
	}
	for i := 0; i < rows; i++ {
		counts[idx[int(yTrue.At(i, 0))]][idx[int(yPred.At(i, 0))]]++
	}
	return &Confusion{Classes: classes, Counts: counts}, nil
}

// String renders the matrix as a text table with actual classes on rows.
func (c *Confusion) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s", "actual\\pred")
	for _, cls := range c.Classes {
		fmt.Fprintf(&b, "%8d", cls)
	}
	b.WriteByte('\n')
	for i, cls := range c.Classes {
		fmt.Fprintf(&b, "%-10d", cls)
		for j := range c.Classes {
			fmt.Fprintf(&b, "%8d", c.Counts[i][j])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Report holds the derived binary classification metrics, with class 1
// treated as positive.
type Report struct {
	TP, TN, FP, FN int

	Accuracy         float64
	Sensitivity      float64
	Specificity      float64
	Precision        float64
	F1               float64
	BalancedAccuracy float64
}

// EvaluateBinary computes the confusion matrix and derived metrics for a
// binary problem with labels {0,1}. Degenerate single-level inputs
// propagate the DegenerateLabelsError from ConfusionMatrix. Undefined
// ratios (zero denominators) are reported as 0 with an
// UndefinedMetricWarning rather than NaN.
func EvaluateBinary(yTrue, yPred mat.Matrix) (*Confusion, *Report, error) {
	cm, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return nil, nil, err
	}
	if len(cm.Classes) != 2 || cm.Classes[0] != 0 || cm.Classes[1] != 1 {
		return nil, nil, errors.NewValueError("metrics.EvaluateBinary",
			errors.Newf("expected binary labels {0,1}, got %v", cm.Classes).Error())
	}

	r := &Report{
		TN: cm.Counts[0][0],
		FP: cm.Counts[0][1],
		FN: cm.Counts[1][0],
		TP: cm.Counts[1][1],
	}
	total := r.TP + r.TN + r.FP + r.FN
	r.Accuracy = float64(r.TP+r.TN) / float64(total)
	r.Sensitivity = safeRatio("sensitivity", r.TP, r.TP+r.FN)
	r.Specificity = safeRatio("specificity", r.TN, r.TN+r.FP)
	r.Precision = safeRatio("precision", r.TP, r.TP+r.FP)
	r.BalancedAccuracy = (r.Sensitivity + r.Specificity) / 2
	if r.Precision+r.Sensitivity > 0 {
		r.F1 = 2 * r.Precision * r.Sensitivity / (r.Precision + r.Sensitivity)
	}
	return cm, r, nil
}

// String renders the report as aligned key/value lines.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %.4f\n", "accuracy", r.Accuracy)
	fmt.Fprintf(&b, "%-20s %.4f\n", "sensitivity", r.Sensitivity)
	fmt.Fprintf(&b, "%-20s %.4f\n", "specificity", r.Specificity)
	fmt.Fprintf(&b, "%-20s %.4f\n", "precision", r.Precision)
	fmt.Fprintf(&b, "%-20s %.4f\n", "f1", r.F1)
	fmt.Fprintf(&b, "%-20s %.4f\n", "balanced accuracy", r.BalancedAccuracy)
	return b.String()
}

func safeRatio(metric string, num, den int) float64 {
	if den == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(metric, "zero denominator", 0))
		return 0
	}
	return float64(num) / float64(den)
}

func distinctCount(y mat.Matrix) int {
	rows, _ := y.Dims()
	seen := make(map[float64]bool)
	for i := 0; i < rows; i++ {
		seen[y.At(i, 0)] = true
	}
	return len(seen)
}
