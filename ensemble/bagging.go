package ensemble

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/cardiogo/cardiogo/core/model"
	"github.com/cardiogo/cardiogo/pkg/errors"
)

// BaggingClassifier aggregates CART trees fitted on bootstrap samples and
// predicts by majority vote. Every tree gets its own seed derived from the
// ensemble seed and its slot index, so the fitted ensemble is identical
// from run to run even though trees are fitted concurrently.
type BaggingClassifier struct {
	model.BaseEstimator

	// Hyperparameters. These mirror the classical bagged-tree setup:
	// bootstrap samples of the full training size and all features
	// considered at every split.
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
	Seed            uint64

	trees     []*TreeClassifier
	classes   []int
	nFeatures int
}

var _ model.Classifier = (*BaggingClassifier)(nil)

// BaggingOption configures a BaggingClassifier.
type BaggingOption func(*BaggingClassifier)

// WithNumTrees sets the ensemble size.
func WithNumTrees(n int) BaggingOption { return func(b *BaggingClassifier) { b.NumTrees = n } }

// WithBaggingMaxDepth limits the depth of each tree; 0 means unlimited.
func WithBaggingMaxDepth(d int) BaggingOption { return func(b *BaggingClassifier) { b.MaxDepth = d } }

// WithBaggingMinSamplesSplit sets the per-tree minimum node size to split.
func WithBaggingMinSamplesSplit(n int) BaggingOption {
	return func(b *BaggingClassifier) { b.MinSamplesSplit = n }
}

// WithBaggingMinSamplesLeaf sets the per-tree minimum child size.
func WithBaggingMinSamplesLeaf(n int) BaggingOption {
	return func(b *BaggingClassifier) { b.MinSamplesLeaf = n }
}

// WithBaggingMaxFeatures sets per-split feature sampling; 0 uses all
// features, which is what distinguishes bagging from a random forest.
func WithBaggingMaxFeatures(k int) BaggingOption {
	return func(b *BaggingClassifier) { b.MaxFeatures = k }
}

// WithSeed fixes the ensemble seed.
func WithSeed(seed uint64) BaggingOption { return func(b *BaggingClassifier) { b.Seed = seed } }

// NewBaggingClassifier returns an ensemble with explicit defaults: 100
// trees, unlimited depth, all features per split.
func NewBaggingClassifier(opts ...BaggingOption) *BaggingClassifier {
	b := &BaggingClassifier{
		NumTrees:        100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Fit trains NumTrees trees, each on a bootstrap sample of X drawn with
// replacement at full training size. Trees are fitted concurrently into
// indexed slots; sampling and fitting randomness derive only from the
// ensemble seed and the slot index.
func (b *BaggingClassifier) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.Wrap(errors.ErrEmptyData, "BaggingClassifier.Fit")
	}
	yRows, _ := y.Dims()
	if yRows != rows {
		return errors.NewDimensionError("BaggingClassifier.Fit", rows, yRows, 0)
	}
	if b.NumTrees < 1 {
		return errors.NewValidationError("NumTrees", "must be at least 1", b.NumTrees)
	}

	b.Reset()
	b.nFeatures = cols
	b.classes = uniqueLabels(y)
	b.trees = make([]*TreeClassifier, b.NumTrees)

	var wg sync.WaitGroup
	errs := make([]error, b.NumTrees)
	for i := 0; i < b.NumTrees; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()

			treeSeed := b.Seed + uint64(slot)
			r := rand.New(rand.NewPCG(treeSeed, treeSeed))
			sample := make([]int, rows)
			for j := range sample {
				sample[j] = r.IntN(rows)
			}
			bX, bY := subsetRows(X, y, sample)

			tree := NewTreeClassifier(
				WithMaxDepth(b.MaxDepth),
				WithMinSamplesSplit(b.MinSamplesSplit),
				WithMinSamplesLeaf(b.MinSamplesLeaf),
				WithMaxFeatures(b.MaxFeatures),
				WithTreeSeed(treeSeed),
			)
			if err := tree.Fit(bX, bY); err != nil {
				errs[slot] = errors.Wrapf(err, "tree %d", slot)
				return
			}
			b.trees[slot] = tree
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return errors.Wrap(err, "BaggingClassifier.Fit")
		}
	}

	b.SetFitted()
	return nil
}

// Predict returns the majority vote over all trees for each row of X.
// Ties break toward the class that comes first in Classes().
func (b *BaggingClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := b.PredictProba(X)
	if err != nil {
		return nil, err
	}
	rows, _ := proba.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		best := 0
		for j := 1; j < len(b.classes); j++ {
			if proba.At(i, j) > proba.At(i, best) {
				best = j
			}
		}
		out.Set(i, 0, float64(b.classes[best]))
	}
	return out, nil
}

// PredictProba averages the per-tree vote shares, columns ordered like
// Classes().
func (b *BaggingClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !b.IsFitted() {
		return nil, errors.NewNotFittedError("BaggingClassifier", "PredictProba")
	}
	rows, cols := X.Dims()
	if cols != b.nFeatures {
		return nil, errors.NewDimensionError("BaggingClassifier.PredictProba", b.nFeatures, cols, 1)
	}

	colOf := make(map[int]int, len(b.classes))
	for j, cls := range b.classes {
		colOf[cls] = j
	}

	out := mat.NewDense(rows, len(b.classes), nil)
	for _, tree := range b.trees {
		pred, err := tree.Predict(X)
		if err != nil {
			return nil, errors.Wrap(err, "BaggingClassifier.PredictProba")
		}
		for i := 0; i < rows; i++ {
			j, ok := colOf[int(pred.At(i, 0))]
			if !ok {
				return nil, errors.NewValueError("BaggingClassifier.PredictProba",
					errors.Newf("tree predicted unknown class %v", pred.At(i, 0)).Error())
			}
			out.Set(i, j, out.At(i, j)+1)
		}
	}
	out.Scale(1/float64(len(b.trees)), out)
	return out, nil
}

// Classes returns the class labels in the order probabilities are reported.
func (b *BaggingClassifier) Classes() []int {
	out := make([]int, len(b.classes))
	copy(out, b.classes)
	return out
}

// uniqueLabels collects distinct integer labels of y in first-seen order.
func uniqueLabels(y mat.Matrix) []int {
	rows, _ := y.Dims()
	seen := make(map[int]bool)
	var out []int
	for i := 0; i < rows; i++ {
		lab := int(y.At(i, 0))
		if !seen[lab] {
			seen[lab] = true
			out = append(out, lab)
		}
	}
	return out
}

// subsetRows extracts the given rows of X and y into new dense matrices.
func subsetRows(X, y mat.Matrix, rows []int) (*mat.Dense, *mat.Dense) {
	_, xCols := X.Dims()
	outX := mat.NewDense(len(rows), xCols, nil)
	outY := mat.NewDense(len(rows), 1, nil)
	for i, r := range rows {
		for j := 0; j < xCols; j++ {
			outX.Set(i, j, X.At(r, j))
		}
		outY.Set(i, 0, y.At(r, 0))
	}
	return outX, outY
}
