// Package ensemble implements the bagged decision-tree classifier and its
// cross-validation machinery.
package ensemble

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/cardiogo/cardiogo/core/model"
	"github.com/cardiogo/cardiogo/pkg/errors"
)

// TreeClassifier is a CART-style classification tree using gini impurity.
// Missing predictor values (NaN) are ignored during split search and routed
// to the heavier child during prediction.
type TreeClassifier struct {
	model.BaseEstimator

	// Hyperparameters
	MaxDepth        int    // 0 means no depth limit
	MinSamplesSplit int    // minimum samples to attempt a split
	MinSamplesLeaf  int    // minimum samples required in each child
	MaxFeatures     int    // 0 means consider all features at each split
	Seed            uint64 // seed for feature subsampling

	// Fitted state
	root      *treeNode
	classes   []int
	nFeatures int
}

var _ model.Classifier = (*TreeClassifier)(nil)

type treeNode struct {
	isLeaf    bool
	feature   int
	threshold float64 // x <= threshold goes left
	left      *treeNode
	right     *treeNode

	n         int
	probas    []float64 // aligned with TreeClassifier.classes
	predIndex int
}

// TreeOption configures a TreeClassifier.
type TreeOption func(*TreeClassifier)

// WithMaxDepth limits tree depth (root is depth 0).
func WithMaxDepth(d int) TreeOption { return func(t *TreeClassifier) { t.MaxDepth = d } }

// WithMinSamplesSplit sets the minimum node size eligible for splitting.
func WithMinSamplesSplit(n int) TreeOption { return func(t *TreeClassifier) { t.MinSamplesSplit = n } }

// WithMinSamplesLeaf sets the minimum samples each child must keep.
func WithMinSamplesLeaf(n int) TreeOption { return func(t *TreeClassifier) { t.MinSamplesLeaf = n } }

// WithMaxFeatures sets how many features are sampled per split; 0 uses all.
func WithMaxFeatures(k int) TreeOption { return func(t *TreeClassifier) { t.MaxFeatures = k } }

// WithTreeSeed fixes the RNG seed used for feature subsampling.
func WithTreeSeed(seed uint64) TreeOption { return func(t *TreeClassifier) { t.Seed = seed } }

// NewTreeClassifier returns a classifier with explicit defaults.
func NewTreeClassifier(opts ...TreeOption) *TreeClassifier {
	t := &TreeClassifier{
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit trains the tree on X (n_samples x n_features) and y (n_samples x 1).
// Labels must be integer-valued.
func (t *TreeClassifier) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.Wrap(errors.ErrEmptyData, "TreeClassifier.Fit")
	}
	yRows, _ := y.Dims()
	if yRows != rows {
		return errors.NewDimensionError("TreeClassifier.Fit", rows, yRows, 0)
	}

	t.Reset()
	labels := make([]int, rows)
	classIdx := make(map[int]int)
	t.classes = nil
	for i := 0; i < rows; i++ {
		lab := int(y.At(i, 0))
		labels[i] = lab
		if _, ok := classIdx[lab]; !ok {
			classIdx[lab] = len(t.classes)
			t.classes = append(t.classes, lab)
		}
	}

	idx := make([]int, rows)
	for i := range idx {
		idx[i] = i
	}
	r := rand.New(rand.NewPCG(t.Seed, t.Seed))

	t.nFeatures = cols
	t.root = t.buildNode(X, labels, classIdx, idx, 0, r)
	t.SetFitted()
	return nil
}

// Predict returns predicted class labels for rows of X.
func (t *TreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("TreeClassifier", "Predict")
	}
	rows, cols := X.Dims()
	if cols != t.nFeatures {
		return nil, errors.NewDimensionError("TreeClassifier.Predict", t.nFeatures, cols, 1)
	}
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		probas := t.probaRow(X, i)
		out.Set(i, 0, float64(t.classes[argmaxFloat(probas)]))
	}
	return out, nil
}

// PredictProba returns per-class probability estimates, columns ordered
// like Classes().
func (t *TreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("TreeClassifier", "PredictProba")
	}
	rows, cols := X.Dims()
	if cols != t.nFeatures {
		return nil, errors.NewDimensionError("TreeClassifier.PredictProba", t.nFeatures, cols, 1)
	}
	out := mat.NewDense(rows, len(t.classes), nil)
	for i := 0; i < rows; i++ {
		out.SetRow(i, t.probaRow(X, i))
	}
	return out, nil
}

// Classes returns the class labels in the order probabilities are reported.
func (t *TreeClassifier) Classes() []int {
	out := make([]int, len(t.classes))
	copy(out, t.classes)
	return out
}

func (t *TreeClassifier) probaRow(X mat.Matrix, i int) []float64 {
	node := t.root
	for !node.isLeaf {
		v := X.At(i, node.feature)
		switch {
		case math.IsNaN(v):
			// missing: follow the heavier branch
			if node.left.n >= node.right.n {
				node = node.left
			} else {
				node = node.right
			}
		case v <= node.threshold:
			node = node.left
		default:
			node = node.right
		}
	}
	return node.probas
}

type valueIndex struct {
	v float64
	i int
}

func (t *TreeClassifier) buildNode(X mat.Matrix, labels []int, classIdx map[int]int, idx []int, depth int, r *rand.Rand) *treeNode {
	node := &treeNode{n: len(idx)}

	counts := make([]int, len(t.classes))
	for _, i := range idx {
		counts[classIdx[labels[i]]]++
	}

	if isPure(counts) ||
		len(idx) < t.MinSamplesSplit ||
		(t.MaxDepth > 0 && depth >= t.MaxDepth) {
		return makeLeaf(node, counts)
	}

	features := t.sampleFeatures(r)
	parent := gini(counts)

	bestGain := 0.0
	bestFeature := -1
	var bestThreshold float64
	var bestLeft, bestRight []int

	for _, f := range features {
		valid := make([]valueIndex, 0, len(idx))
		missing := make([]int, 0)
		for _, i := range idx {
			v := X.At(i, f)
			if math.IsNaN(v) {
				missing = append(missing, i)
			} else {
				valid = append(valid, valueIndex{v, i})
			}
		}
		if len(valid) < 2 {
			continue
		}
		sort.Slice(valid, func(a, b int) bool { return valid[a].v < valid[b].v })

		leftCounts := make([]int, len(t.classes))
		rightCounts := make([]int, len(t.classes))
		for _, vi := range valid {
			rightCounts[classIdx[labels[vi.i]]]++
		}

		for s := 1; s < len(valid); s++ {
			ci := classIdx[labels[valid[s-1].i]]
			leftCounts[ci]++
			rightCounts[ci]--
			if valid[s].v == valid[s-1].v {
				continue
			}
			if s < t.MinSamplesLeaf || len(valid)-s < t.MinSamplesLeaf {
				continue
			}
			nl, nr := float64(s), float64(len(valid)-s)
			weighted := (nl*gini(leftCounts) + nr*gini(rightCounts)) / (nl + nr)
			if gain := parent - weighted; gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (valid[s-1].v + valid[s].v) / 2
				bestLeft = indexSlice(valid[:s])
				bestRight = indexSlice(valid[s:])
				// missing rows join the heavier side
				if nl >= nr {
					bestLeft = append(bestLeft, missing...)
				} else {
					bestRight = append(bestRight, missing...)
				}
			}
		}
	}

	if bestFeature < 0 {
		return makeLeaf(node, counts)
	}

	node.feature = bestFeature
	node.threshold = bestThreshold
	node.left = t.buildNode(X, labels, classIdx, bestLeft, depth+1, r)
	node.right = t.buildNode(X, labels, classIdx, bestRight, depth+1, r)
	return node
}

func (t *TreeClassifier) sampleFeatures(r *rand.Rand) []int {
	features := make([]int, t.nFeatures)
	for i := range features {
		features[i] = i
	}
	if t.MaxFeatures <= 0 || t.MaxFeatures >= t.nFeatures {
		return features
	}
	r.Shuffle(len(features), func(i, j int) {
		features[i], features[j] = features[j], features[i]
	})
	return features[:t.MaxFeatures]
}

func makeLeaf(node *treeNode, counts []int) *treeNode {
	node.isLeaf = true
	node.probas = countsToProbas(counts)
	node.predIndex = argmaxInt(counts)
	return node
}

func indexSlice(vis []valueIndex) []int {
	out := make([]int, len(vis))
	for i, vi := range vis {
		out[i] = vi.i
	}
	return out
}

func gini(counts []int) float64 {
	n := 0
	for _, c := range counts {
		n += c
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		res += p * (1 - p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func countsToProbas(counts []int) []float64 {
	n := 0
	for _, c := range counts {
		n += c
	}
	probas := make([]float64, len(counts))
	if n == 0 {
		return probas
	}
	for i, c := range counts {
		probas[i] = float64(c) / float64(n)
	}
	return probas
}

func argmaxInt(counts []int) int {
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return best
}

func argmaxFloat(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
