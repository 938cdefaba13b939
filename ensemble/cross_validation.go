package ensemble

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/cardiogo/cardiogo/pkg/errors"
)

// KFoldSplitter defines the interface for cross-validation splitters.
type KFoldSplitter interface {
	Split(X, y mat.Matrix) []CVFold
	GetNSplits() int
}

// CVFold represents a single fold in cross-validation.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold implements a k-fold cross-validation splitter.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed uint64
}

// NewKFold creates a new k-fold splitter.
func NewKFold(nSplits int, shuffle bool, randomSeed uint64) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, RandomSeed: randomSeed}
}

// GetNSplits returns the number of splits.
func (kf *KFold) GetNSplits() int { return kf.NSplits }

// Split generates train/test indices for each fold.
func (kf *KFold) Split(X, _ mat.Matrix) []CVFold {
	nSamples, _ := X.Dims()

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(kf.RandomSeed, kf.RandomSeed))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	current := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}
		testIndices := make([]int, testSize)
		copy(testIndices, indices[current:current+testSize])

		trainIndices := make([]int, 0, nSamples-testSize)
		trainIndices = append(trainIndices, indices[:current]...)
		trainIndices = append(trainIndices, indices[current+testSize:]...)

		folds[i] = CVFold{TrainIndices: trainIndices, TestIndices: testIndices}
		current += testSize
	}
	return folds
}

// StratifiedKFold implements stratified k-fold cross-validation: each
// fold's test set preserves the class proportions of y.
type StratifiedKFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed uint64
}

// NewStratifiedKFold creates a new stratified k-fold splitter.
func NewStratifiedKFold(nSplits int, shuffle bool, randomSeed uint64) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &StratifiedKFold{NSplits: nSplits, Shuffle: shuffle, RandomSeed: randomSeed}
}

// GetNSplits returns the number of splits.
func (skf *StratifiedKFold) GetNSplits() int { return skf.NSplits }

// Split generates stratified train/test indices for each fold.
func (skf *StratifiedKFold) Split(_, y mat.Matrix) []CVFold {
	nSamples, _ := y.Dims()

	classIndices := make(map[float64][]int)
	var classOrder []float64
	for i := 0; i < nSamples; i++ {
		label := y.At(i, 0)
		if _, ok := classIndices[label]; !ok {
			classOrder = append(classOrder, label)
		}
		classIndices[label] = append(classIndices[label], i)
	}

	if skf.Shuffle {
		r := rand.New(rand.NewPCG(skf.RandomSeed, skf.RandomSeed))
		for _, label := range classOrder {
			indices := classIndices[label]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([]CVFold, skf.NSplits)
	for _, label := range classOrder {
		indices := classIndices[label]
		nClass := len(indices)
		foldSize := nClass / skf.NSplits
		remainder := nClass % skf.NSplits

		current := 0
		for i := 0; i < skf.NSplits; i++ {
			testSize := foldSize
			if i < remainder {
				testSize++
			}
			folds[i].TestIndices = append(folds[i].TestIndices, indices[current:current+testSize]...)
			current += testSize
		}
	}

	for i := range folds {
		inTest := make(map[int]bool, len(folds[i].TestIndices))
		for _, idx := range folds[i].TestIndices {
			inTest[idx] = true
		}
		for j := 0; j < nSamples; j++ {
			if !inTest[j] {
				folds[i].TrainIndices = append(folds[i].TrainIndices, j)
			}
		}
	}
	return folds
}

// CVResult stores cross-validation results.
type CVResult struct {
	TrainScores []float64
	TestScores  []float64
	Models      []*BaggingClassifier
	BestFold    int
	BestScore   float64
}

// GetMeanScore returns the mean test accuracy across folds.
func (cv *CVResult) GetMeanScore() float64 {
	if len(cv.TestScores) == 0 {
		return 0
	}
	sum := 0.0
	for _, score := range cv.TestScores {
		sum += score
	}
	return sum / float64(len(cv.TestScores))
}

// GetStdScore returns the sample standard deviation of test accuracies.
func (cv *CVResult) GetStdScore() float64 {
	if len(cv.TestScores) <= 1 {
		return 0
	}
	mean := cv.GetMeanScore()
	sumSq := 0.0
	for _, score := range cv.TestScores {
		diff := score - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(cv.TestScores)-1))
}

// Best returns the model fitted on the best-scoring fold. This is the
// instance used for final test-set prediction.
func (cv *CVResult) Best() *BaggingClassifier {
	if len(cv.Models) == 0 {
		return nil
	}
	return cv.Models[cv.BestFold]
}

// CrossValidateBagging refits the given ensemble configuration on each
// fold, scoring train and test accuracy. Folds run sequentially; the only
// concurrency is inside each ensemble fit, which is slot-deterministic.
func CrossValidateBagging(proto *BaggingClassifier, X, y mat.Matrix, splitter KFoldSplitter) (*CVResult, error) {
	folds := splitter.Split(X, y)
	nFolds := len(folds)

	result := &CVResult{
		TrainScores: make([]float64, nFolds),
		TestScores:  make([]float64, nFolds),
		Models:      make([]*BaggingClassifier, nFolds),
	}

	for foldIdx, fold := range folds {
		trainX, trainY := subsetMatrix(X, y, fold.TrainIndices)
		testX, testY := subsetMatrix(X, y, fold.TestIndices)

		clf := NewBaggingClassifier(
			WithNumTrees(proto.NumTrees),
			WithBaggingMaxDepth(proto.MaxDepth),
			WithBaggingMinSamplesSplit(proto.MinSamplesSplit),
			WithBaggingMinSamplesLeaf(proto.MinSamplesLeaf),
			WithBaggingMaxFeatures(proto.MaxFeatures),
			WithSeed(proto.Seed+uint64(foldIdx)),
		)
		if err := clf.Fit(trainX, trainY); err != nil {
			return nil, errors.Wrapf(err, "fold %d training failed", foldIdx)
		}
		result.Models[foldIdx] = clf

		trainPred, err := clf.Predict(trainX)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d train prediction failed", foldIdx)
		}
		result.TrainScores[foldIdx] = accuracyScore(trainY, trainPred)

		testPred, err := clf.Predict(testX)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d test prediction failed", foldIdx)
		}
		result.TestScores[foldIdx] = accuracyScore(testY, testPred)
	}

	result.BestScore = result.TestScores[0]
	for i := 1; i < nFolds; i++ {
		if result.TestScores[i] > result.BestScore {
			result.BestScore = result.TestScores[i]
			result.BestFold = i
		}
	}
	return result, nil
}

// subsetMatrix extracts the given rows of X and y, preserving order.
func subsetMatrix(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	return subsetRows(X, y, indices)
}

// accuracyScore computes the fraction of matching labels.
func accuracyScore(yTrue, yPred mat.Matrix) float64 {
	rows, _ := yTrue.Dims()
	if rows == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < rows; i++ {
		if yTrue.At(i, 0) == yPred.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(rows)
}
