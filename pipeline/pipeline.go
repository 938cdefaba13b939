// Package pipeline wires the five analysis stages into one run: ingest,
// explore, prepare labels, partition and rebalance, model and evaluate.
// Each stage takes the previous stage's output by value and returns a new
// value; no stage mutates shared state.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cardiogo/cardiogo/dataset"
	"github.com/cardiogo/cardiogo/ensemble"
	"github.com/cardiogo/cardiogo/explore"
	"github.com/cardiogo/cardiogo/metrics"
	"github.com/cardiogo/cardiogo/pkg/errors"
	"github.com/cardiogo/cardiogo/pkg/log"
	"github.com/cardiogo/cardiogo/preprocessing"
)

// Result collects everything the run reports: printed summaries, split and
// class bookkeeping, the cross-validation outcome and the final evaluation.
// If the evaluation hit the degenerate single-level case, Diagnostic holds
// the message and Confusion/Report stay nil.
type Result struct {
	Rows    int
	Missing int

	HeadText    string
	SummaryText string

	TrainRows           int
	TestRows            int
	TrainClassCounts    []int
	BalancedClassCounts []int

	Model *ModelSummary

	CV *ensemble.CVResult

	Confusion  *metrics.Confusion
	Report     *metrics.Report
	Diagnostic string
}

// ModelSummary describes the fitted ensemble: its configuration, the
// predictors it saw and how many rows it was trained on.
type ModelSummary struct {
	Name            string
	Predictors      []string
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
	TrainingRows    int
}

// String renders the summary as aligned key/value lines.
func (m *ModelSummary) String() string {
	depth := "unlimited"
	if m.MaxDepth > 0 {
		depth = strconv.Itoa(m.MaxDepth)
	}
	features := "all"
	if m.MaxFeatures > 0 {
		features = strconv.Itoa(m.MaxFeatures)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %s\n", "model", m.Name)
	fmt.Fprintf(&b, "%-20s %s\n", "predictors", strings.Join(m.Predictors, ", "))
	fmt.Fprintf(&b, "%-20s %d\n", "trees", m.NumTrees)
	fmt.Fprintf(&b, "%-20s %s\n", "max depth", depth)
	fmt.Fprintf(&b, "%-20s %d\n", "min samples split", m.MinSamplesSplit)
	fmt.Fprintf(&b, "%-20s %d\n", "min samples leaf", m.MinSamplesLeaf)
	fmt.Fprintf(&b, "%-20s %s\n", "features per split", features)
	fmt.Fprintf(&b, "%-20s %d\n", "training rows", m.TrainingRows)
	return b.String()
}

// Run fetches the dataset and executes the full pipeline.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	body, err := dataset.Fetch(ctx, cfg.DataURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return RunFrom(cfg, body)
}

// RunFrom executes the pipeline over an already-open data stream. This is
// the network-free entry point the tests use.
func RunFrom(cfg Config, r io.Reader) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	result := &Result{}

	// Stage 1: ingestion
	raw, err := dataset.ReadTable(r, dataset.ClevelandColumns)
	if err != nil {
		return nil, errors.Wrap(err, "ingestion failed")
	}
	tbl, err := dataset.CoerceCleveland(raw)
	if err != nil {
		return nil, errors.Wrap(err, "ingestion failed")
	}
	result.Rows = tbl.NumRows()
	result.Missing = countMissing(tbl)
	log.Stage("ingest").Info("dataset loaded",
		log.SamplesKey, result.Rows,
		log.MissingKey, result.Missing,
	)

	// Stage 2: exploration (observational only)
	result.HeadText = tbl.Head(6)
	result.SummaryText = tbl.Describe()
	if cfg.PlotDir != "" {
		if err := os.MkdirAll(cfg.PlotDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "explore: create plot dir")
		}
		if err := explore.WriteAll(tbl, cfg.HistogramBins, cfg.PlotDir); err != nil {
			return nil, errors.Wrap(err, "explore: render plots")
		}
		log.Stage("explore").Info("plots rendered", "dir", cfg.PlotDir)
	}

	// Stage 3: label preparation (after the exploration scatter, which
	// keeps the original multi-level label on purpose)
	tbl, err = preprocessing.BinarizeLabel(tbl, cfg.LabelColumn)
	if err != nil {
		return nil, errors.Wrap(err, "label preparation failed")
	}
	classes, err := tbl.LevelCounts(cfg.LabelColumn)
	if err != nil {
		return nil, err
	}
	log.Stage("label").Info("label binarized",
		log.ClassesKey, len(classes),
		"counts", classes,
	)

	// Stage 4: partitioning and rebalancing
	train, test, err := preprocessing.StratifiedSplit(tbl, cfg.LabelColumn, cfg.TrainFraction, cfg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "partitioning failed")
	}
	result.TrainRows = train.NumRows()
	result.TestRows = test.NumRows()
	result.TrainClassCounts, err = train.LevelCounts(cfg.LabelColumn)
	if err != nil {
		return nil, err
	}
	log.Stage("split").Info("data partitioned",
		"train_rows", result.TrainRows,
		"test_rows", result.TestRows,
	)

	balanced, err := preprocessing.OverSample(train, cfg.LabelColumn, cfg.BalancedSize, cfg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "rebalancing failed")
	}
	result.BalancedClassCounts, err = balanced.LevelCounts(cfg.LabelColumn)
	if err != nil {
		return nil, err
	}
	log.Stage("resample").Info("training data rebalanced",
		log.SamplesKey, balanced.NumRows(),
		"counts", result.BalancedClassCounts,
	)

	// Stage 5: modeling and evaluation
	balX, err := balanced.Matrix(cfg.Predictors...)
	if err != nil {
		return nil, err
	}
	balY, err := balanced.Vector(cfg.LabelColumn)
	if err != nil {
		return nil, err
	}

	proto := ensemble.NewBaggingClassifier(
		ensemble.WithNumTrees(cfg.NumTrees),
		ensemble.WithBaggingMaxDepth(cfg.MaxDepth),
		ensemble.WithBaggingMinSamplesSplit(cfg.MinSamplesSplit),
		ensemble.WithBaggingMinSamplesLeaf(cfg.MinSamplesLeaf),
		ensemble.WithBaggingMaxFeatures(cfg.MaxFeatures),
		ensemble.WithSeed(cfg.Seed),
	)
	if err := proto.Fit(balX, balY); err != nil {
		return nil, errors.Wrap(err, "training failed")
	}
	result.Model = &ModelSummary{
		Name:            "BaggingClassifier",
		Predictors:      cfg.Predictors,
		NumTrees:        cfg.NumTrees,
		MaxDepth:        cfg.MaxDepth,
		MinSamplesSplit: cfg.MinSamplesSplit,
		MinSamplesLeaf:  cfg.MinSamplesLeaf,
		MaxFeatures:     cfg.MaxFeatures,
		TrainingRows:    balanced.NumRows(),
	}
	log.Stage("train").Info("ensemble fitted",
		log.ModelNameKey, "BaggingClassifier",
		log.FeaturesKey, len(cfg.Predictors),
		log.SamplesKey, balanced.NumRows(),
	)

	splitter := ensemble.NewStratifiedKFold(cfg.CVFolds, true, cfg.Seed)
	cv, err := ensemble.CrossValidateBagging(proto, balX, balY, splitter)
	if err != nil {
		return nil, errors.Wrap(err, "cross-validation failed")
	}
	result.CV = cv
	log.Stage("cross_validate").Info("cross-validation complete",
		"folds", cfg.CVFolds,
		log.AccuracyKey, cv.GetMeanScore(),
	)

	testX, err := test.Matrix(cfg.Predictors...)
	if err != nil {
		return nil, err
	}
	testY, err := test.Vector(cfg.LabelColumn)
	if err != nil {
		return nil, err
	}
	pred, err := cv.Best().Predict(testX)
	if err != nil {
		return nil, errors.Wrap(err, "test prediction failed")
	}

	cm, report, err := metrics.EvaluateBinary(testY, pred)
	var degenerate *metrics.DegenerateLabelsError
	switch {
	case errors.As(err, &degenerate):
		// the one recovered failure path: diagnose, do not crash
		result.Diagnostic = degenerate.Error()
		log.Stage("evaluate").Warn("evaluation degenerate", "reason", result.Diagnostic)
	case err != nil:
		return nil, errors.Wrap(err, "evaluation failed")
	default:
		result.Confusion = cm
		result.Report = report
		log.Stage("evaluate").Info("evaluation complete",
			log.AccuracyKey, report.Accuracy,
		)
	}

	slog.Info("pipeline finished", log.DurationMsKey, time.Since(start).Milliseconds())
	return result, nil
}

// Print writes the human-readable run report.
func (res *Result) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Dataset ===")
	fmt.Fprintf(w, "rows: %d, missing values: %d\n\n", res.Rows, res.Missing)
	fmt.Fprintln(w, res.HeadText)
	fmt.Fprintln(w, res.SummaryText)

	fmt.Fprintln(w, "=== Partition ===")
	fmt.Fprintf(w, "train: %d rows (class counts %v)\n", res.TrainRows, res.TrainClassCounts)
	fmt.Fprintf(w, "test:  %d rows\n", res.TestRows)
	fmt.Fprintf(w, "balanced training set: class counts %v\n\n", res.BalancedClassCounts)

	fmt.Fprintln(w, "=== Model ===")
	fmt.Fprintln(w, res.Model.String())

	fmt.Fprintln(w, "=== Cross-validation ===")
	fmt.Fprintf(w, "mean accuracy: %.4f (+/- %.4f)\n", res.CV.GetMeanScore(), res.CV.GetStdScore())
	for i, score := range res.CV.TestScores {
		fmt.Fprintf(w, "  fold %2d: %.4f\n", i+1, score)
	}
	fmt.Fprintf(w, "best fold: %d (%.4f)\n\n", res.CV.BestFold+1, res.CV.BestScore)

	fmt.Fprintln(w, "=== Evaluation ===")
	if res.Diagnostic != "" {
		fmt.Fprintln(w, res.Diagnostic)
		return
	}
	fmt.Fprintln(w, res.Confusion.String())
	fmt.Fprintln(w, res.Report.String())
}

func countMissing(t *dataset.Table) int {
	total := 0
	for _, name := range t.Names() {
		col, err := t.Col(name)
		if err != nil {
			continue
		}
		total += col.MissingCount()
	}
	return total
}
