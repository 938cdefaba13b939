// Package cardiogo analyzes the processed Cleveland heart-disease data:
// it loads the 14-column source file, renders descriptive plots, binarizes
// the severity label, builds a class-balanced training set and fits a
// bagged decision-tree ensemble over age, cholesterol and resting blood
// pressure, reporting cross-validated and held-out accuracy.
//
// The run is a single deterministic pass driven by pipeline.Config; every
// random step (splitting, resampling, bootstrapping, fold assignment)
// derives from one seed, so identical inputs produce identical reports.
//
// # Usage
//
// Run the full analysis against the canonical source:
//
//	cfg := pipeline.DefaultConfig()
//	res, err := pipeline.Run(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	res.Print(os.Stdout)
//
// Or feed an already-downloaded copy of the data:
//
//	f, _ := os.Open("processed.cleveland.data")
//	defer f.Close()
//	res, err := pipeline.RunFrom(cfg, f)
//
// # Packages
//
//   - dataset: fetching, parsing and the column-typed table
//   - explore: histograms and the class-colored scatter plot
//   - preprocessing: label binarization, stratified split, oversampling
//   - ensemble: the bagged CART classifier and cross-validation
//   - metrics: confusion matrix and derived binary metrics
//   - pipeline: the five-stage run and its configuration
package cardiogo
