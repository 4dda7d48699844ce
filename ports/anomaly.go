// Package ports defines the interfaces the pipeline depends on, keeping the
// concrete engines swappable.
package ports

// AnomalyDetector is an unsupervised multivariate outlier scorer. Fit trains
// on a feature matrix (rows are samples, columns are features); Predict
// returns one score per row, normalized to [0, 1] where 1 is most anomalous.
// Implementations must be deterministic for a fixed seed.
//
// Cutoff reports the normalized-score threshold implied by the configured
// contamination rate, valid after Fit. Degenerate reports whether Fit fell
// back to neutral scoring instead of training a model.
type AnomalyDetector interface {
	Fit(data [][]float64) error
	Predict(data [][]float64) ([]float64, error)
	Cutoff() float64
	Degenerate() bool
}
