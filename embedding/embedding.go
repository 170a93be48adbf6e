// Package embedding reduces high-dimensional activation matrices to
// normalized 3D coordinates for visualization. The t-SNE algorithm itself
// is delegated to go-tsne; this package handles input validation, PCA
// feature compaction, and per-axis rescaling of the result.
package embedding

import (
	"fmt"
	"math"

	"github.com/danaugrs/go-tsne/tsne"
	"gonum.org/v1/gonum/mat"
)

// Point3 is a single embedded point with each coordinate in [0, 1].
type Point3 struct {
	X float64
	Y float64
	Z float64
}

// Options controls the embedding computation
type Options struct {
	// Perplexity is the effective number of neighbors considered per
	// point. Must be positive and less than the number of rows.
	Perplexity float64

	// Iterations is the gradient descent budget for the embedding
	Iterations int

	// LearningRate for the embedding optimizer. Zero selects the default.
	LearningRate float64

	// MaxPCAComponents caps the feature dimension before the embedding
	// runs. Inputs at or below the cap pass through untouched. Zero
	// selects the default.
	MaxPCAComponents int

	// Progress, if non-nil, is invoked once per iteration with the
	// current KL divergence
	Progress func(iteration int, divergence float64)
}

const (
	defaultLearningRate     = 200
	defaultMaxPCAComponents = 50
	outputDims              = 3
)

// DefaultOptions returns the standard embedding configuration
func DefaultOptions() Options {
	return Options{
		Perplexity:       50,
		Iterations:       5000,
		LearningRate:     defaultLearningRate,
		MaxPCAComponents: defaultMaxPCAComponents,
	}
}

// Embed computes a 3-dimensional t-SNE embedding of the given activation
// rows and rescales each output axis independently to [0, 1]. The result
// is ordered 1:1 with the input rows. The input is never mutated.
func Embed(activations [][]float64, opts Options) ([]Point3, error) {
	n := len(activations)
	if n < 2 {
		return nil, fmt.Errorf("embedding requires at least 2 rows, got %d", n)
	}

	d := len(activations[0])
	if d == 0 {
		return nil, fmt.Errorf("activation rows must not be empty")
	}
	for i, row := range activations {
		if len(row) != d {
			return nil, fmt.Errorf("activation row %d has %d features, expected %d", i, len(row), d)
		}
	}

	if opts.Perplexity <= 0 {
		return nil, fmt.Errorf("perplexity must be positive, got %v", opts.Perplexity)
	}
	if opts.Perplexity >= float64(n) {
		return nil, fmt.Errorf("perplexity %v must be less than the number of rows (%d)", opts.Perplexity, n)
	}
	if opts.Iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", opts.Iterations)
	}

	lr := opts.LearningRate
	if lr == 0 {
		lr = defaultLearningRate
	}
	maxPCA := opts.MaxPCAComponents
	if maxPCA == 0 {
		maxPCA = defaultMaxPCAComponents
	}

	X := mat.NewDense(n, d, nil)
	for i, row := range activations {
		X.SetRow(i, row)
	}

	// Compact the feature space before the embedding runs. Pairwise
	// distances are what the algorithm consumes, so dropping near-zero
	// variance directions changes nothing it cares about.
	compact := compactFeatures(X, maxPCA)

	var step func(iter int, divergence float64, embedding mat.Matrix) bool
	if opts.Progress != nil {
		progress := opts.Progress
		step = func(iter int, divergence float64, embedding mat.Matrix) bool {
			progress(iter, divergence)
			return false
		}
	}

	reducer := tsne.NewTSNE(outputDims, opts.Perplexity, lr, opts.Iterations, false)
	Y := reducer.EmbedData(compact, step)

	return normalizePoints(Y)
}

// normalizePoints rescales each axis of the raw embedding to [0, 1] using
// that axis's observed min and max. A degenerate axis (all values equal)
// maps to 0 for every point.
func normalizePoints(Y mat.Matrix) ([]Point3, error) {
	rows, cols := Y.Dims()
	if cols != outputDims {
		return nil, fmt.Errorf("embedding produced %d dimensions, expected %d", cols, outputDims)
	}

	var lo, hi [outputDims]float64
	for j := 0; j < outputDims; j++ {
		lo[j] = math.Inf(1)
		hi[j] = math.Inf(-1)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < outputDims; j++ {
			v := Y.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("embedding produced a non-finite coordinate at row %d axis %d", i, j)
			}
			lo[j] = math.Min(lo[j], v)
			hi[j] = math.Max(hi[j], v)
		}
	}

	var span [outputDims]float64
	for j := 0; j < outputDims; j++ {
		span[j] = hi[j] - lo[j]
	}

	points := make([]Point3, rows)
	for i := 0; i < rows; i++ {
		var c [outputDims]float64
		for j := 0; j < outputDims; j++ {
			if span[j] == 0 {
				c[j] = 0
				continue
			}
			c[j] = (Y.At(i, j) - lo[j]) / span[j]
		}
		points[i] = Point3{X: c[0], Y: c[1], Z: c[2]}
	}

	return points, nil
}
