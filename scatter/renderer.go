// Package scatter renders a t-SNE embedding of caption-model activations
// as an annotated 3D scatter image. Each plotted point carries the caption
// text that produced the activation row.
package scatter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsawler/caption-scatter/embedding"
)

// Validation errors reported by New
var (
	ErrGridDim         = errors.New("scatter: grid dimension not supported")
	ErrOutputDir       = errors.New("scatter: output directory does not exist")
	ErrCaptionCount    = errors.New("scatter: not enough captions for the configured grid")
	ErrActivationCount = errors.New("scatter: not enough activation rows for the configured grid")
)

// Config describes one scatter rendering run. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// GridDim is the number of points per axis of the output grid. The
	// total number of plotted points is GridDim squared. A 1x1 grid is
	// rejected.
	GridDim int

	// OutputName is the file name of the rendered image. The extension
	// selects the format: ".png" writes PNG, anything else JPEG.
	OutputName string

	// OutputDir is the destination directory. It must already exist.
	OutputDir string

	// Perplexity is the t-SNE neighborhood size
	Perplexity float64

	// Iterations is the t-SNE gradient descent budget
	Iterations int

	// CaptionSize is the caption font size in points
	CaptionSize int

	// Width and Height are the output image size in pixels
	Width  int
	Height int

	// Quality is the JPEG quality, 1-100. Ignored for PNG output.
	Quality int
}

// DefaultConfig returns the standard rendering configuration
func DefaultConfig() Config {
	return Config{
		GridDim:     10,
		OutputName:  "tsne_caption_3d_scatter.jpg",
		OutputDir:   ".",
		Perplexity:  50,
		Iterations:  5000,
		CaptionSize: 10,
		Width:       1200,
		Height:      1200,
		Quality:     100,
	}
}

// Renderer computes a normalized 3D embedding of activation vectors and
// writes it out as a labeled scatter image
type Renderer struct {
	activations [][]float64
	captions    []string
	cfg         Config
	points      int
}

// New validates the configuration eagerly and returns a Renderer over the
// given activation matrix and caption list. Captions align with activation
// rows by index. Neither slice is copied or mutated.
func New(activations [][]float64, captions []string, cfg Config) (*Renderer, error) {
	if cfg.GridDim <= 1 {
		return nil, fmt.Errorf("%w: %dx%d grid", ErrGridDim, cfg.GridDim, cfg.GridDim)
	}

	info, err := os.Stat(cfg.OutputDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrOutputDir, cfg.OutputDir)
	}

	points := cfg.GridDim * cfg.GridDim
	if len(activations) < points {
		return nil, fmt.Errorf("%w: need %d rows, got %d", ErrActivationCount, points, len(activations))
	}
	if len(captions) < points {
		return nil, fmt.Errorf("%w: need %d captions, got %d", ErrCaptionCount, points, len(captions))
	}

	dim := len(activations[0])
	for i := 0; i < points; i++ {
		if len(activations[i]) != dim {
			return nil, fmt.Errorf("scatter: activation row %d has %d features, expected %d", i, len(activations[i]), dim)
		}
	}

	if cfg.Perplexity <= 0 {
		return nil, fmt.Errorf("scatter: perplexity must be positive, got %v", cfg.Perplexity)
	}
	if cfg.Perplexity >= float64(points) {
		return nil, fmt.Errorf("scatter: perplexity %v must be less than the plotted point count %d", cfg.Perplexity, points)
	}
	if cfg.Iterations <= 0 {
		return nil, fmt.Errorf("scatter: iterations must be positive, got %d", cfg.Iterations)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("scatter: output size must be positive, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Quality < 1 || cfg.Quality > 100 {
		return nil, fmt.Errorf("scatter: quality must be in 1-100, got %d", cfg.Quality)
	}

	return &Renderer{
		activations: activations,
		captions:    captions,
		cfg:         cfg,
		points:      points,
	}, nil
}

// Points returns the number of activation rows that will be plotted
func (r *Renderer) Points() int {
	return r.points
}

// OutputPath returns the full path of the image Generate writes
func (r *Renderer) OutputPath() string {
	return filepath.Join(r.cfg.OutputDir, r.cfg.OutputName)
}

// ComputeEmbedding reduces the first GridDim² activation rows to 3D
// coordinates, each axis rescaled to [0, 1]. Point i corresponds to
// caption i.
func (r *Renderer) ComputeEmbedding() ([]embedding.Point3, error) {
	points, err := embedding.Embed(r.activations[:r.points], embedding.Options{
		Perplexity: r.cfg.Perplexity,
		Iterations: r.cfg.Iterations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute embedding: %w", err)
	}
	return points, nil
}

// Generate computes the embedding, renders the labeled scatter, and writes
// the image to OutputPath, overwriting any existing file. Any embedding,
// drawing, or write error propagates to the caller.
func (r *Renderer) Generate() error {
	points, err := r.ComputeEmbedding()
	if err != nil {
		return err
	}

	img, err := renderScatter(points, r.captions[:r.points], r.cfg)
	if err != nil {
		return fmt.Errorf("failed to render scatter: %w", err)
	}

	path := r.OutputPath()
	if err := writeImage(path, img, formatForName(r.cfg.OutputName), r.cfg.Quality); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
