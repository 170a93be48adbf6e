package embedding

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// makeClusteredActivations builds deterministic synthetic activations in
// well-separated clusters, the shape of data a trained caption model emits
func makeClusteredActivations(rows, dim, clusters int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))

	centers := make([][]float64, clusters)
	for c := range centers {
		center := make([]float64, dim)
		for j := range center {
			center[j] = rng.NormFloat64() * 5
		}
		centers[c] = center
	}

	activations := make([][]float64, rows)
	for i := range activations {
		center := centers[i%clusters]
		row := make([]float64, dim)
		for j := range row {
			row[j] = center[j] + rng.NormFloat64()*0.3
		}
		activations[i] = row
	}
	return activations
}

func TestEmbedValidation(t *testing.T) {
	valid := makeClusteredActivations(10, 4, 2, 1)

	tests := []struct {
		name        string
		activations [][]float64
		opts        Options
	}{
		{
			name:        "no rows",
			activations: nil,
			opts:        Options{Perplexity: 5, Iterations: 10},
		},
		{
			name:        "single row",
			activations: valid[:1],
			opts:        Options{Perplexity: 5, Iterations: 10},
		},
		{
			name:        "empty rows",
			activations: [][]float64{{}, {}},
			opts:        Options{Perplexity: 1, Iterations: 10},
		},
		{
			name:        "ragged rows",
			activations: [][]float64{{1, 2, 3}, {1, 2}, {3, 4, 5}},
			opts:        Options{Perplexity: 2, Iterations: 10},
		},
		{
			name:        "zero perplexity",
			activations: valid,
			opts:        Options{Perplexity: 0, Iterations: 10},
		},
		{
			name:        "perplexity not below row count",
			activations: valid,
			opts:        Options{Perplexity: 10, Iterations: 10},
		},
		{
			name:        "zero iterations",
			activations: valid,
			opts:        Options{Perplexity: 5, Iterations: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Embed(tt.activations, tt.opts); err == nil {
				t.Errorf("Expected error for %s, got none", tt.name)
			}
		})
	}
}

func TestEmbedPointCountAndRange(t *testing.T) {
	const rows = 25
	activations := makeClusteredActivations(rows, 8, 3, 2)

	points, err := Embed(activations, Options{Perplexity: 5, Iterations: 120})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(points) != rows {
		t.Fatalf("Expected %d points, got %d", rows, len(points))
	}

	axes := [3][]float64{}
	for _, p := range points {
		axes[0] = append(axes[0], p.X)
		axes[1] = append(axes[1], p.Y)
		axes[2] = append(axes[2], p.Z)
	}

	const tol = 1e-9
	for a, vals := range axes {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range vals {
			if v < -tol || v > 1+tol {
				t.Errorf("Axis %d coordinate %v outside [0, 1]", a, v)
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if math.Abs(lo) > tol {
			t.Errorf("Axis %d min = %v, expected 0", a, lo)
		}
		if math.Abs(hi-1) > tol {
			t.Errorf("Axis %d max = %v, expected 1", a, hi)
		}
	}
}

func TestEmbedProgressCallback(t *testing.T) {
	activations := makeClusteredActivations(12, 4, 2, 3)

	calls := 0
	_, err := Embed(activations, Options{
		Perplexity: 4,
		Iterations: 30,
		Progress: func(iteration int, divergence float64) {
			calls++
		},
	})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if calls == 0 {
		t.Error("Expected progress callback to be invoked")
	}
}

func TestNormalizePoints(t *testing.T) {
	raw := mat.NewDense(3, 3, []float64{
		-2, 10, 7,
		0, 20, 7,
		2, 40, 7,
	})

	points, err := normalizePoints(raw)
	if err != nil {
		t.Fatalf("normalizePoints failed: %v", err)
	}

	expected := []Point3{
		{X: 0, Y: 0, Z: 0},
		{X: 0.5, Y: 1.0 / 3.0, Z: 0},
		{X: 1, Y: 1, Z: 0},
	}

	const tol = 1e-12
	for i, want := range expected {
		got := points[i]
		if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol || math.Abs(got.Z-want.Z) > tol {
			t.Errorf("Point %d = %+v, expected %+v", i, got, want)
		}
	}
}

func TestNormalizePointsRejectsNonFinite(t *testing.T) {
	raw := mat.NewDense(2, 3, []float64{
		0, 1, 2,
		math.NaN(), 1, 2,
	})
	if _, err := normalizePoints(raw); err == nil {
		t.Error("Expected error for non-finite coordinate, got none")
	}

	raw = mat.NewDense(2, 3, []float64{
		0, 1, 2,
		math.Inf(1), 1, 2,
	})
	if _, err := normalizePoints(raw); err == nil {
		t.Error("Expected error for infinite coordinate, got none")
	}
}

func TestNormalizePointsWrongWidth(t *testing.T) {
	raw := mat.NewDense(2, 2, []float64{0, 1, 2, 3})
	if _, err := normalizePoints(raw); err == nil {
		t.Error("Expected error for 2-column embedding, got none")
	}
}
