package embedding

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// compactFeatures projects X onto its top principal components when the
// feature dimension exceeds maxComponents. The component count is further
// limited by the row count, since a centered n x d matrix has at most
// min(n, d) informative directions. If the factorization fails the input
// is returned unchanged.
func compactFeatures(X *mat.Dense, maxComponents int) mat.Matrix {
	n, d := X.Dims()
	if d <= maxComponents {
		return X
	}

	k := maxComponents
	if n < k {
		k = n
	}

	// Center each feature column
	centered := mat.NewDense(n, d, nil)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, X)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			centered.Set(i, j, X.At(i, j)-mean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return X
	}

	var v mat.Dense
	svd.VTo(&v)

	_, vc := v.Dims()
	if vc < k {
		k = vc
	}

	components := v.Slice(0, d, 0, k)

	var projected mat.Dense
	projected.Mul(centered, components)
	return &projected
}
