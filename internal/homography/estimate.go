package homography

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"plane-mapper/pkg/geometry"
)

// rankTolerance is the relative singular-value threshold below which the
// DLT design matrix is considered rank-deficient.
const rankTolerance = 1e-8

// Estimate fits a homography mapping imagePts onto groundPts using the
// direct linear transform. At least 4 pairs are required; with exactly 4
// the system is exactly determined up to scale, with more it is a
// least-squares fit of the algebraic error. Near-collinear configurations
// are rejected with ErrDegenerateConfiguration instead of producing a
// garbage matrix.
func Estimate(imagePts, groundPts []geometry.Point2D) (*Matrix, error) {
	if len(imagePts) != len(groundPts) {
		return nil, errors.Wrapf(ErrInsufficientCorrespondences,
			"point count mismatch: %d vs %d", len(imagePts), len(groundPts))
	}
	if len(imagePts) < 4 {
		return nil, errors.Wrapf(ErrInsufficientCorrespondences,
			"need at least 4 pairs, got %d", len(imagePts))
	}

	// Normalize both sets for conditioning (Hartley, MVG Alg 4.2).
	srcNorm, tSrc, err := normalizePoints(imagePts)
	if err != nil {
		return nil, err
	}
	dstNorm, tDst, err := normalizePoints(groundPts)
	if err != nil {
		return nil, err
	}

	// Build the 2n x 9 design matrix, two rows per correspondence.
	n := len(srcNorm)
	a := mat.NewDense(2*n, 9, nil)
	for i := 0; i < n; i++ {
		x, y := srcNorm[i].X, srcNorm[i].Y
		u, v := dstNorm[i].X, dstNorm[i].Y

		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y, -u})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y, -v})
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return nil, errors.New("SVD factorization failed")
	}

	// A unique solution needs rank 8. The design matrix has min(2n, 9)
	// singular values, so index 7 exists for every n >= 4; if it has
	// collapsed the configuration is degenerate (e.g. collinear points).
	values := svd.Values(nil)
	if values[7] <= rankTolerance*values[0] {
		return nil, errors.Wrapf(ErrDegenerateConfiguration,
			"design matrix rank deficient (sigma[7]/sigma[0] = %.3e)", values[7]/values[0])
	}

	// The null vector is the right singular vector of the smallest
	// singular value: the last column of V.
	var v mat.Dense
	svd.VTo(&v)
	hNorm := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			hNorm.Set(i, j, v.At(i*3+j, 8))
		}
	}

	// Denormalize: H = inv(Tdst) * Hn * Tsrc.
	var tDstInv mat.Dense
	if err := tDstInv.Inverse(tDst); err != nil {
		return nil, errors.Wrap(err, "inverting normalization transform")
	}
	var h mat.Dense
	h.Mul(&tDstInv, hNorm)
	h.Mul(&h, tSrc)

	return New([]float64{
		h.At(0, 0), h.At(0, 1), h.At(0, 2),
		h.At(1, 0), h.At(1, 1), h.At(1, 2),
		h.At(2, 0), h.At(2, 1), h.At(2, 2),
	})
}

// normalizePoints translates points to their centroid and scales them so
// the mean distance from the origin is sqrt(2), returning the transformed
// points and the similarity transform that was applied.
func normalizePoints(pts []geometry.Point2D) ([]geometry.Point2D, *mat.Dense, error) {
	n := float64(len(pts))
	mu := geometry.Centroid(pts)

	var d float64
	for _, pt := range pts {
		d += pt.Distance(mu) / n
	}
	if d < wEpsilon {
		// All points coincident.
		return nil, nil, errors.Wrap(ErrDegenerateConfiguration, "coincident points")
	}
	scale := math.Sqrt2 / d

	t := mat.NewDense(3, 3, []float64{
		scale, 0, -scale * mu.X,
		0, scale, -scale * mu.Y,
		0, 0, 1,
	})

	transformed := make([]geometry.Point2D, len(pts))
	for i, pt := range pts {
		transformed[i] = geometry.Point2D{
			X: scale * (pt.X - mu.X),
			Y: scale * (pt.Y - mu.Y),
		}
	}
	return transformed, t, nil
}
