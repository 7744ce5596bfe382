// Package linalg provides the matrix kernel the tracking core is built
// on: plain gonum wrappers plus the SvdMatrix covariance type that
// keeps every propagated covariance symmetric and PSD by construction.
package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SVDFloor clips singular values below this threshold to zero so that
// repeated transforms don't accumulate negative-epsilon noise into a
// covariance's spectrum.
const SVDFloor = 1e-7

// SvdMatrix is a covariance represented as C = U * S * Vt, with S
// diagonal and nonnegative. Propagating a covariance through a linear
// transform via Transform keeps this factorization exact, so the
// result is symmetric PSD up to floating point error regardless of
// how many steps have been chained.
type SvdMatrix struct {
	U *mat.Dense
	S []float64 // diagonal entries, nonnegative
	V *mat.Dense // Vt is V.T()
}

// NewSvdMatrix factors a symmetric matrix into the SVD covariance
// representation. Panics if the SVD fails to converge, which only
// happens on a non-finite input (a programmer error upstream).
func NewSvdMatrix(c mat.Symmetric) *SvdMatrix {
	n, _ := c.Dims()
	var svd mat.SVD
	dense := mat.NewDense(n, n, nil)
	dense.CopySym(c)
	if ok := svd.Factorize(dense, mat.SVDFull); !ok {
		panic("linalg: SVD factorization failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	return &SvdMatrix{U: &u, S: svd.Values(nil), V: &v}
}

// Dense reconstructs the dense covariance U*S*Vt.
func (m *SvdMatrix) Dense() *mat.Dense {
	n := len(m.S)
	sDiag := mat.NewDiagDense(n, m.S)
	var us mat.Dense
	us.Mul(m.U, sDiag)
	var out mat.Dense
	out.Mul(&us, m.V.T())
	return &out
}

// Dim returns the dimensionality of the covariance.
func (m *SvdMatrix) Dim() int {
	rows, _ := m.U.Dims()
	return rows
}

// sqrtS returns sqrt(S) with entries below SVDFloor clipped to zero.
func sqrtS(s []float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		if v < SVDFloor {
			out[i] = 0
			continue
		}
		out[i] = math.Sqrt(v)
	}
	return out
}

// Transform propagates the covariance through the linear map A ->
// M*A*Mt, returning a new SvdMatrix. M' = diag(sqrt(S)) * Vt * Mt is
// factored by SVD into (U1, S1, V1t); the result is (V1, S1^2, V1t),
// which is guaranteed symmetric PSD because it is itself an SVD
// factorization.
func (m *SvdMatrix) Transform(M mat.Matrix) *SvdMatrix {
	n := len(m.S)

	sqrtDiag := mat.NewDiagDense(n, sqrtS(m.S))
	var vt mat.Dense
	vt.CloneFrom(m.V.T())
	var sqrtVt mat.Dense
	sqrtVt.Mul(sqrtDiag, &vt)

	var mPrime mat.Dense
	mPrime.Mul(&sqrtVt, M.T())

	var svd mat.SVD
	if ok := svd.Factorize(&mPrime, mat.SVDThin); !ok {
		panic("linalg: SVD factorization failed in Transform")
	}
	s1 := svd.Values(nil)
	var v1 mat.Dense
	svd.VTo(&v1)

	s1sq := make([]float64, len(s1))
	for i, v := range s1 {
		s1sq[i] = v * v
	}

	return &SvdMatrix{U: cloneDense(&v1), S: s1sq, V: cloneDense(&v1)}
}

func cloneDense(d *mat.Dense) *mat.Dense {
	var c mat.Dense
	c.CloneFrom(d)
	return &c
}

// BlockStack2to4 embeds a 2x2 covariance C into the (0,1) and (2,3)
// coordinate blocks of a 4x4 covariance, preserving the SVD structure:
// the stacked U/V are block-diagonal permutations of the original
// factors and S is the concatenation of the 2-D spectrum with itself.
// Used when lifting an independent x/y covariance into the combined
// (x, vx, y, vy) ground layout.
func BlockStack2to4(c *SvdMatrix) *SvdMatrix {
	if c.Dim() != 2 {
		panic("linalg: BlockStack2to4 requires a 2x2 input")
	}
	u4 := mat.NewDense(4, 4, nil)
	v4 := mat.NewDense(4, 4, nil)
	// block (0,1) <- rows/cols {0,1} of input; block (2,3) <- rows/cols {2,3}.
	placement := [2]int{0, 2}
	for b := 0; b < 2; b++ {
		off := placement[b]
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				u4.Set(off+i, off+j, c.U.At(i, j))
				v4.Set(off+i, off+j, c.V.At(i, j))
			}
		}
	}
	s4 := []float64{c.S[0], c.S[1], c.S[0], c.S[1]}
	return &SvdMatrix{U: u4, S: s4, V: v4}
}

// Symmetric reports whether the reconstructed dense matrix is PSD
// within tol, i.e. a sane covariance: the eigenvalues of its symmetric
// part must all be at least -tol. Asymmetry of U*S*Vt itself is not
// checked.
func (m *SvdMatrix) Symmetric(tol float64) bool {
	d := m.Dense()
	n, _ := d.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(d.At(i, j)+d.At(j, i)))
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		return false
	}
	for _, l := range eig.Values(nil) {
		if l < -tol {
			return false
		}
	}
	return true
}

// IdentitySvd returns an n-dimensional SvdMatrix representing s*I.
func IdentitySvd(n int, s float64) *SvdMatrix {
	u := mat.NewDense(n, n, nil)
	v := mat.NewDense(n, n, nil)
	diag := make([]float64, n)
	for i := 0; i < n; i++ {
		u.Set(i, i, 1)
		v.Set(i, i, 1)
		diag[i] = s
	}
	return &SvdMatrix{U: u, S: diag, V: v}
}

// Add sums two covariances of matching dimension and refactors the sum
// back into SVD form. Summing two SvdMatrix factorizations directly
// isn't itself an SVD, so the dense sum is recomputed and refactored —
// cheap at the dimensions (2 or 4) this kernel operates on.
func (m *SvdMatrix) Add(o *SvdMatrix) *SvdMatrix {
	var sum mat.Dense
	sum.Add(m.Dense(), o.Dense())
	n, _ := sum.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := 0.5 * (sum.At(i, j) + sum.At(j, i))
			sym.SetSym(i, j, v)
		}
	}
	return NewSvdMatrix(sym)
}

// FromDense symmetrizes a dense n x n matrix (averaging it with its
// transpose, to absorb rounding asymmetry from upstream scaling) and
// refactors it into SVD covariance form.
func FromDense(n int, rowMajor []float64) *SvdMatrix {
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := 0.5 * (rowMajor[i*n+j] + rowMajor[j*n+i])
			sym.SetSym(i, j, v)
		}
	}
	return NewSvdMatrix(sym)
}

// FrobeniusNorm returns sqrt(sum(S_i^2)): since a covariance is
// symmetric PSD, its singular values are its eigenvalues, so this is
// exactly the matrix's Frobenius norm without reconstructing Dense.
func (m *SvdMatrix) FrobeniusNorm() float64 {
	sum := 0.0
	for _, s := range m.S {
		sum += s * s
	}
	return math.Sqrt(sum)
}

// DiagSvd builds an SvdMatrix directly from a diagonal covariance.
func DiagSvd(diag []float64) *SvdMatrix {
	n := len(diag)
	u := mat.NewDense(n, n, nil)
	v := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		u.Set(i, i, 1)
		v.Set(i, i, 1)
	}
	return &SvdMatrix{U: u, S: append([]float64(nil), diag...), V: v}
}
