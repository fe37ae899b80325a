package curve

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// Iteration limits for the Newton solver.
var (
	// Tolerance is the residual norm at which an iteration has converged.
	Tolerance float64 = 1e-9
	// MaxIterations bounds the number of Newton steps.
	MaxIterations = 80
	// StallTolerance is accepted if the iteration cannot improve any further.
	StallTolerance float64 = 1e-7
)

var errNoConvergence = errors.New("iteration did not converge")

// residual computes the residual vector of a boundary value problem for
// unknowns x. It returns an error if x is outside the domain of the
// problem; the iteration will then shorten the step.
type residual func(x []float64) ([]float64, error)

// newton solves f(x) = 0 by a damped Newton iteration, starting at x0. The
// Jacobian is approximated by forward differences.
func newton(f residual, x0 []float64) ([]float64, error) {
	x := append([]float64(nil), x0...)
	r, err := f(x)
	if err != nil {
		return nil, err
	}
	norm := norm2(r)
	for iter := 0; iter < MaxIterations; iter++ {
		tracer().Debugf("newton %d: x = %v, |r| = %g", iter, x, norm)
		if norm <= Tolerance {
			return x, nil
		}
		J, err := jacobian(f, x, r)
		if err != nil {
			return nil, err
		}
		neg := make([]float64, len(r))
		for i := range r {
			neg[i] = -r[i]
		}
		dx, err := solveLinear(J, neg)
		if err != nil {
			return nil, err
		}
		// halve the step until the residual decreases
		lambda, improved := 1.0, false
		for k := 0; k < 30; k++ {
			xn := make([]float64, len(x))
			for i := range x {
				xn[i] = x[i] + lambda*dx[i]
			}
			rn, err := f(xn)
			if err == nil {
				if nn := norm2(rn); nn < norm {
					x, r, norm = xn, rn, nn
					improved = true
					break
				}
			}
			lambda /= 2
		}
		if !improved {
			break
		}
	}
	if norm <= StallTolerance {
		return x, nil
	}
	return nil, errNoConvergence
}

// jacobian approximates ∂f_i/∂x_j by forward differences, given r = f(x).
// The unknowns are scaled to magnitude 1 first, so that lengths and
// curvatures are perturbed by comparable relative steps. If f is undefined
// just beyond x, backward differences are tried.
func jacobian(f residual, x, r []float64) (*mat.Dense, error) {
	scale := make([]float64, len(x))
	z := make([]float64, len(x))
	for j := range x {
		scale[j] = math.Max(1, math.Abs(x[j]))
		z[j] = x[j] / scale[j]
	}
	var failed error
	scaled := func(y, zh []float64) {
		xh := make([]float64, len(zh))
		for j := range zh {
			xh[j] = zh[j] * scale[j]
		}
		rh, err := f(xh)
		if err != nil {
			failed = err
			return
		}
		copy(y, rh)
	}
	J := mat.NewDense(len(r), len(x), nil)
	for _, formula := range []fd.Formula{fd.Forward, fd.Backward} {
		failed = nil
		fd.Jacobian(J, scaled, z, &fd.JacobianSettings{
			Formula:     formula,
			OriginValue: r,
			Step:        1e-7,
		})
		if failed == nil {
			break
		}
	}
	if failed != nil {
		return nil, failed
	}
	for j := range x {
		for i := range r {
			J.Set(i, j, J.At(i, j)/scale[j])
		}
	}
	return J, nil
}

func norm2(v []float64) float64 {
	sum := 0.0
	for _, a := range v {
		sum += a * a
	}
	return math.Sqrt(sum)
}
