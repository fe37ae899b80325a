package curve

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// errorf wraps a sentinel error with a formatted message.
func errorf(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{err}, args...)...)
}

// solveLinear solves the square system A·x = b by LU decomposition.
// A and b are not modified.
//
// The systems solved here are Newton steps with two or three unknowns.
func solveLinear(A *mat.Dense, b []float64) ([]float64, error) {
	r, c := A.Dims()
	if r != c || r != len(b) {
		return nil, fmt.Errorf("%w: %dx%d matrix for %d values", ErrSingularSystem, r, c, len(b))
	}
	var x mat.VecDense
	if err := x.SolveVec(A, mat.NewVecDense(len(b), append([]float64(nil), b...))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}
	return x.RawVector().Data, nil
}
