package elevation

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-6

func fit(t *testing.T, req Request) Profile {
	t.Helper()
	pr, err := Fit(req, DefaultTuning())
	require.NoError(t, err)
	require.NotEmpty(t, pr)
	assert.Equal(t, 0.0, pr[0].S, "first piece must start at 0")
	return pr
}

// assertContinuous checks that adjacent pieces agree in height (and slope)
// at their shared offsets.
func assertContinuous(t *testing.T, pr Profile, slope bool) {
	t.Helper()
	for i := 1; i < len(pr); i++ {
		prev, next := pr[i-1], pr[i]
		assert.Less(t, prev.S, next.S, "pieces must be ordered")
		ds := next.S - prev.S
		assert.InDelta(t, prev.Height(ds), next.A, 1e-9, "height jump at %g", next.S)
		if slope {
			assert.InDelta(t, prev.Slope(ds), next.B, 1e-9, "slope jump at %g", next.S)
		}
	}
}

func TestClassify(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	cases := []struct {
		req  Request
		want Case
	}{
		{Request{H0: 2, H1: 2, Length: 10}, CaseFlat},
		{Request{H0: 2, H1: 2, Length: 10, ContinuousStart: true, ContinuousEnd: true}, CaseFlat},
		{Request{H0: 0, H1: 2, Length: 10}, CaseRamp},
		{Request{H0: 0, H1: 2, Length: 10, M0: 0.1, ContinuousStart: true}, CaseStartContinuous},
		{Request{H0: 0, H1: 2, Length: 10, M1: 0.1, ContinuousEnd: true}, CaseEndContinuous},
		{Request{H0: 0, H1: 2, Length: 10, ContinuousStart: true, ContinuousEnd: true}, CaseBothContinuous},
		{Request{H0: 0, H1: 2, Length: 10, M0: 0.05}, CaseVerticalCurve},
	}
	for i, c := range cases {
		assert.Equal(t, c.want, Classify(c.req), "case %d", i)
	}
	assert.Equal(t, "vertical-curve", CaseVerticalCurve.String())
}

func TestFitFlat(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pr := fit(t, Request{H0: 3, H1: 3, Length: 50})
	assert.Equal(t, Profile{{A: 3}}, pr)
	assert.Equal(t, 3.0, pr.Height(25))
}

func TestFitRamp(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pr := fit(t, Request{H0: 1, H1: 6, Length: 50})
	require.Len(t, pr, 1)
	assert.InDelta(t, 0.1, pr.SlopeAt(0), 1e-12)
	assert.InDelta(t, 0.1, pr.SlopeAt(50), 1e-12)
	assert.InDelta(t, 6.0, pr.Height(50), 1e-12)
	//
	zero := fit(t, Request{H0: 1, H1: 6, Length: 0})
	assert.Equal(t, Profile{{A: 1}}, zero)
}

func TestFitStartContinuous(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pr := fit(t, Request{H0: 1, H1: 4, Length: 30, M0: 0.2, ContinuousStart: true})
	require.Len(t, pr, 1)
	assert.InDelta(t, 1.0, pr.Height(0), tol)
	assert.InDelta(t, 0.2, pr.SlopeAt(0), tol)
	assert.InDelta(t, 4.0, pr.Height(30), tol)
	assert.InDelta(t, 0.1, pr.SlopeAt(30), tol)
}

func TestFitEndContinuous(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pr := fit(t, Request{H0: 1, H1: 4, Length: 30, M1: 0.05, ContinuousEnd: true})
	assert.InDelta(t, 0.1, pr.SlopeAt(0), tol)
	assert.InDelta(t, 4.0, pr.Height(30), tol)
	assert.InDelta(t, -0.05, pr.SlopeAt(30), tol)
}

func TestFitBothContinuous(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	for _, req := range []Request{
		{H0: 0, H1: 5, Length: 100, M0: 0.03, M1: 0.08},
		{H0: 10, H1: 2, Length: 40, M0: -0.2, M1: -0.01},
		{H0: 0, H1: 0, Length: 60, M0: 0.04, M1: 0.04},
	} {
		req.ContinuousStart, req.ContinuousEnd = true, true
		pr := fit(t, req)
		assert.InDelta(t, req.H0, pr.Height(0), tol)
		assert.InDelta(t, req.M0, pr.SlopeAt(0), tol)
		assert.InDelta(t, req.H1, pr.Height(req.Length), tol)
		assert.InDelta(t, -req.M1, pr.SlopeAt(req.Length), tol)
	}
}

func TestFitVerticalCurve(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	req := Request{H0: 0, H1: 10, Length: 200, M0: 0.02, M1: 0.01, DesignSpeed: 60}
	pr := fit(t, req)
	require.Len(t, pr, 3)
	assertContinuous(t, pr, true)
	assert.InDelta(t, 0.02, pr.SlopeAt(0), tol)
	assert.InDelta(t, 10.0, pr.Height(200), tol)
	assert.InDelta(t, -0.01, pr.SlopeAt(200), tol)
	// the middle piece is a straight ramp
	assert.Equal(t, 0.0, pr[1].C)
	assert.Equal(t, 0.0, pr[1].D)
}

func TestFitVerticalCurveSingleParabola(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	req := Request{H0: 0, H1: 3, Length: 50, M0: 0.1, DesignSpeed: 1000}
	pr := fit(t, req)
	require.Len(t, pr, 1)
	assert.InDelta(t, 0.1, pr.SlopeAt(0), tol)
	assert.InDelta(t, 3.0, pr.Height(50), tol)
	assert.Equal(t, 0.0, pr[0].D)
}

func TestFitVerticalCurveWithoutRamp(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// start parabola covers 30 of 50, end parabola is cut to the rest
	tuning := Tuning{SpeedDivisor: 1, SlopeDivisor: 1}
	req := Request{H0: 0, H1: 1, Length: 50, M0: 0.3, M1: 0.3, DesignSpeed: 10}
	pr, err := Fit(req, tuning)
	require.NoError(t, err)
	require.Len(t, pr, 2)
	assert.InDelta(t, 30.0, pr[1].S, 1e-9)
	assert.InDelta(t, -0.02, pr.SlopeAt(30), tol)
	assert.InDelta(t, 4.2, pr.Height(30), tol)
	assertContinuous(t, pr, true)
	assert.InDelta(t, 1.0, pr.Height(50), tol)
	assert.InDelta(t, -0.3, pr.SlopeAt(50), tol)
}

func TestFitInvalid(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	_, err := Fit(Request{H0: 0, H1: 1, Length: -1}, DefaultTuning())
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestHermite(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	p := Hermite(1, 0.5, 3, -0.5, 4)
	assert.InDelta(t, 1.0, p.Height(0), 1e-12)
	assert.InDelta(t, 0.5, p.Slope(0), 1e-12)
	assert.InDelta(t, 3.0, p.Height(4), 1e-12)
	assert.InDelta(t, -0.5, p.Slope(4), 1e-12)
	assert.Equal(t, Piece{A: 7}, Hermite(7, 1, 2, 1, 0))
}

type fixedSlope struct{ length, slope float64 }

func (f fixedSlope) SlopeAt(s float64) float64 { return f.slope * s / f.length }
func (f fixedSlope) Length() float64           { return f.length }

func TestProfileHelpers(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pr := Profile{{S: 0, A: 1, B: 1}, {S: 2, A: 3, C: 1}}
	assert.Equal(t, 2.0, pr.Height(1))
	assert.Equal(t, 4.0, pr.Height(3))
	assert.Equal(t, 2.0, pr.SlopeAt(3))
	assert.Equal(t, 2.0, pr.CurvatureAt(2.5))
	assert.Equal(t, 1.0, pr.Height(-1), "offsets before 0 are clamped")
	shifted := pr.Shift(10)
	assert.Equal(t, 12.0, shifted[1].S)
	assert.Equal(t, 2.0, pr[1].S, "shift must not modify the original")
	assert.Equal(t, 0.25, ExitSlope(fixedSlope{length: 8, slope: 0.25}))
}
