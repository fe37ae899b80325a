package elevation

import (
	"fmt"
	"math"

	"github.com/npillmayer/roadgeom"
)

// Request describes the boundary conditions of a section's height profile.
//
// M0 is the slope at the start, measured in the direction of the section.
// For a continuous start it is the exit slope of the preceding section or
// road. M1 is the slope at the end, measured into the section, i.e. from
// the successor's point of view; the fitter negates it.
type Request struct {
	H0, H1          float64 // heights at start and end
	Length          float64 // section length
	M0, M1          float64 // slopes at start and end
	ContinuousStart bool    // start slope must match M0
	ContinuousEnd   bool    // end slope must match -M1
	DesignSpeed     float64 // for vertical curves
}

// Case tells which kind of profile has been fitted.
type Case int8

// Fitting cases.
const (
	CaseFlat            Case = iota // constant height
	CaseRamp                        // straight line, both ends free
	CaseStartContinuous             // Hermite, slope continued at start
	CaseEndContinuous               // Hermite, slope continued at end
	CaseBothContinuous              // Hermite, slopes continued at both ends
	CaseVerticalCurve               // parabola–line–parabola, both ends free
)

func (c Case) String() string {
	switch c {
	case CaseFlat:
		return "flat"
	case CaseRamp:
		return "ramp"
	case CaseStartContinuous:
		return "start-continuous"
	case CaseEndContinuous:
		return "end-continuous"
	case CaseBothContinuous:
		return "both-continuous"
	case CaseVerticalCurve:
		return "vertical-curve"
	}
	return fmt.Sprintf("Case(%d)", int8(c))
}

// Classify selects the fitting case for a request.
func Classify(req Request) Case {
	switch {
	case roadgeom.Is0(req.H1-req.H0) && roadgeom.Is0(req.M0) && roadgeom.Is0(req.M1):
		return CaseFlat
	case req.ContinuousStart && req.ContinuousEnd:
		return CaseBothContinuous
	case req.ContinuousStart:
		return CaseStartContinuous
	case req.ContinuousEnd:
		return CaseEndContinuous
	case roadgeom.Is0(req.M0) && roadgeom.Is0(req.M1):
		return CaseRamp
	}
	return CaseVerticalCurve
}

// Fit computes the height profile of a section. The result has one to
// three pieces, the first one starting at offset 0.
func Fit(req Request, tuning Tuning) (Profile, error) {
	for _, v := range []float64{req.H0, req.H1, req.M0, req.M1, req.Length, req.DesignSpeed} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: undefined value in %+v", ErrInvalidRequest, req)
		}
	}
	if req.Length < 0 {
		return nil, fmt.Errorf("%w: negative length %g", ErrInvalidRequest, req.Length)
	}
	c := Classify(req)
	L := req.Length
	var pr Profile
	switch {
	case c == CaseFlat || roadgeom.Is0(L):
		pr = Profile{{A: req.H0}}
	case c == CaseRamp:
		pr = Profile{{A: req.H0, B: (req.H1 - req.H0) / L}}
	case c == CaseStartContinuous:
		pr = Profile{Hermite(req.H0, req.M0, req.H1, (req.H1-req.H0)/L, L)}
	case c == CaseEndContinuous:
		pr = Profile{Hermite(req.H0, (req.H1-req.H0)/L, req.H1, -req.M1, L)}
	case c == CaseBothContinuous:
		pr = Profile{Hermite(req.H0, req.M0, req.H1, -req.M1, L)}
	default:
		pr = verticalCurve(req, tuning)
	}
	tracer().Debugf("elevation %s over %.4g: %v", c, L, pr)
	return pr, nil
}

// verticalCurve blends the start slope into a ramp by a parabola, and the
// ramp into the end slope by another parabola. If the start parabola alone
// covers the section, a single parabola is returned and the end slope is
// not matched.
func verticalCurve(req Request, tuning Tuning) Profile {
	L := req.Length
	dh := req.H1 - req.H0
	m0, m1 := req.M0, -req.M1
	s1 := tuning.parabolaLength(m0, dh/L, req.DesignSpeed)
	if s1 >= L {
		return Profile{{A: req.H0, B: m0, C: (dh - m0*L) / (L * L)}}
	}
	s2 := tuning.parabolaLength(m1, dh/L, req.DesignSpeed)
	if s1+s2 > L {
		s2 = L - s1
	}
	g := (dh - (m0*s1+m1*s2)/2) / (L - (s1+s2)/2) // grade of the ramp
	pr := make(Profile, 0, 3)
	if s1 > 0 {
		pr = append(pr, Piece{A: req.H0, B: m0, C: (g - m0) / (2 * s1)})
	}
	if L-s1-s2 > 0 {
		pr = append(pr, Piece{S: s1, A: req.H0 + (m0+g)*s1/2, B: g})
	}
	if s2 > 0 {
		pr = append(pr, Piece{S: L - s2, A: req.H1 - (g+m1)*s2/2, B: g, C: (m1 - g) / (2 * s2)})
	}
	return pr
}
