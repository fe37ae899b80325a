package junction

import (
	"fmt"
)

// Junction holds the joints of roads meeting at a junction, together with
// the boundary derived from them. The boundary is rebuilt from scratch
// whenever the joints change.
type Junction struct {
	joints   []Joint
	boundary Boundary
	opts     Options
}

// New creates a junction without joints.
func New(opts Options) *Junction {
	j := &Junction{opts: opts}
	j.rebuild()
	return j
}

// AddJoint attaches a road end to the junction and returns the new
// boundary. Invalid joints are refused.
func (j *Junction) AddJoint(jt Joint) (Boundary, error) {
	if err := jt.Validate(); err != nil {
		tracer().Errorf("junction: %v", err)
		return j.boundary, err
	}
	j.joints = append(j.joints, jt)
	tracer().Infof("junction: attached %s", jt)
	j.rebuild()
	return j.boundary, nil
}

// RemoveLastJoint detaches the most recently attached road end.
func (j *Junction) RemoveLastJoint() (Boundary, error) {
	if len(j.joints) == 0 {
		return j.boundary, ErrNoJoints
	}
	jt := j.joints[len(j.joints)-1]
	j.joints = j.joints[:len(j.joints)-1]
	tracer().Infof("junction: detached %s", jt)
	j.rebuild()
	return j.boundary, nil
}

// Joints returns a copy of the joints in order of attachment.
func (j *Junction) Joints() []Joint {
	return append([]Joint(nil), j.joints...)
}

// Boundary returns the current boundary.
func (j *Junction) Boundary() Boundary {
	return j.boundary
}

// Clone returns a copy of the junction which shares no state with j.
func (j *Junction) Clone() *Junction {
	c := &Junction{joints: make([]Joint, len(j.joints)), opts: j.opts}
	for i, jt := range j.joints {
		jt.WidthsLeft = append([]float64(nil), jt.WidthsLeft...)
		jt.WidthsRight = append([]float64(nil), jt.WidthsRight...)
		jt.TypesLeft = append([]string(nil), jt.TypesLeft...)
		jt.TypesRight = append([]string(nil), jt.TypesRight...)
		c.joints[i] = jt
	}
	c.rebuild()
	return c
}

func (j *Junction) rebuild() {
	j.boundary = BuildBoundary(j.joints, j.opts)
}

func (j *Junction) String() string {
	return fmt.Sprintf("junction{%d joints, valid=%v}", len(j.joints), j.boundary.Valid)
}
