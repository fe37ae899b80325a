package lanes

import (
	"errors"
	"testing"

	"github.com/npillmayer/roadgeom"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniform(left, right int) Descriptor {
	return NewTable(left, right, 3.5, "driving").EndDescriptor(roadgeom.ContactEnd)
}

func TestLinkEqualCounts(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	in, out, err := Link(uniform(2, 2), uniform(2, 2), TailToHead, PairIDs{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, -1, -2}, in)
	assert.Equal(t, []int{1, 2, -1, -2}, out)
}

func TestLinkTruncatesOuterLanes(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	in, out, err := Link(uniform(1, 3), uniform(2, 2), TailToHead, PairIDs{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, -1, -2}, in)
	assert.Equal(t, []int{1, -1, -2}, out)
}

func TestLinkHeadsOn(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.Equal(t, HeadsOn, OrientationOf(roadgeom.ContactEnd, roadgeom.ContactEnd))
	assert.Equal(t, TailToHead, OrientationOf(roadgeom.ContactEnd, roadgeom.ContactStart))
	in, out, err := Link(uniform(1, 2), uniform(2, 1), HeadsOn, PairIDs{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, -1, -2}, in)
	assert.Equal(t, []int{-1, 1, 2}, out)
}

func TestLinkSkipsZeroWidthLanes(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tab := NewTable(0, 3, 3.5, "driving")
	tab.Right[1].WidthEnd = 0 // closing lane
	in, out, err := Link(tab.EndDescriptor(roadgeom.ContactEnd), uniform(0, 2), TailToHead, PairIDs{})
	require.NoError(t, err)
	assert.Equal(t, []int{-1, -3}, in)
	assert.Equal(t, []int{-1, -2}, out)
	// at the start the lane is still open
	in, _, err = Link(tab.EndDescriptor(roadgeom.ContactStart), uniform(0, 3), TailToHead, PairIDs{})
	require.NoError(t, err)
	assert.Equal(t, []int{-1, -2, -3}, in)
}

func TestLinkSplitRoad(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// a branch taking off at the second right lane
	in, out, err := Link(uniform(0, 3), uniform(0, 1), TailToHead, PairIDs{In: -2})
	require.NoError(t, err)
	assert.Equal(t, []int{-2}, in)
	assert.Equal(t, []int{-1}, out)
	// aligned at a left lane: lane 1 moves to the right side
	in, out, err = Link(uniform(2, 1), uniform(1, 2), TailToHead, PairIDs{In: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, -1}, in)
	assert.Equal(t, []int{1, -1, -2}, out)
	//
	_, _, err = Link(uniform(1, 1), uniform(1, 1), TailToHead, PairIDs{Out: -5})
	assert.True(t, errors.Is(err, ErrUnknownPairID))
}

func TestLinkEmpty(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	in, out, err := Link(Descriptor{}, uniform(2, 2), TailToHead, PairIDs{})
	require.NoError(t, err)
	assert.Empty(t, in)
	assert.Empty(t, out)
}

func TestLinkRefusesMalformed(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	good := uniform(1, 1)
	bad := []Descriptor{
		{IDsRight: []int{-1}, WidthsRight: []float64{-3}},
		{IDsRight: []int{-1, -2}, WidthsRight: []float64{3}},
		{IDsLeft: []int{-1}, WidthsLeft: []float64{3}},
		{IDsRight: []int{1}, WidthsRight: []float64{3}},
		{IDsRight: []int{-1, -1}, WidthsRight: []float64{3, 3}},
		{IDsRight: []int{-1}, WidthsRight: []float64{3}, TypesRight: []string{"a", "b"}},
	}
	for i, d := range bad {
		in, out, err := Link(good, d, TailToHead, PairIDs{})
		assert.True(t, errors.Is(err, ErrMalformedDescriptor), "case %d: %v", i, err)
		assert.Nil(t, in)
		assert.Nil(t, out)
		_, _, err = Link(d, good, HeadsOn, PairIDs{})
		assert.True(t, errors.Is(err, ErrMalformedDescriptor), "case %d: %v", i, err)
	}
}

func TestLinkListsHaveEqualLength(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	for l1 := 0; l1 < 4; l1++ {
		for r1 := 0; r1 < 4; r1++ {
			for l2 := 0; l2 < 4; l2++ {
				for r2 := 0; r2 < 4; r2++ {
					for _, o := range []Orientation{TailToHead, HeadsOn} {
						in, out, err := Link(uniform(l1, r1), uniform(l2, r2), o, PairIDs{})
						require.NoError(t, err)
						assert.Equal(t, len(in), len(out), "%d/%d %s %d/%d", l1, r1, o, l2, r2)
					}
				}
			}
		}
	}
}

func TestTable(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tab := NewTable(2, 1, 3, "driving")
	tab.Left[0].WidthStart = 0 // opening lane
	d := tab.EndDescriptor(roadgeom.ContactStart)
	assert.Equal(t, []int{2, 1}, d.IDsLeft)
	assert.Equal(t, []int{-1}, d.IDsRight)
	assert.Equal(t, []float64{0, 3}, d.WidthsLeft)
	assert.NoError(t, d.Validate())
	left, right := tab.Widths(roadgeom.ContactEnd)
	assert.Equal(t, []float64{3, 3}, left)
	assert.Equal(t, []float64{3}, right)
	assert.Equal(t, "lanes{2 left, 1 right}", tab.String())
}
