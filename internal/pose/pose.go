// Package pose matches keyframes against per-platform reference poses and
// substitutes the equivalent pose of another platform.
package pose

import (
	"fmt"
	"math"

	"github.com/samcharles93/mtnkit/pkg/mtn"
)

// DefaultTolerance is the largest per-joint difference, in degrees, that
// still counts as a match.
const DefaultTolerance = 5.0

// matchEpsilon absorbs float rounding so a difference of exactly the
// tolerance is accepted.
const matchEpsilon = 1e-9

// Catalog is an ordered list of reference poses for one platform. Order is
// significant: pose indices pair poses across platforms.
type Catalog struct {
	Poses []Pose `json:"Poses"`
}

// Pose is a named reference posture.
type Pose struct {
	Name           string          `json:"Pose"`
	JointPositions []JointPosition `json:"JointPositions"`
}

// JointPosition is one joint angle of a pose.
type JointPosition struct {
	JointName    string  `json:"JointName"`
	AngleURad    *int32  `json:"Angle_urad,omitempty"`
	AngleDegrees float64 `json:"Angle_degrees"`
}

// URad returns the angle in microradians, preferring the stored integer.
func (j JointPosition) URad() int32 {
	if j.AngleURad != nil {
		return *j.AngleURad
	}
	return mtn.DegreesToURad(j.AngleDegrees)
}

// Len returns the number of poses; a nil catalog is empty.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Poses)
}

// Name returns the label of pose i: its stored name, else the label
// convention, else a positional name.
func (c *Catalog) Name(i int, labels Labels) string {
	if i >= 0 && i < c.Len() && c.Poses[i].Name != "" {
		return c.Poses[i].Name
	}
	if l := labels.Label(i); l != "" {
		return l
	}
	return fmt.Sprintf("Pose %d", i)
}

func matches(p *Pose, degrees []float64, tol float64) bool {
	if len(p.JointPositions) == 0 {
		return false
	}
	n := min(len(p.JointPositions), len(degrees))
	for i := 0; i < n; i++ {
		if math.Abs(p.JointPositions[i].AngleDegrees-degrees[i]) > tol+matchEpsilon {
			return false
		}
	}
	return true
}

// Match returns the index of the first pose whose every joint is within tol
// degrees of the keyframe. Joints are compared by position.
func Match(degrees []float64, c *Catalog, tol float64) (int, bool) {
	for i := 0; i < c.Len(); i++ {
		if matches(&c.Poses[i], degrees, tol) {
			return i, true
		}
	}
	return -1, false
}

// Hit lists the keyframes in which one catalog pose occurs.
type Hit struct {
	Pose      int    `json:"pose"`
	Name      string `json:"name"`
	Keyframes []int  `json:"keyframes"`
}

// MatchAll reports, for each pose in catalog order, every keyframe it matches.
// Unlike Match a keyframe may appear under several poses.
func MatchAll(frames [][]float64, c *Catalog, tol float64, labels Labels) []Hit {
	var hits []Hit
	for i := 0; i < c.Len(); i++ {
		var kfs []int
		for k, deg := range frames {
			if matches(&c.Poses[i], deg, tol) {
				kfs = append(kfs, k)
			}
		}
		if len(kfs) > 0 {
			hits = append(hits, Hit{Pose: i, Name: c.Name(i, labels), Keyframes: kfs})
		}
	}
	return hits
}

// Retarget replaces the first jointCount angles of src with the angles of
// target pose idx. Angles beyond the target pose are left as in src. The
// result is a new slice; src is not modified.
func Retarget(src []int32, idx int, target *Catalog, jointCount int) []int32 {
	out := make([]int32, len(src))
	copy(out, src)
	if idx < 0 || idx >= target.Len() {
		return out
	}
	jp := target.Poses[idx].JointPositions
	n := min(jointCount, len(out), len(jp))
	for i := 0; i < n; i++ {
		out[i] = jp[i].URad()
	}
	return out
}

// Retargeter substitutes Target poses for keyframes matching Source poses.
// A nil Source or Target disables substitution. A Tolerance of zero accepts
// exact matches only; a negative Tolerance selects DefaultTolerance.
type Retargeter struct {
	Source    *Catalog
	Target    *Catalog
	Tolerance float64
}

// Substitution records one replaced keyframe.
type Substitution struct {
	Keyframe int    `json:"keyframe"`
	Pose     int    `json:"pose"`
	Name     string `json:"name"`
}

// Apply returns the output angles for one keyframe and the matched pose
// index, or the source angles unchanged and false.
func (r *Retargeter) Apply(angles []int32) ([]int32, int, bool) {
	if r == nil || r.Source == nil || r.Target == nil {
		return angles, -1, false
	}
	tol := r.Tolerance
	if tol < 0 {
		tol = DefaultTolerance
	}
	deg := make([]float64, len(angles))
	for i, v := range angles {
		deg[i] = mtn.URadToDegrees(v)
	}
	idx, ok := Match(deg, r.Source, tol)
	if !ok || idx >= r.Target.Len() {
		return angles, -1, false
	}
	return Retarget(angles, idx, r.Target, len(angles)), idx, true
}
