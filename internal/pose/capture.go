package pose

import (
	"fmt"

	"github.com/samcharles93/mtnkit/pkg/mtn"
)

// Labels names keyframes by index when capturing poses.
type Labels []string

// DefaultLabels is the capture convention for reference motions: the first
// three keyframes hold the sleep, sit and stand postures.
var DefaultLabels = Labels{"Sleep", "Sit", "Stand"}

// Label returns the label for keyframe i, or "" when none is defined.
func (l Labels) Label(i int) string {
	if i < 0 || i >= len(l) {
		return ""
	}
	return l[i]
}

// Capture builds a catalog with one pose per keyframe. names gives the joint
// name for each angle; missing names become "Unknown joint N".
func Capture(frames []mtn.Keyframe, names []string, labels Labels) *Catalog {
	c := &Catalog{Poses: make([]Pose, 0, len(frames))}
	for i, kf := range frames {
		p := Pose{Name: labels.Label(i), JointPositions: make([]JointPosition, len(kf.Angles))}
		for j, v := range kf.Angles {
			name := fmt.Sprintf("Unknown joint %d", j+1)
			if j < len(names) {
				name = names[j]
			}
			urad := v
			p.JointPositions[j] = JointPosition{
				JointName:    name,
				AngleURad:    &urad,
				AngleDegrees: mtn.URadToDegrees(v),
			}
		}
		c.Poses = append(c.Poses, p)
	}
	return c
}
