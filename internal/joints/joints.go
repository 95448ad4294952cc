// Package joints translates platform-specific joint codes through canonical
// movement names to the codes of another platform.
package joints

import (
	"fmt"

	"github.com/samcharles93/mtnkit/pkg/mtn"
)

// Map resolves joint codes to movement names: {platform: {code: movement}}.
type Map map[string]map[string]string

// Conversion resolves movement names to target codes: {movement: {platform: code}}.
type Conversion map[string]map[string]string

// Translator performs the two-step lookup. Both tables are read-only once
// built and may be shared between goroutines.
type Translator struct {
	Joints     Map
	Conversion Conversion
}

// NormalizeCode returns the lookup key for a raw joint code: the PRM suffix
// when a producer placed other bytes in front of the tag.
func NormalizeCode(code mtn.ShortString) string {
	return code.PRMCode().Key()
}

func (t *Translator) lookupMovement(platform string, code mtn.ShortString) (string, bool) {
	table, ok := t.Joints[platform]
	if !ok {
		return "", false
	}
	if m, ok := table[NormalizeCode(code)]; ok {
		return m, true
	}
	m, ok := table[code.Key()]
	return m, ok
}

// MovementName returns the movement name of code on platform, or the code
// itself when the platform or code is unknown.
func (t *Translator) MovementName(platform string, code mtn.ShortString) string {
	if m, ok := t.lookupMovement(platform, code); ok {
		return m
	}
	return code.Key()
}

// TargetCode returns the code for movement on target, or original when the
// movement has no entry for that platform.
func (t *Translator) TargetCode(movement, target string, original mtn.ShortString) mtn.ShortString {
	if codes, ok := t.Conversion[movement]; ok {
		if c, ok := codes[target]; ok {
			return mtn.ShortString(c)
		}
	}
	return original
}

// Translate maps code from platform to target. A miss at either step carries
// the original bytes over unchanged.
func (t *Translator) Translate(platform, target string, code mtn.ShortString) mtn.ShortString {
	return t.TargetCode(t.MovementName(platform, code), target, code)
}

// JointName is the diagnostic name of the joint at 0-based index.
func (t *Translator) JointName(platform string, code mtn.ShortString, index int) string {
	if m, ok := t.lookupMovement(platform, code); ok {
		return m
	}
	return fmt.Sprintf("Unknown joint %d", index+1)
}

// Names resolves every code of a joint table with JointName.
func (t *Translator) Names(platform string, jt *mtn.JointTable) []string {
	if jt == nil {
		return nil
	}
	out := make([]string, len(jt.Codes))
	for i, c := range jt.Codes {
		out[i] = t.JointName(platform, c, i)
	}
	return out
}
