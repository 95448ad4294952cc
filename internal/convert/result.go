package convert

import (
	"github.com/samcharles93/mtnkit/internal/pose"
	"github.com/samcharles93/mtnkit/pkg/mtn"
)

// JointTranslation records how one joint code was rewritten.
type JointTranslation struct {
	Index    int    `json:"index"`
	From     string `json:"from"`
	Movement string `json:"movement"`
	To       string `json:"to"`
}

// Changed reports whether the code was replaced.
func (j JointTranslation) Changed() bool { return j.From != j.To }

// Result summarises one conversion. It is returned, possibly partial, even
// when Convert fails after writing began.
type Result struct {
	ID string `json:"id"`
	// SourcePlatform is the identifier read from block 1, SourcePublic its
	// public name.
	SourcePlatform string `json:"source_platform"`
	SourcePublic   string `json:"source_public"`
	Target         string `json:"target"`
	TargetCode     string `json:"target_code"`
	HeaderOnly     bool   `json:"header_only,omitempty"`
	Retargeting    bool   `json:"retargeting"`

	Joints        []JointTranslation  `json:"joints"`
	Substitutions []pose.Substitution `json:"substitutions,omitempty"`
	Keyframes     int                 `json:"keyframes"`
	Blocks        int                 `json:"blocks"`
	Warnings      []mtn.Warning       `json:"-"`

	BytesWritten int64  `json:"bytes_written"`
	InputDigest  string `json:"input_blake3"`
	OutputDigest string `json:"output_blake3"`
}

// WarningText returns the warnings as strings for reports.
func (r *Result) WarningText() []string {
	if r == nil || len(r.Warnings) == 0 {
		return nil
	}
	out := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		out[i] = w.String()
	}
	return out
}

// TranslatedJoints counts the joint codes that changed.
func (r *Result) TranslatedJoints() int {
	n := 0
	for _, j := range r.Joints {
		if j.Changed() {
			n++
		}
	}
	return n
}
