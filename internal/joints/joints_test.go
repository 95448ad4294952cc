package joints

import (
	"testing"

	"github.com/samcharles93/mtnkit/pkg/mtn"
)

func testTranslator() *Translator {
	return &Translator{
		Joints: Map{
			"ERS-7":   {"PRM:1001": "HeadTilt", "PRM:1002": "HeadPan"},
			"ERS-210": {"PRM:2001": "HeadTilt"},
		},
		Conversion: Conversion{
			"HeadTilt": {"ERS-210": "PRM:2001", "ERS-7": "PRM:1001"},
			"HeadPan":  {"ERS-7": "PRM:1002"},
		},
	}
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	tr := testTranslator()
	tests := []struct {
		name     string
		platform string
		target   string
		code     string
		want     string
	}{
		{"mapped", "ERS-7", "ERS-210", "PRM:1001", "PRM:2001"},
		{"reverse", "ERS-210", "ERS-7", "PRM:2001", "PRM:1001"},
		{"no target entry", "ERS-7", "ERS-210", "PRM:1002", "PRM:1002"},
		{"unknown code", "ERS-7", "ERS-210", "PRM:9999", "PRM:9999"},
		{"unknown platform", "ERS-310", "ERS-210", "PRM:1001", "PRM:1001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Translate(tt.platform, tt.target, mtn.ShortString(tt.code))
			if got.Key() != tt.want {
				t.Fatalf("Translate(%s→%s, %s) = %q, want %q", tt.platform, tt.target, tt.code, got, tt.want)
			}
		})
	}
}

func TestFallbackTotality(t *testing.T) {
	t.Parallel()

	tr := &Translator{}
	for _, code := range []string{"", "PRM:1", "\x00\x01PRM:7", "not a code"} {
		if got := tr.MovementName("ERS-7", mtn.ShortString(code)); got != code {
			t.Errorf("MovementName(%q) = %q", code, got)
		}
		orig := mtn.ShortString(code)
		if got := tr.TargetCode("HeadTilt", "ERS-210", orig); got.Key() != code {
			t.Errorf("TargetCode fallback for %q = %q", code, got)
		}
	}
}

func TestPrefixedCodeUsesPRMSuffix(t *testing.T) {
	t.Parallel()

	tr := testTranslator()
	raw := mtn.ShortString("\x81\x02PRM:1001")
	if got := tr.MovementName("ERS-7", raw); got != "HeadTilt" {
		t.Fatalf("prefixed code must resolve by suffix, got %q", got)
	}
	if got := tr.Translate("ERS-7", "ERS-210", raw); got.Key() != "PRM:2001" {
		t.Fatalf("prefixed translation: got %q", got)
	}

	unknown := mtn.ShortString("\x81\x02PRM:4242")
	if got := tr.Translate("ERS-7", "ERS-210", unknown); got.Key() != unknown.Key() {
		t.Fatalf("fallback must keep the original raw bytes, got %q", got)
	}
}

func TestJointName(t *testing.T) {
	t.Parallel()

	tr := testTranslator()
	jt := &mtn.JointTable{Codes: []mtn.ShortString{
		mtn.ShortString("PRM:1001"),
		mtn.ShortString("PRM:5555"),
	}}
	names := tr.Names("ERS-7", jt)
	if names[0] != "HeadTilt" || names[1] != "Unknown joint 2" {
		t.Fatalf("names: %v", names)
	}
	if tr.Names("ERS-7", nil) != nil {
		t.Fatalf("nil table must give nil names")
	}
}
