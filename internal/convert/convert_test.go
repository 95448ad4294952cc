package convert

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/samcharles93/mtnkit/internal/joints"
	"github.com/samcharles93/mtnkit/internal/mtntest"
	"github.com/samcharles93/mtnkit/internal/platform"
	"github.com/samcharles93/mtnkit/internal/pose"
	"github.com/samcharles93/mtnkit/internal/tables"
	"github.com/samcharles93/mtnkit/pkg/mtn"
)

func parse(t *testing.T, data []byte) *mtn.Document {
	t.Helper()
	doc, err := mtn.Parse(bytes.NewReader(data), mtn.Options{})
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	return doc
}

func codes(jt *mtn.JointTable) []string {
	out := make([]string, len(jt.Codes))
	for i, c := range jt.Codes {
		out[i] = c.Key()
	}
	return out
}

func TestConvertScenarioFallsBack(t *testing.T) {
	t.Parallel()

	in := mtntest.Scenario()
	var out bytes.Buffer
	res, err := New().Convert(bytes.NewReader(in), &out, "ERS-210")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if !bytes.Equal(out.Bytes()[:4+mtn.HeaderSize], in[:4+mtn.HeaderSize]) {
		t.Fatalf("magic and block 0 must be copied verbatim")
	}
	doc := parse(t, out.Bytes())
	if got := doc.Identity().Platform.Key(); got != "DRX-910" {
		t.Fatalf("platform: got %q want DRX-910", got)
	}
	if doc.Identity().ActionName.Key() != "a##walk_sit" || doc.Identity().Author.Key() != "doggo" {
		t.Fatalf("authoring fields changed: %+v", doc.Identity())
	}
	if got := codes(doc.Joints()); !reflect.DeepEqual(got, []string{"PRM:1001", "PRM:1002"}) {
		t.Fatalf("joint codes: %v", got)
	}
	ks := doc.Keyframes()
	if len(ks.Frames) != 3 {
		t.Fatalf("keyframes: %d", len(ks.Frames))
	}
	for i, kf := range ks.Frames {
		if !reflect.DeepEqual(kf.Angles, mtntest.ScenarioAngles) {
			t.Fatalf("keyframe %d angles: %v", i, kf.Angles)
		}
	}

	if res.SourcePublic != "ERS-7" || res.TargetCode != "DRX-910" || res.Blocks != 3 {
		t.Fatalf("result: %+v", res)
	}
	if res.TranslatedJoints() != 0 || len(res.Substitutions) != 0 || res.Retargeting {
		t.Fatalf("nothing should be translated: %+v", res)
	}
	if res.BytesWritten != int64(out.Len()) || res.OutputDigest != Digest(out.Bytes()) || res.InputDigest != Digest(in) {
		t.Fatalf("digests or byte count wrong: %+v", res)
	}
	if res.ID == "" {
		t.Fatalf("conversion id missing")
	}
}

func TestConvertRejectsUnknownTarget(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	res, err := New().Convert(bytes.NewReader(mtntest.Scenario()), &out, "DRX-910")
	if !errors.Is(err, platform.ErrUnsupportedPlatform) {
		t.Fatalf("expected unsupported platform, got %v", err)
	}
	if res != nil || out.Len() != 0 {
		t.Fatalf("nothing may be written for an unsupported target")
	}
}

func TestConvertToOwnPlatformPreservesValues(t *testing.T) {
	t.Parallel()

	in := mtntest.File(mtn.Magic, mtntest.ScenarioHeader,
		mtntest.Block{Number: 1, Payload: mtntest.Identity("a##walk_sit", "doggo", "DRX-1000")},
		mtntest.Block{Number: 2, Payload: mtntest.Joints("PRM:1001", "PRM:1002")},
		mtntest.Block{Number: 3, Payload: mtntest.Keyframes(false, []int32{-5, 7}, []int32{123456, -654321}, []int32{0, 1570796})},
	)
	src := parse(t, in)

	var out bytes.Buffer
	if _, err := New().Convert(bytes.NewReader(in), &out, "ERS-7"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	dst := parse(t, out.Bytes())
	if dst.Header != src.Header || dst.Magic != src.Magic {
		t.Fatalf("block 0 changed")
	}
	if !reflect.DeepEqual(dst.Identity(), src.Identity()) {
		t.Fatalf("identity changed: %+v", dst.Identity())
	}
	if !reflect.DeepEqual(codes(dst.Joints()), codes(src.Joints())) {
		t.Fatalf("joints changed")
	}
	if !reflect.DeepEqual(dst.Keyframes().Frames, src.Keyframes().Frames) {
		t.Fatalf("keyframes changed")
	}
}

func TestConvertToOwnPlatformSkipsRetargeting(t *testing.T) {
	t.Parallel()

	c := New()
	c.Poses = tables.Static{"ERS-7": &pose.Catalog{Poses: []pose.Pose{
		{Name: "Sit", JointPositions: []pose.JointPosition{{AngleDegrees: 2}, {AngleDegrees: 88}}},
	}}}
	in := mtntest.Scenario()
	var out bytes.Buffer
	res, err := c.Convert(bytes.NewReader(in), &out, "ERS-7")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if res.Retargeting || len(res.Substitutions) != 0 {
		t.Fatalf("own-platform conversion retargeted: %+v", res.Substitutions)
	}
	if !reflect.DeepEqual(parse(t, out.Bytes()).Keyframes().Frames, parse(t, in).Keyframes().Frames) {
		t.Fatalf("keyframes changed")
	}
}

func TestConvertToleranceZeroIsExact(t *testing.T) {
	t.Parallel()

	c := retargetConverter()
	c.Tolerance = 0
	var out bytes.Buffer
	res, err := c.Convert(bytes.NewReader(mtntest.Scenario()), &out, "ERS-210")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	// 1570796 urad is just short of 90 degrees.
	if len(res.Substitutions) != 0 {
		t.Fatalf("zero tolerance should reject near matches: %+v", res.Substitutions)
	}

	c.Tolerance = -1
	out.Reset()
	if res, err = c.Convert(bytes.NewReader(mtntest.Scenario()), &out, "ERS-210"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(res.Substitutions) != 3 {
		t.Fatalf("negative tolerance should use the default: %+v", res.Substitutions)
	}
}

func retargetConverter() *Converter {
	c := New()
	ers7 := &pose.Catalog{Poses: []pose.Pose{
		{Name: "Sleep", JointPositions: []pose.JointPosition{{AngleDegrees: -40}, {AngleDegrees: -40}}},
		{Name: "Sit", JointPositions: []pose.JointPosition{{AngleDegrees: 0}, {AngleDegrees: 90}}},
	}}
	a, b, extra := int32(100), int32(200), int32(300)
	ers210 := &pose.Catalog{Poses: []pose.Pose{
		{Name: "Sleep", JointPositions: []pose.JointPosition{{AngleDegrees: 1}}},
		{Name: "Sit", JointPositions: []pose.JointPosition{{AngleURad: &a}, {AngleURad: &b}, {AngleURad: &extra}}},
	}}
	c.Poses = tables.Static{"ERS-7": ers7, "ERS-210": ers210}
	return c
}

func TestConvertRetargetsMatchingKeyframes(t *testing.T) {
	t.Parallel()

	c := retargetConverter()
	var out bytes.Buffer
	res, err := c.Convert(bytes.NewReader(mtntest.Scenario()), &out, "ERS-210")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !res.Retargeting || len(res.Substitutions) != 3 {
		t.Fatalf("expected 3 substitutions, got %+v", res.Substitutions)
	}
	if res.Substitutions[0] != (pose.Substitution{Keyframe: 0, Pose: 1, Name: "Sit"}) {
		t.Fatalf("substitution: %+v", res.Substitutions[0])
	}
	for i, kf := range parse(t, out.Bytes()).Keyframes().Frames {
		if !reflect.DeepEqual(kf.Angles, []int32{100, 200}) {
			t.Fatalf("keyframe %d: %v", i, kf.Angles)
		}
		if kf.TimeDelta != uint32(i) {
			t.Fatalf("keyframe header must be kept: %+v", kf)
		}
	}
}

func TestConvertHeaderOnlyKeepsKeyframes(t *testing.T) {
	t.Parallel()

	c := retargetConverter()
	c.HeaderOnly = true
	var out bytes.Buffer
	res, err := c.Convert(bytes.NewReader(mtntest.Scenario()), &out, "ERS-210")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if res.Retargeting || len(res.Substitutions) != 0 {
		t.Fatalf("header-only must not retarget: %+v", res)
	}
	doc := parse(t, out.Bytes())
	if doc.Identity().Platform.Key() != "DRX-910" {
		t.Fatalf("platform not rewritten")
	}
	for _, kf := range doc.Keyframes().Frames {
		if !reflect.DeepEqual(kf.Angles, mtntest.ScenarioAngles) {
			t.Fatalf("angles changed: %v", kf.Angles)
		}
	}
}

func TestConvertMissingCatalogPassesThrough(t *testing.T) {
	t.Parallel()

	c := retargetConverter()
	var out bytes.Buffer
	res, err := c.Convert(bytes.NewReader(mtntest.Scenario()), &out, "ERS-310")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if res.Retargeting || len(res.Substitutions) != 0 {
		t.Fatalf("missing target catalog must disable retargeting")
	}
	if got := parse(t, out.Bytes()).Keyframes().Frames[1].Angles; !reflect.DeepEqual(got, mtntest.ScenarioAngles) {
		t.Fatalf("angles: %v", got)
	}
}

func TestConvertTranslatesJoints(t *testing.T) {
	t.Parallel()

	c := New()
	c.Translator = &joints.Translator{
		Joints:     joints.Map{"ERS-7": {"PRM:1001": "HeadTilt"}},
		Conversion: joints.Conversion{"HeadTilt": {"ERS-210": "PRM:Head1"}},
	}
	var out bytes.Buffer
	res, err := c.Convert(bytes.NewReader(mtntest.Scenario()), &out, "ERS-210")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got := codes(parse(t, out.Bytes()).Joints()); !reflect.DeepEqual(got, []string{"PRM:Head1", "PRM:1002"}) {
		t.Fatalf("joint codes: %v", got)
	}
	want := JointTranslation{Index: 0, From: "PRM:1001", Movement: "HeadTilt", To: "PRM:Head1"}
	if res.Joints[0] != want || res.Joints[1].Changed() {
		t.Fatalf("translations: %+v", res.Joints)
	}
}

func TestConvertStringTooLong(t *testing.T) {
	t.Parallel()

	c := New()
	c.Translator = &joints.Translator{
		Joints:     joints.Map{"ERS-7": {"PRM:1001": "HeadTilt"}},
		Conversion: joints.Conversion{"HeadTilt": {"ERS-210": strings.Repeat("x", 256)}},
	}
	var out bytes.Buffer
	res, err := c.Convert(bytes.NewReader(mtntest.Scenario()), &out, "ERS-210")
	if !errors.Is(err, mtn.ErrStringTooLong) {
		t.Fatalf("expected string too long, got %v", err)
	}
	if res == nil || res.Blocks != 1 {
		t.Fatalf("block 1 must have been written: %+v", res)
	}
	doc := parse(t, out.Bytes())
	if len(doc.Blocks) != 1 || doc.Identity() == nil {
		t.Fatalf("partial output: %d blocks", len(doc.Blocks))
	}
}

func TestConvertTruncatedKeepsWrittenBlocks(t *testing.T) {
	t.Parallel()

	in := mtntest.Scenario()
	in = in[:len(in)-6]
	var out bytes.Buffer
	res, err := New().Convert(bytes.NewReader(in), &out, "ERS-210")
	if !errors.Is(err, mtn.ErrTruncated) {
		t.Fatalf("expected truncation, got %v", err)
	}
	var be *mtn.BlockError
	if !errors.As(err, &be) || be.Index != 3 {
		t.Fatalf("expected block 3 error, got %v", err)
	}
	if res == nil || res.Blocks != 2 || res.BytesWritten != int64(out.Len()) {
		t.Fatalf("partial result: %+v", res)
	}
	doc := parse(t, out.Bytes())
	if len(doc.Blocks) != 2 || doc.Joints().Count() != 2 {
		t.Fatalf("partial output must hold blocks 1 and 2, got %d", len(doc.Blocks))
	}
}

func TestConvertSignatureMismatchWarns(t *testing.T) {
	t.Parallel()

	in := mtntest.Scenario()
	copy(in, "XMTN")
	var out bytes.Buffer
	res, err := New().Convert(bytes.NewReader(in), &out, "ERS-220")
	if err != nil {
		t.Fatalf("signature mismatch must not fail: %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if errors.Is(w.Err, mtn.ErrSignatureMismatch) {
			found = true
		}
	}
	if !found || len(res.WarningText()) == 0 {
		t.Fatalf("expected a signature warning, got %v", res.Warnings)
	}
	if string(out.Bytes()[:4]) != "XMTN" {
		t.Fatalf("magic must be copied as read")
	}
}
