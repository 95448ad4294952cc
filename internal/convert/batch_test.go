package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/mtnkit/internal/mtntest"
	"github.com/samcharles93/mtnkit/internal/platform"
	"github.com/samcharles93/mtnkit/internal/tables"
	"github.com/samcharles93/mtnkit/pkg/mtn"
)

func TestOutputPath(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"S2S.mtn":       "S2S_converted.mtn",
		"/a/b/walk.MTN": "/a/b/walk_converted.MTN",
		"motion":        "motion_converted.mtn",
		"dir.mtn/x.mtn": "dir.mtn/x_converted.mtn",
	}
	for in, want := range tests {
		if got := OutputPath(in); got != want {
			t.Errorf("OutputPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConvertFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var jobs []Job
	for _, name := range []string{"a.mtn", "b.mtn", "c.mtn"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, mtntest.Scenario(), 0o644); err != nil {
			t.Fatal(err)
		}
		jobs = append(jobs, Job{Input: p, Target: "ERS-110"})
	}
	jobs = append(jobs, Job{Input: filepath.Join(dir, "missing.mtn"), Target: "ERS-110"})
	jobs = append(jobs, Job{Input: jobs[0].Input, Target: "ERS-9"})

	results := New().ConvertFiles(context.Background(), jobs, 2)
	if len(results) != len(jobs) {
		t.Fatalf("results: %d", len(results))
	}
	for i := 0; i < 3; i++ {
		r := results[i]
		if r.Err != nil {
			t.Fatalf("job %d: %v", i, r.Err)
		}
		data, err := os.ReadFile(OutputPath(r.Job.Input))
		if err != nil {
			t.Fatalf("output %d: %v", i, err)
		}
		doc, err := mtn.Parse(bytes.NewReader(data), mtn.Options{})
		if err != nil || doc.Identity().Platform.Key() != "DRX-700" {
			t.Fatalf("output %d: %v %+v", i, err, doc)
		}
		if r.Result.OutputDigest != Digest(data) {
			t.Fatalf("digest mismatch for job %d", i)
		}
	}
	if !errors.Is(results[3].Err, os.ErrNotExist) {
		t.Fatalf("missing input: %v", results[3].Err)
	}
	if !errors.Is(results[4].Err, platform.ErrUnsupportedPlatform) {
		t.Fatalf("bad target: %v", results[4].Err)
	}

	err := Failed(results)
	if !errors.Is(err, os.ErrNotExist) || !errors.Is(err, platform.ErrUnsupportedPlatform) {
		t.Fatalf("joined error: %v", err)
	}
	if Failed(results[:3]) != nil {
		t.Fatalf("no failures expected in the first three jobs")
	}
}

func TestConvertFilesCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jobs := make([]Job, 32)
	for i := range jobs {
		jobs[i] = Job{Input: "x.mtn", Target: "ERS-7"}
	}
	for i, r := range New().ConvertFiles(ctx, jobs, 4) {
		if !errors.Is(r.Err, context.Canceled) {
			t.Fatalf("job %d: expected cancellation, got %v", i, r.Err)
		}
	}
}

func TestConvertFileRefusesOverwrite(t *testing.T) {
	t.Parallel()
	p := filepath.Join(t.TempDir(), "x.mtn")
	if _, err := New().ConvertFile(Job{Input: p, Output: p, Target: "ERS-7"}); err == nil {
		t.Fatal("expected overwrite error")
	}
}

func TestIdentifyAndCapture(t *testing.T) {
	t.Parallel()

	doc, err := mtn.Parse(bytes.NewReader(mtntest.Scenario()), mtn.Options{})
	if err != nil {
		t.Fatal(err)
	}
	c := New()
	captured, err := c.Capture(doc)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if captured.Len() != 3 || captured.Poses[2].Name != "Stand" {
		t.Fatalf("captured: %+v", captured)
	}
	if captured.Poses[0].JointPositions[0].JointName != "Unknown joint 1" {
		t.Fatalf("joint name: %+v", captured.Poses[0].JointPositions[0])
	}

	if _, err := c.Identify(doc); err == nil {
		t.Fatal("identify without catalogs must fail")
	}
	c.Poses = tables.Static{"ERS-7": captured}
	id, err := c.Identify(doc)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	// Every keyframe is identical, so every captured pose matches all three.
	if id.Platform != "ERS-7" || len(id.Hits) != 3 || len(id.Hits[1].Keyframes) != 3 || id.Hits[1].Name != "Sit" {
		t.Fatalf("identification: %+v", id)
	}

	if _, err := c.Identify(&mtn.Document{}); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
}
