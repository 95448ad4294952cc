package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/samcharles93/mtnkit/pkg/mtn"
)

// OutputPath is the default destination for input: a sibling with
// "_converted" inserted before the .mtn extension.
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	if strings.EqualFold(ext, ".mtn") {
		return strings.TrimSuffix(input, ext) + "_converted" + ext
	}
	return input + "_converted.mtn"
}

// Job is one file conversion.
type Job struct {
	Input  string
	Output string
	Target string
}

// JobResult pairs a job with its outcome. Result may be set even when Err is.
type JobResult struct {
	Job    Job
	Result *Result
	Err    error
}

// ConvertFile converts one file on disk. The output file is kept on a
// mid-stream failure so the blocks that were written remain inspectable.
func (c *Converter) ConvertFile(job Job) (*Result, error) {
	if err := c.platforms().Validate(job.Target); err != nil {
		return nil, err
	}
	if job.Output == "" {
		job.Output = OutputPath(job.Input)
	}
	if filepath.Clean(job.Output) == filepath.Clean(job.Input) {
		return nil, fmt.Errorf("output %s would overwrite the input", job.Output)
	}

	in, err := mtn.Open(job.Input)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	out, err := os.Create(job.Output)
	if err != nil {
		return nil, err
	}
	res, convErr := c.Convert(in.Reader(), out, job.Target)
	if err := out.Close(); err != nil && convErr == nil {
		convErr = err
	}
	return res, convErr
}

// ConvertFiles runs jobs on up to workers goroutines, each with its own input
// and output. Results are returned in job order. Cancelling ctx skips jobs
// that have not started.
func (c *Converter) ConvertFiles(ctx context.Context, jobs []Job, workers int) []JobResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]JobResult, len(jobs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, job := range jobs {
		results[i].Job = job
		// select picks at random when both cases are ready, so cancellation
		// is checked first.
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		select {
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			log := c.log().With("input", job.Input)
			res, err := c.ConvertFile(job)
			results[i].Result, results[i].Err = res, err
			if err != nil {
				log.Error("conversion failed", "error", err)
				return
			}
			log.Info("converted", "output", outputFor(job), "joints_translated", res.TranslatedJoints(), "keyframes_retargeted", len(res.Substitutions))
		}()
	}
	wg.Wait()
	return results
}

func outputFor(job Job) string {
	if job.Output != "" {
		return job.Output
	}
	return OutputPath(job.Input)
}

// Failed returns the joined errors of every failed job, or nil.
func Failed(results []JobResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Job.Input, r.Err))
		}
	}
	return errors.Join(errs...)
}
