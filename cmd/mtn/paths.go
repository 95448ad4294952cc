package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samcharles93/mtnkit/internal/convert"
)

const envPosesDir = "MTN_POSES_DIR"

// resolvePosesDir returns the pose catalog directory from the flag, then the
// environment. An empty result disables retargeting.
func resolvePosesDir(flag string) string {
	if dir := strings.TrimSpace(flag); dir != "" {
		return filepath.Clean(dir)
	}
	if dir := strings.TrimSpace(os.Getenv(envPosesDir)); dir != "" {
		return filepath.Clean(dir)
	}
	return ""
}

// resolveOutputs picks an output path per input. Without --out each output is
// a sibling named by convert.OutputPath. With several inputs --out must be a
// directory; with one it may also be a file path.
func resolveOutputs(inputs []string, out string) ([]string, error) {
	out = strings.TrimSpace(out)
	paths := make([]string, len(inputs))
	if out == "" {
		for i, in := range inputs {
			paths[i] = convert.OutputPath(in)
		}
		return paths, nil
	}

	isDir := strings.HasSuffix(out, "/") || strings.HasSuffix(out, string(filepath.Separator))
	if st, err := os.Stat(out); err == nil && st.IsDir() {
		isDir = true
	}
	if !isDir && len(inputs) > 1 {
		return nil, fmt.Errorf("--out %q must be a directory when converting %d files", out, len(inputs))
	}

	dir := filepath.Dir(filepath.Clean(out))
	if isDir {
		dir = filepath.Clean(out)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	for i, in := range inputs {
		if isDir {
			paths[i] = filepath.Join(dir, filepath.Base(convert.OutputPath(in)))
		} else {
			paths[i] = filepath.Clean(out)
		}
	}
	return paths, nil
}
