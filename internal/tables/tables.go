// Package tables loads the JSON lookup tables that drive a conversion: the
// platform list, joint map, conversion table and per-platform pose catalogs.
package tables

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/samcharles93/mtnkit/internal/joints"
	"github.com/samcharles93/mtnkit/internal/platform"
	"github.com/samcharles93/mtnkit/internal/pose"
)

// ErrNoCatalog reports that no pose catalog exists for a platform.
var ErrNoCatalog = errors.New("no pose catalog")

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// LoadPlatforms reads {"internal code": "public name"} pairs and builds a
// platform table from them.
func LoadPlatforms(path string) (*platform.Table, error) {
	var raw map[string]string
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(raw))
	for code := range raw {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	pairs := make([]platform.Pair, 0, len(codes))
	for _, code := range codes {
		pairs = append(pairs, platform.Pair{Code: code, Name: raw[code]})
	}
	t, err := platform.New(pairs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadJoints reads {platform: {code: movement}}.
func LoadJoints(path string) (joints.Map, error) {
	var m joints.Map
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadConversion reads {movement: {platform: code}}.
func LoadConversion(path string) (joints.Conversion, error) {
	var c joints.Conversion
	if err := readJSON(path, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadTranslator loads both joint tables. An empty path yields an empty table,
// which makes every lookup fall back to the original code.
func LoadTranslator(jointsPath, conversionPath string) (*joints.Translator, error) {
	tr := &joints.Translator{}
	var err error
	if jointsPath != "" {
		if tr.Joints, err = LoadJoints(jointsPath); err != nil {
			return nil, fmt.Errorf("joint map: %w", err)
		}
	}
	if conversionPath != "" {
		if tr.Conversion, err = LoadConversion(conversionPath); err != nil {
			return nil, fmt.Errorf("conversion table: %w", err)
		}
	}
	return tr, nil
}

// LoadCatalog reads one pose catalog.
func LoadCatalog(path string) (*pose.Catalog, error) {
	var c pose.Catalog
	if err := readJSON(path, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveCatalog writes c with four-space indentation.
func SaveCatalog(path string, c *pose.Catalog) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// SidecarPath is the capture output for a motion file: the input path with
// its extension replaced by .json.
func SidecarPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".json"
}

// PoseDir serves catalogs stored as <Root>/<platform>.json. Loaded catalogs
// are cached and shared read-only; PoseDir is safe for concurrent use.
type PoseDir struct {
	Root string

	mu    sync.Mutex
	cache map[string]*pose.Catalog
}

// NewPoseDir returns a catalog source rooted at dir.
func NewPoseDir(dir string) *PoseDir {
	return &PoseDir{Root: dir}
}

// Catalog returns the catalog for platform, or an error wrapping ErrNoCatalog
// when the file does not exist.
func (d *PoseDir) Catalog(platformName string) (*pose.Catalog, error) {
	if d == nil || d.Root == "" {
		return nil, fmt.Errorf("%w for %s: no pose directory configured", ErrNoCatalog, platformName)
	}
	if platformName == "" || strings.ContainsAny(platformName, `/\`) || platformName == "." || platformName == ".." {
		return nil, fmt.Errorf("%w for %q: invalid platform name", ErrNoCatalog, platformName)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.cache[platformName]; ok {
		return c, nil
	}
	c, err := LoadCatalog(filepath.Join(d.Root, platformName+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w for %s", ErrNoCatalog, platformName)
	}
	if err != nil {
		return nil, err
	}
	if d.cache == nil {
		d.cache = make(map[string]*pose.Catalog)
	}
	d.cache[platformName] = c
	return c, nil
}

// Static is an in-memory catalog source keyed by public platform name.
type Static map[string]*pose.Catalog

func (s Static) Catalog(platformName string) (*pose.Catalog, error) {
	if c, ok := s[platformName]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w for %s", ErrNoCatalog, platformName)
}
