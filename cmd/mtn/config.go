package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the mtn configuration file (~/.config/mtnkit/config.yaml).
// Scalar overrides are pointers so "not set" differs from the zero value.
type Config struct {
	// Lookup tables
	Platforms  string   `yaml:"platforms"`
	Joints     string   `yaml:"joints"`
	Conversion string   `yaml:"conversion"`
	PosesDir   string   `yaml:"poses_dir"`
	PoseLabels []string `yaml:"pose_labels"`
	Tolerance  *float64 `yaml:"tolerance"`

	// Codec
	KeyframeLayout       string `yaml:"keyframe_layout"`
	Framing              string `yaml:"framing"`
	LengthIncludesHeader *bool  `yaml:"length_includes_header"`

	// Batch conversion
	Workers *int `yaml:"workers"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mtnkit", "config.yaml")
}

// LoadConfig reads the config file at path, or at the default location when
// path is empty. A missing default file yields a zero Config; a missing
// explicit file is an error.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
	}
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// applyLogConfig applies config file defaults to the global logging flags.
func applyLogConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyTableConfig applies config file defaults to o when the corresponding
// flag was not set on the command line.
func applyTableConfig(c *cli.Command, cfg Config, o *tableOptions) {
	if cfg.Platforms != "" && !c.IsSet("platforms") {
		o.platforms = cfg.Platforms
	}
	if cfg.Joints != "" && !c.IsSet("joints") {
		o.joints = cfg.Joints
	}
	if cfg.Conversion != "" && !c.IsSet("conversion") {
		o.conversion = cfg.Conversion
	}
	if cfg.PosesDir != "" && !c.IsSet("poses-dir") {
		o.posesDir = cfg.PosesDir
	}
	if len(cfg.PoseLabels) > 0 && !c.IsSet("pose-labels") {
		o.labels = cfg.PoseLabels
	}
	if cfg.Tolerance != nil && !c.IsSet("tolerance") {
		o.tolerance = *cfg.Tolerance
	}
	if cfg.KeyframeLayout != "" && !c.IsSet("keyframe-layout") {
		o.layout = cfg.KeyframeLayout
	}
	if cfg.Framing != "" && !c.IsSet("framing") {
		o.framing = cfg.Framing
	}
	if cfg.LengthIncludesHeader != nil && !c.IsSet("length-includes-header") {
		o.lengthIncludesHeader = *cfg.LengthIncludesHeader
	}
}

// applyConvertConfig applies config file defaults to the convert command.
func applyConvertConfig(c *cli.Command, cfg Config, workers *int) {
	if cfg.Workers != nil && !c.IsSet("workers") {
		*workers = *cfg.Workers
	}
}

// applyServeConfig applies config file defaults to the serve command.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
