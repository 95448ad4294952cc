package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mtnkit/internal/convert"
	"github.com/samcharles93/mtnkit/internal/logger"
	"github.com/samcharles93/mtnkit/internal/pose"
	"github.com/samcharles93/mtnkit/internal/tables"
	"github.com/samcharles93/mtnkit/pkg/mtn"
)

var (
	configFile string
	logLevel   string
	logFormat  string
	debug      bool

	// cfg is the loaded config file, set by setup before any action runs.
	cfg Config
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default: user config dir)",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// tableOptions are the lookup tables and codec settings a Converter is
// built from.
type tableOptions struct {
	platforms            string
	joints               string
	conversion           string
	posesDir             string
	tolerance            float64
	labels               []string
	layout               string
	framing              string
	lengthIncludesHeader bool
}

func (o *tableOptions) decodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "platforms",
			Usage:       "JSON object of internal code to public platform name (default: built-in table)",
			Destination: &o.platforms,
		},
		&cli.StringFlag{
			Name:        "joints",
			Aliases:     []string{"j"},
			Usage:       "JSON joint map: platform -> code -> movement name",
			Destination: &o.joints,
		},
		&cli.StringFlag{
			Name:        "keyframe-layout",
			Usage:       "keyframe header layout (auto, short, wide)",
			Value:       "auto",
			Destination: &o.layout,
		},
		&cli.BoolFlag{
			Name:        "length-includes-header",
			Usage:       "block_length counts the 8-byte block header",
			Destination: &o.lengthIncludesHeader,
		},
	}
}

func (o *tableOptions) poseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "poses-dir",
			Usage:       "directory of <platform>.json pose catalogs (env " + envPosesDir + ")",
			Destination: &o.posesDir,
		},
		&cli.Float64Flag{
			Name:        "tolerance",
			Usage:       "pose match tolerance in degrees (0 = exact match only)",
			Value:       pose.DefaultTolerance,
			Destination: &o.tolerance,
		},
		&cli.StringSliceFlag{
			Name:        "pose-labels",
			Usage:       "names for the reference keyframes, in order",
			Destination: &o.labels,
		},
	}
}

func (o *tableOptions) encodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "conversion",
			Usage:       "JSON conversion table: movement name -> platform -> code",
			Destination: &o.conversion,
		},
		&cli.StringFlag{
			Name:        "framing",
			Usage:       "block_length policy for rewritten blocks (recompute, preserve)",
			Value:       "recompute",
			Destination: &o.framing,
		},
	}
}

// converter loads the configured tables into a Converter.
func (o *tableOptions) converter(log logger.Logger) (*convert.Converter, error) {
	conv := convert.New()
	conv.Log = log

	if o.platforms != "" {
		t, err := tables.LoadPlatforms(o.platforms)
		if err != nil {
			return nil, err
		}
		conv.Platforms = t
	}
	tr, err := tables.LoadTranslator(o.joints, o.conversion)
	if err != nil {
		return nil, err
	}
	conv.Translator = tr
	if dir := resolvePosesDir(o.posesDir); dir != "" {
		conv.Poses = tables.NewPoseDir(dir)
	}

	layout, err := mtn.ParseKeyframeLayout(o.layout)
	if err != nil {
		return nil, err
	}
	framing, err := mtn.ParseFraming(o.framing)
	if err != nil {
		return nil, err
	}
	conv.Decode = mtn.Options{Layout: layout, LengthIncludesHeader: o.lengthIncludesHeader}
	conv.Encode = mtn.EncoderOptions{Framing: framing, LengthIncludesHeader: o.lengthIncludesHeader}

	conv.Tolerance = o.tolerance
	if len(o.labels) > 0 {
		conv.Labels = pose.Labels(o.labels)
	}
	return conv, nil
}
