package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mtnkit/internal/convert"
	"github.com/samcharles93/mtnkit/internal/logger"
	"github.com/samcharles93/mtnkit/internal/report"
	"github.com/samcharles93/mtnkit/pkg/mtn"
)

func infoCmd() *cli.Command {
	var (
		opts   tableOptions
		asJSON bool
	)

	return &cli.Command{
		Name:      "info",
		Aliases:   []string{"inspect"},
		Usage:     "Print every parsed field of one or more MTN files",
		ArgsUsage: "FILE...",
		Flags: append(opts.decodeFlags(),
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of text", Destination: &asJSON},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return cli.Exit("info: at least one MTN file is required", 1)
			}
			log := logger.FromContext(ctx)
			applyTableConfig(cmd, cfg, &opts)
			conv, err := opts.converter(log)
			if err != nil {
				return err
			}

			var failed []error
			for _, path := range cmd.Args().Slice() {
				info, err := inspectFile(conv, path)
				if info == nil {
					log.Error("cannot read motion", "file", path, "error", err)
					failed = append(failed, err)
					continue
				}
				if asJSON {
					err = report.WriteJSON(os.Stdout, info)
				} else {
					err = report.WriteText(os.Stdout, info)
				}
				if err != nil {
					return err
				}
				if info.ParseError != "" {
					failed = append(failed, errors.New(path+": "+info.ParseError))
				}
			}
			if len(failed) > 0 {
				return cli.Exit(errors.Join(failed...), 1)
			}
			return nil
		},
	}
}

// readDocument decodes path. A partially decoded document is returned with
// the error that stopped it.
func readDocument(conv *convert.Converter, path string) (*mtn.Document, error) {
	f, err := mtn.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mtn.Parse(f.Reader(), conv.Decode)
}

func inspectFile(conv *convert.Converter, path string) (*report.Info, error) {
	doc, err := readDocument(conv, path)
	if doc == nil {
		return nil, err
	}
	info := report.Build(doc, err, conv.PlatformTable(), conv.Translator)
	info.File = path
	return info, err
}
