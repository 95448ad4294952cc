package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mtnkit/internal/logger"
	"github.com/samcharles93/mtnkit/internal/tables"
)

func captureCmd() *cli.Command {
	var (
		opts tableOptions
		out  string
	)

	return &cli.Command{
		Name:      "capture",
		Usage:     "Write the keyframes of a reference motion as a pose catalog",
		ArgsUsage: "FILE",
		Flags: append(append(opts.decodeFlags(), opts.poseFlags()...),
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "catalog path (default: input with a .json extension)",
				Destination: &out,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("capture: exactly one MTN file is required", 1)
			}
			path := cmd.Args().First()
			log := logger.FromContext(ctx)
			applyTableConfig(cmd, cfg, &opts)
			conv, err := opts.converter(log)
			if err != nil {
				return err
			}
			doc, err := readDocument(conv, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			cat, err := conv.Capture(doc)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if out == "" {
				out = tables.SidecarPath(path)
			}
			if err := tables.SaveCatalog(out, cat); err != nil {
				return err
			}
			log.Info("pose catalog written", "file", out, "poses", cat.Len())
			return nil
		},
	}
}
