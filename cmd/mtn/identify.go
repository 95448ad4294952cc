package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mtnkit/internal/logger"
	"github.com/samcharles93/mtnkit/internal/report"
)

func identifyCmd() *cli.Command {
	var (
		opts   tableOptions
		asJSON bool
	)

	return &cli.Command{
		Name:      "identify",
		Usage:     "List which catalog poses occur in the keyframes of an MTN file",
		ArgsUsage: "FILE",
		Flags: append(append(opts.decodeFlags(), opts.poseFlags()...),
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of text", Destination: &asJSON},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("identify: exactly one MTN file is required", 1)
			}
			path := cmd.Args().First()
			applyTableConfig(cmd, cfg, &opts)
			conv, err := opts.converter(logger.FromContext(ctx))
			if err != nil {
				return err
			}
			doc, err := readDocument(conv, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			id, err := conv.Identify(doc)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if asJSON {
				return report.WriteJSON(os.Stdout, id)
			}

			fmt.Printf("%s (%s)\n", path, id.Platform)
			if len(id.Hits) == 0 {
				fmt.Println("  no catalog pose matched")
				return nil
			}
			for _, h := range id.Hits {
				frames := make([]string, len(h.Keyframes))
				for i, k := range h.Keyframes {
					frames[i] = fmt.Sprint(k + 1)
				}
				fmt.Printf("  %-12s keyframes %s\n", h.Name, strings.Join(frames, ", "))
			}
			return nil
		},
	}
}
