package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mtnkit/internal/logger"
	"github.com/samcharles93/mtnkit/internal/report"
)

type platformRow struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func platformsCmd() *cli.Command {
	var (
		opts   tableOptions
		asJSON bool
	)

	return &cli.Command{
		Name:  "platforms",
		Usage: "List the supported target platforms",
		Flags: append(opts.decodeFlags(),
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of text", Destination: &asJSON},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyTableConfig(cmd, cfg, &opts)
			conv, err := opts.converter(logger.FromContext(ctx))
			if err != nil {
				return err
			}
			names := conv.PlatformTable().PublicNames()
			rows := make([]platformRow, len(names))
			for i, n := range names {
				rows[i] = platformRow{Name: n, Code: conv.PlatformTable().InternalCode(n)}
			}
			if asJSON {
				return report.WriteJSON(os.Stdout, rows)
			}
			for _, r := range rows {
				fmt.Printf("%-12s %s\n", r.Name, r.Code)
			}
			return nil
		},
	}
}
