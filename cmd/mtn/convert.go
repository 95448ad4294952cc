package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mtnkit/internal/convert"
	"github.com/samcharles93/mtnkit/internal/logger"
)

func convertCmd() *cli.Command {
	var (
		opts       tableOptions
		target     string
		out        string
		headerOnly bool
		workers    int
	)

	flags := append(append(opts.decodeFlags(), opts.poseFlags()...), opts.encodeFlags()...)
	return &cli.Command{
		Name:      "convert",
		Usage:     "Retarget MTN files to another platform",
		ArgsUsage: "FILE...",
		Flags: append(flags,
			&cli.StringFlag{
				Name:        "target",
				Aliases:     []string{"t"},
				Usage:       "public name of the target platform",
				Destination: &target,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output file, or directory for several inputs (default: <input>_converted.mtn)",
				Destination: &out,
			},
			&cli.BoolFlag{
				Name:        "header-only",
				Usage:       "rewrite platform and joint codes only, keep keyframes as they are",
				Destination: &headerOnly,
			},
			&cli.IntFlag{
				Name:        "workers",
				Usage:       "files converted in parallel (default: GOMAXPROCS)",
				Destination: &workers,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return cli.Exit("convert: at least one MTN file is required", 1)
			}
			log := logger.FromContext(ctx)
			applyTableConfig(cmd, cfg, &opts)
			applyConvertConfig(cmd, cfg, &workers)
			conv, err := opts.converter(log)
			if err != nil {
				return err
			}
			conv.HeaderOnly = headerOnly
			// Fail before any file is created.
			if err := conv.PlatformTable().Validate(target); err != nil {
				return cli.Exit(err, 1)
			}

			inputs := cmd.Args().Slice()
			outputs, err := resolveOutputs(inputs, out)
			if err != nil {
				return cli.Exit(err, 1)
			}
			jobs := make([]convert.Job, len(inputs))
			for i, in := range inputs {
				jobs[i] = convert.Job{Input: in, Output: outputs[i], Target: target}
			}

			results := conv.ConvertFiles(ctx, jobs, workers)
			for _, r := range results {
				if r.Result == nil {
					continue
				}
				status := "ok"
				if r.Err != nil {
					status = "partial"
				}
				fmt.Printf("%s -> %s [%s] %s -> %s, %d joints translated, %d keyframes retargeted\n",
					r.Job.Input, r.Job.Output, status, r.Result.SourcePublic, r.Result.Target,
					r.Result.TranslatedJoints(), len(r.Result.Substitutions))
			}
			if err := convert.Failed(results); err != nil {
				return cli.Exit(err, 1)
			}
			return nil
		},
	}
}
