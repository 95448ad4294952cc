package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mtnkit/internal/api"
	"github.com/samcharles93/mtnkit/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		opts        tableOptions
		addr        string
		readTimeout time.Duration
		keep        int
	)

	flags := append(append(opts.decodeFlags(), opts.poseFlags()...), opts.encodeFlags()...)
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the conversion API over HTTP",
		Flags: append(flags,
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.IntFlag{
				Name:        "keep",
				Usage:       "number of conversions kept for later download",
				Value:       api.DefaultStoreSize,
				Destination: &keep,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyTableConfig(cmd, cfg, &opts)
			applyServeConfig(cmd, cfg, &addr)
			conv, err := opts.converter(log.WithGroup("convert"))
			if err != nil {
				return err
			}

			server := api.NewServer(conv, api.NewConversionStore(keep), log)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "platforms", len(conv.PlatformTable().PublicNames()))
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
