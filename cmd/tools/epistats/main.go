// Command epistats cleans the raw case and population exports, renders the
// figures and publishes country summaries.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/epistats/epistats/internal/figures"
	"github.com/epistats/epistats/internal/logging"
	"github.com/urfave/cli/v2"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		logging.Global().Error("Command failed", "args", os.Args[1:], "error", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	e := &env{}

	return &cli.App{
		Name:    "epistats",
		Usage:   "measles incidence and CV statistics",
		Version: fmt.Sprintf("%s (%s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
				EnvVars: []string{"EPISTATS_CONFIG"},
			},
		},
		Before: e.setup,
		Commands: []*cli.Command{
			{
				Name:   "clean",
				Usage:  "clean the raw WHO and World Bank exports into wide tables",
				Action: e.clean,
			},
			{
				Name:   "fig1",
				Usage:  "render Fig1: CV vs mean incidence by region",
				Action: e.figure((*figures.Renderer).Fig1),
			},
			{
				Name:   "s1",
				Usage:  "render S1: incidence, window weights and mean incidence",
				Action: e.figure((*figures.Renderer).S1),
			},
			{
				Name:   "s2",
				Usage:  "render S2: injected outbreak and CV smoothing",
				Action: e.figure((*figures.Renderer).S2),
			},
			{
				Name:   "s3",
				Usage:  "render S3: CV vs mean incidence traces",
				Action: e.figure((*figures.Renderer).S3),
			},
			{
				Name:  "country",
				Usage: "plot the case series of one country",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "country",
						Value: "Malawi",
						Usage: "country name or ISO-3 code",
					},
				},
				Action: e.country,
			},
			{
				Name:   "figures",
				Usage:  "render every figure",
				Action: e.allFigures,
			},
			{
				Name:  "publish",
				Usage: "compute, store and publish the summary of every country",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "region",
						Usage: "restrict the run to one WHO region (e.g. AFR)",
					},
				},
				Action: e.publish,
			},
		},
	}
}
