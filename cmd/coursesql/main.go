package main

import (
	"context"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(ctx)
	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Error("coursesql failed")
		stop()
		os.Exit(exitCode(err))
	}
}

func newApp(ctx context.Context) *cli.App {
	app := cli.NewApp()
	app.Name = "coursesql"
	app.Version = version
	app.Usage = "Generate SQL seed statements from a course curriculum table"

	var (
		configFile string
		verbose    bool
	)

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "course configuration file",
			Value:       "course.yaml",
			Destination: &configFile,
		},
		cli.BoolFlag{
			Name:        "verbose",
			Usage:       "log debug output",
			Destination: &verbose,
		},
	}

	app.Before = func(c *cli.Context) error {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
		return nil
	}

	cmd := &commands{ctx: ctx, configFile: &configFile}

	app.Action = func(c *cli.Context) error {
		return cmd.build(false)
	}

	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "Generate the statement files and runbook",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "force, f",
					Usage: "regenerate even when inputs are unchanged",
				},
			},
			Action: func(c *cli.Context) error {
				return cmd.build(c.Bool("force"))
			},
		},
		{
			Name:  "check",
			Usage: "Replay the statements against an in-memory replica of the target schema",
			Action: func(c *cli.Context) error {
				return cmd.check()
			},
		},
		{
			Name:  "inspect",
			Usage: "Show what the last build recorded",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "tag", Usage: "list lessons carrying a tag"},
				cli.StringFlag{Name: "chapter", Usage: "list the topics of a chapter"},
				cli.StringFlag{Name: "lesson", Usage: "show one lesson by code"},
				cli.IntFlag{Name: "runs", Usage: "number of runs to show", Value: 5},
			},
			Action: func(c *cli.Context) error {
				return cmd.inspect(inspectOptions{
					Tag:     c.String("tag"),
					Chapter: c.String("chapter"),
					Lesson:  c.String("lesson"),
					Runs:    c.Int("runs"),
				})
			},
		},
		{
			Name:  "fill",
			Usage: "Substitute exported topic ids into the placeholder lessons template",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "ids", Usage: "CSV export of the topic id query"},
			},
			Action: func(c *cli.Context) error {
				return cmd.fill(c.String("ids"))
			},
		},
		{
			Name:  "watch",
			Usage: "Rebuild whenever the configuration or the input table changes",
			Action: func(c *cli.Context) error {
				return cmd.watch()
			},
		},
	}
	return app
}
