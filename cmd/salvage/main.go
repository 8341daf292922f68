// Command salvage patches source files that a parser rejects so they parse.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rlch/salvage"
	_ "github.com/rlch/salvage/javalite"
	"github.com/rlch/salvage/recovery"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "salvage",
		Usage: "Recover source files that fail to parse",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to .salvage.yaml (default: nearest one above the working directory)",
				Sources: cli.EnvVars("SALVAGE_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			patchCommand(),
			checkCommand(),
			parsersCommand(),
			strategiesCommand(),
		},
	}
}

// newLogger builds a development logger writing to stderr.
func newLogger(cmd *cli.Command) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	if cmd.Bool("debug") {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return config.Build()
}

func parsersCommand() *cli.Command {
	return &cli.Command{
		Name:  "parsers",
		Usage: "List registered parsers",
		Action: func(_ context.Context, cmd *cli.Command) error {
			for _, name := range salvage.RegisteredParsers() {
				_, _ = fmt.Fprintln(cmd.Root().Writer, name)
			}

			return nil
		},
	}
}

func strategiesCommand() *cli.Command {
	return &cli.Command{
		Name:  "strategies",
		Usage: "List recovery strategies in pipeline order",
		Action: func(_ context.Context, cmd *cli.Command) error {
			for _, s := range recovery.DefaultStrategies() {
				_, _ = fmt.Fprintf(cmd.Root().Writer, "%-12s %s\n", s.Name, s.Doc)
			}

			return nil
		},
	}
}
