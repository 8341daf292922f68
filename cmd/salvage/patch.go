package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/salvage/recovery"
)

func patchCommand() *cli.Command {
	return &cli.Command{
		Name:      "patch",
		Usage:     "Recover one file and print the patched text",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "write the patched text back to the file",
			},
			&cli.IntFlag{
				Name:    "rounds",
				Aliases: []string{"r"},
				Usage:   "recovery passes to run (default: from config)",
			},
			&cli.BoolFlag{
				Name:  "diff",
				Usage: "print a summary of patched lines to stderr",
			},
		},
		Action: runPatch,
	}
}

func runPatch(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return ErrPatchArgs
	}

	path := cmd.Args().First()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	defer func() { _ = logger.Sync() }()

	driver, err := recovery.NewDriverFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	source := string(data)
	stdout, stderr := cmd.Root().Writer, cmd.Root().ErrWriter

	first := driver.Parser().Parse(path, source)
	if first.OK() {
		logger.Info("file already parses", zap.String("file", path))

		if !cmd.Bool("write") {
			_, _ = io.WriteString(stdout, source)
		}

		return nil
	}

	outcome, err := driver.RecoverRounds(path, source, first.Diagnostics, rounds(cmd, cfg))
	if err != nil {
		return fmt.Errorf("recovering %s: %w", path, err)
	}

	if cmd.Bool("diff") {
		printPatches(stderr, path, outcome.Patches)
	}

	if cmd.Bool("write") {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		err = os.WriteFile(path, []byte(outcome.Patched), info.Mode().Perm())
		if err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	} else {
		_, _ = io.WriteString(stdout, outcome.Patched)
	}

	if !outcome.Result.OK() {
		for _, d := range outcome.Result.Diagnostics {
			_, _ = fmt.Fprintf(stderr, "%s: %s\n", path, d)
		}

		return fmt.Errorf("%w: %s", ErrUnrecovered, path)
	}

	return nil
}

// printPatches writes one entry per patched line.
func printPatches(w io.Writer, path string, patches []recovery.Patch) {
	for _, p := range patches {
		_, _ = fmt.Fprintf(w, "%s:%d: %s (%s)\n", path, p.Line, p.Strategy, p.Decision)
		_, _ = fmt.Fprintf(w, "  - %s\n", p.Before)
		_, _ = fmt.Fprintf(w, "  + %s\n", p.After)

		if p.Drift > 0 {
			_, _ = fmt.Fprintf(w, "  columns after this line shift by %d\n", p.Drift)
		}
	}
}
