package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/boyter/gocodewalker"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/rlch/salvage"
	"github.com/rlch/salvage/recovery"
	"github.com/rlch/salvage/runner"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Parse files, recover failures, and report which still fail",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format: dots, verbose, json, tui (default: tui on a terminal, else dots)",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "stop on first unrecovered file",
			},
			&cli.IntFlag{
				Name:    "rounds",
				Aliases: []string{"r"},
				Usage:   "recovery passes per file (default: from config)",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "files processed at once (default: GOMAXPROCS)",
			},
		},
		Action: runCheck,
	}
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		args = []string{"."}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	files, err := collectSourceFiles(cfg, args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return ErrNoSourceFiles
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

	stdout, stderr := cmd.Root().Writer, cmd.Root().ErrWriter

	format := cmd.String("format")
	if format == "" {
		format = salvage.FormatDots
		if f, ok := stdout.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			format = salvage.FormatTUI
		}
	}

	var handler interface {
		runner.Handler
		runner.Summarizer
	}

	if format == salvage.FormatTUI {
		tui := runner.NewTUIHandler(stdout, stderr)
		tui.SetFiles(files)

		err := tui.Start()
		if err != nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}

		handler = tui
	} else {
		handler = runner.NewFormatHandler(runner.NewFormatter(format, stdout), stderr)
	}

	r := runner.New(
		runner.WithDriver(driver),
		runner.WithHandler(handler),
		runner.WithFailFast(cmd.Bool("fail-fast")),
		runner.WithRounds(rounds(cmd, cfg)),
		runner.WithJobs(cmd.Int("jobs")),
		runner.WithLogger(logger),
	)

	result, err := r.Run(ctx, files)
	if result != nil {
		_ = handler.Summary(result)
	}

	if err != nil {
		return err
	}

	if !result.Ok() {
		return fmt.Errorf("%w: %d of %d", ErrUnrecovered, result.Failures(), result.Total)
	}

	return nil
}

// collectSourceFiles expands args into files. Directories are walked with
// .gitignore support and filtered by the config's include and exclude globs;
// files named explicitly are always kept.
func collectSourceFiles(cfg *salvage.Config, args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = walkDir(arg, func(path string) {
			abs, err := filepath.Abs(path)
			if err == nil && cfg.Matches(abs) {
				files = append(files, path)
			}
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(files)

	return slices.Compact(files), nil
}

// walkDir walks a directory, respecting .gitignore. callback runs on a single
// goroutine.
func walkDir(root string, callback func(path string)) error {
	fileListQueue := make(chan *gocodewalker.File, 100)

	fileWalker := gocodewalker.NewFileWalker(root, fileListQueue)

	var walkErr error

	fileWalker.SetErrorHandler(func(e error) bool {
		walkErr = e
		return true
	})

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for f := range fileListQueue {
			callback(f.Location)
		}
	}()

	if err := fileWalker.Start(); err != nil {
		return err
	}

	wg.Wait()

	return walkErr
}
