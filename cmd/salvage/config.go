package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/rlch/salvage"
)

// CLI errors.
var (
	ErrNoSourceFiles = errors.New("no source files found")
	ErrUnrecovered   = errors.New("some files still fail to parse")
	ErrPatchArgs     = errors.New("patch takes exactly one file")
)

// loadConfig loads --config, or the nearest config above the working
// directory, or the defaults rooted at the working directory.
func loadConfig(cmd *cli.Command) (*salvage.Config, error) {
	if path := cmd.String("config"); path != "" {
		cfg, err := salvage.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}

		return cfg, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}

	cfg, err := salvage.LoadConfig(cwd)
	if errors.Is(err, salvage.ErrConfigNotFound) {
		cfg = salvage.DefaultConfig()
		cfg.Dir, err = filepath.Abs(cwd)
	}

	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// rounds returns --rounds when set, else the configured value.
func rounds(cmd *cli.Command, cfg *salvage.Config) int {
	if cmd.IsSet("rounds") {
		return cmd.Int("rounds")
	}

	return cfg.Recovery.Rounds
}
