package salvage

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config represents the .salvage.yaml configuration file.
type Config struct {
	// Parser is the registered parser used for every matched file.
	Parser string `yaml:"parser,omitempty"`

	// Include and Exclude are doublestar globs relative to the config directory.
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`

	Recovery RecoveryConfig `yaml:"recovery,omitempty"`

	// Dir is the directory the config was loaded from. Empty for defaults.
	Dir string `yaml:"-"`
}

// RecoveryConfig holds settings for recovery passes.
type RecoveryConfig struct {
	// Rounds is how many recovery passes a caller performs at most.
	Rounds int `yaml:"rounds,omitempty"`

	// Strategies enables built-in strategies by name. Pipeline order is fixed
	// regardless of the order listed here.
	Strategies []string `yaml:"strategies,omitempty"`

	// Skip holds expr predicates; diagnostics matching any of them are ignored.
	Skip []string `yaml:"skip,omitempty"`
}

// DefaultRounds is the number of recovery passes when none is configured.
const DefaultRounds = 1

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".salvage.yaml", ".salvage.yml", "salvage.yaml", "salvage.yml"}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()

	return cfg
}

func (c *Config) applyDefaults() {
	if c.Parser == "" {
		c.Parser = ParserJava
	}

	if len(c.Include) == 0 {
		c.Include = []string{"**/*.java"}
	}

	if c.Recovery.Rounds == 0 {
		c.Recovery.Rounds = DefaultRounds
	}

	if len(c.Recovery.Strategies) == 0 {
		c.Recovery.Strategies = slices.Clone(DefaultStrategyNames)
	}
}

// Validate checks field values that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Recovery.Rounds < 1 {
		return fmt.Errorf("%w: recovery.rounds must be at least 1, got %d", ErrInvalidConfig, c.Recovery.Rounds)
	}

	for _, name := range c.Recovery.Strategies {
		if !slices.Contains(DefaultStrategyNames, name) {
			return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, name)
		}
	}

	for _, pattern := range slices.Concat(c.Include, c.Exclude) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: bad glob %q", ErrInvalidConfig, pattern)
		}
	}

	return nil
}

// Matches reports whether path is selected by Include and not by Exclude.
// Relative paths are taken relative to Dir.
func (c *Config) Matches(path string) bool {
	rel := path
	if c.Dir != "" && filepath.IsAbs(path) {
		r, err := filepath.Rel(c.Dir, path)
		if err == nil {
			rel = r
		}
	}

	rel = filepath.ToSlash(rel)

	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}

	for _, pattern := range c.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}

	return false
}

// LoadConfig finds and loads the nearest .salvage.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg.applyDefaults()

	cfg.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
