package salvage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	want := &Config{
		Parser:  ParserJava,
		Include: []string{"**/*.java"},
		Recovery: RecoveryConfig{
			Rounds:     DefaultRounds,
			Strategies: DefaultStrategyNames,
		},
	}

	if diff := cmp.Diff(want, DefaultConfig()); diff != "" {
		t.Errorf("DefaultConfig() mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfig_WalksUp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".salvage.yaml"), `
parser: java
exclude: ["build/**"]
recovery:
  rounds: 3
  strategies: [quote, braces]
  skip:
    - 'message contains "deprecated"'
`)

	nested := filepath.Join(root, "src", "main", "java")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := LoadConfig(nested)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Dir)
	assert.Equal(t, 3, cfg.Recovery.Rounds)
	assert.Equal(t, []string{"quote", "braces"}, cfg.Recovery.Strategies)
	assert.Equal(t, []string{`message contains "deprecated"`}, cfg.Recovery.Skip)
	assert.Equal(t, []string{"**/*.java"}, cfg.Include)
}

func TestLoadConfig_NotFound(t *testing.T) {
	t.Parallel()

	_, err := FindConfig(t.TempDir())

	// A config further up the real filesystem would make this flaky.
	if err == nil {
		t.Skip("found a config above the temp dir")
	}

	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "yaml", content: "recovery: [\n"},
		{name: "rounds", content: "recovery:\n  rounds: -1\n"},
		{name: "strategy", content: "recovery:\n  strategies: [semicolons]\n"},
		{name: "glob", content: "include: [\"src/[\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), ".salvage.yaml")
			writeFile(t, path, tt.content)

			_, err := LoadConfigFile(path)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfig_Matches(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Dir = "/work"
	cfg.Exclude = []string{"build/**", "**/*Test.java"}

	tests := []struct {
		path string
		want bool
	}{
		{path: "/work/src/A.java", want: true},
		{path: "src/A.java", want: true},
		{path: "/work/build/gen/A.java", want: false},
		{path: "/work/src/ATest.java", want: false},
		{path: "/work/src/A.kt", want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.Matches(tt.path), tt.path)
	}
}
