package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cleanSource  = "class A {\n    void f() {\n        int x = 5;\n    }\n}\n"
	brokenSource = "class A {\n    void f() {\n        int x = 5\n    }\n}\n"
	fixedSource  = "class A {\n    void f() {\n       int x = 5;\n    }\n}\n"
)

// runApp runs the CLI with a config rooted at dir.
func runApp(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()

	cfgPath := filepath.Join(dir, ".salvage.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		require.NoError(t, os.WriteFile(cfgPath, []byte("parser: java\n"), 0o644))
	}

	var stdout, stderr bytes.Buffer

	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	argv := append([]string{"salvage", "--config", cfgPath}, args...)
	err := app.Run(context.Background(), argv)

	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestPatch_Clean(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "A.java", cleanSource)

	stdout, _, err := runApp(t, dir, "patch", path)
	require.NoError(t, err)
	assert.Equal(t, cleanSource, stdout)
}

func TestPatch_Recovered(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "A.java", brokenSource)

	stdout, stderr, err := runApp(t, dir, "patch", "--diff", path)
	require.NoError(t, err)
	assert.Equal(t, fixedSource, stdout)
	assert.Contains(t, stderr, "A.java:3: terminator (replace)")

	// Without --write the file is untouched.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, brokenSource, string(data))
}

func TestPatch_Write(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "A.java", brokenSource)

	stdout, _, err := runApp(t, dir, "patch", "--write", path)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fixedSource, string(data))
}

func TestPatch_Unrecovered(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "A.java", "class A {\n")

	_, stderr, err := runApp(t, dir, "patch", path)
	require.ErrorIs(t, err, ErrUnrecovered)
	assert.Contains(t, stderr, "A.java")
}

func TestPatch_Args(t *testing.T) {
	t.Parallel()

	_, _, err := runApp(t, t.TempDir(), "patch")
	require.ErrorIs(t, err, ErrPatchArgs)
}

func TestCheck_Dots(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "src/A.java", cleanSource)
	writeFile(t, dir, "src/B.java", brokenSource)
	writeFile(t, dir, "src/notes.txt", "not java")

	stdout, _, err := runApp(t, dir, "check", "--format", "dots", "--jobs", "1", filepath.Join(dir, "src"))
	require.NoError(t, err)

	lines := strings.Split(stdout, "\n")
	assert.Equal(t, ".R", lines[0])
	assert.Contains(t, stdout, "PASS 2 files, 1 clean, 1 recovered, 0 unrecovered, 0 errors")
}

func TestCheck_Unrecovered(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "A.java", cleanSource)
	writeFile(t, dir, "B.java", "class B {\n")

	stdout, _, err := runApp(t, dir, "check", "--format", "verbose", dir)
	require.ErrorIs(t, err, ErrUnrecovered)
	assert.Contains(t, stdout, "--- CLEAN: "+filepath.Join(dir, "A.java"))
	assert.Contains(t, stdout, "--- UNRECOVERED: "+filepath.Join(dir, "B.java"))
	assert.Contains(t, stdout, "FAIL")
}

func TestCheck_ExplicitFileBypassesFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "Snippet.txt", cleanSource)

	stdout, _, err := runApp(t, dir, "check", "--format", "json", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"action":"clean"`)
	assert.Contains(t, stdout, `"action":"summary"`)
}

func TestCheck_NoFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "README.md", "# nothing here\n")

	_, _, err := runApp(t, dir, "check", "--format", "dots", dir)
	require.ErrorIs(t, err, ErrNoSourceFiles)
}

func TestCollectSourceFiles_Exclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "keep/A.java", cleanSource)
	writeFile(t, dir, "gen/B.java", cleanSource)
	writeFile(t, dir, ".salvage.yaml", "exclude: [\"gen/**\"]\n")

	stdout, _, err := runApp(t, dir, "check", "--format", "json", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "A.java")
	assert.NotContains(t, stdout, "B.java")
}

func TestParsers(t *testing.T) {
	t.Parallel()

	stdout, _, err := runApp(t, t.TempDir(), "parsers")
	require.NoError(t, err)
	assert.Contains(t, stdout, "java")
}

func TestStrategies(t *testing.T) {
	t.Parallel()

	stdout, _, err := runApp(t, t.TempDir(), "strategies")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "decompiler "))
	assert.Contains(t, lines[1], "Appends a statement terminator")
	assert.True(t, strings.HasPrefix(lines[3], "braces "))
}
