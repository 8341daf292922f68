package runner

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/salvage"
	"github.com/rlch/salvage/recovery"
)

func TestBuildTree(t *testing.T) {
	t.Parallel()

	dirs := BuildTree([]string{"src/b/Z.java", "src/a/B.java", "src/a/A.java"})
	require.Len(t, dirs, 2)

	assert.Equal(t, "src/a", dirs[0].dir)
	require.Len(t, dirs[0].files, 2)
	assert.Equal(t, "A.java", dirs[0].files[0].name)
	assert.Equal(t, "src/b", dirs[1].dir)
}

func TestTUIModel_HandleEvent(t *testing.T) {
	t.Parallel()

	m := newTUIModel(BuildTree([]string{"src/A.java", "src/B.java", "src/C.java"}))
	assert.Equal(t, 3, m.counters.total)

	m.Update(fileEventMsg(Event{Action: ActionRun, File: "src/A.java"}))
	assert.Equal(t, 1, m.countRunning())

	m.Update(fileEventMsg(Event{
		Action:  ActionRecovered,
		File:    "src/A.java",
		Patches: []recovery.Patch{{Line: 1}, {Line: 2}},
	}))
	m.Update(fileEventMsg(Event{
		Action:      ActionUnrecovered,
		File:        "src/B.java",
		Diagnostics: []salvage.Diagnostic{salvage.At(lexer.Position{Line: 4, Column: 2}, "Parse error. Found \"}\"")},
	}))
	m.Update(fileEventMsg(Event{Action: ActionClean, File: "unknown.java"}))
	m.Update(doneMsg{result: NewResult()})

	assert.Zero(t, m.countRunning())
	assert.Equal(t, 1, m.counters.recovered)
	assert.Equal(t, 1, m.counters.unrecovered)
	assert.True(t, m.isDone)

	view := m.FinalView()
	assert.Contains(t, view, "A.java")
	assert.Contains(t, view, "2 patches")
	assert.Contains(t, view, `4:2: Parse error. Found "}"`)
	assert.Contains(t, view, "1 recovered")
	assert.Contains(t, view, "1 unrecovered")
	assert.Contains(t, view, "(3 total)")
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<1ms", formatDuration(0))
	assert.Equal(t, "250ms", formatDuration(250_000_000))
	assert.Equal(t, "1.5s", formatDuration(1_500_000_000))
	assert.Equal(t, "2m5s", formatDuration(125_000_000_000))
}
