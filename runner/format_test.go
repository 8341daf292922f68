package runner

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/salvage"
	"github.com/rlch/salvage/recovery"
)

func TestDotsFormatter_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewDotsFormatter(&buf)

	_ = f.Format(Event{Action: ActionRun}, nil)
	assert.Zero(t, buf.Len(), "non-terminal should produce no output")

	_ = f.Format(Event{Action: ActionClean}, nil)
	_ = f.Format(Event{Action: ActionRecovered}, nil)
	_ = f.Format(Event{Action: ActionUnrecovered}, nil)
	_ = f.Format(Event{Action: ActionError}, nil)

	assert.Equal(t, ".RFE", buf.String())
}

func TestDotsFormatter_Summary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewDotsFormatter(&buf)

	result := NewResult()
	result.Add(Event{Action: ActionClean, File: "A.java"})
	result.Add(Event{
		Action: ActionUnrecovered,
		File:   "B.java",
		Diagnostics: []salvage.Diagnostic{
			salvage.At(lexer.Position{Line: 3, Column: 5}, "Parse error. Found \"*\""),
		},
	})
	result.Finish()

	_ = f.Summary(result)

	got := buf.String()
	assert.Contains(t, got, "FAIL B.java")
	assert.Contains(t, got, `  3:5: Parse error. Found "*"`)
	assert.Contains(t, got, "FAIL 2 files, 1 clean, 0 recovered, 1 unrecovered, 0 errors")
}

func TestVerboseFormatter_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewVerboseFormatter(&buf)

	_ = f.Format(Event{Action: ActionRun, File: "A.java"}, nil)
	assert.Equal(t, "=== RUN   A.java\n", buf.String())

	buf.Reset()

	_ = f.Format(Event{Action: ActionClean, File: "A.java", Elapsed: 10 * time.Millisecond}, nil)
	assert.Equal(t, "--- CLEAN: A.java (10ms)\n", buf.String())

	buf.Reset()

	_ = f.Format(Event{
		Action: ActionRecovered,
		File:   "A.java",
		Patches: []recovery.Patch{
			{Line: 3, Strategy: salvage.StrategyTerminator, Decision: recovery.DecisionReplace},
		},
	}, nil)

	want := `--- RECOVERED: A.java (0s)
    line 3: terminator (replace)
`
	assert.Equal(t, want, buf.String())
}

func TestJSONFormatter_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewJSONFormatter(&buf)

	fixedTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	_ = f.Format(Event{
		Time:    fixedTime,
		Action:  ActionRecovered,
		File:    "src/A.java",
		Elapsed: 50 * time.Millisecond,
		Rounds:  1,
		Patches: []recovery.Patch{{
			Line:     2,
			Strategy: salvage.StrategyBraces,
			Decision: recovery.DecisionCommentOut,
			Before:   "  ** x",
			After:    "// ** x",
		}},
	}, nil)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "recovered", got["action"])
	assert.Equal(t, "src/A.java", got["file"])
	assert.InDelta(t, 0.05, got["elapsed"], 1e-9)

	patches, ok := got["patches"].([]any)
	require.True(t, ok)
	require.Len(t, patches, 1)

	patch, ok := patches[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "comment-out", patch["decision"])
	assert.Equal(t, "braces", patch["strategy"])
}

func TestJSONFormatter_Summary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewJSONFormatter(&buf)

	result := NewResult()
	result.Add(Event{Action: ActionRecovered, File: "A.java"})
	result.Add(Event{Action: ActionError, File: "B.java", Error: errTestRead})
	result.Finish()

	_ = f.Summary(result)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "summary", got["action"])
	assert.InDelta(t, 2, got["total"], 0)
	assert.InDelta(t, 1, got["recovered"], 0)
	assert.Equal(t, false, got["ok"])
}

func TestNewFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	assert.IsType(t, &VerboseFormatter{}, NewFormatter(salvage.FormatVerbose, &buf))
	assert.IsType(t, &JSONFormatter{}, NewFormatter(salvage.FormatJSON, &buf))
	assert.IsType(t, &DotsFormatter{}, NewFormatter(salvage.FormatDots, &buf))
	assert.IsType(t, &DotsFormatter{}, NewFormatter("unknown", &buf))
}
