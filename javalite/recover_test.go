package javalite_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/salvage/javalite"
	"github.com/rlch/salvage/recovery"
)

func method(body ...string) string {
	lines := append([]string{"class A {", "    void f() {"}, body...)
	lines = append(lines, "    }", "}")

	return strings.Join(lines, "\n") + "\n"
}

func recoverOnce(t *testing.T, source string) *recovery.Outcome {
	t.Helper()

	p := javalite.New()

	res := p.Parse("A.java", source)
	require.False(t, res.OK(), "source should not parse as-is")

	outcome, err := recovery.NewDriver(p).Recover("A.java", source, res.Diagnostics)
	require.NoError(t, err)

	return outcome
}

func TestRecover_MissingTerminator(t *testing.T) {
	t.Parallel()

	outcome := recoverOnce(t, method("        int x = 5", "        int y = 6;"))

	assert.Equal(t, method("       int x = 5;", "        int y = 6;"), outcome.Patched)
	assert.True(t, outcome.Result.OK(), "%v", outcome.Result.Diagnostics)
	require.Len(t, outcome.Patches, 1)
	assert.Equal(t, 3, outcome.Patches[0].Line)
}

func TestRecover_UnterminatedString(t *testing.T) {
	t.Parallel()

	outcome := recoverOnce(t, method(`        foo("bar);`))

	assert.Equal(t, method(`        foo("??");`), outcome.Patched)
	assert.True(t, outcome.Result.OK(), "%v", outcome.Result.Diagnostics)
}

func TestRecover_DecompilerGoto(t *testing.T) {
	t.Parallel()

	outcome := recoverOnce(t, method("        label1: while (true) {", "        ** GOTO label1", "        }"))

	assert.Contains(t, outcome.Patched, "break label1;")
	assert.NotContains(t, outcome.Patched, "**")
	assert.True(t, outcome.Result.OK(), "%v", outcome.Result.Diagnostics)
}
