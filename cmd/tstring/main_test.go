package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neurodesk/tstring/pkg/tstring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheckCommand(t *testing.T) {
	out, _, err := run(t, "", "check", `t"Hello {name}"`)
	require.NoError(t, err)
	assert.Equal(t, "ok: 2 strings, 1 interpolations\n", out)

	_, stderr, err := run(t, "", "check", `t"Hello {}"`)
	require.Error(t, err)
	assert.ErrorIs(t, err, tstring.ErrSyntax)
	assert.Contains(t, stderr, "check failed")

	_, _, err = run(t, "", "check")
	assert.ErrorContains(t, err, "no literal given")
}

func TestRenderCommand(t *testing.T) {
	out, _, err := run(t, "", "render", "--set", "name=World", "--set", "n=42",
		`t"Hello {name!r}, {n:>4} {n + 1}"`)
	require.NoError(t, err)
	assert.Equal(t, "Hello 'World',   42 43\n", out)
}

func TestRenderWithVarsFile(t *testing.T) {
	vars := writeFile(t, "vars.yaml", `
user:
  name: Ada
  langs: [go, starlark]
width: 6
`)
	out, _, err := run(t, "", "render", "--vars", vars,
		`t"{user['name']:^{width}}|{', '.join(user['langs'])}"`)
	require.NoError(t, err)
	assert.Equal(t, " Ada  |go, starlark\n", out)
}

func TestRenderWithScript(t *testing.T) {
	script := writeFile(t, "lib.star", "def shout(s):\n    return s.upper() + '!'\n")
	out, _, err := run(t, "", "render", "--script", script, "--set", "who=you", `t"{shout(who)}"`)
	require.NoError(t, err)
	assert.Equal(t, "YOU!\n", out)
}

func TestRenderFromFileAndStdin(t *testing.T) {
	lit := writeFile(t, "lit.txt", "t\"\"\"line one\n{x}\"\"\"\n")
	out, _, err := run(t, "", "render", "--set", "x=2", "--file", lit)
	require.NoError(t, err)
	assert.Equal(t, "line one\n2\n", out)

	out, _, err = run(t, `t"{x * 3}"`+"\n", "render", "--set", "x=2", "-f", "-")
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)
}

func TestInspectCommand(t *testing.T) {
	out, _, err := run(t, "", "inspect", "--set", "name=World", `t"Hello {name!r:>9}"`)
	require.NoError(t, err)
	assert.Contains(t, out, "strings:")
	assert.Contains(t, out, "expression: name")
	assert.Contains(t, out, "conversion: r")
	assert.Contains(t, out, "format_spec: '>9'")

	out, _, err = run(t, "", "inspect", "-o", "text", "--set", "name=World", `t"Hello {name!r}"`)
	require.NoError(t, err)
	assert.Equal(t,
		"Template(strings=('Hello ', ''), interpolations=(Interpolation('World', 'name', 'r', ''),))\n",
		out)
}

func TestEvaluationErrors(t *testing.T) {
	_, stderr, err := run(t, "", "render", `t"{missing}"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined")
	assert.Contains(t, stderr, "render failed")

	_, _, err = run(t, "", "render", `t"{1 +}"`)
	assert.ErrorIs(t, err, tstring.ErrSyntax)

	_, _, err = run(t, "", "render", "--set", "s=abc", `t"{s:d}"`)
	assert.True(t, tstring.IsFormatError(err))
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("TSTRING_MAX_RENDER_SIZE", "3")
	_, _, err := run(t, "", "render", `t"{'abcdef'}"`)
	assert.ErrorIs(t, err, tstring.ErrCapacity)

	// Flags take priority over the environment.
	out, _, err := run(t, "", "render", "--max-render-size", "10", `t"{'abcdef'}"`)
	require.NoError(t, err)
	assert.Equal(t, "abcdef\n", out)
}

func TestConfigFile(t *testing.T) {
	cfg := writeFile(t, "tstring.yaml", "memory-limit: 8\nlog-format: json\nlog-level: debug\n")
	_, stderr, err := run(t, "", "render", "--config", cfg, `t"0123456789{1}"`)
	assert.ErrorIs(t, err, tstring.ErrNoMemory)
	assert.Contains(t, stderr, `"msg":"running command"`)

	bad := writeFile(t, "bad.yaml", "log-level: loud\n")
	_, _, err = run(t, "", "check", "--config", bad, `t""`)
	assert.ErrorContains(t, err, "log-level")

	_, _, err = run(t, "", "check", "--config", filepath.Join(t.TempDir(), "missing.yaml"), `t""`)
	assert.ErrorContains(t, err, "reading config")
}

func TestInvalidVariableNames(t *testing.T) {
	_, _, err := run(t, "", "render", "--set", "bad-name=1", `t"x"`)
	assert.ErrorContains(t, err, "not a valid identifier")

	vars := writeFile(t, "vars.yaml", "ok: 1\n2bad: 2\n")
	_, _, err = run(t, "", "render", "--vars", vars, `t"{ok}"`)
	assert.ErrorContains(t, err, "not a valid identifier")
}
