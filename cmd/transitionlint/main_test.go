package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TRANSITIONLINT_HOST", "")
	t.Setenv("TRANSITIONLINT_OUTPUT", "text")
	t.Setenv("TRANSITIONLINT_LOG_LEVEL", "error")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestValidate_Valid(t *testing.T) {
	path := writeFile(t, "light.yaml", "- fade:\n- lambda:\n    lambda: !lambda return {};\n")

	out, err := execute(t, "", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (2 transitions)")
}

func TestValidate_Normalize(t *testing.T) {
	out, err := execute(t, "- lambda:\n    lambda: return {};\n", "validate", "--normalize", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Lambda")
	assert.Contains(t, out, "update_interval:")
}

func TestValidate_Errors(t *testing.T) {
	path := writeFile(t, "light.yaml", "- fade:\n- fdae:\n- addressable_fade:\n")

	out, err := execute(t, "", "validate", path)
	require.Error(t, err)
	assert.Contains(t, out, "2 errors")
	assert.Contains(t, out, "did you mean 'fade'?")
	assert.Contains(t, out, "[capability_denied]")

	_, err = execute(t, "", "validate", "--host", "fastled", writeFile(t, "ok.yaml", "- addressable_fade:\n"))
	assert.NoError(t, err)
}

func TestValidate_DirectoriesAndPatterns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "porch", "lights"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("- fade:\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "porch", "lights", "b.json"), []byte(`[{"fade": {}}]`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "porch", "notes.txt"), []byte("not yaml"), 0o600))

	out, err := execute(t, "", "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "a.yaml")+": ok")
	assert.Contains(t, out, filepath.Join(dir, "porch", "lights", "b.json")+": ok")
	assert.NotContains(t, out, "notes.txt")

	out, err = execute(t, "", "validate", filepath.Join(dir, "porch", "**", "*.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "b.json: ok")
	assert.NotContains(t, out, "a.yaml")

	_, err = execute(t, "", "validate", filepath.Join(dir, "**", "*.toml"))
	assert.ErrorContains(t, err, "no transition files match")

	_, err = execute(t, "", "validate", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_JSONOutput(t *testing.T) {
	path := writeFile(t, "light.json", `[{"fade": {"name": "x"}}, {"fade": {"name": "x"}}]`)

	out, err := execute(t, "", "validate", "-o", "json", path)
	require.Error(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, false, results[0]["valid"])
	errs := results[0]["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "duplicate_name", errs[0].(map[string]any)["code"])
}

func TestKinds(t *testing.T) {
	out, err := execute(t, "", "kinds")
	require.NoError(t, err)
	assert.Contains(t, out, "addressable_lambda")
	assert.Contains(t, out, "addressable_output")

	out, err = execute(t, "", "kinds", "--schema", "lambda")
	require.NoError(t, err)
	assert.Contains(t, out, `"update_interval"`)

	_, err = execute(t, "", "kinds", "nope")
	assert.Error(t, err)
}

func TestHosts(t *testing.T) {
	out, err := execute(t, "", "hosts")
	require.NoError(t, err)
	assert.Contains(t, out, "fastled")
}

func TestEmit(t *testing.T) {
	path := writeFile(t, "light.yaml", "- fade:\n    name: Slow\n")

	out, err := execute(t, "", "emit", path)
	require.NoError(t, err)
	assert.Equal(t, "auto *fadetransition_id = new light::FadeTransition(\"Slow\");\n", out)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "", "--log-level", "loud", "hosts")
	assert.ErrorContains(t, err, "invalid log level")
}
