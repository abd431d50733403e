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

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const colorsPayload = `
strategy: wordlist
sources:
  - entries: [red, green, blue]
`

func TestGenerate_Deterministic(t *testing.T) {
	payload := writeFile(t, t.TempDir(), "colors.yaml", colorsPayload)

	first, err := execute(t, "generate", payload, "--seed", "7", "--count", "4")
	require.NoError(t, err)
	second, err := execute(t, "generate", payload, "--seed", "7", "--count", "4")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	lines := strings.Split(strings.TrimSpace(first), "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		assert.Contains(t, []string{"red", "green", "blue"}, line)
	}
}

func TestGenerate_JSONOutputWithFailure(t *testing.T) {
	payload := writeFile(t, t.TempDir(), "mixed.json",
		`[{"strategy": "wordlist", "sources": [{"entries": ["only"]}]}, {"strategy": "nope"}]`)

	out, err := execute(t, "generate", payload, "--output", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 generations failed")

	var wire []any
	require.NoError(t, json.Unmarshal([]byte(out), &wire))
	require.Len(t, wire, 2)
	assert.Equal(t, "only", wire[0])
	failure, ok := wire[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "unknown_strategy", failure["code"])
}

func TestGenerate_DatasetsAndDebugReport(t *testing.T) {
	dir := t.TempDir()
	assets := filepath.Join(dir, "assets")
	require.NoError(t, os.Mkdir(assets, 0o755))
	writeFile(t, assets, "metals.yaml", "type: wordlist\nentries: [iron, tin]\n")
	payload := writeFile(t, dir, "metals.yaml", "strategy: wordlist\nsources: [metals]\n")
	report := filepath.Join(dir, "report.txt")

	out, err := execute(t, "generate", payload, "--datasets", assets, "--debug-report", report)
	require.NoError(t, err)
	assert.Contains(t, []string{"iron\n", "tin\n"}, out)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "RNGEN Debug Report")
	assert.Contains(t, string(data), "Successful Calls: 1")
}

func TestGenerate_EngineConfigSeed(t *testing.T) {
	dir := t.TempDir()
	payload := writeFile(t, dir, "colors.yaml", colorsPayload)
	engineCfg := writeFile(t, dir, "rngen.yaml", "seed: 7\nlog:\n  level: error\n")

	fromConfig, err := execute(t, "--config", engineCfg, "generate", payload, "--count", "3")
	require.NoError(t, err)
	fromFlag, err := execute(t, "generate", payload, "--seed", "7", "--count", "3")
	require.NoError(t, err)
	assert.Equal(t, fromFlag, fromConfig)
}

func TestGenerate_FlagErrors(t *testing.T) {
	payload := writeFile(t, t.TempDir(), "colors.yaml", colorsPayload)

	_, err := execute(t, "generate", payload, "--count", "0")
	assert.Error(t, err)
	_, err = execute(t, "generate", payload, "--output", "xml")
	assert.Error(t, err)
	_, err = execute(t, "generate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStrategies(t *testing.T) {
	out, err := execute(t, "strategies")
	require.NoError(t, err)
	for _, id := range []string{"wordlist", "syllable", "markov", "template", "hybrid"} {
		assert.Contains(t, out, id)
	}

	out, err = execute(t, "strategies", "describe", "wordlist")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "properties")

	_, err = execute(t, "strategies", "describe", "nope")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", colorsPayload)
	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Equal(t, "0: ok\n", out)

	bad := writeFile(t, dir, "bad.json", `[{"strategy": "wordlist"}, {}, {"strategy": "nope"}]`)
	out, err = execute(t, "validate", bad)
	require.Error(t, err)
	assert.Contains(t, out, "missing_required_keys")
	assert.Contains(t, out, "missing_strategy")
	assert.Contains(t, out, "unknown_strategy")
}

func TestSurvey(t *testing.T) {
	payload := writeFile(t, t.TempDir(), "colors.yaml", colorsPayload)

	out, err := execute(t, "survey", payload, "--samples", "300", "--json",
		"--expect", "red=1", "--expect", "green=1", "--expect", "blue=1")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.EqualValues(t, 300, report["samples"])
	assert.EqualValues(t, 3, report["distinct"])
	assert.Contains(t, report, "fit")

	_, err = execute(t, "survey", payload, "--expect", "red=heavy")
	assert.Error(t, err)
}

func TestParseExpected(t *testing.T) {
	got, err := parseExpected(map[string]string{"a": "2", "b": "0.5"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a": 2, "b": 0.5}, got)

	got, err = parseExpected(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseExpected(map[string]string{"a": "-1"})
	assert.Error(t, err)
}
