package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/topicflow"
	"github.com/aretw0/topicflow/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validProject = `id: pump
instrument:
  type: Pump
  revision: R1
topics:
  - topic: {id: lifecycle, kind: root}
    states:
      - id: new_instrument
        isSystemNode: true
        systemNodeType: new_instrument
        position: {x: 0, y: 0}
      - id: done
        terminal: true
        position: {x: 100, y: 0}
    transitions:
      - {id: t1, from: new_instrument, to: done, messageType: Hello, flowType: Sync}
`

const blockedProject = `{
  "id": "broken",
  "instrument": {"type": "", "revision": "R1"},
  "topics": [{"topic": {"id": "lifecycle", "kind": "root"}, "states": [], "transitions": []}]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "topicflow version "+topicflow.Version+"\n", out)
}

func TestHelpListsCommands(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"validate", "graph", "rules", "serve", "mcp", "project", "fields", "version"} {
		assert.Contains(t, out, name)
	}
}

func TestValidate_Clean(t *testing.T) {
	path := writeFile(t, "pump.yaml", validProject)
	out, err := run(t, "--store", "memory", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Pump R1: 0 error(s), 0 warning(s)")
}

func TestValidate_BlockingExitsWithError(t *testing.T) {
	path := writeFile(t, "broken.json", blockedProject)
	out, err := run(t, "--store", "memory", "validate", path)
	require.ErrorIs(t, err, errBlocking)
	assert.Contains(t, out, validation.MsgInstrumentTypeRequired)
}

func TestValidate_JSON(t *testing.T) {
	path := writeFile(t, "broken.json", blockedProject)
	out, err := run(t, "--store", "memory", "validate", "--format", "json", path)
	require.ErrorIs(t, err, errBlocking)

	var report validateReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "broken", report.Project)
	assert.True(t, report.Blocking)
	assert.Equal(t, 2, report.Errors)
}

func TestValidate_DisabledRule(t *testing.T) {
	path := writeFile(t, "broken.json", blockedProject)
	out, err := run(t, "--store", "memory",
		"--disable-rule", validation.RuleInstrumentType,
		"--disable-rule", validation.RuleSystemEntry,
		"validate", path)
	require.NoError(t, err)
	assert.NotContains(t, out, validation.MsgInstrumentTypeRequired)
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := run(t, "--store", "memory", "validate", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGraph_DefaultsToRootTopic(t *testing.T) {
	path := writeFile(t, "pump.yaml", validProject)
	out, err := run(t, "--store", "memory", "graph", path)
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "Hello / Sync")

	_, err = run(t, "--store", "memory", "graph", "--topic", "missing", path)
	assert.Error(t, err)
}

func TestRules(t *testing.T) {
	out, err := run(t, "--store", "memory", "rules")
	require.NoError(t, err)
	for _, r := range validation.New().Rules() {
		assert.Contains(t, out, r.ID)
	}

	out, err = run(t, "--store", "memory", "--disable-rule", validation.RuleMissingEndPaths, "rules", "--json")
	require.NoError(t, err)
	var infos []validation.RuleInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Len(t, infos, len(validation.DefaultRules())-1)
}

func TestProjectCommands_FileStore(t *testing.T) {
	dir := t.TempDir()
	base := []string{"--store", "file", "--store-path", dir}

	out, err := run(t, append(base, "project", "create", "--type", "Pump", "--revision", "R1")...)
	require.NoError(t, err)
	assert.Contains(t, out, "(Pump R1)")

	_, err = run(t, append(base, "project", "create", "--type", "Pump", "--revision", "R1")...)
	assert.EqualError(t, err, `An instrument with type "Pump" and revision "R1" already exists.`)

	out, err = run(t, append(base, "project", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Pump")
	assert.Contains(t, out, "R1")
}

func TestFieldsCommands_SQLite(t *testing.T) {
	base := []string{"--store", "sqlite", "--store-path", filepath.Join(t.TempDir(), "fields.db")}

	out, err := run(t, append(base, "fields", "add", "flowTypes", "Sync")...)
	require.NoError(t, err)
	assert.Contains(t, out, "  - Sync\n")

	out, err = run(t, append(base, "fields", "color", "Sync", "#00AAFF")...)
	require.NoError(t, err)
	assert.Contains(t, out, "  - Sync (#00AAFF)\n")

	_, err = run(t, append(base, "fields", "add", "flowTypes", "Sync")...)
	assert.EqualError(t, err, `Value "Sync" already exists in flowTypes`)

	_, err = run(t, append(base, "fields", "add", "flowTypes", "bad value")...)
	assert.Error(t, err)

	out, err = run(t, append(base, "fields", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "flowTypes:\n  - Sync (#00AAFF)\n")
}

func TestUnknownStoreDriver(t *testing.T) {
	_, err := run(t, "--store", "etcd", "rules")
	assert.Error(t, err)
}
