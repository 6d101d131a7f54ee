package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-sentinel/sentinel/pkg/config"
)

func withTestConfig(t *testing.T, snapshotsDir string) {
	t.Helper()
	prev := cfg
	cfg = config.DefaultConfig()
	cfg.Snapshots.Dir = snapshotsDir
	t.Cleanup(func() { cfg = prev })
}

func writeFeedsSnapshot(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "feeds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"generatedAt": "2026-08-23T11:50:00Z",
		"ratio": 0.995,
		"linkUsd": 14.25,
		"ethUsd": 2601.5
	}`), 0644))
	return path
}

func TestVerifyCommandComputesStableHash(t *testing.T) {
	dir := t.TempDir()
	path := writeFeedsSnapshot(t, dir)
	withTestConfig(t, dir)

	runOnce := func() string {
		cmd := newVerifyCommand()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"feeds", path})
		require.NoError(t, cmd.Execute())
		return buf.String()
	}

	first := runOnce()
	assert.Contains(t, first, "workflow:    feeds (schema v1)")
	assert.Contains(t, first, "riskLabel:   feeds:ok")
	assert.Contains(t, first, "hash:        0x")

	// Re-running over the same bytes must print the identical digest.
	assert.Equal(t, first, runOnce())
}

func TestVerifyCommandExpectMismatchFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFeedsSnapshot(t, dir)
	withTestConfig(t, dir)

	cmd := newVerifyCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"feeds", path, "--expect",
		"0x0000000000000000000000000000000000000000000000000000000000000001"})
	require.Error(t, cmd.Execute())
	assert.Contains(t, buf.String(), "match:       NO")
}

func TestVerifyCommandUnknownWorkflow(t *testing.T) {
	withTestConfig(t, t.TempDir())

	cmd := newVerifyCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"does-not-exist"})
	require.Error(t, cmd.Execute())
}

func TestWorkflowsCommandListsEveryWorkflow(t *testing.T) {
	cmd := newWorkflowsCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	require.NoError(t, cmd.Execute())

	out := buf.String()
	for _, key := range []string{"treasury", "feeds", "governance", "morpho", "curve", "ccip", "flows"} {
		assert.Contains(t, out, key+" (schema v1")
	}
}
