package cli_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/internal/cli"
)

// run executes the root command with args, isolated from any local .env.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := execute(t, args...)
	return out, err
}

// execute is run that also returns what was logged.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("APP_NAME", "cli-test")
	t.Setenv("APP_ENV", "testing")
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var out, errOut bytes.Buffer
	root := cli.NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--env-file", "testdata-missing.env"))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "go-inject version 0.1.0\n", out)
}

func TestDemoCmd(t *testing.T) {
	out, err := run(t, "demo")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6, out)
	assert.Equal(t, []string{"constructed logger", "constructed repo", "constructed service"}, lines[:3])
	assert.Equal(t, "registered Andy <andy@example.com>", lines[3])
	assert.Equal(t, "UNKNOWN_DEPENDENCY: container: no binding registered for [missing]", lines[4])
	assert.Equal(t, "CYCLIC_DEPENDENCY: container: dependency cycle detected: x -> y -> x", lines[5])
}

func TestGraphCmd_Text(t *testing.T) {
	out, err := run(t, "graph")
	require.NoError(t, err)

	assert.Contains(t, out, "config (factory, shared) [aliases: configuration]\n")
	assert.Contains(t, out, "container (value)\n")
	assert.Contains(t, out, "router (factory, shared) -> config, log\n")
	assert.Contains(t, out, "userController (factory) -> userService, logger\n")
}

func TestGraphCmd_YAML(t *testing.T) {
	out, err := run(t, "graph", "--format", "yaml")
	require.NoError(t, err)

	var nodes []container.Node
	require.NoError(t, yaml.Unmarshal([]byte(out), &nodes))

	byName := make(map[string]container.Node, len(nodes))
	for _, n := range nodes {
		byName[n.Name] = n
	}
	require.Contains(t, byName, "userRepository")
	assert.Equal(t, []string{"logger"}, byName["userRepository"].Deps)
	assert.True(t, byName["userRepository"].Shared)
	assert.Equal(t, "value", byName["container"].Kind)
}

func TestGraphCmd_UnknownFormat(t *testing.T) {
	_, err := run(t, "graph", "--format", "dot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "dot"`)
}

func TestCheckCmd(t *testing.T) {
	out, err := run(t, "check")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ok: "), out)
}

func TestCheckCmd_InvalidConfig(t *testing.T) {
	t.Setenv("APP_PORT", "99999")
	var out, errOut bytes.Buffer
	root := cli.NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"check", "--env-file", "testdata-missing.env"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_PORT")
}

func TestVerboseFlagCounts(t *testing.T) {
	_, err := run(t, "-vv", "version")
	require.NoError(t, err)
}

// ── Logging settings ──────────────────────────────────────────────────────────

func TestLogging_JSONFromEnvironment(t *testing.T) {
	t.Setenv("LOG_JSON", "true")
	t.Setenv("LOG_VERBOSITY", "2")

	_, logs, err := execute(t, "check")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(logs), "\n")
	require.NotEmpty(t, lines[0], "expected log output")
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		assert.Contains(t, entry, "level")
	}
	assert.Contains(t, logs, `"message":"Command started"`)
}

func TestLogging_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("LOG_JSON", "true")
	t.Setenv("LOG_VERBOSITY", "0")

	_, logs, err := execute(t, "-vv", "--log-json=false", "check")
	require.NoError(t, err)
	assert.Contains(t, logs, "Command started")
	assert.False(t, strings.HasPrefix(logs, "{"), logs)
}

func TestLogging_QuietVerbosityFromEnvironment(t *testing.T) {
	t.Setenv("LOG_VERBOSITY", "0")
	t.Setenv("APP_DEBUG", "false")

	_, logs, err := execute(t, "check")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestLogging_AppDebugRaisesToDebug(t *testing.T) {
	t.Setenv("LOG_VERBOSITY", "0")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("APP_DEBUG", "true")

	_, logs, err := execute(t, "check")
	require.NoError(t, err)
	assert.Contains(t, logs, `"level":"debug"`)
	assert.Contains(t, logs, `"caller"`)
}
