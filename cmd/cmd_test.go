package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the CLI against a hermetic config file so tests never
// pick up an ariadne.yaml from the working directory or home.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "ariadne.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logger:\n  level: info\n"), 0o644))

	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFixtureHTML(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	source := `<div>
		<h1>Dashboard</h1>
		<a href="/settings">Settings</a>
	</div>`
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestSnapshotCommand(t *testing.T) {
	t.Run("renders a local file as indented text", func(t *testing.T) {
		out, err := runCommand(t, "snapshot", "--file", writeFixtureHTML(t))
		require.NoError(t, err)

		assert.Contains(t, out, `- heading "Dashboard" [level=1]`)
		assert.Contains(t, out, `link "Settings" [clickable]`)
		assert.Contains(t, out, "/url: /settings")
		assert.Contains(t, out, "[ref=")
	})

	t.Run("withholds references when disabled", func(t *testing.T) {
		out, err := runCommand(t, "snapshot", "--file", writeFixtureHTML(t), "--refs=false")
		require.NoError(t, err)
		assert.NotContains(t, out, "[ref=")
	})

	t.Run("renders the object graph as json", func(t *testing.T) {
		out, err := runCommand(t, "snapshot", "--file", writeFixtureHTML(t), "--format", "graph")
		require.NoError(t, err)

		var graph map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &graph))
		assert.Contains(t, out, `"descriptivePrompt"`)
		assert.Contains(t, out, `"supportedActions"`)
	})

	t.Run("requires exactly one source", func(t *testing.T) {
		_, err := runCommand(t, "snapshot")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one of --url or --file")

		_, err = runCommand(t, "snapshot", "--url", "http://example.test", "--file", "page.html")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one of --url or --file")
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		_, err := runCommand(t, "snapshot", "--file", writeFixtureHTML(t), "--format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--format")
	})

	t.Run("reports unreadable files", func(t *testing.T) {
		_, err := runCommand(t, "snapshot", "--file", filepath.Join(t.TempDir(), "missing.html"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read")
	})
}

func TestResolutionCommandsRequireURL(t *testing.T) {
	for _, sub := range []string{"look", "wait", "act"} {
		t.Run(sub, func(t *testing.T) {
			_, err := runCommand(t, sub, "the save button")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "--url is required")
		})
	}
}

func TestActCommandRejectsUnknownType(t *testing.T) {
	_, err := runCommand(t, "act", "the save button",
		"--url", "http://example.test", "--type", "teleport")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown action type "teleport"`)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}
