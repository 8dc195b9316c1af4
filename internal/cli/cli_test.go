package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/store"
)

func execCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errBuf bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	_, err := execCLI(t, "--format", "xml", "catalog", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestValidateValidGraph(t *testing.T) {
	out, err := execCLI(t, "validate", "testdata/valid.json")
	require.NoError(t, err)
	assert.Contains(t, out, `graph "hourly ping" is valid`)
}

func TestValidateValidGraphJSON(t *testing.T) {
	out, err := execCLI(t, "--format", "json", "validate", "testdata/valid.json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateInvalidGraph(t *testing.T) {
	out, err := execCLI(t, "validate", "testdata/invalid.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "blocking diagnostics")
	assert.Contains(t, out, `missing required parameter "url"`)
}

func TestValidateMissingFile(t *testing.T) {
	_, err := execCLI(t, "validate", "testdata/nope.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileWritesBundle(t *testing.T) {
	outDir := t.TempDir()
	out, err := execCLI(t, "compile", "testdata/valid.json", "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, `compiled "hourly ping"`)

	for _, name := range []string{"Code.gs", "Workflow.gs", "appsscript.json", "secrets.json"} {
		_, statErr := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, statErr, name)
	}
}

func TestCompileRefusesInvalidGraph(t *testing.T) {
	out, err := execCLI(t, "compile", "testdata/invalid.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "error [INVALID_GRAPH]")
}

func TestCatalogList(t *testing.T) {
	out, err := execCLI(t, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "trigger.time.schedule")
	assert.Contains(t, out, "action.http.request")
	assert.Contains(t, out, "5 node types")
}

func TestCatalogSearch(t *testing.T) {
	out, err := execCLI(t, "catalog", "search", "http")
	require.NoError(t, err)
	assert.Contains(t, out, "http")
	assert.Contains(t, out, "webhook")
}

func TestCatalogSearchNoMatches(t *testing.T) {
	out, err := execCLI(t, "catalog", "search", "nonexistent-app")
	require.NoError(t, err)
	assert.Contains(t, out, "no matching apps")
}

func TestCatalogApp(t *testing.T) {
	out, err := execCLI(t, "catalog", "app", "time")
	require.NoError(t, err)
	assert.Contains(t, out, "time: 1 triggers, 0 actions")
	assert.Contains(t, out, "schedule")
}

func TestFixAlreadyValidGraph(t *testing.T) {
	out, err := execCLI(t, "fix", "testdata/valid.json")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to fix")
}

func TestParseAnswers(t *testing.T) {
	answers, err := parseAnswers([]string{"q1=daily", "q2=slack"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"q1": "daily", "q2": "slack"}, answers)

	none, err := parseAnswers(nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = parseAnswers([]string{"no-separator"})
	assert.ErrorContains(t, err, "is not id=value")
}

func TestHistoryEmpty(t *testing.T) {
	t.Setenv("AUTOFLOW_SESSION_DB", filepath.Join(t.TempDir(), "sessions.db"))
	out, err := execCLI(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "no recorded attempts")
}

func TestHistoryListsRecordedAttempts(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	t.Setenv("AUTOFLOW_SESSION_DB", dbPath)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Record(context.Background(), store.Attempt{
		RequestID:  "req-42",
		Phase:      "plan",
		ErrorCount: 1,
		Fallback:   true,
	}))
	require.NoError(t, st.Close())

	out, err := execCLI(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "req-42")
	assert.Contains(t, out, "plan")
	assert.Contains(t, out, "[fallback]")
}
