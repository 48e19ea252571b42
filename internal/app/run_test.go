package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gi8lino/jirasearch/internal/app"
	"github.com/gi8lino/jirasearch/internal/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeIssues() []testutils.FakeIssue {
	return []testutils.FakeIssue{
		{Key: "TEST-1", Fields: map[string]any{"summary": "one", "customfield_18762": 3}},
		{Key: "TEST-2", Fields: map[string]any{"summary": "two"}},
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	dummyEnv := func(string) string { return "" }

	t.Run("Help requested prints usage and returns nil", func(t *testing.T) {
		t.Parallel()

		var out, errOut bytes.Buffer
		err := app.Run(t.Context(), "v1.2.3", "abc", []string{"--help"}, &out, &errOut, dummyEnv)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Usage")
	})

	t.Run("Version requested prints version and returns nil", func(t *testing.T) {
		t.Parallel()

		var out, errOut bytes.Buffer
		err := app.Run(t.Context(), "v9.8.7", "cafebabe", []string{"--version"}, &out, &errOut, dummyEnv)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "v9.8.7")
	})

	t.Run("Unknown flag surfaces parsing error", func(t *testing.T) {
		t.Parallel()

		var out, errOut bytes.Buffer
		err := app.Run(t.Context(), "vX", "yyy", []string{"--totally-unknown"}, &out, &errOut, dummyEnv)
		require.Error(t, err)
		assert.EqualError(t, err, "parsing error: unknown flag: --totally-unknown")
	})

	t.Run("Missing config file surfaces load error", func(t *testing.T) {
		t.Parallel()

		var out, errOut bytes.Buffer
		args := []string{"--config=/nope/does-not-exist.yaml", "--jql=x"}
		err := app.Run(t.Context(), "v1", "deadbeef", args, &out, &errOut, dummyEnv)
		require.Error(t, err)
		assert.EqualError(t, err, "loading config error: read config: open /nope/does-not-exist.yaml: no such file or directory")
	})

	t.Run("Invalid mode surfaces validation error", func(t *testing.T) {
		t.Parallel()

		var out, errOut bytes.Buffer
		args := []string{
			"--jira-api-url=https://jira.example.com/rest/api/2",
			"--jira-bearer-token=token",
			"--mode=fast",
			"--jql=x",
		}
		err := app.Run(t.Context(), "v1", "deadbeef", args, &out, &errOut, dummyEnv)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validating config error: config validation failed:")
		assert.Contains(t, err.Error(), "Invalid search mode 'fast'")
	})

	t.Run("Missing jql without serve", func(t *testing.T) {
		t.Parallel()

		f := testutils.NewFakeJira(t, testutils.FakeJiraConfig{})

		var out, errOut bytes.Buffer
		args := []string{"--jira-api-url=" + f.APIURL("2"), "--jira-bearer-token=token", "--deployment=server"}
		err := app.Run(t.Context(), "v1", "deadbeef", args, &out, &errOut, dummyEnv)
		require.Error(t, err)
		assert.EqualError(t, err, "--jql is required unless --serve is set")
	})

	t.Run("Legacy mode renders json", func(t *testing.T) {
		t.Parallel()

		f := testutils.NewFakeJira(t, testutils.FakeJiraConfig{
			Issues: fakeIssues(),
			Names:  map[string]string{"summary": "Summary", "customfield_18762": "Story Points"},
		})

		var out, errOut bytes.Buffer
		args := []string{
			"--jira-api-url=" + f.APIURL("2"),
			"--jira-email=me@example.com",
			"--jira-auth=secret",
			"--mode=legacy",
			"--jql=project = TEST",
			"--expand=names",
			"--output=json",
		}
		err := app.Run(t.Context(), "v1", "deadbeef", args, &out, &errOut, dummyEnv)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
		assert.Equal(t, "legacy", doc["endpoint"])
		assert.Equal(t, float64(2), doc["total"])
		assert.Equal(t, "Story Points", doc["names"].(map[string]any)["customfield_18762"])

		assert.Equal(t, 1, f.Calls("search"))
		assert.Equal(t, 0, f.Calls("search/jql"))
		assert.Equal(t, 0, f.Calls("serverInfo"))
		assert.Equal(t, "project = TEST", f.LastBody("search")["jql"])
	})

	t.Run("Auto mode on cloud falls back to legacy when enhanced is gone", func(t *testing.T) {
		t.Parallel()

		f := testutils.NewFakeJira(t, testutils.FakeJiraConfig{
			DeploymentType:  "Cloud",
			Issues:          fakeIssues(),
			EnhancedStatus:  http.StatusGone,
			EnhancedMessage: "gone",
		})

		var out, errOut bytes.Buffer
		args := []string{
			"--jira-api-url=" + f.APIURL("3"),
			"--jira-bearer-token=token",
			"--jql=project = TEST",
		}
		err := app.Run(t.Context(), "v1", "deadbeef", args, &out, &errOut, dummyEnv)
		require.NoError(t, err)

		assert.Equal(t, "TEST-1  one\nTEST-2  two\n", out.String())
		assert.Equal(t, 1, f.Calls("serverInfo"))
		assert.Equal(t, 1, f.Calls("search/jql"))
		assert.Equal(t, 1, f.Calls("search"))
	})

	t.Run("Auto mode on cloud falls back to legacy on CHANGE-2046", func(t *testing.T) {
		t.Parallel()

		f := testutils.NewFakeJira(t, testutils.FakeJiraConfig{
			DeploymentType:  "Cloud",
			Issues:          fakeIssues(),
			EnhancedStatus:  http.StatusBadRequest,
			EnhancedMessage: "The requested API has been removed. Please migrate to the /rest/api/3/search/jql API. #CHANGE-2046",
		})

		var out, errOut bytes.Buffer
		args := []string{
			"--jira-api-url=" + f.APIURL("3"),
			"--jira-bearer-token=token",
			"--jql=project = TEST",
		}
		err := app.Run(t.Context(), "v1", "deadbeef", args, &out, &errOut, dummyEnv)
		require.NoError(t, err)

		assert.Equal(t, "TEST-1  one\nTEST-2  two\n", out.String())
		assert.Equal(t, 1, f.Calls("search/jql"))
		assert.Equal(t, 1, f.Calls("search"))
	})

	t.Run("Auto mode on server uses legacy only", func(t *testing.T) {
		t.Parallel()

		f := testutils.NewFakeJira(t, testutils.FakeJiraConfig{DeploymentType: "Server", Issues: fakeIssues()})

		var out, errOut bytes.Buffer
		args := []string{
			"--jira-api-url=" + f.APIURL("2"),
			"--jira-bearer-token=token",
			"--jql=project = TEST",
		}
		err := app.Run(t.Context(), "v1", "deadbeef", args, &out, &errOut, dummyEnv)
		require.NoError(t, err)

		assert.Equal(t, "TEST-1  one\nTEST-2  two\n", out.String())
		assert.Equal(t, 0, f.Calls("search/jql"))
		assert.Equal(t, 1, f.Calls("search"))
	})

	t.Run("Enhanced mode does not fall back", func(t *testing.T) {
		t.Parallel()

		f := testutils.NewFakeJira(t, testutils.FakeJiraConfig{
			Issues:          fakeIssues(),
			EnhancedStatus:  http.StatusGone,
			EnhancedMessage: "gone",
		})

		var out, errOut bytes.Buffer
		args := []string{
			"--jira-api-url=" + f.APIURL("3"),
			"--jira-bearer-token=token",
			"--mode=enhanced",
			"--jql=project = TEST",
		}
		err := app.Run(t.Context(), "v1", "deadbeef", args, &out, &errOut, dummyEnv)
		require.Error(t, err)
		assert.EqualError(t, err, "search error: jira POST search/jql (410): gone")
		assert.Equal(t, 0, f.Calls("search"))
	})

	t.Run("Config file with template output", func(t *testing.T) {
		t.Parallel()

		f := testutils.NewFakeJira(t, testutils.FakeJiraConfig{
			Issues: fakeIssues(),
			Names:  map[string]string{"customfield_18762": "Story Points"},
		})

		cfgPath := filepath.Join(t.TempDir(), "config.yaml")
		testutils.MustWriteFile(t, cfgPath, `
jira:
  url: `+f.APIURL("2")+`
  deployment: server
  auth:
    bearer: token
search:
  mode: auto
  fields: [summary, customfield_18762]
  expand: [names]
output:
  format: template
  template: '{{ range .Issues }}{{ .Key }} {{ name . "customfield_18762" }}={{ field . "customfield_18762" | default 0 }};{{ end }}'
`)

		var out, errOut bytes.Buffer
		args := []string{"--config=" + cfgPath, "--jql=project = TEST"}
		err := app.Run(t.Context(), "v1", "deadbeef", args, &out, &errOut, dummyEnv)
		require.NoError(t, err)

		assert.Equal(t, "TEST-1 Story Points=3;TEST-2 Story Points=0;", out.String())
		assert.Equal(t, []any{"summary", "customfield_18762"}, f.LastBody("search")["fields"])
		assert.Equal(t, 0, f.Calls("serverInfo"))
	})

	t.Run("Serve runs until context is done", func(t *testing.T) {
		t.Parallel()

		f := testutils.NewFakeJira(t, testutils.FakeJiraConfig{})

		ctx, cancel := context.WithTimeout(t.Context(), 300*time.Millisecond)
		defer cancel()

		var out, errOut bytes.Buffer
		args := []string{
			"--jira-api-url=" + f.APIURL("2"),
			"--jira-bearer-token=token",
			"--serve",
			"--listen-address=127.0.0.1:0",
		}
		err := app.Run(ctx, "v1", "deadbeef", args, &out, &errOut, dummyEnv)
		require.NoError(t, err)
		assert.Contains(t, errOut.String(), "Starting jirasearch")
		assert.Empty(t, out.String())
	})
}
