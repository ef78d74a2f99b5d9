package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
)

const failingBuild = `<?xml version="1.0" encoding="UTF-8"?>
<testsuite name="unit" time="2.0">
  <testcase classname="pkg" name="test_a"><failure message="boom">trace</failure></testcase>
  <testcase classname="pkg" name="test_b"/>
</testsuite>`

const passingBuild = `<?xml version="1.0" encoding="UTF-8"?>
<testsuite name="unit" time="1.5">
  <testcase classname="pkg" name="test_a"/>
  <testcase classname="pkg" name="test_b"/>
</testsuite>`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ISSUE", "DOMAIN", "EMAIL", "TOKEN", "PROPERTY", "PENALTY", "DRY_RUN", "FORMAT", "NO_SAVE", "HISTORY_DB", "NO_HISTORY", "QUERY"} {
		t.Setenv("BUILDHEALTH_"+k, "")
	}
}

func writeBuilds(t *testing.T, dir string) (failing, passing string) {
	t.Helper()
	failing = filepath.Join(dir, "build1.xml")
	passing = filepath.Join(dir, "build2.xml")
	require.NoError(t, os.WriteFile(failing, []byte(failingBuild), 0o644))
	require.NoError(t, os.WriteFile(passing, []byte(passingBuild), 0o644))
	return failing, passing
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, expected := range []string{"analyze", "show", "reports", "history", "browse", "init", "version"} {
		assert.True(t, names[expected], "expected subcommand %q to be registered", expected)
	}
}

func TestAnalyzeCmd_Flags(t *testing.T) {
	cmd := analyzeCmd(&app{})
	for _, flag := range []string{"issue", "domain", "email", "token", "property", "penalty", "dry-run", "no-save", "history-db", "no-history", "format"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "expected --%s flag on analyze", flag)
	}
}

func TestAnalyze_DryRunPrintsPayload(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	failing, passing := writeBuilds(t, tmp)

	out, _, err := execute(t, "analyze", "-w", tmp, "--dry-run", "--no-history", failing, passing)
	require.NoError(t, err)

	assert.Contains(t, out, "Processing 2 XML file(s)...")
	assert.Contains(t, out, "Finished processing build files.")
	assert.Contains(t, out, `"score": 90`)
	assert.Contains(t, out, `"flakyTests": [`+"\n"+`    "test_a"`)
	assert.Contains(t, out, `"totalDuration": 3.5`)
	assert.Contains(t, out, "Dry run: upload skipped.")
	assert.Contains(t, out, "Report saved: ")
	assert.NotContains(t, out, "Uploading data")
}

func TestAnalyze_ReportsMissingFileAndContinues(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	_, passing := writeBuilds(t, tmp)
	missing := filepath.Join(tmp, "nope.xml")

	out, _, err := execute(t, "analyze", "-w", tmp, "--dry-run", "--no-save", "--no-history", missing, passing)
	require.NoError(t, err)
	assert.Contains(t, out, "Error: XML file not found at "+missing)
	assert.Contains(t, out, `"score": 100`)
	assert.NotContains(t, out, "Report saved")
}

func TestAnalyze_GlobExpansion(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	writeBuilds(t, tmp)

	out, _, err := execute(t, "analyze", "-w", tmp, "--dry-run", "--no-save", "--no-history", filepath.Join(tmp, "*.xml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Processing 2 XML file(s)...")
}

func TestAnalyze_PenaltyFlag(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	failing, _ := writeBuilds(t, tmp)

	out, _, err := execute(t, "analyze", "-w", tmp, "--dry-run", "--no-save", "--no-history", "--penalty", "25", failing)
	require.NoError(t, err)
	assert.Contains(t, out, `"score": 75`)
}

func TestAnalyze_MissingCredentials(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	failing, _ := writeBuilds(t, tmp)

	_, _, err := execute(t, "analyze", "-w", tmp, "--issue", "PROJ-1", failing)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "--domain")
	assert.Contains(t, err.Error(), "BUILDHEALTH_TOKEN")
	assert.NotContains(t, err.Error(), "--issue")
}

func TestAnalyze_PublishesToJira(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	failing, passing := writeBuilds(t, tmp)

	var gotPath, gotMethod, gotUser, gotPass string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		gotUser, gotPass, _ = r.BasicAuth()
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("BUILDHEALTH_TOKEN", "secret")

	out, _, err := execute(t, "analyze", "-w", tmp, "--no-history",
		"--issue", "PROJ-1", "--domain", srv.URL, "--email", "ci@example.com",
		failing, passing)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/rest/api/3/issue/PROJ-1/properties/build_health_data", gotPath)
	assert.Equal(t, "ci@example.com", gotUser)
	assert.Equal(t, "secret", gotPass)
	require.Contains(t, gotBody, "summary")
	assert.EqualValues(t, 90, gotBody["summary"].(map[string]any)["score"])

	assert.Contains(t, out, "Uploading data to Jira issue PROJ-1...")
	assert.Contains(t, out, "Successfully uploaded build health data to Jira.")
	assert.Contains(t, out, "Status Code: 200")
}

func TestAnalyze_UploadFailureExitsWithError(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	failing, _ := writeBuilds(t, tmp)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad credentials"))
	}))
	defer srv.Close()

	stdout, stderr, err := execute(t, "analyze", "-w", tmp, "--no-history",
		"--issue", "PROJ-1", "--domain", srv.URL, "--email", "ci@example.com", "--token", "nope",
		failing)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpload)
	assert.Contains(t, stdout, "Error uploading to Jira")
	assert.Contains(t, stdout, "Response Status: 401")
	assert.Contains(t, stdout, "Response Body: bad credentials")
	assert.NotContains(t, stderr, "Response Body")
}

func TestAnalyze_JSONFormatAndHistoryAcrossRuns(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	failing, passing := writeBuilds(t, tmp)

	_, _, err := execute(t, "analyze", "-w", tmp, "--dry-run", "--format", "json", failing)
	require.NoError(t, err)

	out, _, err := execute(t, "analyze", "-w", tmp, "--dry-run", "--format", "json", passing)
	require.NoError(t, err)

	var res struct {
		DryRun  bool                `json:"dry_run"`
		Payload domain.HealthReport `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	assert.True(t, res.DryRun)
	assert.Equal(t, 100, res.Payload.Summary.Score)
	assert.Equal(t, domain.StatusPass, res.Payload.Summary.Status)
	assert.Equal(t, []string{"test_a"}, res.Payload.FlakyTests)

	list, _, err := execute(t, "reports", "list", "-w", tmp)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(list, "\n- "), list)
}

func TestAnalyze_UnknownFormat(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	failing, _ := writeBuilds(t, tmp)

	_, _, err := execute(t, "analyze", "-w", tmp, "--dry-run", "--format", "xml", failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestShow_Query(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"key":"build_health_data","value":{"summary":{"score":90,"status":"FAIL","totalDuration":3.5},"flakyTests":[],"currentFailures":[]}}`))
	}))
	defer srv.Close()

	t.Setenv("BUILDHEALTH_ISSUE", "PROJ-1")
	t.Setenv("BUILDHEALTH_DOMAIN", srv.URL)
	t.Setenv("BUILDHEALTH_EMAIL", "ci@example.com")
	t.Setenv("BUILDHEALTH_TOKEN", "secret")

	out, _, err := execute(t, "show", "-w", tmp, "-q", "$.summary.score")
	require.NoError(t, err)
	assert.Equal(t, "90\n", out)
}

func TestConfigFileSuppliesCredentials(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "creds.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("issue: PROJ-7\ndomain: example.atlassian.net\nemail: a@b.c\n"), 0o600))

	failing, _ := writeBuilds(t, tmp)

	// token is still missing, so the error lists only it.
	_, _, err := execute(t, "analyze", "-w", tmp, "--config", cfgPath, failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--token")
	assert.NotContains(t, err.Error(), "--domain")
	assert.NotContains(t, err.Error(), "--issue")
}

func TestReportsList_Empty(t *testing.T) {
	clearEnv(t)
	out, _, err := execute(t, "reports", "list", "-w", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "(no reports found)")
}

func TestInitCmd_CreatesWorkspace(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()

	out, _, err := execute(t, "init", "-w", tmp, "--path", tmp)
	require.NoError(t, err)
	assert.Contains(t, out, "Workspace initialized at "+tmp)
	assert.FileExists(t, filepath.Join(tmp, ".buildhealth.yaml"))
	assert.DirExists(t, filepath.Join(tmp, "reports"))
}

func TestInitCmd_Flags(t *testing.T) {
	cmd := initCmd()
	assert.NotNil(t, cmd.Flags().Lookup("path"))
	assert.NotNil(t, cmd.Flags().Lookup("force"))
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "buildhealth "), out)
}

func TestJiraSettings_Validate(t *testing.T) {
	s := jiraSettings{Issue: "PROJ-1", Domain: "x.atlassian.net", Email: "a@b.c", Token: "t"}
	assert.NoError(t, s.validate())

	s.Token = ""
	err := s.validate()
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidConfig))
	assert.Equal(t, []string{"token"}, s.missing())
}

func TestResolveWorkspaceRoot_ExplicitPath(t *testing.T) {
	tmp := t.TempDir()
	got, found, err := resolveWorkspaceRoot(tmp)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, tmp, got)
}

func TestResolveWorkspaceRoot_RelativePath(t *testing.T) {
	got, _, err := resolveWorkspaceRoot(".")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), got)
}

func TestWorkspaceHistoryPath(t *testing.T) {
	ws := &workspaceCtx{root: "/ws", found: true, cfg: domain.DefaultConfig()}

	p, err := ws.historyPath("", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/ws", ".buildhealth", "history.db"), p)

	p, err = ws.historyPath("", true)
	require.NoError(t, err)
	assert.Empty(t, p)

	ws.found = false
	p, err = ws.historyPath("", false)
	require.NoError(t, err)
	assert.Empty(t, p)

	p, err = ws.historyPath("/tmp/h.db", false)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/h.db", p)
}

func TestHistoryPrune(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	failing, passing := writeBuilds(t, tmp)

	for _, f := range []string{failing, passing, passing} {
		_, _, err := execute(t, "analyze", "-w", tmp, "--dry-run", "--no-save", f)
		require.NoError(t, err)
	}

	out, _, err := execute(t, "history", "prune", "-w", tmp, "--keep", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 run(s)")

	// The failing run is gone, so test_a is no longer flaky.
	out, _, err = execute(t, "analyze", "-w", tmp, "--dry-run", "--no-save", "--format", "json", passing)
	require.NoError(t, err)
	var res struct {
		Payload domain.HealthReport `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	assert.Empty(t, res.Payload.FlakyTests)
}

func TestHistoryPrune_EmptyDatabase(t *testing.T) {
	clearEnv(t)
	out, _, err := execute(t, "history", "prune", "-w", t.TempDir(), "--keep", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 run(s)")
}
