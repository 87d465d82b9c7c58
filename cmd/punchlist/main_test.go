package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	t.Setenv("PUNCHLIST_CONFIG_PATH", "")

	cmd := rootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

const bundleJSON = `{
  "version": 1,
  "project": {"id": "1700000000000-abcd1234", "title": "Flat 8", "finish_mode": "draft"},
  "overlays": {
    "floor-screed-level": {"status": "complies", "user_photos": [], "user_comment": "", "timestamp": "2024-01-01T00:00:00Z"},
    "floor-screed-cracks": {"status": "defect", "user_photos": ["photo://1"], "user_comment": "wide", "timestamp": "2024-01-01T00:00:00Z"}
  }
}`

func TestImportStatsExport(t *testing.T) {
	db := filepath.Join(t.TempDir(), "punchlist.db")

	out := runCLI(t, bundleJSON, "--db", db, "import")
	require.Contains(t, out, "imported 2 overlays")

	out = runCLI(t, "", "--db", db, "stats", "--phase", "draft")
	require.Contains(t, out, "Flat 8")
	require.Regexp(t, `floor\s+2\s+3\s+1\s+67%`, out)

	exported := filepath.Join(t.TempDir(), "export.json")
	runCLI(t, "", "--db", db, "export", "--out", exported)

	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	var bundle struct {
		Project struct {
			Title string `json:"title"`
		} `json:"project"`
		Overlays map[string]json.RawMessage `json:"overlays"`
	}
	require.NoError(t, json.Unmarshal(data, &bundle))
	require.Equal(t, "Flat 8", bundle.Project.Title)
	require.Len(t, bundle.Overlays, 2)
}

func TestCatalogAndSearch(t *testing.T) {
	out := runCLI(t, "", "--ephemeral", "catalog")
	require.Contains(t, out, "floor")
	require.Contains(t, out, "plumbing")

	out = runCLI(t, "", "--ephemeral", "catalog", "--category", "doors", "--phase", "finish")
	require.Contains(t, out, "doors-leaf-gaps")
	require.NotContains(t, out, "doors-opening-geometry")

	out = runCLI(t, "", "--ephemeral", "search", "delamination")
	require.Contains(t, out, "floor-screed-delamination")
}

func TestStatsWithoutProject(t *testing.T) {
	t.Setenv("PUNCHLIST_CONFIG_PATH", "")
	cmd := rootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--ephemeral", "stats"})
	require.Error(t, cmd.Execute())
}

func TestLogFileWriterKeepsTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "punchlist.log")
	w, file, err := newLogFileWriter(path)
	require.NoError(t, err)
	defer file.Close()
	w.max, w.keep = 16, 8

	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)
	_, err = w.Write([]byte("abcdefghij"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "cdefghij", string(data))
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, "DEBUG", parseLogLevel("debug").String())
	require.Equal(t, "WARN", parseLogLevel("warn").String())
	require.Equal(t, "INFO", parseLogLevel("bogus").String())
}
