package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "budget,genre,genres,homepage,id,imdb_id,original_language,overview,popularity,poster_path,production_countries,release_date,revenue,runtime,tagline,title,vote_average,vote_count"

const moviesCSV = header + `
50,Drama,[],NA,1,tt1,en,NA,1.0,NA,[],2001-05-01,150,90,NA,One,5.0,3
300,Action,[],NA,2,tt2,en,NA,2.0,NA,[],2003-07-09,200,120,NA,Two,6.0,8
10,Comedy,[],NA,3,tt3,en,NA,3.0,NA,[],1995-01-01,20,80,NA,Old,7.0,9
`

func setupEnv(t *testing.T, csv string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "movies.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	t.Setenv("DATA_SOURCE", "csv")
	t.Setenv("DATASET_PATH", path)
	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "moviechart.db"))
	t.Setenv("AMQP_URL", "")
	t.Setenv("PARSE_ERROR_POLICY", "fail")
	color.NoColor = true
	return path
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestPrepare_Table(t *testing.T) {
	setupEnv(t, moviesCSV)

	out, errOut, err := execute(t, "prepare")
	require.NoError(t, err)
	assert.Contains(t, out, "Budget and Revenue over time in $US")
	assert.Contains(t, out, "2001")
	assert.Contains(t, out, "2003")
	assert.NotContains(t, out, "1995")
	assert.Contains(t, errOut, "2 films kept from 3 rows across 2 years")
}

func TestPrepare_JSON(t *testing.T) {
	setupEnv(t, moviesCSV)

	out, _, err := execute(t, "prepare", "--format", "json")
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, float64(300), body["yMax"])
	assert.Len(t, body["series"], 2)
}

func TestPrepare_FileFlagOverridesEnv(t *testing.T) {
	setupEnv(t, header+"\n")
	other := filepath.Join(t.TempDir(), "other.csv")
	require.NoError(t, os.WriteFile(other, []byte(moviesCSV), 0o644))

	out, _, err := execute(t, "prepare", "--file", other, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"yMax": 300`)
}

func TestPrepare_InvalidRows(t *testing.T) {
	setupEnv(t, moviesCSV+"oops,Drama,[],NA,4,tt4,en,NA,1.0,NA,[],2004-01-01,5,90,NA,Bad,5.0,1\n")

	_, _, err := execute(t, "prepare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 5")

	_, errOut, err := execute(t, "prepare", "--skip-invalid")
	require.NoError(t, err)
	assert.Contains(t, errOut, "1 row skipped")
}

func TestPrepare_EmptyResult(t *testing.T) {
	setupEnv(t, header+"\n")

	out, errOut, err := execute(t, "prepare")
	require.NoError(t, err)
	assert.Contains(t, out, "no data")
	assert.Contains(t, errOut, "no film")
}

func TestPrepare_BadFormat(t *testing.T) {
	setupEnv(t, moviesCSV)
	_, _, err := execute(t, "prepare", "--format", "svg")
	assert.ErrorContains(t, err, "invalid format")
}

func TestRefreshAndSnapshots(t *testing.T) {
	setupEnv(t, moviesCSV)

	_, errOut, err := execute(t, "refresh", "--reason", "first")
	require.NoError(t, err)
	assert.Contains(t, errOut, "snapshot stored")

	_, _, err = execute(t, "refresh", "--reason", "second")
	require.NoError(t, err)

	out, _, err := execute(t, "snapshots", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "second")
	assert.NotContains(t, out, "first")

	out, _, err = execute(t, "snapshots")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "csv:"))
}

func TestSnapshots_Empty(t *testing.T) {
	setupEnv(t, moviesCSV)
	_, errOut, err := execute(t, "snapshots")
	require.NoError(t, err)
	assert.Contains(t, errOut, "no snapshots")
}

func TestSnapshotCommands_StorageDisabled(t *testing.T) {
	setupEnv(t, moviesCSV)
	t.Setenv("SQLITE_DB_PATH", "")

	_, _, err := execute(t, "refresh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set SQLITE_DB_PATH")

	_, _, err = execute(t, "snapshots")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no snapshot store configured")
}

func TestPublish_RequiresBroker(t *testing.T) {
	setupEnv(t, moviesCSV)
	_, _, err := execute(t, "publish")
	assert.ErrorContains(t, err, "AMQP_URL")
}

func TestInvalidConfig(t *testing.T) {
	setupEnv(t, moviesCSV)
	t.Setenv("LOG_FORMAT", "xml")
	_, _, err := execute(t, "prepare")
	assert.ErrorContains(t, err, "invalid log format")
}
