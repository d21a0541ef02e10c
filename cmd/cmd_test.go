package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavhermans/clashofclans/coc"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    map[string]string
		wantErr string
	}{
		{name: "empty", raw: nil, want: map[string]string{}},
		{name: "pairs", raw: []string{"name=coconut", "limit=5"}, want: map[string]string{"name": "coconut", "limit": "5"}},
		{name: "value with equals", raw: []string{"after=eyJwb3MiOjV9=="}, want: map[string]string{"after": "eyJwb3MiOjV9=="}},
		{name: "empty value", raw: []string{"name="}, want: map[string]string{"name": ""}},
		{name: "missing equals", raw: []string{"name"}, wantErr: "expected key=value"},
		{name: "missing key", raw: []string{"=x"}, wantErr: "expected key=value"},
		{name: "duplicate", raw: []string{"limit=1", "limit=2"}, wantErr: "more than once"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// apiServer serves the coc fixtures and counts requests
func apiServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	fixture := func(name string) []byte {
		data, err := os.ReadFile(filepath.Join("..", "coc", "testdata", name))
		require.NoError(t, err)
		return data
	}

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "max-age=120")

		switch r.URL.Path {
		case "/v1/clans":
			w.Write(fixture("search_clans.json"))
		case "/v1/clans/#2PPC8L2QP":
			w.Write(fixture("clan.json"))
		case "/v1/clans/#2PPC8L2QP/currentwar":
			w.Write(fixture("notinwar.json"))
		case "/v1/clans/#2PPC8L2QP/warlog":
			w.Write(fixture("warlog.json"))
		case "/v1/locations":
			w.Write(fixture("locations.json"))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"reason":"notFound"}`))
		}
	}))
	t.Cleanup(server.Close)

	return server, &requests
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api:\n  base_url: " + baseURL + "\n  token: test-token\nlogging:\n  level: error\n  color: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// resetFlags restores flag defaults so commands can run again in one process
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		resetFlags(rootCmd)
		client = nil
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestClansSearchJSON(t *testing.T) {
	server, requests := apiServer(t)
	cfgPath := writeConfig(t, server.URL+"/v1")

	out, _, err := execute(t, "clans", "search", "--config", cfgPath, "-o", "json",
		"-p", "name=coconut", "--where", `WarWins > 100 && hasLabel("Competitive")`)
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())

	var page coc.Paginator[coc.Clan]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "#PYCGG8LY", page.Items[0].Tag)
}

func TestClansSearchRejectsUnknownOption(t *testing.T) {
	server, requests := apiServer(t)
	cfgPath := writeConfig(t, server.URL+"/v1")

	_, _, err := execute(t, "clans", "search", "--config", cfgPath, "-p", "clanTag=#2PPC8L2QP")
	require.Error(t, err)

	var queryErr *coc.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, []string{"clanTag"}, queryErr.Options)
	assert.Zero(t, requests.Load())
}

func TestClansSearchInvalidFilter(t *testing.T) {
	server, requests := apiServer(t)
	cfgPath := writeConfig(t, server.URL+"/v1")

	_, _, err := execute(t, "clans", "search", "--config", cfgPath, "--where", "WarWins >")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter")
	assert.Zero(t, requests.Load())
}

func TestClansGetMembers(t *testing.T) {
	server, _ := apiServer(t)
	cfgPath := writeConfig(t, server.URL+"/v1")

	out, _, err := execute(t, "clans", "get", "#2PPC8L2QP", "--config", cfgPath,
		"--members", "--where", `hasRole("admin")`)
	require.NoError(t, err)
	assert.Contains(t, out, "#2PPC8L2QP")
	assert.Contains(t, out, "1 member:")
	assert.Contains(t, out, "#YG89GUJQV")
	assert.NotContains(t, out, "#28GU9UY2Y")
}

func TestClansGetNotFound(t *testing.T) {
	server, _ := apiServer(t)
	cfgPath := writeConfig(t, server.URL+"/v1")

	_, _, err := execute(t, "clans", "get", "#NOPE", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clan #NOPE not found")
}

func TestWarCurrentNotInWar(t *testing.T) {
	server, _ := apiServer(t)
	cfgPath := writeConfig(t, server.URL+"/v1")

	out, _, err := execute(t, "war", "current", "#2PPC8L2QP", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "is not in war")
}

func TestWarLogRejectsClanTagParam(t *testing.T) {
	server, requests := apiServer(t)
	cfgPath := writeConfig(t, server.URL+"/v1")

	_, _, err := execute(t, "war", "log", "#2PPC8L2QP", "--config", cfgPath, "-p", "clanTag=#OTHER")
	require.Error(t, err)
	assert.Zero(t, requests.Load())
}

func TestLocationsFind(t *testing.T) {
	server, _ := apiServer(t)
	cfgPath := writeConfig(t, server.URL+"/v1")

	out, stderr, err := execute(t, "locations", "find", "FR", "--config", cfgPath, "--show-response")
	require.NoError(t, err)
	assert.Contains(t, out, "32000087")
	assert.Contains(t, stderr, "HTTP 200")
	assert.Contains(t, stderr, "Cache-Control: max-age=120")
}

func TestInvalidOutputFormat(t *testing.T) {
	server, _ := apiServer(t)
	cfgPath := writeConfig(t, server.URL+"/v1")

	_, _, err := execute(t, "locations", "list", "--config", cfgPath, "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestVersionSkipsConfig(t *testing.T) {
	SetVersion("v1.2.3", "2026-01-01")

	out, _, err := execute(t, "version", "--config", "/does/not/exist.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "clashofclans v1.2.3 (built 2026-01-01")
}

func TestUpdateRefusesDevBuild(t *testing.T) {
	SetVersion("dev", "unknown")

	_, _, err := execute(t, "update")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot update development build")
}
