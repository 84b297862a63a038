package harvest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/mrf-harvester/internal/config"
	"github.com/jonathan/mrf-harvester/internal/discovery"
	"github.com/jonathan/mrf-harvester/internal/types"
)

// newHospitalServer serves a cms-hpt.txt pointing at one CSV payload on
// the same server.
func newHospitalServer(t *testing.T) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cms-hpt.txt":
			fmt.Fprintf(w, "mrf-url: %s/files/charges.csv\n", server.URL)
		case "/files/charges.csv":
			fmt.Fprint(w, "code,price\n1,100\n")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, systems map[string]string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Systems = systems
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.RequestDelaySeconds = 0
	return cfg
}

func TestRun_DownloadsDiscoveredFiles(t *testing.T) {
	server := newHospitalServer(t)
	cfg := testConfig(t, map[string]string{"Test Hospital": server.URL})

	run, err := Run(context.Background(), cfg, Hooks{})
	require.NoError(t, err)

	require.Len(t, run.Domains, 1)
	domain := run.Domains[0]
	assert.Equal(t, types.MetadataOK, domain.MetadataStatus)
	require.Len(t, domain.Downloads, 1)
	assert.Equal(t, types.OutcomeDownloaded, domain.Downloads[0].Outcome)

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "Test_Hospital_charges.csv"))
	require.NoError(t, err)
	assert.Equal(t, "code,price\n1,100\n", string(data))

	totals := run.Totals()
	assert.Equal(t, 1, totals.Downloaded)
	assert.Zero(t, totals.Failed)
	assert.NotEmpty(t, run.RunID)
}

func TestRun_SecondRunSkips(t *testing.T) {
	server := newHospitalServer(t)
	cfg := testConfig(t, map[string]string{"Test Hospital": server.URL})

	first, err := Run(context.Background(), cfg, Hooks{})
	require.NoError(t, err)
	require.Equal(t, 1, first.Totals().Downloaded)

	second, err := Run(context.Background(), cfg, Hooks{})
	require.NoError(t, err)
	totals := second.Totals()
	assert.Zero(t, totals.Downloaded)
	assert.Equal(t, 1, totals.Skipped)
}

func TestRun_MissingMetadataDoesNotAbortSiblings(t *testing.T) {
	missing := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(missing.Close)
	working := newHospitalServer(t)

	cfg := testConfig(t, map[string]string{
		"A Missing Hospital": missing.URL,
		"B Working Hospital": working.URL,
	})

	run, err := Run(context.Background(), cfg, Hooks{})
	require.NoError(t, err)
	require.Len(t, run.Domains, 2)

	// Name-sorted order
	assert.Equal(t, "A Missing Hospital", run.Domains[0].System)
	assert.Equal(t, types.MetadataNotFound, run.Domains[0].MetadataStatus)
	assert.Empty(t, run.Domains[0].Downloads)

	assert.Equal(t, "B Working Hospital", run.Domains[1].System)
	assert.Equal(t, 1, run.Totals().Downloaded)
}

func TestRun_FiresHooks(t *testing.T) {
	server := newHospitalServer(t)
	cfg := testConfig(t, map[string]string{"Test Hospital": server.URL})

	var domains []string
	var outcomes []types.Outcome
	var sawDiscovery bool
	hooks := Hooks{
		OnDomain:    func(system, _ string) { domains = append(domains, system) },
		OnDiscovery: func(r *discovery.Result) { sawDiscovery = true },
		OnOutcome:   func(r types.DownloadReport) { outcomes = append(outcomes, r.Outcome) },
	}

	_, err := Run(context.Background(), cfg, hooks)
	require.NoError(t, err)
	assert.Equal(t, []string{"Test Hospital"}, domains)
	assert.True(t, sawDiscovery)
	assert.Equal(t, []types.Outcome{types.OutcomeDownloaded}, outcomes)
}

func TestRun_CreatesOutputDir(t *testing.T) {
	server := newHospitalServer(t)
	cfg := testConfig(t, map[string]string{"Test Hospital": server.URL})

	_, err := Run(context.Background(), cfg, Hooks{})
	require.NoError(t, err)

	info, err := os.Stat(cfg.OutputDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRun_CancelledContextStopsEarly(t *testing.T) {
	server := newHospitalServer(t)
	cfg := testConfig(t, map[string]string{
		"A Hospital": server.URL,
		"B Hospital": server.URL,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := Run(ctx, cfg, Hooks{})
	require.NoError(t, err)
	// At most the first domain was attempted before the cancellation
	// was observed.
	assert.LessOrEqual(t, len(run.Domains), 1)
}
