package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.Systems)
	assert.Equal(t, "hospital_mrf_seattle", cfg.OutputDir)
	assert.Equal(t, 2*time.Second, cfg.RequestDelay())
	assert.Equal(t, 30*time.Second, cfg.MetadataTimeout())
	assert.Equal(t, 120*time.Second, cfg.DownloadTimeout())
	assert.Equal(t, 8*1024, cfg.ChunkSize)
}

func TestLoadConfig_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"systems": {"Test Hospital": "https://test.example"},
		"output_dir": "out",
		"request_delay_seconds": 0
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, map[string]string{"Test Hospital": "https://test.example"}, cfg.Systems)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Zero(t, cfg.RequestDelaySeconds)
	// Unspecified fields keep defaults
	assert.Equal(t, 120, cfg.DownloadTimeoutSeconds)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate_RejectsEmptySystems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Systems = map[string]string{}
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonHTTPSBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Systems = map[string]string{"Bad": "ftp://files.example"}
	assert.Error(t, cfg.Validate())

	cfg.Systems = map[string]string{"Plain": "http://files.example"}
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsMissingOutputDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDir = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_BrowserRequiresDeep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseBrowser = true
	assert.Error(t, cfg.Validate())

	cfg.Deep = true
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("MRF_OUTPUT_DIR", "env_out")
	t.Setenv("MRF_REQUEST_DELAY", "5")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "env_out", cfg.OutputDir)
	assert.Equal(t, 5, cfg.RequestDelaySeconds)
}

func TestApplyEnv_RejectsBadDelay(t *testing.T) {
	t.Setenv("MRF_REQUEST_DELAY", "soon")

	cfg := DefaultConfig()
	assert.Error(t, cfg.ApplyEnv())
}
