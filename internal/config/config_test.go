package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validViper() *viper.Viper {
	v := viper.New()
	applyDefaults(v)
	v.Set("data_dir", "/tmp/lessonplan")
	return v
}

func TestCheckConfigValidityValid(t *testing.T) {
	if err := CheckConfigValidity(validViper()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestCheckConfigValidityInvalid(t *testing.T) {
	v := viper.New()
	v.Set("data_dir", "")
	v.Set("http_addr", "")
	v.Set("server_url", "localhost:5000")
	v.Set("request_timeout", "soon")
	v.Set("output", "pdf")
	v.Set("auth.key_provider", "vault")
	v.Set("retrieval.max_chunks", 0)
	v.Set("ingest.chunk_size", 10)
	v.Set("ingest.chunk_overlap", 10)
	v.Set("server.max_body_bytes", 0)
	v.Set("history.limit", 0)

	err := CheckConfigValidity(v)
	if err == nil {
		t.Fatalf("expected error for invalid config")
	}

	msg := err.Error()
	expected := []string{
		"data_dir is required",
		"http_addr is required",
		"server_url must be an http(s) URL",
		"request_timeout must be a positive duration",
		"output must be one of pretty|html|markdown|plain|json|yaml",
		"auth.key_provider must be config or keyring",
		"retrieval.max_chunks must be greater than 0",
		"ingest.chunk_overlap must be between 0 and chunk_size-1",
		"server.max_body_bytes must be greater than 0",
		"history.limit must be greater than 0",
	}
	for _, want := range expected {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected error to contain %q, got %q", want, msg)
		}
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("server_url = \"http://file:1\"\noutput = \"html\"\n[retrieval]\nmax_chunks = 7\n"), 0o600))
	t.Setenv("LESSONPLAN_OUTPUT", "json")

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, Load(context.Background(), v))

	assert.Equal(t, "http://file:1", v.GetString("server_url"))
	assert.Equal(t, "json", v.GetString("output"))
	assert.Equal(t, 7, v.GetInt("retrieval.max_chunks"))
	assert.Equal(t, 300, v.GetInt("ingest.chunk_size"))
	assert.Equal(t, filepath.Join(dir, "data", "lessonplan"), v.GetString("data_dir"))
	assert.Equal(t, filepath.Join(dir, "data", "lessonplan", "lessonplan.db"), ResolveDBPath(v))
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, Load(context.Background(), v))
	assert.Equal(t, "pretty", v.GetString("output"))
}

func TestLoad_BrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("server_url = = ="), 0o600))
	v := viper.New()
	v.SetConfigFile(path)
	assert.Error(t, Load(context.Background(), v))
}

func TestResolveDownloadDir(t *testing.T) {
	v := viper.New()
	assert.Equal(t, ".", ResolveDownloadDir(v))
	v.Set("download_dir", "/srv/plans")
	assert.Equal(t, "/srv/plans", ResolveDownloadDir(v))
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	v.Set("download_dir", "~/plans")
	assert.Equal(t, filepath.Join(home, "plans"), ResolveDownloadDir(v))
}

func TestRenderDefaultTOML_RoundTrips(t *testing.T) {
	text := RenderDefaultTOML()
	assert.Contains(t, text, "[auth]\n")
	assert.Contains(t, text, "# Chunk window size in words\nchunk_size = 300\n")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	assert.Equal(t, "http://127.0.0.1:5000", v.GetString("server_url"))
	assert.Equal(t, 50, v.GetInt("ingest.chunk_overlap"))
	assert.True(t, v.GetBool("ui.spinner"))

	_, changed := UpdateTOML(text)
	assert.False(t, changed)
}

func TestUpdateTOML(t *testing.T) {
	in := strings.Join([]string{
		`server_url = "http://example:9"`,
		`namespace = "old"`,
		`[auth]`,
		`token = "abc"`,
	}, "\n")
	got, changed := UpdateTOML(in)
	require.True(t, changed)
	assert.Contains(t, got, `server_url = "http://example:9"`)
	assert.Contains(t, got, "# OUTDATED: option removed from config schema\n# namespace = \"old\"")
	assert.Contains(t, got, "# Added by config update")
	assert.Contains(t, got, "key_provider = \"config\"")
	assert.Equal(t, 1, strings.Count(got, `token = "abc"`))
	assert.NotContains(t, got, "\ntoken = \"\"")
	assert.Equal(t, 1, strings.Count(got, "[auth]"))
}
