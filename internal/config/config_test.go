package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves into an empty directory so no gridtab.toml is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })
	return dir
}

func TestGetDefaultWorkers(t *testing.T) {
	expected := runtime.NumCPU()
	if expected < 2 {
		expected = 2
	}
	if expected > 32 {
		expected = 32
	}
	if actual := getDefaultWorkers(); actual != expected {
		t.Errorf("getDefaultWorkers() = %d, want %d", actual, expected)
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(256*1024*1024), cfg.Server.MaxPayloadSize)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, getDefaultWorkers(), cfg.Transform.Workers)
	assert.True(t, cfg.Transform.SortBundles)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "snappy", cfg.Output.Compression)
	assert.Equal(t, "2.0", cfg.Output.DataPageVersion)
	assert.False(t, cfg.Inbox.Enabled)
	assert.Equal(t, "inbox/", cfg.Inbox.Prefix)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GRIDTAB_SERVER_PORT", "9100")
	t.Setenv("GRIDTAB_TRANSFORM_WORKERS", "3")
	t.Setenv("GRIDTAB_OUTPUT_FORMAT", "parquet")
	t.Setenv("GRIDTAB_INBOX_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Transform.Workers)
	assert.Equal(t, "parquet", cfg.Output.Format)
	assert.True(t, cfg.Inbox.Enabled)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	content := `
[server]
port = 9200

[storage]
backend = "s3"
s3_bucket = "grid"

[output]
compression = "zstd"

[inbox]
enabled = true
schedule = "0 * * * *"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gridtab.toml"), []byte(content), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "grid", cfg.Storage.S3Bucket)
	assert.Equal(t, "zstd", cfg.Output.Compression)
	assert.Equal(t, "0 * * * *", cfg.Inbox.Schedule)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidPayloadSize(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GRIDTAB_SERVER_MAX_PAYLOAD_SIZE", "1TB")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdirTemp(t)

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad backend", func(c *Config) { c.Storage.Backend = "ftp" }, "storage.backend"},
		{"bad workers", func(c *Config) { c.Transform.Workers = 0 }, "transform.workers"},
		{"bad format", func(c *Config) { c.Output.Format = "xlsx" }, "output.format"},
		{"bad compression", func(c *Config) { c.Output.Compression = "lz4" }, "output.compression"},
		{"bad page version", func(c *Config) { c.Output.DataPageVersion = "3.0" }, "data_page_version"},
		{"bad schedule", func(c *Config) { c.Inbox.Enabled = true; c.Inbox.Schedule = "every minute" }, "inbox.schedule"},
		{"same prefixes", func(c *Config) { c.Inbox.Enabled = true; c.Inbox.OutputPrefix = c.Inbox.Prefix }, "must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestServerConfig_ValidateTLS(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(cert, []byte("cert"), 0600))
	require.NoError(t, os.WriteFile(key, []byte("key"), 0600))

	tests := []struct {
		name    string
		cfg     ServerConfig
		wantErr bool
	}{
		{"disabled", ServerConfig{}, false},
		{"missing cert", ServerConfig{TLSEnabled: true, TLSKeyFile: key}, true},
		{"missing key", ServerConfig{TLSEnabled: true, TLSCertFile: cert}, true},
		{"cert not found", ServerConfig{TLSEnabled: true, TLSCertFile: filepath.Join(dir, "nope"), TLSKeyFile: key}, true},
		{"cert is dir", ServerConfig{TLSEnabled: true, TLSCertFile: dir, TLSKeyFile: key}, true},
		{"valid", ServerConfig{TLSEnabled: true, TLSCertFile: cert, TLSKeyFile: key}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateTLS()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTLS() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1GB", 1024 * 1024 * 1024, false},
		{"500MB", 500 * 1024 * 1024, false},
		{"100kb", 100 * 1024, false},
		{"42", 42, false},
		{"1.5MB", 1572864, false},
		{"", 0, true},
		{"1TB", 0, true},
		{"-1MB", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
