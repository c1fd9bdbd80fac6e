package config

import (
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all configuration for gridtab
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Storage   StorageConfig
	Transform TransformConfig
	Output    OutputConfig
	Inbox     InboxConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    int
	WriteTimeout   int
	MaxPayloadSize int64 // Maximum request payload size in bytes (applies to both compressed and decompressed)
	// TLS Configuration
	TLSEnabled  bool   // Enable HTTPS/TLS
	TLSCertFile string // Path to TLS certificate file (PEM format)
	TLSKeyFile  string // Path to TLS private key file (PEM format)
}

type LogConfig struct {
	Level  string
	Format string
}

type StorageConfig struct {
	Backend   string
	LocalPath string
	// S3/MinIO configuration
	S3Bucket    string
	S3Region    string
	S3Endpoint  string // Custom endpoint for MinIO (e.g., "http://localhost:9000")
	S3AccessKey string // AWS access key (or use AWS_ACCESS_KEY_ID env var)
	S3SecretKey string // AWS secret key (or use AWS_SECRET_ACCESS_KEY env var)
	S3UseSSL    bool   // Use HTTPS for S3 connections
	S3PathStyle bool   // Use path-style addressing (required for MinIO)
	// Azure Blob Storage configuration
	AzureConnectionString   string // Connection string (simplest auth method)
	AzureAccountName        string // Storage account name
	AzureAccountKey         string // Storage account key
	AzureSASToken           string // SAS token for scoped access
	AzureContainer          string // Container name
	AzureEndpoint           string // Custom endpoint (for Azurite testing)
	AzureUseManagedIdentity bool   // Use managed identity (Azure-hosted deployments)
}

type TransformConfig struct {
	Workers       int  // Concurrent bundle members (default: CPU count, min 2, max 32)
	SortBundles   bool // Stable-sort concatenated bundle tables by time
	DescribeCodes bool // Add <column>.meaning columns for known codes
}

type OutputConfig struct {
	Format          string // json, msgpack, csv, parquet, arrow
	Compression     string // Parquet compression: snappy, gzip, zstd
	UseDictionary   bool   // Use dictionary encoding
	WriteStatistics bool   // Write Parquet statistics
	DataPageVersion string // Parquet data page version: 1.0 or 2.0
}

type InboxConfig struct {
	Enabled         bool
	Schedule        string // Cron expression (5 fields)
	Prefix          string // Storage prefix scanned for new documents
	OutputPrefix    string // Storage prefix for converted Parquet files
	DeleteProcessed bool   // Delete source objects after a successful conversion
}

var (
	validBackends = []string{"local", "s3", "azure"}
	validFormats  = []string{"json", "msgpack", "csv", "parquet", "arrow"}
	validCodecs   = []string{"snappy", "gzip", "zstd"}
)

// Load reads configuration from defaults, gridtab.toml and GRIDTAB_* environment
// variables, in increasing precedence.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("GRIDTAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("gridtab")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/gridtab/")
	v.AddConfigPath("$HOME/.gridtab/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	maxPayloadSize, err := ParseSize(v.GetString("server.max_payload_size"))
	if err != nil {
		return nil, fmt.Errorf("invalid server.max_payload_size: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			ReadTimeout:    v.GetInt("server.read_timeout"),
			WriteTimeout:   v.GetInt("server.write_timeout"),
			MaxPayloadSize: maxPayloadSize,
			TLSEnabled:     v.GetBool("server.tls_enabled"),
			TLSCertFile:    v.GetString("server.tls_cert_file"),
			TLSKeyFile:     v.GetString("server.tls_key_file"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Storage: StorageConfig{
			Backend:     v.GetString("storage.backend"),
			LocalPath:   v.GetString("storage.local_path"),
			S3Bucket:    v.GetString("storage.s3_bucket"),
			S3Region:    v.GetString("storage.s3_region"),
			S3Endpoint:  v.GetString("storage.s3_endpoint"),
			S3AccessKey: v.GetString("storage.s3_access_key"),
			S3SecretKey: v.GetString("storage.s3_secret_key"),
			S3UseSSL:    v.GetBool("storage.s3_use_ssl"),
			S3PathStyle: v.GetBool("storage.s3_path_style"),
			// Azure Blob Storage
			AzureConnectionString:   v.GetString("storage.azure_connection_string"),
			AzureAccountName:        v.GetString("storage.azure_account_name"),
			AzureAccountKey:         v.GetString("storage.azure_account_key"),
			AzureSASToken:           v.GetString("storage.azure_sas_token"),
			AzureContainer:          v.GetString("storage.azure_container"),
			AzureEndpoint:           v.GetString("storage.azure_endpoint"),
			AzureUseManagedIdentity: v.GetBool("storage.azure_use_managed_identity"),
		},
		Transform: TransformConfig{
			Workers:       v.GetInt("transform.workers"),
			SortBundles:   v.GetBool("transform.sort_bundles"),
			DescribeCodes: v.GetBool("transform.describe_codes"),
		},
		Output: OutputConfig{
			Format:          v.GetString("output.format"),
			Compression:     v.GetString("output.compression"),
			UseDictionary:   v.GetBool("output.use_dictionary"),
			WriteStatistics: v.GetBool("output.write_statistics"),
			DataPageVersion: v.GetString("output.data_page_version"),
		},
		Inbox: InboxConfig{
			Enabled:         v.GetBool("inbox.enabled"),
			Schedule:        v.GetString("inbox.schedule"),
			Prefix:          v.GetString("inbox.prefix"),
			OutputPrefix:    v.GetString("inbox.output_prefix"),
			DeleteProcessed: v.GetBool("inbox.delete_processed"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.max_payload_size", "256MB")
	v.SetDefault("server.tls_enabled", false)
	v.SetDefault("server.tls_cert_file", "")
	v.SetDefault("server.tls_key_file", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Storage defaults
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local_path", "./data/gridtab")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_use_ssl", true)
	v.SetDefault("storage.s3_path_style", false) // Use virtual-hosted style by default (set true for MinIO)

	// Transform defaults
	v.SetDefault("transform.workers", getDefaultWorkers())
	v.SetDefault("transform.sort_bundles", true)
	v.SetDefault("transform.describe_codes", false)

	// Output defaults
	v.SetDefault("output.format", "json")
	v.SetDefault("output.compression", "snappy")
	v.SetDefault("output.use_dictionary", true)
	v.SetDefault("output.write_statistics", true)
	v.SetDefault("output.data_page_version", "2.0")

	// Inbox defaults
	v.SetDefault("inbox.enabled", false)
	v.SetDefault("inbox.schedule", "*/5 * * * *")
	v.SetDefault("inbox.prefix", "inbox/")
	v.SetDefault("inbox.output_prefix", "tables/")
	v.SetDefault("inbox.delete_processed", false)
}

// getDefaultWorkers scales bundle workers with CPU cores.
func getDefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers < 2 {
		return 2
	}
	if workers > 32 {
		return 32
	}
	return workers
}

// Validate checks values that Load cannot reject on its own.
func (cfg *Config) Validate() error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", cfg.Server.Port)
	}
	if err := cfg.Server.ValidateTLS(); err != nil {
		return err
	}
	if !slices.Contains(validBackends, cfg.Storage.Backend) {
		return fmt.Errorf("invalid storage.backend %q (use one of %s)", cfg.Storage.Backend, strings.Join(validBackends, ", "))
	}
	if cfg.Transform.Workers < 1 {
		return fmt.Errorf("invalid transform.workers: %d", cfg.Transform.Workers)
	}
	if !slices.Contains(validFormats, cfg.Output.Format) {
		return fmt.Errorf("invalid output.format %q (use one of %s)", cfg.Output.Format, strings.Join(validFormats, ", "))
	}
	if !slices.Contains(validCodecs, cfg.Output.Compression) {
		return fmt.Errorf("invalid output.compression %q (use one of %s)", cfg.Output.Compression, strings.Join(validCodecs, ", "))
	}
	if cfg.Output.DataPageVersion != "1.0" && cfg.Output.DataPageVersion != "2.0" {
		return fmt.Errorf("invalid output.data_page_version %q (use 1.0 or 2.0)", cfg.Output.DataPageVersion)
	}
	if cfg.Inbox.Enabled {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(cfg.Inbox.Schedule); err != nil {
			return fmt.Errorf("invalid inbox.schedule %q: %w", cfg.Inbox.Schedule, err)
		}
		if cfg.Inbox.Prefix == cfg.Inbox.OutputPrefix {
			return fmt.Errorf("inbox.prefix and inbox.output_prefix must differ")
		}
	}
	return nil
}

// ValidateTLS validates TLS configuration when TLS is enabled.
// Returns nil if TLS is disabled or if configuration is valid.
func (cfg *ServerConfig) ValidateTLS() error {
	if !cfg.TLSEnabled {
		return nil
	}

	if cfg.TLSCertFile == "" {
		return fmt.Errorf("TLS enabled but server.tls_cert_file not specified")
	}
	if cfg.TLSKeyFile == "" {
		return fmt.Errorf("TLS enabled but server.tls_key_file not specified")
	}

	for _, f := range []struct{ kind, path string }{
		{"certificate", cfg.TLSCertFile},
		{"key", cfg.TLSKeyFile},
	} {
		info, err := os.Stat(f.path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("TLS %s file not found: %s", f.kind, f.path)
			}
			return fmt.Errorf("cannot access TLS %s file %s: %w", f.kind, f.path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("TLS %s path is a directory, not a file: %s", f.kind, f.path)
		}
	}

	return nil
}

// ParseSize parses a human-readable size string (e.g., "1GB", "500MB", "100KB") to bytes.
// Supports: B, KB, MB, GB (case-insensitive).
func ParseSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(strings.ToUpper(sizeStr))
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	units := []struct {
		suffix     string
		multiplier int64
	}{
		{"GB", 1024 * 1024 * 1024},
		{"MB", 1024 * 1024},
		{"KB", 1024},
		{"B", 1},
	}

	for _, unit := range units {
		if strings.HasSuffix(sizeStr, unit.suffix) {
			numStr := strings.TrimSpace(strings.TrimSuffix(sizeStr, unit.suffix))

			var num float64
			var trailing string
			n, _ := fmt.Sscanf(numStr, "%f%s", &num, &trailing)
			if n == 0 {
				return 0, fmt.Errorf("invalid size number: %s", numStr)
			}
			if trailing != "" {
				return 0, fmt.Errorf("invalid size format: %s (use e.g., '1GB', '500MB', '100KB')", sizeStr)
			}
			if num < 0 {
				return 0, fmt.Errorf("size cannot be negative: %s", sizeStr)
			}
			return int64(num * float64(unit.multiplier)), nil
		}
	}

	var num int64
	var trailing string
	n, _ := fmt.Sscanf(sizeStr, "%d%s", &num, &trailing)
	if n == 0 || trailing != "" {
		return 0, fmt.Errorf("invalid size format: %s (use e.g., '1GB', '500MB', '100KB')", sizeStr)
	}
	if num < 0 {
		return 0, fmt.Errorf("size cannot be negative: %s", sizeStr)
	}
	return num, nil
}
