package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/basekick-labs/gridtab/internal/config"
)

// New creates the backend selected by cfg.Backend.
func New(cfg *config.StorageConfig, logger zerolog.Logger) (Backend, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocalBackend(cfg.LocalPath, logger)
	case "s3":
		return NewS3Backend(&S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
		}, logger)
	case "azure":
		return NewAzureBlobBackend(&AzureBlobConfig{
			ConnectionString:   cfg.AzureConnectionString,
			AccountName:        cfg.AzureAccountName,
			AccountKey:         cfg.AzureAccountKey,
			SASToken:           cfg.AzureSASToken,
			UseManagedIdentity: cfg.AzureUseManagedIdentity,
			ContainerName:      cfg.AzureContainer,
			Endpoint:           cfg.AzureEndpoint,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

var contentTypes = map[string]string{
	".parquet": "application/vnd.apache.parquet",
	".arrows":  "application/vnd.apache.arrow.stream",
	".json":    "application/json",
	".csv":     "text/csv",
	".msgpack": "application/msgpack",
	".xml":     "application/xml",
	".zip":     "application/zip",
}

// ContentTypeFor guesses an object's content type from its extension.
func ContentTypeFor(p string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(p))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ObjectKey returns a unique key of the form
// <prefix>/<yyyy>/<mm>/<dd>/<uuid><ext>, partitioned by the UTC date of now.
func ObjectKey(prefix string, now time.Time, ext string) string {
	now = now.UTC()
	return path.Join(
		strings.Trim(prefix, "/"),
		fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day()),
		uuid.NewString()+ext,
	)
}

// OutputKey maps a source object under srcPrefix to a key under dstPrefix
// with ext replacing the source extension, so reconverting a source
// overwrites its previous output.
func OutputKey(src, srcPrefix, dstPrefix, ext string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(src, srcPrefix), "/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	return path.Join(strings.Trim(dstPrefix, "/"), rel+ext)
}
