package storage

import "time"

// Config holds configuration for the storage provider.
type Config struct {
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket ebooks are stored in.
	Bucket string `mapstructure:"bucket" default:"ebooks"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// DownloadExpirySeconds is the lifetime of presigned download URLs.
	DownloadExpirySeconds int `mapstructure:"download_expiry_seconds" default:"10"`
}

// Host returns the endpoint without its scheme, as MinIO expects it.
func (c Config) Host() string {
	return trimScheme(c.Endpoint)
}

// Timeout returns the connection timeout, falling back to thirty seconds.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DownloadExpiry returns the presigned URL lifetime, falling back to ten seconds.
func (c Config) DownloadExpiry() time.Duration {
	if c.DownloadExpirySeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.DownloadExpirySeconds) * time.Second
}
