package config

import "strings"

// SourceConfig represents where inbound messages are read from
type SourceConfig struct {
	Bucket string
	Key    string
	Prefix string
}

// DestinationConfig represents where accepted attachments are written
type DestinationConfig struct {
	Bucket        string
	CurrentPrefix string
	ArchivePrefix string
}

// RoutingConfig represents attachment classification and archival keying
type RoutingConfig struct {
	Extensions []string
	Timezone   string
	DateFormat string
}

// StorageConfig represents the object storage backend
type StorageConfig struct {
	Type string
	Root string
}

// AWSConfig represents the configuration for Amazon S3
type AWSConfig struct {
	Region          string
	Endpoint        string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
}

// VerificationConfig represents the sender header checks
type VerificationConfig struct {
	Enabled bool
	Headers map[string]string
}

// LedgerConfig represents the processed-message ledger
type LedgerConfig struct {
	Enabled    bool
	Type       string
	SQLitePath string
	MySQLDSN   string
	S3Prefix   string
}

// GetSource returns the source configuration
func (c *Config) GetSource() SourceConfig {
	return SourceConfig{
		Bucket: c.GetString("source.bucket"),
		Key:    c.GetString("source.key"),
		Prefix: c.GetString("source.prefix"),
	}
}

// GetDestination returns the destination configuration.
// The destination bucket falls back to the source bucket.
func (c *Config) GetDestination() DestinationConfig {
	bucket := c.GetString("destination.bucket")
	if bucket == "" {
		bucket = c.GetString("source.bucket")
	}
	return DestinationConfig{
		Bucket:        bucket,
		CurrentPrefix: c.GetString("destination.current_prefix"),
		ArchivePrefix: c.GetString("destination.archive_prefix"),
	}
}

// GetRouting returns the routing configuration
func (c *Config) GetRouting() RoutingConfig {
	var extensions []string
	for _, ext := range c.GetStringSlice("routing.extensions") {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			extensions = append(extensions, ext)
		}
	}
	return RoutingConfig{
		Extensions: extensions,
		Timezone:   c.GetString("routing.timezone"),
		DateFormat: c.GetString("routing.date_format"),
	}
}

// GetStorage returns the storage configuration
func (c *Config) GetStorage() StorageConfig {
	return StorageConfig{
		Type: c.GetString("storage.type"),
		Root: c.GetString("storage.root"),
	}
}

// GetAWS returns the AWS configuration
func (c *Config) GetAWS() AWSConfig {
	return AWSConfig{
		Region:          c.GetString("aws.region"),
		Endpoint:        c.GetString("aws.endpoint"),
		UsePathStyle:    c.GetBool("aws.use_path_style"),
		AccessKeyID:     c.GetString("aws.access_key_id"),
		SecretAccessKey: c.GetString("aws.secret_access_key"),
	}
}

// GetVerification returns the verification configuration
func (c *Config) GetVerification() VerificationConfig {
	return VerificationConfig{
		Enabled: c.GetBool("verification.enabled"),
		Headers: c.GetStringMapString("verification.headers"),
	}
}

// GetLedger returns the ledger configuration
func (c *Config) GetLedger() LedgerConfig {
	return LedgerConfig{
		Enabled:    c.GetBool("ledger.enabled"),
		Type:       c.GetString("ledger.type"),
		SQLitePath: c.GetString("ledger.sqlite_path"),
		MySQLDSN:   c.GetString("ledger.mysql_dsn"),
		S3Prefix:   c.GetString("ledger.s3_prefix"),
	}
}
