// Package config handles runtime configuration for the backup subsystem:
// defaults, JSON file overlay, command-line flags and environment variables,
// in that order of precedence.
package config

import "time"

// Config holds runtime settings for the jobvault binary.
//
// CloudProvider selects the remote backend: "drive", "s3", or empty to
// disable cloud backup. OAuth fields apply to the drive provider; S3 fields
// to the s3 provider. Secrets (client secret, S3 keys) are normally supplied
// through the environment, not the JSON file.
type Config struct {
	SandboxDir  string
	DatabaseDSN string
	AppVersion  string
	LogLevel    string

	CloudProvider string

	OAuthClientID      string
	OAuthClientSecret  string
	OAuthAuthURL       string
	OAuthTokenURL      string
	OAuthRedirectURL   string
	OAuthScope         string
	TokenRefreshMargin time.Duration

	DriveAPIBase    string
	DriveUploadBase string
	DriveFolderName string

	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3KeyPrefix    string

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
}

// LoadDefaults populates c with development defaults. Cloud backup is
// disabled until a provider is configured.
func (c *Config) LoadDefaults() {
	c.SandboxDir = "backups"
	c.DatabaseDSN = "jobvault.db"
	c.AppVersion = "dev"
	c.LogLevel = "info"

	c.CloudProvider = ""

	c.OAuthAuthURL = "https://accounts.google.com/o/oauth2/auth"
	c.OAuthTokenURL = "https://oauth2.googleapis.com/token"
	c.OAuthRedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	c.OAuthScope = "https://www.googleapis.com/auth/drive.file"
	c.TokenRefreshMargin = 2 * time.Minute

	c.DriveAPIBase = "https://www.googleapis.com/drive/v3"
	c.DriveUploadBase = "https://www.googleapis.com/upload/drive/v3"
	c.DriveFolderName = "JobVault Backups"

	c.S3Region = "us-east-1"
	c.S3KeyPrefix = "jobvault-backups"

	c.RetryMaxAttempts = 3
	c.RetryBaseDelay = 500 * time.Millisecond
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, command-line flags and finally environment
// variables. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	parseEnv(cfg)
	return cfg
}
