package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mkravets/jobvault/internal/flagx"
	"github.com/mkravets/jobvault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Duration
// fields use timex.Duration so the file can specify intervals either as
// strings like "3s" or as integer nanoseconds.
type JsonConfig struct {
	SandboxDir  string `json:"sandbox_dir"`
	DatabaseDSN string `json:"database_dsn"`
	AppVersion  string `json:"app_version"`
	LogLevel    string `json:"log_level"`

	CloudProvider string `json:"cloud_provider"`

	OAuthClientID      string         `json:"oauth_client_id"`
	OAuthClientSecret  string         `json:"oauth_client_secret"`
	OAuthAuthURL       string         `json:"oauth_auth_url"`
	OAuthTokenURL      string         `json:"oauth_token_url"`
	OAuthRedirectURL   string         `json:"oauth_redirect_url"`
	OAuthScope         string         `json:"oauth_scope"`
	TokenRefreshMargin timex.Duration `json:"token_refresh_margin"`

	DriveAPIBase    string `json:"drive_api_base"`
	DriveUploadBase string `json:"drive_upload_base"`
	DriveFolderName string `json:"drive_folder_name"`

	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3KeyPrefix    string `json:"s3_key_prefix"`

	RetryMaxAttempts int            `json:"retry_max_attempts"`
	RetryBaseDelay   timex.Duration `json:"retry_base_delay"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flag. Absent keys keep their current values; a missing flag means
// no file is loaded. Read or unmarshal errors panic, matching the other
// parse stages.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.SandboxDir, jc.SandboxDir)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.AppVersion, jc.AppVersion)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.CloudProvider, jc.CloudProvider)
	setString(&cfg.OAuthClientID, jc.OAuthClientID)
	setString(&cfg.OAuthClientSecret, jc.OAuthClientSecret)
	setString(&cfg.OAuthAuthURL, jc.OAuthAuthURL)
	setString(&cfg.OAuthTokenURL, jc.OAuthTokenURL)
	setString(&cfg.OAuthRedirectURL, jc.OAuthRedirectURL)
	setString(&cfg.OAuthScope, jc.OAuthScope)
	setString(&cfg.DriveAPIBase, jc.DriveAPIBase)
	setString(&cfg.DriveUploadBase, jc.DriveUploadBase)
	setString(&cfg.DriveFolderName, jc.DriveFolderName)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3KeyPrefix, jc.S3KeyPrefix)

	if jc.TokenRefreshMargin.Duration != 0 {
		cfg.TokenRefreshMargin = time.Duration(jc.TokenRefreshMargin.Duration)
	}
	if jc.RetryBaseDelay.Duration != 0 {
		cfg.RetryBaseDelay = time.Duration(jc.RetryBaseDelay.Duration)
	}
	if jc.RetryMaxAttempts != 0 {
		cfg.RetryMaxAttempts = jc.RetryMaxAttempts
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
