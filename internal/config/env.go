package config

import "os"

// parseEnv overlays cfg with values from the environment. Secrets live here
// rather than in the JSON file; cmd/jobvault loads a .env file before this
// runs.
func parseEnv(cfg *Config) {
	overlay := map[string]*string{
		"JOBVAULT_SANDBOX_DIR":         &cfg.SandboxDir,
		"JOBVAULT_DATABASE_DSN":        &cfg.DatabaseDSN,
		"JOBVAULT_LOG_LEVEL":           &cfg.LogLevel,
		"JOBVAULT_CLOUD_PROVIDER":      &cfg.CloudProvider,
		"JOBVAULT_OAUTH_CLIENT_ID":     &cfg.OAuthClientID,
		"JOBVAULT_OAUTH_CLIENT_SECRET": &cfg.OAuthClientSecret,
		"JOBVAULT_S3_ACCESS_KEY":       &cfg.S3AccessKey,
		"JOBVAULT_S3_SECRET_KEY":       &cfg.S3SecretKey,
		"JOBVAULT_S3_BUCKET":           &cfg.S3Bucket,
		"JOBVAULT_S3_REGION":           &cfg.S3Region,
		"JOBVAULT_S3_BASE_ENDPOINT":    &cfg.S3BaseEndpoint,
	}
	for key, dst := range overlay {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
}
