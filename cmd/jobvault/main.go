package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mkravets/jobvault/internal/backup"
	"github.com/mkravets/jobvault/internal/cli"
	"github.com/mkravets/jobvault/internal/config"
	"github.com/mkravets/jobvault/internal/dataset"
	"github.com/mkravets/jobvault/internal/local"
	"github.com/mkravets/jobvault/internal/localdb"
	"github.com/mkravets/jobvault/internal/logging"
	"github.com/mkravets/jobvault/internal/remote"
	"github.com/mkravets/jobvault/internal/retryx"
	"github.com/mkravets/jobvault/internal/schema"
	"github.com/mkravets/jobvault/internal/settings"
	"github.com/mkravets/jobvault/internal/storage"
)

func main() {
	// Optional .env for secrets; missing file is fine.
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	logger := logging.NewZerologLogger(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := localdb.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open local database: %v", err)
	}
	defer db.Close()

	store := settings.NewSQLiteStore(db)
	manager := local.NewManager(
		storage.NewSandbox(cfg.SandboxDir),
		dataset.NewSQLiteRepository(db),
		store,
		schema.New(),
		nil,
		logger,
		cfg.AppVersion,
	)

	var session *remote.Session
	var cloud remote.Store

	switch cfg.CloudProvider {
	case "drive":
		session = remote.NewSession(remote.SessionConfig{
			ClientID:      cfg.OAuthClientID,
			ClientSecret:  cfg.OAuthClientSecret,
			AuthURL:       cfg.OAuthAuthURL,
			TokenURL:      cfg.OAuthTokenURL,
			RedirectURL:   cfg.OAuthRedirectURL,
			Scopes:        []string{cfg.OAuthScope},
			RefreshMargin: cfg.TokenRefreshMargin,
		}, store, logger)
		cloud = remote.NewDriveClient(remote.DriveConfig{
			APIBase:    cfg.DriveAPIBase,
			UploadBase: cfg.DriveUploadBase,
			FolderName: cfg.DriveFolderName,
			Policy: retryx.Policy{
				MaxAttempts: cfg.RetryMaxAttempts,
				BaseDelay:   cfg.RetryBaseDelay,
			},
		}, session, logger)
	case "s3":
		s3, err := remote.NewS3Store(ctx, remote.S3Config{
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			KeyPrefix:    cfg.S3KeyPrefix,
			MaxAttempts:  cfg.RetryMaxAttempts,
		}, logger)
		if err != nil {
			log.Fatalf("configure s3 provider: %v", err)
		}
		cloud = s3
	case "":
		// cloud backup disabled
	default:
		log.Fatalf("unknown cloud provider %q", cfg.CloudProvider)
	}

	service := backup.New(manager, cloud, session, logger)
	cli.NewApp(service, logger).Run(ctx)
}
