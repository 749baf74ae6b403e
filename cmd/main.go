package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/idmigrate/keycloak-descope/internal/config"
	"github.com/idmigrate/keycloak-descope/internal/descope"
	"github.com/idmigrate/keycloak-descope/internal/logger"
	"github.com/idmigrate/keycloak-descope/internal/model"
	"github.com/idmigrate/keycloak-descope/internal/report"
	"github.com/idmigrate/keycloak-descope/internal/service"
	"github.com/idmigrate/keycloak-descope/internal/source/dir"
	"github.com/idmigrate/keycloak-descope/internal/source/s3"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		path  string
		realm string
	)

	cmd := &cobra.Command{
		Use:          "keycloak-descope",
		Short:        "Create Descope users, roles and tenants from Keycloak export files",
		Version:      fmt.Sprintf("%s (built %s, commit %s)", buildVersion, buildDate, buildCommit),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), path, realm)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "path to the exported users folder")
	cmd.Flags().StringVar(&realm, "realm", "", "name of the Keycloak realm")
	cobra.CheckErr(cmd.MarkFlagRequired("path"))
	cobra.CheckErr(cmd.MarkFlagRequired("realm"))

	return cmd
}

func run(ctx context.Context, path, realm string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	// Credential validation happens before the log directory is created:
	// missing configuration aborts before any I/O.
	if err := cfg.Validate(); err != nil {
		return err
	}

	lg, err := logger.NewFile(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer lg.Close()

	log := lg.With("run_id", uuid.NewString())
	log.Info("Migration run: starting",
		"realm", realm,
		"path", path,
		"log_file", lg.Path(),
		"workers", cfg.Workers)

	if exp, err := descope.ManagementKeyExpiry(cfg.Descope.ManagementKey); err != nil {
		log.Warn("Migration run: management key is not a JWT, skipping expiry check", "error", err)
	} else if !exp.IsZero() && exp.Before(time.Now()) {
		log.Warn("Migration run: management key looks expired", "expired_at", exp)
	}

	source, err := newExportSource(ctx, cfg, path, log)
	if err != nil {
		log.Error("Migration run: failed to initialize export source", "error", err)
		return err
	}

	client := descope.NewClient(ctx, descope.Config{
		BaseURL:       cfg.Descope.BaseURL,
		ProjectID:     cfg.Descope.ProjectID,
		ManagementKey: cfg.Descope.ManagementKey,
		Timeout:       cfg.HTTP.Timeout,
		RetryAttempts: cfg.HTTP.RetryAttempts,
		RetryDelay:    cfg.HTTP.RetryDelay,
	}, log)

	reporter := report.NewConsole(os.Stdout)

	runner := service.NewRunner(
		service.NewReconcile(source, client, client, log),
		service.NewMigrate(source, client, reporter, cfg.Workers, log),
		reporter,
		log,
	)
	runner.Run(ctx, realm)

	return nil
}

// newExportSource picks the bucket-backed source when one is configured;
// the local directory otherwise. With a bucket, path is the key prefix
// inside it.
func newExportSource(ctx context.Context, cfg *config.Config, path string, log *logger.Logger) (model.ExportSource, error) {
	if !cfg.UseS3() {
		log.Info("Migration run: reading exports from directory", "path", path)
		return dir.New(path), nil
	}

	minioClient, err := minio.New(cfg.S3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		Secure: cfg.S3.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	source, err := s3.NewSource(ctx, minioClient, cfg.S3.Bucket, path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 export source: %w", err)
	}

	log.Info("Migration run: reading exports from bucket",
		"endpoint", cfg.S3.Endpoint,
		"bucket", cfg.S3.Bucket,
		"prefix", path)

	return source, nil
}
