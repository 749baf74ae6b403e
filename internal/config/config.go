package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains migration tool configuration parameters.
type Config struct {
	LogLevel int     `env:"LOG_LEVEL" envDefault:"0"`
	LogDir   string  `env:"LOG_DIR" envDefault:"logs"`
	Workers  int     `env:"MIGRATION_WORKERS" envDefault:"1"`
	Descope  Descope `envPrefix:"DESCOPE_"`
	HTTP     HTTP    `envPrefix:"HTTP_"`
	S3       S3      `envPrefix:"EXPORT_S3_"`
}

// Descope contains target management API parameters. ProjectID and
// ManagementKey are mandatory; their absence aborts startup before any I/O.
type Descope struct {
	ProjectID     string `env:"PROJECT_ID"`
	ManagementKey string `env:"MANAGEMENT_KEY"`
	BaseURL       string `env:"BASE_URL" envDefault:"https://api.descope.com"`
}

// HTTP contains outbound request parameters.
type HTTP struct {
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"30s"`
	RetryAttempts int           `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryDelay    time.Duration `env:"RETRY_DELAY" envDefault:"500ms"`
}

// S3 contains object storage parameters for the optional bucket-backed
// export source. The source is selected when Endpoint is set; otherwise
// exports are read from the local directory given on the command line.
type S3 struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET_NAME"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the fatal startup conditions.
func (c *Config) Validate() error {
	if c.Descope.ProjectID == "" || c.Descope.ManagementKey == "" {
		return errors.New("environment variables DESCOPE_PROJECT_ID and DESCOPE_MANAGEMENT_KEY must be set")
	}
	if c.Workers < 1 {
		return fmt.Errorf("MIGRATION_WORKERS must be at least 1, got %d", c.Workers)
	}
	return nil
}

// UseS3 reports whether the bucket-backed export source is configured.
func (c *Config) UseS3() bool {
	return c.S3.Endpoint != ""
}
