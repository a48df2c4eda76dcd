// Package config loads arcflow settings from ARCFLOW_* environment variables,
// optionally seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"arcflow/internal/adapters/export"
	"arcflow/internal/blob"
	"arcflow/internal/infra/reference"
	"arcflow/internal/logging"
)

// Prefix is prepended to every variable name.
const Prefix = "ARCFLOW_"

// DefaultEnvFiles are read by Load when present. Values already set in the
// process environment win.
var DefaultEnvFiles = []string{".env", ".env.local"}

// BlobOptions configures artifact storage.
type BlobOptions struct {
	Driver         string `env:"BLOB_DRIVER" envDefault:"fs"`
	FSRoot         string `env:"BLOB_FS_ROOT" envDefault:"./artifacts"`
	S3Bucket       string `env:"BLOB_S3_BUCKET"`
	S3Region       string `env:"BLOB_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint     string `env:"BLOB_S3_ENDPOINT"`
	S3PathStyle    bool   `env:"BLOB_S3_PATH_STYLE"`
	S3AccessKey    string `env:"BLOB_S3_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"BLOB_S3_SECRET_ACCESS_KEY"`
	S3SessionToken string `env:"BLOB_S3_SESSION_TOKEN"`
}

// ReferenceOptions locates the SQL reference database.
type ReferenceOptions struct {
	Driver string `env:"REFERENCE_DRIVER" envDefault:"sqlite"`
	DSN    string `env:"REFERENCE_DSN"`
}

// Config holds every setting.
type Config struct {
	LogLevel         string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string   `env:"LOG_FORMAT" envDefault:"text"`
	ExportFormats    []string `env:"EXPORT_FORMATS" envDefault:"csv,json,xlsx" envSeparator:","`
	MetricsNamespace string   `env:"METRICS_NAMESPACE" envDefault:"arcflow"`
	Blob             BlobOptions
	Reference        ReferenceOptions
}

// LoadEnv loads the env files that exist and returns how many were read.
// Later files override earlier ones; variables already set in the process
// environment are never overwritten.
func LoadEnv(files []string) (int, error) {
	merged := make(map[string]string)
	n := 0
	for _, f := range files {
		if st, err := os.Stat(f); err != nil || st.IsDir() {
			continue
		}
		values, err := godotenv.Read(f)
		if err != nil {
			return n, fmt.Errorf("read %s: %w", f, err)
		}
		maps.Copy(merged, values)
		n++
	}
	for key, value := range merged {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Load reads DefaultEnvFiles, then parses and validates the process environment.
func Load() (Config, error) {
	if _, err := LoadEnv(DefaultEnvFiles); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}
	return Parse(nil)
}

// Parse builds a Config from environ, or from the process environment when
// environ is nil.
func Parse(environ map[string]string) (Config, error) {
	var c Config
	opts := env.Options{Prefix: Prefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects unknown drivers, formats and log settings.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := export.ParseFormats(c.ExportFormats); err != nil {
		errs = append(errs, err)
	}
	driver, err := blob.ParseDriver(c.Blob.Driver)
	if err != nil {
		errs = append(errs, err)
	}
	if driver == blob.DriverS3 && strings.TrimSpace(c.Blob.S3Bucket) == "" {
		errs = append(errs, errors.New("ARCFLOW_BLOB_S3_BUCKET required for the s3 driver"))
	}
	switch strings.ToLower(c.Reference.Driver) {
	case reference.DriverSQLite, reference.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", reference.ErrUnknownDriver, c.Reference.Driver))
	}
	if strings.TrimSpace(c.MetricsNamespace) == "" {
		errs = append(errs, errors.New("ARCFLOW_METRICS_NAMESPACE must not be empty"))
	}
	return errors.Join(errs...)
}

// Formats returns the parsed export formats. It assumes Validate passed.
func (c Config) Formats() []export.Format {
	formats, _ := export.ParseFormats(c.ExportFormats)
	return formats
}

// BlobOpen converts the storage settings for blob.Open.
func (c Config) BlobOpen() blob.Options {
	return blob.Options{
		Driver: c.Blob.Driver,
		FSRoot: c.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:          c.Blob.S3Bucket,
			Region:          c.Blob.S3Region,
			Endpoint:        c.Blob.S3Endpoint,
			PathStyle:       c.Blob.S3PathStyle,
			AccessKeyID:     c.Blob.S3AccessKey,
			SecretAccessKey: c.Blob.S3SecretKey,
			SessionToken:    c.Blob.S3SessionToken,
		},
	}
}
