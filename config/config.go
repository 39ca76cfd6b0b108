// Package config loads process settings from an optional YAML file named by
// CONFIG_FILE and from the environment. Environment values win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ecosnap_server/logger"
	"ecosnap_server/store"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendBadger   = "badger"
)

type Config struct {
	Port string `yaml:"port"`

	AWSRegion        string `yaml:"awsRegion"`
	TableName        string `yaml:"tableName"`
	DynamoDBEndpoint string `yaml:"dynamoDBEndpoint"`
	StoreBackend     string `yaml:"storeBackend"`
	BadgerPath       string `yaml:"badgerPath"`
	StoreMaxAttempts int    `yaml:"storeMaxAttempts"`

	// BadgerConflictRetries bounds the runs of one badger transaction
	// that keeps losing to concurrent writers.
	BadgerConflictRetries int `yaml:"badgerConflictRetries"`

	RequestTimeout time.Duration `yaml:"requestTimeout"`

	JWTSecret  string        `yaml:"jwtSecret"`
	TokenTTL   time.Duration `yaml:"tokenTTL"`
	BCryptCost int           `yaml:"bcryptCost"`

	S3Bucket        string `yaml:"s3Bucket"`
	S3PublicBaseURL string `yaml:"s3PublicBaseURL"`
	MaxUploadBytes  int64  `yaml:"maxUploadBytes"`

	RequireAuth        bool     `yaml:"requireAuth"`
	CORSAllowedOrigins []string `yaml:"corsAllowedOrigins"`

	LogMode string `yaml:"logMode"`
}

func Defaults() Config {
	return Config{
		Port:                  "8080",
		TableName:             "Ecosnap",
		StoreBackend:          BackendDynamoDB,
		StoreMaxAttempts:      3,
		BadgerConflictRetries: store.DefaultConflictRetries,
		RequestTimeout:        10 * time.Second,
		TokenTTL:              24 * time.Hour,
		BCryptCost:            10,
		MaxUploadBytes:        10 << 20,
		CORSAllowedOrigins:    []string{"*"},
	}
}

// Load reads CONFIG_FILE (if set) and then the process environment.
func Load(log *logger.Logger) (Config, error) {
	return load(os.Getenv, os.ReadFile, log)
}

func load(getenv func(string) string, readFile func(string) ([]byte, error), log *logger.Logger) (Config, error) {
	cfg := Defaults()

	if path := getenv("CONFIG_FILE"); path != "" {
		data, err := readFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	}

	env := envReader{getenv: getenv}
	env.str("PORT", &cfg.Port)
	env.str("AWS_REGION", &cfg.AWSRegion)
	env.str("DYNAMODB_TABLE_NAME", &cfg.TableName)
	env.str("DYNAMODB_ENDPOINT", &cfg.DynamoDBEndpoint)
	env.str("STORE_BACKEND", &cfg.StoreBackend)
	env.str("BADGER_PATH", &cfg.BadgerPath)
	env.integer("STORE_MAX_ATTEMPTS", &cfg.StoreMaxAttempts)
	env.integer("BADGER_CONFLICT_RETRIES", &cfg.BadgerConflictRetries)
	env.duration("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	env.str("JWT_SECRET", &cfg.JWTSecret)
	env.duration("TOKEN_TTL", &cfg.TokenTTL)
	env.integer("BCRYPT_COST", &cfg.BCryptCost)
	env.str("S3_BUCKET_NAME", &cfg.S3Bucket)
	env.str("AWS_S3_BUCKET_NAME", &cfg.S3Bucket)
	env.str("S3_PUBLIC_BASE_URL", &cfg.S3PublicBaseURL)
	env.int64("MAX_UPLOAD_BYTES", &cfg.MaxUploadBytes)
	env.boolean("REQUIRE_AUTH", &cfg.RequireAuth)
	env.list("CORS_ALLOWED_ORIGINS", &cfg.CORSAllowedOrigins)
	env.str("LOG_MODE", &cfg.LogMode)

	if err := errors.Join(env.errs...); err != nil {
		return Config{}, err
	}
	cfg.StoreBackend = strings.ToLower(cfg.StoreBackend)
	return cfg, nil
}

// Validate reports every setting the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TableName == "" {
		errs = append(errs, errors.New("DYNAMODB_TABLE_NAME is required"))
	}
	switch c.StoreBackend {
	case BackendDynamoDB:
		if c.AWSRegion == "" {
			errs = append(errs, errors.New("AWS_REGION is required for the dynamodb store backend"))
		}
	case BackendBadger:
		if c.BadgerConflictRetries < 1 {
			errs = append(errs, errors.New("BADGER_CONFLICT_RETRIES must be at least 1"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.StoreMaxAttempts < 1 {
		errs = append(errs, errors.New("STORE_MAX_ATTEMPTS must be at least 1"))
	}
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST %d is outside 4..31", c.BCryptCost))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

type envReader struct {
	getenv func(string) string
	errs   []error
}

func (e *envReader) str(key string, dst *string) {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		*dst = v
	}
}

func (e *envReader) integer(key string, dst *int) {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = i
}

func (e *envReader) int64(key string, dst *int64) {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = i
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}

func (e *envReader) boolean(key string, dst *bool) {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = b
}

func (e *envReader) list(key string, dst *[]string) {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}
