package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecosnap_server/logger"
	"ecosnap_server/store"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func noFile(string) ([]byte, error) { return nil, os.ErrNotExist }

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(envOf(nil), noFile, logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BCryptCost)
	assert.Equal(t, store.DefaultConflictRetries, cfg.BadgerConflictRetries)
}

func TestLoadEnvironment(t *testing.T) {
	cfg, err := load(envOf(map[string]string{
		"PORT":                    "3000",
		"AWS_REGION":              "eu-west-1",
		"DYNAMODB_TABLE_NAME":     "EcosnapTest",
		"STORE_BACKEND":           "Badger",
		"REQUEST_TIMEOUT":         "2s",
		"JWT_SECRET":              "s3cret",
		"S3_BUCKET_NAME":          "fallback",
		"AWS_S3_BUCKET_NAME":      "snaps-bucket",
		"REQUIRE_AUTH":            "true",
		"CORS_ALLOWED_ORIGINS":    "https://a.example, https://b.example",
		"MAX_UPLOAD_BYTES":        "1024",
		"BADGER_CONFLICT_RETRIES": "250",
	}), noFile, logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "eu-west-1", cfg.AWSRegion)
	assert.Equal(t, "EcosnapTest", cfg.TableName)
	assert.Equal(t, BackendBadger, cfg.StoreBackend)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "snaps-bucket", cfg.S3Bucket)
	assert.True(t, cfg.RequireAuth)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, 250, cfg.BadgerConflictRetries)
}

func TestLoadInvalidValues(t *testing.T) {
	_, err := load(envOf(map[string]string{
		"STORE_MAX_ATTEMPTS": "three",
		"TOKEN_TTL":          "forever",
	}), noFile, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_MAX_ATTEMPTS")
	assert.Contains(t, err.Error(), "TOKEN_TTL")
}

func TestLoadFileThenEnvironment(t *testing.T) {
	file := []byte("port: \"9000\"\ntableName: FromFile\njwtSecret: file-secret\ntokenTTL: 1h\nstoreBackend: badger\n")
	readFile := func(path string) ([]byte, error) {
		assert.Equal(t, "/etc/ecosnap.yaml", path)
		return file, nil
	}

	cfg, err := load(envOf(map[string]string{
		"CONFIG_FILE": "/etc/ecosnap.yaml",
		"PORT":        "9100",
	}), readFile, logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "FromFile", cfg.TableName)
	assert.Equal(t, "file-secret", cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := load(envOf(map[string]string{"CONFIG_FILE": "/nope.yaml"}), noFile, logger.NewNop())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "AWS_REGION")

	cfg.JWTSecret = "x"
	cfg.AWSRegion = "us-east-1"
	assert.NoError(t, cfg.Validate())

	cfg.StoreBackend = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "unknown STORE_BACKEND")

	cfg.StoreBackend = BackendBadger
	cfg.AWSRegion = ""
	assert.NoError(t, cfg.Validate())

	cfg.BadgerConflictRetries = 0
	assert.ErrorContains(t, cfg.Validate(), "BADGER_CONFLICT_RETRIES")
}
