package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, DriverMongo, cfg.StorageDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "goaltracker", cfg.MongoDatabase)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mysql")
	t.Setenv("JWT_EXPIRY", "90")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("AUTH_RATE_LIMIT", "0.5")
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, ,192.168.1.10/32")

	cfg := Load()

	assert.Equal(t, DriverMySQL, cfg.StorageDriver)
	assert.Equal(t, 90*time.Second, cfg.JWTExpiry)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 0.5, cfg.AuthRateLimit)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.10/32"}, cfg.TrustedProxies)
}

func TestLoad_TestEnvironmentUsesTestDatabase(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("MONGO_URI_TEST", "mongodb://mongo-test:27017")
	t.Setenv("MONGO_DATABASE", "tracker")
	t.Setenv("MONGO_DATABASE_TEST", "")

	cfg := Load()

	assert.Equal(t, "mongodb://mongo-test:27017", cfg.MongoURI)
	assert.Equal(t, "tracker_test", cfg.MongoDatabase)
}

func TestLocation(t *testing.T) {
	cfg := &Config{DefaultTimezone: "Europe/Berlin"}
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())

	cfg.DefaultTimezone = "Mars/Olympus"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "development tolerates the placeholder secret",
			cfg:  Config{Environment: "development", JWTSecret: DefaultJWTSecret, StorageDriver: DriverMemory},
		},
		{
			name: "test tolerates an empty secret",
			cfg:  Config{Environment: "test", StorageDriver: DriverMongo},
		},
		{
			name:    "production rejects the placeholder secret",
			cfg:     Config{Environment: "production", JWTSecret: DefaultJWTSecret, StorageDriver: DriverMongo},
			wantErr: "JWT_SECRET must be set when APP_ENV=production",
		},
		{
			name:    "staging rejects an empty secret",
			cfg:     Config{Environment: "staging", StorageDriver: DriverMySQL},
			wantErr: "JWT_SECRET must be set when APP_ENV=staging",
		},
		{
			name: "production with a real secret",
			cfg:  Config{Environment: "production", JWTSecret: "s3cr3t-from-vault", StorageDriver: DriverMySQL},
		},
		{
			name:    "unknown driver",
			cfg:     Config{Environment: "development", StorageDriver: "sqlite"},
			wantErr: "STORAGE_DRIVER must be one of mongo, mysql, memory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
