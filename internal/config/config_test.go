package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shorty/internal/shortener"
)

func TestLoadConfig_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "127.0.0.1:8088", cfg.ListenAddr())
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr())
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 600*time.Second, cfg.RateLimitWindow())
	assert.Equal(t, int64(10), cfg.RateLimit)
	assert.Equal(t, 10, cfg.IDLength)
	assert.Equal(t, 10, cfg.IDGenerationMaxAttempts)
	assert.True(t, cfg.APIKeyMandatory)
	assert.Equal(t, []rune(shortener.DefaultAlphabet), cfg.IDAlphabet())
	assert.Equal(t, 10*time.Minute, cfg.PurgeInterval)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name: "overrides",
			envVars: map[string]string{
				"SHORTENER_RATE_LIMIT":        "-1",
				"SHORTENER_RATE_LIMIT_PERIOD": "0",
				"SHORTENER_ID_LENGTH":         "6",
				"SHORTENER_ID_ALPHABET":       "aab",
				"SHORTENER_API_KEY_MANDATORY": "false",
				"ENVIRONMENT":                 "production",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, int64(-1), cfg.RateLimit)
				assert.Equal(t, 6, cfg.IDLength)
				assert.Equal(t, []rune("aab"), cfg.IDAlphabet())
				assert.False(t, cfg.APIKeyMandatory)
				assert.True(t, cfg.IsProduction())
			},
		},
		{
			name: "postgres backend",
			envVars: map[string]string{
				"SHORTENER_STORE_BACKEND": "postgres",
				"SHORTENER_POSTGRES_DSN":  "host=localhost dbname=shorty",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendPostgres, cfg.StoreBackend)
			},
		},
		{
			name:    "postgres without dsn",
			envVars: map[string]string{"SHORTENER_STORE_BACKEND": "postgres"},
			wantErr: "SHORTENER_POSTGRES_DSN",
		},
		{
			name:    "unknown backend",
			envVars: map[string]string{"SHORTENER_STORE_BACKEND": "memcached"},
			wantErr: "SHORTENER_STORE_BACKEND",
		},
		{
			name:    "zero id length",
			envVars: map[string]string{"SHORTENER_ID_LENGTH": "0"},
			wantErr: "SHORTENER_ID_LENGTH",
		},
		{
			name:    "zero attempts",
			envVars: map[string]string{"SHORTENER_ID_GENERATION_MAX_ATTEMPTS": "0"},
			wantErr: "SHORTENER_ID_GENERATION_MAX_ATTEMPTS",
		},
		{
			name:    "zero period with rate limit",
			envVars: map[string]string{"SHORTENER_RATE_LIMIT_PERIOD": "0"},
			wantErr: "SHORTENER_RATE_LIMIT_PERIOD",
		},
		{
			name:    "unparsable int",
			envVars: map[string]string{"SHORTENER_RATE_LIMIT": "ten"},
			wantErr: "failed to parse environment variables",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := LoadConfig()

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
