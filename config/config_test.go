package config

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PROXIMITY_RANGE_DEGREES", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("STORAGE_BACKEND", "")
	cfg := Load()
	assert.Equal(t, 0.02, cfg.Proximity.Range)
	assert.Equal(t, "none", cfg.Storage.Backend)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PROXIMITY_RANGE_DEGREES", "0.05")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("JWT_ACCESS_EXPIRY", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	cfg := Load()
	assert.Equal(t, 0.05, cfg.Proximity.Range)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.Proximity.Range = -0.01
	assert.Error(t, cfg.Validate())

	for _, rng := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		cfg = Load()
		cfg.Proximity.Range = rng
		assert.Error(t, cfg.Validate(), "range %v", rng)
	}

	cfg = Load()
	cfg.Proximity.MaxRange = math.NaN()
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Proximity.MaxRange = cfg.Proximity.Range / 2
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Database.Driver = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Server.Env = "production"
	cfg.JWT.AccessSecret = "change-me-in-production"
	assert.Error(t, cfg.Validate())
}

func TestValidateStorage(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "cloudinary")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "")
	assert.Error(t, Load().Validate())

	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	assert.NoError(t, Load().Validate())

	t.Setenv("STORAGE_BACKEND", "minio")
	t.Setenv("MINIO_USE_SSL", "true")
	cfg := Load()
	assert.True(t, cfg.MinIO.UseSSL)
	assert.NoError(t, cfg.Validate())

	t.Setenv("STORAGE_BACKEND", "s3")
	assert.Error(t, Load().Validate())
}
