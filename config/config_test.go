package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9000"
database:
  dsn: "host=db user=govstay"
booking:
  breakfast_surcharge: 500
  mirror_workers: 2
  lock_ttl: 5s
elastic:
  urls: ["http://es:9200"]
`), 0o600))

	t.Setenv("RENDER", "1")
	t.Setenv("GOVSTAY_CONFIG", path)
	t.Setenv("MIRROR_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "host=db user=govstay", cfg.Database.DSN)
	assert.Equal(t, int64(500), cfg.Booking.BreakfastSurcharge)
	assert.Equal(t, 5*time.Second, cfg.Booking.LockTTL)
	assert.Equal(t, 8, cfg.Booking.MirrorWorkers)
	assert.Equal(t, []string{"http://es:9200"}, cfg.Elastic.URLs)
	assert.Equal(t, "hotels", cfg.Elastic.Index)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("RENDER", "1")
	t.Setenv("GOVSTAY_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("DB_CONNECTION_STRING", "sqlite://memory")
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Listen)
	assert.Equal(t, int64(400), cfg.Booking.BreakfastSurcharge)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestVerify(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Verify(), "empty dsn")

	cfg.Database.DSN = "dsn"
	assert.NoError(t, cfg.Verify())

	cfg.Booking.MirrorWorkers = 0
	assert.Error(t, cfg.Verify())

	cfg = Default()
	cfg.Database.DSN = "dsn"
	cfg.Booking.Timezone = "Mars/Olympus"
	assert.Error(t, cfg.Verify())
}
