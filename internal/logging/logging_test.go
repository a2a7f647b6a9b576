package logging

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSeries/internal/config"
)

func TestSetup_WritesToRotatingFile(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	cfg := &config.Config{}
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "ingest.log")
	cfg.Logging.MaxSizeMB = 1

	closer, err := Setup(cfg)
	require.NoError(t, err)
	log.Println("[INFO] hello from test")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.Logging.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] hello from test")
	assert.Contains(t, string(data), "logging_test.go")
}

func TestSetup_StdoutOnly(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	closer, err := Setup(&config.Config{})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
}
