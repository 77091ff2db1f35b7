package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lshigami/psytest/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "psytest.log")
	Init(&config.Log{Level: "debug", Format: "json", File: path})
	t.Cleanup(func() { Init(nil) })

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	log.Info().Str("component", "logger_test").Msg("Init: file sink ready")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"logger_test"`)
}

func TestInitDefaults(t *testing.T) {
	Init(&config.Log{Level: "not-a-level"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
