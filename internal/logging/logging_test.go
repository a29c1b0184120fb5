package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")

	closer := Setup(Options{Level: "debug", File: path})
	log.Debug().Str("command", "ping").Msg("Resolved command")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"command":"ping"`)
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestSetupUnknownLevel(t *testing.T) {
	closer := Setup(Options{Level: "chatty"})
	require.NoError(t, closer.Close())
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
