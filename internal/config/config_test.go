package config

import (
	"os"
	"testing"

	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/stretchr/testify/require"
)

func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("COMMAND_PREFIX", "?")
	t.Setenv("COMMAND_QUOTES", "")
	unsetenv(t, "PREVIEW_LENGTH")
	unsetenv(t, "LOOKUP_RATE")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "token", cfg.DiscordToken)
	require.Equal(t, "?", cfg.Prefix)
	require.Equal(t, 24, cfg.PreviewLength)
	require.Equal(t, 5.0, cfg.LookupRate)

	q, err := cfg.Quotes()
	require.NoError(t, err)
	require.Equal(t, cmd.DefaultQuotes, q)
}

func TestLoadQuotes(t *testing.T) {
	t.Setenv("COMMAND_PREFIX", "!")
	t.Setenv("COMMAND_QUOTES", `""«»`)
	t.Setenv("PREVIEW_LENGTH", "8")

	cfg, err := Load()
	require.NoError(t, err)
	p := cfg.Parser(nil)
	require.Equal(t, cmd.Quotes{'"': '"', '«': '»'}, p.Quotes)
	require.Equal(t, 8, p.PreviewLength)

	t.Setenv("COMMAND_QUOTES", `"«»`)
	_, err = Load()
	require.Error(t, err)

	t.Setenv("COMMAND_QUOTES", "")
	t.Setenv("PREVIEW_LENGTH", "many")
	_, err = Load()
	require.Error(t, err)
}
