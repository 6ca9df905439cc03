package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestComponentJSON(t *testing.T) {
	var buf bytes.Buffer
	Init("debug", "json", &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	logger := Component("api")
	logger.Info().Str("agent_id", "a1").Msg("agent saved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "api", entry["component"])
	require.Equal(t, "a1", entry["agent_id"])
	require.Equal(t, "agent saved", entry["message"])
	require.Equal(t, "info", entry["level"])
}

func TestInitUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	Init("chatty", "json", &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	logger := Component("test")
	logger.Debug().Msg("hidden")
	require.Zero(t, buf.Len())
}

func TestInitConsole(t *testing.T) {
	var buf bytes.Buffer
	Init("info", "console", &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	logger := Component("web")
	logger.Warn().Msg("layout fallback")
	require.Contains(t, buf.String(), "layout fallback")
	require.Contains(t, buf.String(), "web")
}
