package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	SetupWithWriter("warn", &buf)

	log.Info().Msg("dropped")
	log.Warn().Str("k", "v").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "v", line["k"])
	assert.Contains(t, line, "time")
}

func TestSetupUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	SetupWithWriter("chatty", &buf)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	SetupWithWriter("info", &buf)

	// No logger in context: global logger is returned.
	FromContext(context.Background()).Info().Msg("global")
	assert.Contains(t, buf.String(), `"message":"global"`)

	buf.Reset()
	scoped := log.With().Str("trace_id", "abc").Logger()
	ctx := scoped.WithContext(context.Background())
	FromContext(ctx).Info().Msg("scoped")
	assert.Contains(t, buf.String(), `"trace_id":"abc"`)
}
