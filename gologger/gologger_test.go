package gologger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestConfigureReachesExistingLoggers(t *testing.T) {
	t.Cleanup(Configure)
	t.Setenv("DEBUG", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("PRETTY", "")

	// built before the environment changes, like package-level loggers
	logger := NewLogger()

	var jsonOut bytes.Buffer
	configure(&jsonOut)
	logger.Info().Msg("hello")
	assert.True(t, strings.HasPrefix(jsonOut.String(), "{"), jsonOut.String())

	t.Setenv("PRETTY", "1")
	var prettyOut bytes.Buffer
	configure(&prettyOut)
	logger.Info().Msg("hello")
	assert.Contains(t, prettyOut.String(), "hello")
	assert.False(t, strings.HasPrefix(prettyOut.String(), "{"), prettyOut.String())

	t.Setenv("PRETTY", "")
	t.Setenv("LOG_LEVEL", "warn")
	var quiet bytes.Buffer
	configure(&quiet)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	logger.Info().Msg("dropped")
	assert.Empty(t, quiet.String())

	t.Setenv("DEBUG", "1")
	configure(&quiet)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
