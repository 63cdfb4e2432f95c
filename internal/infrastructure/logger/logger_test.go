package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesLevelAndFormat(t *testing.T) {
	log, err := New("debug", "json")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
	assert.Equal(t, log.GetLevel(), GetLogger().GetLevel())

	_, err = New("warn", "console")
	require.NoError(t, err)
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("shouting", "json")
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}
