package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerAnnotatesCaller(t *testing.T) {
	var buf bytes.Buffer
	configure("", "json", "info", false)
	logger.Out = &buf
	t.Cleanup(func() { configure("", "", "", false) })

	GetLogger().WithField("region", "US").Info("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "US", line["region"])
	assert.Contains(t, line["function"], "TestGetLoggerAnnotatesCaller")
	assert.Contains(t, line["file"], "logger_test.go")
}

func TestConfigureLevelAndFormat(t *testing.T) {
	t.Cleanup(func() { configure("", "", "", false) })

	configure("", "text", "warn", false)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, logger.Formatter)

	configure("", "", "nonsense", false)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, logger.Formatter)
}
