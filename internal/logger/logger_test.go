package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}

	log := NewLoggerWithOutput(buf, "debug", "development")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	log = NewLoggerWithOutput(buf, "not-a-level", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level")
}

func TestNewLoggerProductionUsesJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput(buf, "info", "production")

	log.WithField("total_horses", 10).Info("hello")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "hello", logEntry["msg"])
	assert.Equal(t, float64(10), logEntry["total_horses"])
}

func TestCalculatorLoggerEvaluation(t *testing.T) {
	log, buf := setupTestLogger()
	calcLogger := NewCalculatorLogger(log)

	calcLogger.LogEvaluation("req-1", 10, 2, 0.8, true, "1.286")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "calculator", logEntry["component"])
	assert.Equal(t, "req-1", logEntry["request_id"])
	assert.Equal(t, float64(2), logEntry["excluded_count"])
	assert.Equal(t, "1.286", logEntry["expected_value"])
	assert.Equal(t, true, logEntry["feasible"])
}

func TestCalculatorLoggerStepTransition(t *testing.T) {
	log, buf := setupTestLogger()
	calcLogger := NewCalculatorLogger(log)

	calcLogger.LogStepTransition("req-2", "awaiting_total", "awaiting_exclusions", 12)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "awaiting_exclusions", logEntry["to_step"])
	assert.Equal(t, "debug", logEntry["level"])
}

func TestCalculatorLoggerInvalidInput(t *testing.T) {
	log, buf := setupTestLogger()
	calcLogger := NewCalculatorLogger(log)

	calcLogger.LogInvalidInput("req-3", "confidence", errors.New("not a number"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "confidence", logEntry["field"])
	assert.Equal(t, "not a number", logEntry["error"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestCalculatorLoggerCacheStats(t *testing.T) {
	log, buf := setupTestLogger()
	calcLogger := NewCalculatorLogger(log)

	calcLogger.LogCacheStats(3, 1, 0.75, 4)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, 0.75, logEntry["cache_hit_ratio"])
	assert.Equal(t, float64(4), logEntry["cache_items"])
}

func TestAccessLoggerRequest(t *testing.T) {
	log, buf := setupTestLogger()
	accessLogger := NewAccessLogger(log)

	accessLogger.LogRequest("req-4", "POST", "/", 200, 1.5, "test-agent")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "http_server", logEntry["component"])
	assert.Equal(t, float64(200), logEntry["status"])
	assert.Equal(t, "info", logEntry["level"])
}

func TestAccessLoggerServerError(t *testing.T) {
	log, buf := setupTestLogger()
	accessLogger := NewAccessLogger(log)

	accessLogger.LogRequest("req-5", "GET", "/", 500, 0.2, "")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
}

func TestAccessLoggerRateLimited(t *testing.T) {
	log, buf := setupTestLogger()
	accessLogger := NewAccessLogger(log)

	accessLogger.LogRateLimited("req-6", "10.0.0.1", "/")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "10.0.0.1", logEntry["client_ip"])
}
