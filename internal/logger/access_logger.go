// Package logger provides HTTP access logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AccessLogger provides a dedicated HTTP access trail.
type AccessLogger struct {
	*logrus.Entry
}

// NewAccessLogger creates a new access logger.
func NewAccessLogger(baseLogger *logrus.Logger) *AccessLogger {
	return &AccessLogger{
		Entry: baseLogger.WithField("component", "http_server"),
	}
}

// LogRequest logs a served HTTP request. Server errors are logged at error level.
func (al *AccessLogger) LogRequest(requestID, method, path string, status int, durationMs float64, userAgent string) {
	entry := al.WithFields(logrus.Fields{
		"request_id":  requestID,
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": durationMs,
		"user_agent":  userAgent,
	})

	if status >= 500 {
		entry.Error("HTTP request failed")
		return
	}
	entry.Info("HTTP request")
}

// LogRateLimited logs a request rejected by the rate limiter.
func (al *AccessLogger) LogRateLimited(requestID, clientIP, path string) {
	al.WithFields(logrus.Fields{
		"request_id": requestID,
		"client_ip":  clientIP,
		"path":       path,
	}).Warn("Request rate limited")
}
