// Package logger provides calculator-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// CalculatorLogger provides dedicated logging for form steps and evaluations.
type CalculatorLogger struct {
	*logrus.Entry
}

// NewCalculatorLogger creates a new calculator logger.
func NewCalculatorLogger(baseLogger *logrus.Logger) *CalculatorLogger {
	return &CalculatorLogger{
		Entry: baseLogger.WithField("component", "calculator"),
	}
}

// LogStepTransition logs a move between form steps.
func (cl *CalculatorLogger) LogStepTransition(requestID, fromStep, toStep string, totalHorses int) {
	cl.WithFields(logrus.Fields{
		"request_id":   requestID,
		"from_step":    fromStep,
		"to_step":      toStep,
		"total_horses": totalHorses,
	}).Debug("Form step advanced")
}

// LogEvaluation logs a completed expected value evaluation.
func (cl *CalculatorLogger) LogEvaluation(requestID string, totalHorses, excludedCount int, confidence float64, feasible bool, expectedValue string) {
	cl.WithFields(logrus.Fields{
		"request_id":     requestID,
		"total_horses":   totalHorses,
		"excluded_count": excludedCount,
		"confidence":     confidence,
		"feasible":       feasible,
		"expected_value": expectedValue,
	}).Info("Expected value evaluated")
}

// LogInvalidInput logs a rejected form submission.
func (cl *CalculatorLogger) LogInvalidInput(requestID, field string, err error) {
	cl.WithFields(logrus.Fields{
		"request_id": requestID,
		"field":      field,
	}).WithError(err).Warn("Invalid form input")
}

// LogCacheStats logs evaluation cache statistics.
func (cl *CalculatorLogger) LogCacheStats(hits, misses uint64, hitRatio float64, items int) {
	cl.WithFields(logrus.Fields{
		"cache_hits":      hits,
		"cache_misses":    misses,
		"cache_hit_ratio": hitRatio,
		"cache_items":     items,
	}).Info("Evaluation cache statistics")
}
