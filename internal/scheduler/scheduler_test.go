package scheduler

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trio-ev/internal/evaluator"
	"github.com/yourusername/trio-ev/internal/logger"
	"github.com/yourusername/trio-ev/internal/models"
)

func newTestScheduler(t *testing.T) (*Scheduler, *evaluator.EvaluationCache, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	cache := evaluator.NewEvaluationCache(time.Hour, 100)
	t.Cleanup(cache.Clear)

	return NewScheduler(cache, logger.NewCalculatorLogger(log)), cache, buf
}

func TestStartWithoutJobs(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	err := s.Start()
	require.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestScheduleAndStart(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	require.NoError(t, s.ScheduleCacheStats(60))
	require.NoError(t, s.ScheduleCacheFlush("0 4 * * *"))
	assert.Len(t, s.Entries(), 2)
	assert.True(t, s.GetNextRun().IsZero())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.True(t, s.IsRunning())
	assert.False(t, s.GetNextRun().IsZero())
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleCacheStats(60))
}

func TestScheduleInvalidCron(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	assert.Error(t, s.ScheduleCacheFlush("not a schedule"))
	assert.Empty(t, s.Entries())
}

func TestStopIsIdempotent(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	require.NoError(t, s.ScheduleCacheStats(1))
	require.NoError(t, s.Start())

	s.Stop()
	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestReportCacheStats(t *testing.T) {
	s, cache, buf := newTestScheduler(t)

	key := evaluator.CacheKey{Total: 10}
	cache.Set(key, &models.Evaluation{Total: 10})
	cache.Get(key)

	s.ReportCacheStats()

	assert.Contains(t, buf.String(), "Evaluation cache statistics")
	assert.Contains(t, buf.String(), `"cache_hits":1`)
}

func TestFlushCache(t *testing.T) {
	s, cache, buf := newTestScheduler(t)

	cache.Set(evaluator.CacheKey{Total: 10}, &models.Evaluation{Total: 10})
	require.Equal(t, 1, cache.ItemCount())

	s.FlushCache()

	assert.Zero(t, cache.ItemCount())
	assert.Contains(t, buf.String(), "Evaluation cache flushed")
}
