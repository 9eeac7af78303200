package evaluator

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/trio-ev/internal/metrics"
	"github.com/yourusername/trio-ev/internal/models"
)

// CacheKey identifies an evaluation. Only the number of excluded horses matters to
// the formula, so which horses were excluded is not part of the key.
type CacheKey struct {
	Total      int
	Excluded   int
	Confidence float64
	PayoutRate float64
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%d:%d:%s:%s",
		k.Total,
		k.Excluded,
		strconv.FormatFloat(k.Confidence, 'g', -1, 64),
		strconv.FormatFloat(k.PayoutRate, 'g', -1, 64),
	)
}

// EvaluationCache provides in-memory caching for evaluations
type EvaluationCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewEvaluationCache creates a new evaluation cache
func NewEvaluationCache(ttl time.Duration, maxSize int) *EvaluationCache {
	return &EvaluationCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached evaluation, or nil on a miss.
func (ec *EvaluationCache) Get(key CacheKey) *models.Evaluation {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if result, found := ec.cache.Get(key.String()); found {
		if eval, ok := result.(*models.Evaluation); ok {
			ec.hitCount++
			ec.updateMetrics()
			return eval
		}
	}

	ec.missCount++
	ec.updateMetrics()
	return nil
}

// Set stores an evaluation. When the cache is full and nothing has expired the
// value is dropped.
func (ec *EvaluationCache) Set(key CacheKey, eval *models.Evaluation) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if ec.cache.ItemCount() >= ec.maxSize {
		ec.cache.DeleteExpired()
		if ec.cache.ItemCount() >= ec.maxSize {
			return
		}
	}

	ec.cache.Set(key.String(), eval, ec.ttl)
}

// Clear flushes the entire cache
func (ec *EvaluationCache) Clear() {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.cache.Flush()
	ec.hitCount = 0
	ec.missCount = 0
	ec.updateMetrics()
}

// Stats returns cache statistics
func (ec *EvaluationCache) Stats() (hits, misses uint64, ratio float64) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.stats()
}

func (ec *EvaluationCache) stats() (hits, misses uint64, ratio float64) {
	hits = ec.hitCount
	misses = ec.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// updateMetrics updates Prometheus metrics. Callers hold ec.mu.
func (ec *EvaluationCache) updateMetrics() {
	_, _, ratio := ec.stats()
	metrics.UpdateCacheHitRatio(ratio)
	metrics.UpdateCacheItems(float64(ec.cache.ItemCount()))
}

// ItemCount returns the number of items in cache
func (ec *EvaluationCache) ItemCount() int {
	return ec.cache.ItemCount()
}
