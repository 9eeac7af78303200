// Package evaluator computes the expected value of boxing every trio ticket that
// avoids a set of excluded horses.
//
// A trio ticket names three horses in any order. Boxing the n-k horses left after
// excluding k of them costs C(n-k,3) tickets. When the winning trio is among them the
// average dividend, at a pool payout rate p, is p*C(n,3) units. The return ratio of a
// successful box is therefore
//
//	ev_success = p * C(n,3) / C(n-k,3)
//
// and the expected value is that ratio scaled by the user's confidence that the
// excluded horses really miss the top three, rounded to three decimal places.
package evaluator

import (
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/yourusername/trio-ev/internal/models"
)

const (
	// DefaultPayoutRate is the share of the trio pool returned to winning tickets.
	DefaultPayoutRate = 0.75

	// PickSize is the number of horses named on a trio ticket.
	PickSize = 3

	// Places is the number of decimal places the expected value is rounded to.
	Places = 3
)

// ChooseThree returns C(n,3) = n(n-1)(n-2)/6, or zero when n < 3.
func ChooseThree(n int) *big.Int {
	if n < PickSize {
		return big.NewInt(0)
	}
	return new(big.Int).Binomial(int64(n), PickSize)
}

// Feasible reports whether at least three horses remain after k exclusions.
func Feasible(total, k int) bool {
	return total >= k+PickSize
}

// Evaluate returns the expected value for total horses with k excluded at the
// given confidence fraction, using DefaultPayoutRate. Infeasible inputs yield zero.
func Evaluate(total, k int, confidence float64) decimal.Decimal {
	return evaluate(total, k, confidence, DefaultPayoutRate)
}

func evaluate(total, k int, confidence, payoutRate float64) decimal.Decimal {
	if !Feasible(total, k) {
		return decimal.Zero
	}
	return round(confidence * successRatio(total, k, payoutRate))
}

// successRatio is payoutRate * C(total,3) / C(total-k,3). Callers guarantee feasibility.
func successRatio(total, k int, payoutRate float64) float64 {
	all := toFloat(ChooseThree(total))
	reduced := toFloat(ChooseThree(total - k))
	return (payoutRate * all) / reduced
}

// round rounds the exact binary value of v half-to-even at the third decimal.
// Non-finite values have no decimal form and collapse to zero.
func round(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.RequireFromString(strconv.FormatFloat(v, 'f', Places, 64))
}

func toFloat(n *big.Int) float64 {
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

// Evaluator evaluates selections at a fixed payout rate, optionally memoising results.
type Evaluator struct {
	payoutRate float64
	cache      *EvaluationCache
}

// New creates an Evaluator. A payoutRate of zero selects DefaultPayoutRate; a nil
// cache disables memoisation.
func New(payoutRate float64, cache *EvaluationCache) *Evaluator {
	if payoutRate == 0 {
		payoutRate = DefaultPayoutRate
	}
	return &Evaluator{
		payoutRate: payoutRate,
		cache:      cache,
	}
}

// PayoutRate returns the pool payout rate in use.
func (e *Evaluator) PayoutRate() float64 {
	return e.payoutRate
}

// Cache returns the evaluation cache, or nil when caching is disabled.
func (e *Evaluator) Cache() *EvaluationCache {
	return e.cache
}

// Evaluate returns the expected value at this evaluator's payout rate.
func (e *Evaluator) Evaluate(total, k int, confidence float64) decimal.Decimal {
	return evaluate(total, k, confidence, e.payoutRate)
}

// EvaluateSelection returns the full breakdown for a selection. The result is shared
// with the cache when one is configured and must not be modified.
func (e *Evaluator) EvaluateSelection(sel models.Selection) *models.Evaluation {
	key := CacheKey{
		Total:      sel.Total,
		Excluded:   sel.ExcludedCount(),
		Confidence: sel.Confidence,
		PayoutRate: e.payoutRate,
	}
	if e.cache != nil {
		if cached := e.cache.Get(key); cached != nil {
			return cached
		}
	}

	result := e.breakdown(sel.Total, sel.ExcludedCount(), sel.Confidence)

	if e.cache != nil {
		e.cache.Set(key, result)
	}
	return result
}

func (e *Evaluator) breakdown(total, k int, confidence float64) *models.Evaluation {
	result := &models.Evaluation{
		Total:                 total,
		ExcludedCount:         k,
		Confidence:            confidence,
		PayoutRate:            e.payoutRate,
		Feasible:              Feasible(total, k),
		TotalCombinations:     ChooseThree(total),
		RemainingCombinations: ChooseThree(total - k),
		ExpectedValue:         decimal.Zero,
	}
	if !result.Feasible {
		return result
	}

	result.EVSuccess = successRatio(total, k, e.payoutRate)
	result.ExpectedValue = round(confidence * result.EVSuccess)
	return result
}
