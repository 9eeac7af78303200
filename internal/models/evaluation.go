package models

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Evaluation is the breakdown of one expected-value computation.
type Evaluation struct {
	Total                 int             `json:"total_horses"`
	ExcludedCount         int             `json:"excluded_count"`
	Confidence            float64         `json:"confidence"`
	PayoutRate            float64         `json:"payout_rate"`
	Feasible              bool            `json:"feasible"`
	TotalCombinations     *big.Int        `json:"total_combinations"`
	RemainingCombinations *big.Int        `json:"remaining_combinations"`
	EVSuccess             float64         `json:"ev_success"`
	ExpectedValue         decimal.Decimal `json:"expected_value"`
}

// Tickets returns the number of trio tickets needed to box every remaining horse.
func (e *Evaluation) Tickets() *big.Int {
	if e.RemainingCombinations == nil {
		return big.NewInt(0)
	}
	return e.RemainingCombinations
}

// IsProfitable reports whether the expected value exceeds break-even.
func (e *Evaluation) IsProfitable() bool {
	return e.ExpectedValue.GreaterThan(decimal.NewFromInt(1))
}
