package models

import "fmt"

// Step identifies which page of the two-step form is being shown.
type Step int

const (
	// StepAwaitingTotal asks for the number of horses in the race.
	StepAwaitingTotal Step = 0
	// StepAwaitingExclusions asks for excluded horses and a confidence percentage.
	StepAwaitingExclusions Step = 1
)

// ParseStep converts the integer posted in the form's step field into a Step.
func ParseStep(v int) (Step, error) {
	switch Step(v) {
	case StepAwaitingTotal, StepAwaitingExclusions:
		return Step(v), nil
	default:
		return StepAwaitingTotal, fmt.Errorf("%w: %d", ErrInvalidStep, v)
	}
}

// String returns the name of the step.
func (s Step) String() string {
	switch s {
	case StepAwaitingTotal:
		return "awaiting_total"
	case StepAwaitingExclusions:
		return "awaiting_exclusions"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Selection is the user's input for one race, rebuilt from the form on every request.
type Selection struct {
	Total      int      `json:"total_horses"`
	Excluded   []string `json:"excluded_horses"`
	Confidence float64  `json:"confidence"` // fraction, percentage / 100
}

// ExcludedCount returns k, the number of excluded identifiers. Duplicates count.
func (s Selection) ExcludedCount() int {
	return len(s.Excluded)
}

// IsExcluded reports whether the given horse identifier was excluded.
func (s Selection) IsExcluded(id string) bool {
	for _, e := range s.Excluded {
		if e == id {
			return true
		}
	}
	return false
}
