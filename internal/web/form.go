package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/trio-ev/internal/models"
)

// Form field names, shared with the templates.
const (
	fieldStep       = "step"
	fieldTotal      = "total_horses"
	fieldExcluded   = "excluded_horses"
	fieldConfidence = "confidence"
)

// FieldError reports which form field was rejected.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Submission is one posted form, before evaluation.
type Submission struct {
	Step      models.Step
	Selection models.Selection
	// ConfidencePercent is the confidence as entered, 0-100.
	ConfidencePercent float64
}

// submissionRules carries the validate tags applied to every parsed form.
type submissionRules struct {
	Total             int     `validate:"gte=0"`
	ConfidencePercent float64 `validate:"gte=0,lte=100"`
}

// FormParser turns posted form values into a Submission.
type FormParser struct {
	validate   *validator.Validate
	maxRunners int
}

// NewFormParser creates a parser that rejects races larger than maxRunners.
func NewFormParser(maxRunners int) *FormParser {
	return &FormParser{
		validate:   validator.New(),
		maxRunners: maxRunners,
	}
}

// Parse reads the step and the fields that step needs. Missing numeric fields
// default to zero. On error the returned Submission still carries whatever was
// parsed so the form can be re-rendered.
func (p *FormParser) Parse(r *http.Request) (Submission, error) {
	var sub Submission

	if err := r.ParseForm(); err != nil {
		return sub, &FieldError{Field: "form", Err: err}
	}

	stepValue, err := parseInt(r.PostForm.Get(fieldStep))
	if err != nil {
		return sub, &FieldError{Field: fieldStep, Err: fmt.Errorf("%w: %v", models.ErrInvalidStep, err)}
	}
	step, err := models.ParseStep(stepValue)
	if err != nil {
		return sub, &FieldError{Field: fieldStep, Err: err}
	}
	sub.Step = step

	total, err := parseInt(r.PostForm.Get(fieldTotal))
	if err != nil {
		return sub, &FieldError{Field: fieldTotal, Err: fmt.Errorf("%w: %v", models.ErrInvalidTotal, err)}
	}
	sub.Selection.Total = total

	if step == models.StepAwaitingExclusions {
		sub.Selection.Excluded = r.PostForm[fieldExcluded]

		percent, err := parseFloat(r.PostForm.Get(fieldConfidence))
		if err != nil {
			return sub, &FieldError{Field: fieldConfidence, Err: fmt.Errorf("%w: %v", models.ErrInvalidConfidence, err)}
		}
		sub.ConfidencePercent = percent
		sub.Selection.Confidence = percent / 100.0
	}

	if err := p.Validate(sub.Selection.Total, sub.ConfidencePercent); err != nil {
		return sub, err
	}

	return sub, nil
}

// Validate applies the range rules shared by the form and the JSON API.
func (p *FormParser) Validate(total int, confidencePercent float64) error {
	err := p.validate.Struct(submissionRules{Total: total, ConfidencePercent: confidencePercent})
	if err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
			return &FieldError{Field: "form", Err: err}
		}

		fe := validationErrors[0]
		switch fe.StructField() {
		case "Total":
			return &FieldError{Field: fieldTotal, Err: fmt.Errorf("%w: must not be negative", models.ErrInvalidTotal)}
		default:
			return &FieldError{Field: fieldConfidence, Err: fmt.Errorf("%w: must be between 0 and 100", models.ErrInvalidConfidence)}
		}
	}

	if err := p.validate.Var(total, fmt.Sprintf("lte=%d", p.maxRunners)); err != nil {
		return &FieldError{Field: fieldTotal, Err: fmt.Errorf("%w: %d > %d", models.ErrTooManyRunners, total, p.maxRunners)}
	}

	return nil
}

// parseInt parses an optionally blank integer field; blank means zero.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// parseFloat parses an optionally blank decimal field; blank means zero.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
