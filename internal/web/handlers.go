package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/yourusername/trio-ev/internal/metrics"
	"github.com/yourusername/trio-ev/internal/models"
)

const maxAPIBodyBytes = 1 << 20

// horseOption is one checkbox on the exclusion form.
type horseOption struct {
	Number  string
	Checked bool
}

// indexPage is the view model for index.tmpl.
type indexPage struct {
	Step           int
	HasTotal       bool
	TotalHorses    int
	MaxRunners     int
	Horses         []horseOption
	ConfidenceText string
	Result         *models.Evaluation
	ExpectedValue  string
	Error          string
}

// explanationPage is the view model for explanation.tmpl.
type explanationPage struct {
	Example *models.Evaluation
}

type notFoundPage struct {
	Path string
}

// EvaluateRequest is the JSON body accepted by POST /api/evaluate.
type EvaluateRequest struct {
	TotalHorses    int      `json:"total_horses"`
	ExcludedHorses []string `json:"excluded_horses"`
	Confidence     float64  `json:"confidence"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderer.Render(w, http.StatusOK, pageIndex, indexPage{
		Step:       int(models.StepAwaitingTotal),
		MaxRunners: s.parser.maxRunners,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	sub, err := s.parser.Parse(r)
	if err != nil {
		s.rejectForm(w, reqID, sub, err)
		return
	}

	metrics.RecordStepTransition(sub.Step.String())

	switch sub.Step {
	case models.StepAwaitingTotal:
		s.calcLogger.LogStepTransition(reqID, sub.Step.String(), models.StepAwaitingExclusions.String(), sub.Selection.Total)
		s.renderer.Render(w, http.StatusOK, pageIndex, s.exclusionPage(sub))

	case models.StepAwaitingExclusions:
		result := s.evaluator.EvaluateSelection(sub.Selection)
		ev := result.ExpectedValue.String()

		expected, _ := result.ExpectedValue.Float64()
		metrics.RecordEvaluation(result.Feasible, result.ExcludedCount, expected)
		s.calcLogger.LogEvaluation(reqID, result.Total, result.ExcludedCount, result.Confidence, result.Feasible, ev)

		page := s.exclusionPage(sub)
		page.Result = result
		page.ExpectedValue = ev
		s.renderer.Render(w, http.StatusOK, pageIndex, page)
	}
}

// rejectForm re-renders the form the user submitted with the error shown.
func (s *Server) rejectForm(w http.ResponseWriter, reqID string, sub Submission, err error) {
	field := errorField(err)
	metrics.RecordInvalidInput(field)
	s.calcLogger.LogInvalidInput(reqID, field, err)

	page := indexPage{
		Step:       int(models.StepAwaitingTotal),
		MaxRunners: s.parser.maxRunners,
		Error:      errorMessage(err),
	}
	// Only a valid exclusion-step submission with a usable total can redraw its checkboxes.
	if sub.Step == models.StepAwaitingExclusions && !errors.Is(err, models.ErrInvalidTotal) && !errors.Is(err, models.ErrTooManyRunners) {
		page = s.exclusionPage(sub)
		page.Error = errorMessage(err)
	}

	s.renderer.Render(w, http.StatusBadRequest, pageIndex, page)
}

// exclusionPage builds the step-1 form for sub, keeping checked horses checked.
func (s *Server) exclusionPage(sub Submission) indexPage {
	total := sub.Selection.Total
	horses := make([]horseOption, 0, total)
	for i := 1; i <= total; i++ {
		number := strconv.Itoa(i)
		horses = append(horses, horseOption{
			Number:  number,
			Checked: sub.Selection.IsExcluded(number),
		})
	}

	page := indexPage{
		Step:        int(models.StepAwaitingExclusions),
		HasTotal:    true,
		TotalHorses: total,
		MaxRunners:  s.parser.maxRunners,
		Horses:      horses,
	}
	if sub.ConfidencePercent != 0 {
		page.ConfidenceText = strconv.FormatFloat(sub.ConfidencePercent, 'f', -1, 64)
	}
	return page
}

func (s *Server) handleExplanation(w http.ResponseWriter, r *http.Request) {
	example := s.evaluator.EvaluateSelection(models.Selection{
		Total:      10,
		Excluded:   []string{"3", "7"},
		Confidence: 0.8,
	})
	s.renderer.Render(w, http.StatusOK, pageExplanation, explanationPage{Example: example})
}

func (s *Server) handleAPIEvaluate(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req EvaluateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxAPIBodyBytes))
	if err := dec.Decode(&req); err != nil {
		metrics.RecordInvalidInput("body")
		s.calcLogger.LogInvalidInput(reqID, "body", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	if err := s.parser.Validate(req.TotalHorses, req.Confidence); err != nil {
		field := errorField(err)
		metrics.RecordInvalidInput(field)
		s.calcLogger.LogInvalidInput(reqID, field, err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result := s.evaluator.EvaluateSelection(models.Selection{
		Total:      req.TotalHorses,
		Excluded:   req.ExcludedHorses,
		Confidence: req.Confidence / 100.0,
	})

	expected, _ := result.ExpectedValue.Float64()
	metrics.RecordEvaluation(result.Feasible, result.ExcludedCount, expected)
	s.calcLogger.LogEvaluation(reqID, result.Total, result.ExcludedCount, result.Confidence, result.Feasible, result.ExpectedValue.String())

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderer.Render(w, http.StatusNotFound, pageNotFound, notFoundPage{Path: r.URL.Path})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

func errorField(err error) string {
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr.Field
	}
	return "form"
}

// errorMessage maps form errors to the message shown to the user.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidStep):
		return "不正なステップです。最初からやり直してください。"
	case errors.Is(err, models.ErrTooManyRunners):
		return "出走頭数が多すぎます。"
	case errors.Is(err, models.ErrInvalidTotal):
		return "出走頭数は0以上の整数で入力してください。"
	case errors.Is(err, models.ErrInvalidConfidence):
		return "自信は0から100の数値で入力してください。"
	default:
		return "入力を読み取れませんでした。"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
