package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/trio-ev/internal/config"
	"github.com/yourusername/trio-ev/internal/evaluator"
	"github.com/yourusername/trio-ev/internal/models"
	"github.com/yourusername/trio-ev/internal/web"
)

type evaluateOptions struct {
	total      int
	excluded   []string
	confidence float64
	asJSON     bool
}

var evalOpts evaluateOptions

func init() {
	evaluateCmd.Flags().IntVarP(&evalOpts.total, "total", "t", 0, "Number of horses in the race")
	evaluateCmd.Flags().StringSliceVarP(&evalOpts.excluded, "exclude", "x", nil, "Excluded horse number (repeatable)")
	evaluateCmd.Flags().Float64Var(&evalOpts.confidence, "confidence", 0, "Confidence the excluded horses miss the top three, in percent")
	evaluateCmd.Flags().BoolVar(&evalOpts.asJSON, "json", false, "Print the breakdown as JSON")
	_ = evaluateCmd.MarkFlagRequired("total")
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Compute an expected value from the command line",
	Example: `  calculator evaluate --total 10 --exclude 3 --exclude 7 --confidence 80
  calculator evaluate -t 18 -x 1,2,3,4,5 --confidence 60 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEvaluate(cmd.OutOrStdout(), cfg, evalOpts)
	},
}

func runEvaluate(w io.Writer, cfg *config.Config, opts evaluateOptions) error {
	if err := web.NewFormParser(cfg.Calculator.MaxRunners).Validate(opts.total, opts.confidence); err != nil {
		return err
	}

	eval := evaluator.New(cfg.Calculator.PayoutRate, nil)
	result := eval.EvaluateSelection(models.Selection{
		Total:      opts.total,
		Excluded:   opts.excluded,
		Confidence: opts.confidence / 100.0,
	})

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	excluded := "none"
	if len(opts.excluded) > 0 {
		excluded = fmt.Sprintf("%d (%s)", len(opts.excluded), strings.Join(opts.excluded, ", "))
	}

	fmt.Fprintf(w, "Total horses:    %d\n", result.Total)
	fmt.Fprintf(w, "Excluded:        %s\n", excluded)
	fmt.Fprintf(w, "Confidence:      %s%%\n", strconv.FormatFloat(opts.confidence, 'f', -1, 64))
	fmt.Fprintf(w, "Payout rate:     %s%%\n", strconv.FormatFloat(result.PayoutRate*100, 'f', -1, 64))
	fmt.Fprintf(w, "Tickets:         %d of %d\n", result.Tickets(), result.TotalCombinations)
	if !result.Feasible {
		fmt.Fprintln(w, "Fewer than three horses remain; no trio can be boxed.")
	}
	fmt.Fprintf(w, "Expected value:  %s\n", result.ExpectedValue)

	return nil
}
