// Command teval validates rubric definitions, scores judgment results
// against them, and measures alignment between result sets.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tvaroska/teval/config"
	"github.com/tvaroska/teval/infrastructure/runner"
	"github.com/tvaroska/teval/rubric"
)

type cliError struct {
	code int
	err  error
}

func (e cliError) Error() string { return e.err.Error() }

// exitEvaluationFailed is the exit code when scoring succeeds but the
// evaluated result does not pass the rubric.
const exitEvaluationFailed = 2

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		var ce cliError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.err)
			os.Exit(ce.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "teval",
		Short:         "Rubric-based evaluation of model and human outputs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCommand())
	root.AddCommand(newScoreCommand())
	root.AddCommand(newReportCommand())
	root.AddCommand(newAlignCommand())
	root.AddCommand(newSchemaCommand())
	root.AddCommand(newPromptCommand())
	return root
}

func loadRubric(path string) (*rubric.Rubric, error) {
	loader, err := config.NewLoader()
	if err != nil {
		return nil, err
	}
	return loader.LoadFromFile(path)
}

// readResults reads a results file holding either one JSON judgment
// object or an array of them, and returns one payload per judgment.
func readResults(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	var many []json.RawMessage
	if err := json.Unmarshal(data, &many); err == nil {
		payloads := make([][]byte, len(many))
		for i, raw := range many {
			payloads[i] = raw
		}
		return payloads, nil
	}

	return [][]byte{data}, nil
}

func newValidateCommand() *cobra.Command {
	var rubricPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a rubric definition file",
		RunE: func(_ *cobra.Command, _ []string) error {
			r, err := loadRubric(rubricPath)
			if err != nil {
				return err
			}
			fmt.Printf("rubric %s: %d mandatory, %d cumulative, threshold %d\n",
				r.RubricID(), len(r.MandatoryCriteria()), len(r.CumulativeCriteria()), r.PassingThreshold())
			return nil
		},
	}
	cmd.Flags().StringVar(&rubricPath, "rubric", "", "rubric definition file")
	_ = cmd.MarkFlagRequired("rubric")
	return cmd
}

func newScoreCommand() *cobra.Command {
	var rubricPath, resultsPath string
	var strict bool
	var concurrency int

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score judgment results against a rubric",
		Long: "Score reads a results file holding one judgment object or an array of " +
			"them, validates every judgment against the rubric, and prints one " +
			"PASS/FAIL line per result. The exit code is 2 when any result fails.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := loadRubric(rubricPath)
			if err != nil {
				return err
			}
			payloads, err := readResults(resultsPath)
			if err != nil {
				return err
			}

			evaluator, err := runner.NewBatchEvaluator(r, nil, runner.Config{
				MaxConcurrency: concurrency,
				SchemaPrecheck: strict,
			})
			if err != nil {
				return err
			}

			outcome, err := evaluator.EvaluateAll(cmd.Context(), payloads)
			if err != nil {
				return err
			}

			for i, passed := range outcome.Passed {
				status := "FAIL"
				if passed {
					status = "PASS"
				}
				line := fmt.Sprintf("result %d: %s", i, status)
				if !passed {
					if failed := outcome.Results[i].FailedIDs(); len(failed) > 0 {
						line += fmt.Sprintf(" (failed: %v)", failed)
					}
				}
				fmt.Println(line)
			}
			fmt.Printf("passed %d of %d\n", outcome.PassCount, len(outcome.Results))

			if outcome.PassCount < len(outcome.Results) {
				return cliError{
					code: exitEvaluationFailed,
					err:  fmt.Errorf("%d result(s) failed rubric %s", len(outcome.Results)-outcome.PassCount, r.RubricID()),
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rubricPath, "rubric", "", "rubric definition file")
	cmd.Flags().StringVar(&resultsPath, "results", "", "JSON results file")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject payloads with properties outside the rubric schema")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum parallel evaluations (0 = default)")
	_ = cmd.MarkFlagRequired("rubric")
	_ = cmd.MarkFlagRequired("results")
	return cmd
}

func newReportCommand() *cobra.Command {
	var rubricPath, resultsPath, title, outPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a markdown evaluation report for one result",
		RunE: func(_ *cobra.Command, _ []string) error {
			r, err := loadRubric(rubricPath)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(resultsPath)
			if err != nil {
				return fmt.Errorf("failed to read results: %w", err)
			}
			res, err := r.ParseResult(data)
			if err != nil {
				return err
			}

			report := res.Report(title)
			if outPath != "" {
				return os.WriteFile(outPath, []byte(report+"\n"), 0o644)
			}
			fmt.Println(report)
			return nil
		},
	}
	cmd.Flags().StringVar(&rubricPath, "rubric", "", "rubric definition file")
	cmd.Flags().StringVar(&resultsPath, "results", "", "JSON file with one judgment object")
	cmd.Flags().StringVar(&title, "title", "", "report title (default derives from the rubric id)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the report to a file instead of stdout")
	_ = cmd.MarkFlagRequired("rubric")
	_ = cmd.MarkFlagRequired("results")
	return cmd
}

func newAlignCommand() *cobra.Command {
	var rubricPath, leftPath, rightPath string

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Measure pass/fail agreement between two result files",
		RunE: func(_ *cobra.Command, _ []string) error {
			r, err := loadRubric(rubricPath)
			if err != nil {
				return err
			}

			left, err := parseResultFile(r, leftPath)
			if err != nil {
				return err
			}
			right, err := parseResultFile(r, rightPath)
			if err != nil {
				return err
			}

			score, err := r.CalculateAlignment(left, right)
			if err != nil {
				return err
			}
			fmt.Printf("alignment: %.4f (%d result(s))\n", score, len(left))
			return nil
		},
	}
	cmd.Flags().StringVar(&rubricPath, "rubric", "", "rubric definition file")
	cmd.Flags().StringVar(&leftPath, "left", "", "first JSON results file")
	cmd.Flags().StringVar(&rightPath, "right", "", "second JSON results file")
	_ = cmd.MarkFlagRequired("rubric")
	_ = cmd.MarkFlagRequired("left")
	_ = cmd.MarkFlagRequired("right")
	return cmd
}

// parseResultFile parses every judgment in a results file, keeping the
// sequence shape so alignment sees matched lists.
func parseResultFile(r *rubric.Rubric, path string) ([]*rubric.Result, error) {
	payloads, err := readResults(path)
	if err != nil {
		return nil, err
	}

	results := make([]*rubric.Result, len(payloads))
	for i, payload := range payloads {
		res, err := r.ParseResult(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: result %d: %w", path, i, err)
		}
		results[i] = res
	}
	return results, nil
}

func newSchemaCommand() *cobra.Command {
	var rubricPath, outPath string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Export the rubric's judgment JSON schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			r, err := loadRubric(rubricPath)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(r.JSONSchema(), "", "  ")
			if err != nil {
				return err
			}
			if outPath != "" {
				return os.WriteFile(outPath, append(data, '\n'), 0o644)
			}
			fmt.Println(string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&rubricPath, "rubric", "", "rubric definition file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the schema to a file instead of stdout")
	_ = cmd.MarkFlagRequired("rubric")
	return cmd
}

func newPromptCommand() *cobra.Command {
	var rubricPath string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Render the rubric as judge prompt text",
		RunE: func(_ *cobra.Command, _ []string) error {
			r, err := loadRubric(rubricPath)
			if err != nil {
				return err
			}
			fmt.Println(r.ToPromptText())
			return nil
		},
	}
	cmd.Flags().StringVar(&rubricPath, "rubric", "", "rubric definition file")
	_ = cmd.MarkFlagRequired("rubric")
	return cmd
}
