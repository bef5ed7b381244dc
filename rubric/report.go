package rubric

import (
	"fmt"
	"strings"
)

// GenerateReport renders a deterministic, human-readable markdown
// report for a single result set: overall PASS/FAIL, a mandatory
// section, a cumulative section with the numeric score against the
// threshold, and a trailing summary of the pass requirements.
//
// The result accepts the same dual-mode input as ValidateResult and is
// validated the same way before rendering. The justifications map is
// optional free text keyed by criterion id; title overrides the default
// rubric-derived heading. Sections are emitted only when the rubric has
// at least one criterion of that kind.
func (r *Rubric) GenerateReport(result any, justifications map[string]string, title string) (string, error) {
	values, err := r.ingestResult(result)
	if err != nil {
		return "", err
	}
	if err := r.checkComplete(values); err != nil {
		return "", err
	}

	booleans := make(map[string]bool, len(r.criteria))
	for _, c := range r.criteria {
		booleans[c.ID], _ = values[c.ID].(bool)
	}

	return r.renderReport(booleans, justifications, title), nil
}

// renderReport does the actual formatting over a complete boolean map.
// Result.Report shares it, skipping re-validation of already validated
// carriers.
func (r *Rubric) renderReport(values map[string]bool, justifications map[string]string, title string) string {
	var lines []string

	if title == "" {
		title = "Evaluation Report: " + r.rubricID
	}
	lines = append(lines, "# "+title, "")

	overall := "FAIL"
	if r.evaluateBooleans(values) {
		overall = "PASS"
	}
	lines = append(lines, fmt.Sprintf("**Overall Result: %s**", overall), "")

	mandatory := r.MandatoryCriteria()
	cumulative := r.CumulativeCriteria()

	if len(mandatory) > 0 {
		lines = append(lines, "## Mandatory Criteria (ALL must pass)", "")

		var failed []string
		for _, c := range mandatory {
			lines = append(lines, criterionLine(c, values[c.ID]))
			if !values[c.ID] {
				failed = append(failed, c.ID)
			}
			if j := justifications[c.ID]; j != "" {
				lines = append(lines, "  → "+j)
			}
			lines = append(lines, "")
		}

		if len(failed) > 0 {
			lines = append(lines, fmt.Sprintf("⚠️  **%d mandatory criterion(s) failed:** %s",
				len(failed), strings.Join(failed, ", ")), "")
		}
	}

	if len(cumulative) > 0 {
		passed := countPassed(cumulative, values)

		lines = append(lines, "## Cumulative Criteria")
		lines = append(lines, fmt.Sprintf("**Score: %d/%d** (Required: %d)",
			passed, len(cumulative), r.passingThreshold), "")

		for _, c := range cumulative {
			lines = append(lines, criterionLine(c, values[c.ID]))
			if j := justifications[c.ID]; j != "" {
				lines = append(lines, "  → "+j)
			}
			lines = append(lines, "")
		}

		if passed < r.passingThreshold {
			lines = append(lines, fmt.Sprintf("⚠️  **Need %d more cumulative criterion(s) to pass**",
				r.passingThreshold-passed), "")
		}
	}

	lines = append(lines, "## Requirements for Passing", "")

	if len(mandatory) > 0 {
		lines = append(lines, "**Mandatory criteria (ALL must pass):**")
		for _, c := range mandatory {
			lines = append(lines, "  "+passMark(values[c.ID])+" "+c.ID)
		}
		lines = append(lines, "")
	}

	if len(cumulative) > 0 {
		passed := countPassed(cumulative, values)
		lines = append(lines, "**Cumulative criteria:**")
		lines = append(lines, fmt.Sprintf("  - Need at least %d of %d to pass",
			r.passingThreshold, len(cumulative)))
		lines = append(lines, fmt.Sprintf("  - Currently passed: %d", passed))
		if passed < r.passingThreshold {
			lines = append(lines, fmt.Sprintf("  - Still need: %d more", r.passingThreshold-passed))
		}
	}

	return strings.Join(lines, "\n")
}

// evaluateBooleans mirrors evaluate over an already-typed boolean map.
func (r *Rubric) evaluateBooleans(values map[string]bool) bool {
	cumulativePassed := 0
	for _, c := range r.criteria {
		if c.Mandatory {
			if !values[c.ID] {
				return false
			}
		} else if values[c.ID] {
			cumulativePassed++
		}
	}
	return cumulativePassed >= r.passingThreshold
}

func countPassed(criteria []Criterion, values map[string]bool) int {
	passed := 0
	for _, c := range criteria {
		if values[c.ID] {
			passed++
		}
	}
	return passed
}

func criterionLine(c Criterion, passed bool) string {
	status := "FAIL"
	if passed {
		status = "PASS"
	}
	return fmt.Sprintf("%s **%s** [%s]: %s", passMark(passed), c.ID, status, c.Description)
}

func passMark(passed bool) string {
	if passed {
		return "✓"
	}
	return "✗"
}
