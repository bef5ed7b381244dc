package rubric

import (
	"fmt"
	"strings"
)

// ToPromptText renders the rubric as markdown suitable for inclusion in
// a judge's prompt: the mandatory and cumulative criteria in their own
// sections, followed by evaluation instructions. Pure formatting; no
// decision logic.
func (r *Rubric) ToPromptText() string {
	lines := []string{"# Evaluation Rubric: " + r.rubricID, ""}

	mandatory := r.MandatoryCriteria()
	cumulative := r.CumulativeCriteria()

	if len(mandatory) > 0 {
		lines = append(lines, "## Mandatory Criteria (ALL must pass)", "")
		for _, c := range mandatory {
			lines = append(lines, fmt.Sprintf("- **%s**: %s", c.ID, c.Description))
		}
		lines = append(lines, "")
	}

	if len(cumulative) > 0 {
		lines = append(lines, "## Cumulative Criteria")
		lines = append(lines, fmt.Sprintf("(Must pass at least %d of %d)",
			r.passingThreshold, len(cumulative)), "")
		for _, c := range cumulative {
			lines = append(lines, fmt.Sprintf("- **%s**: %s", c.ID, c.Description))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "## Instructions")
	lines = append(lines, "For each criterion above, evaluate whether it passes (Yes) or fails (No).")

	if len(mandatory) > 0 {
		lines = append(lines, fmt.Sprintf("- All %d mandatory criteria must pass.", len(mandatory)))
	}
	if len(cumulative) > 0 {
		lines = append(lines, fmt.Sprintf("- At least %d cumulative criteria must pass.", r.passingThreshold))
	}

	return strings.Join(lines, "\n")
}
