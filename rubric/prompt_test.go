package rubric

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPromptText(t *testing.T) {
	r := reviewRubric(t)

	text := r.ToPromptText()

	assert.True(t, strings.HasPrefix(text, "# Evaluation Rubric: code_review_v1\n"))
	assert.Contains(t, text, "## Mandatory Criteria (ALL must pass)")
	assert.Contains(t, text, "- **M1**: Code compiles without errors")
	assert.Contains(t, text, "## Cumulative Criteria")
	assert.Contains(t, text, "(Must pass at least 1 of 2)")
	assert.Contains(t, text, "- **C1**: Code follows style guidelines")
	assert.Contains(t, text, "- **C2**: Code includes appropriate comments")
	assert.Contains(t, text, "## Instructions")
	assert.Contains(t, text, "- All 1 mandatory criteria must pass.")
	assert.Contains(t, text, "- At least 1 cumulative criteria must pass.")

	mandatoryIdx := strings.Index(text, "## Mandatory Criteria")
	cumulativeIdx := strings.Index(text, "## Cumulative Criteria")
	instructionsIdx := strings.Index(text, "## Instructions")
	assert.Less(t, mandatoryIdx, cumulativeIdx)
	assert.Less(t, cumulativeIdx, instructionsIdx)
}

func TestToPromptText_SectionOmission(t *testing.T) {
	onlyCumulative, err := NewRubric("points", []Criterion{
		MustCriterion("C1", "first point", false),
	}, 1)
	require.NoError(t, err)

	text := onlyCumulative.ToPromptText()
	assert.NotContains(t, text, "## Mandatory Criteria")
	assert.NotContains(t, text, "mandatory criteria must pass")
	assert.Contains(t, text, "(Must pass at least 1 of 1)")

	onlyMandatory, err := NewRubric("gates", []Criterion{
		MustCriterion("M1", "first gate", true),
	}, 0)
	require.NoError(t, err)

	text = onlyMandatory.ToPromptText()
	assert.Contains(t, text, "## Mandatory Criteria (ALL must pass)")
	assert.NotContains(t, text, "## Cumulative Criteria")
	assert.NotContains(t, text, "cumulative criteria must pass")
}
