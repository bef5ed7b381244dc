package rubric

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCriterion(t *testing.T) {
	c, err := NewCriterion("M1", "Code compiles without errors", true)
	require.NoError(t, err)

	assert.Equal(t, "M1", c.ID)
	assert.Equal(t, "Code compiles without errors", c.Description)
	assert.True(t, c.Mandatory)
}

func TestNewCriterion_DefaultsToCumulative(t *testing.T) {
	c, err := NewCriterion("C1", "Code follows style guidelines", false)
	require.NoError(t, err)

	assert.False(t, c.Mandatory, "non-mandatory criteria are cumulative")
}

func TestValidateCriterionID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr string
	}{
		{name: "simple id", id: "M1"},
		{name: "snake case id", id: "code_style_pass"},
		{name: "leading underscore", id: "_internal"},
		{name: "max length id", id: strings.Repeat("a", MaxIDLength)},
		{
			name:    "empty id",
			id:      "",
			wantErr: "cannot be empty",
		},
		{
			name:    "too long",
			id:      strings.Repeat("a", MaxIDLength+1),
			wantErr: "exceeds 100 characters",
		},
		{
			name:    "starts with digit",
			id:      "123abc",
			wantErr: "not identifier-safe",
		},
		{
			name:    "contains space",
			id:      "has space",
			wantErr: "not identifier-safe",
		},
		{
			name:    "contains dash",
			id:      "has-dash",
			wantErr: "not identifier-safe",
		},
		{
			name:    "reserved word",
			id:      "class",
			wantErr: "reserved word",
		},
		{
			name:    "go keyword",
			id:      "func",
			wantErr: "reserved word",
		},
		{
			name:    "reserved result field",
			id:      "passes",
			wantErr: "reserved result field name",
		},
		{
			name:    "reserved result field case folded",
			id:      "Passes",
			wantErr: "reserved result field name",
		},
		{
			name:    "reserved prefix",
			id:      "model_dump",
			wantErr: "reserved prefix",
		},
		{
			name:    "justification suffix",
			id:      "C1_justification",
			wantErr: "must not end with",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCriterionID(tt.id)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCriterion)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewCriterion_InvalidID(t *testing.T) {
	_, err := NewCriterion("has space", "whatever", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCriterion)
}

func TestMustCriterion_PanicsOnInvalidID(t *testing.T) {
	assert.Panics(t, func() {
		MustCriterion("123abc", "starts with a digit", false)
	})
}
