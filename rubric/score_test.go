package rubric

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateResult_MandatoryGate(t *testing.T) {
	r := reviewRubric(t)

	tests := []struct {
		name   string
		result map[string]bool
		want   bool
	}{
		{
			name:   "mandatory passes and threshold met",
			result: map[string]bool{"M1": true, "C1": true, "C2": false},
			want:   true,
		},
		{
			name:   "mandatory fails regardless of cumulative",
			result: map[string]bool{"M1": false, "C1": true, "C2": true},
			want:   false,
		},
		{
			name:   "mandatory passes but threshold missed",
			result: map[string]bool{"M1": true, "C1": false, "C2": false},
			want:   false,
		},
		{
			name:   "everything passes",
			result: map[string]bool{"M1": true, "C1": true, "C2": true},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ValidateResult(tt.result)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateResult_CumulativeOnly(t *testing.T) {
	r, err := NewRubric("cumulative_only", []Criterion{
		MustCriterion("C1", "first", false),
		MustCriterion("C2", "second", false),
		MustCriterion("C3", "third", false),
	}, 2)
	require.NoError(t, err)

	pass, err := r.ValidateResult(map[string]bool{"C1": true, "C2": true, "C3": false})
	require.NoError(t, err)
	assert.True(t, pass, "exactly two true cumulative criteria meets threshold 2")

	pass, err = r.ValidateResult(map[string]bool{"C1": true, "C2": false, "C3": false})
	require.NoError(t, err)
	assert.False(t, pass, "one true cumulative criterion misses threshold 2")
}

func TestValidateResult_MandatoryOnly(t *testing.T) {
	// A rubric with zero cumulative criteria must not error on the
	// cumulative gate; threshold 0 is trivially satisfied.
	r, err := NewRubric("mandatory_only", []Criterion{
		MustCriterion("M1", "first", true),
		MustCriterion("M2", "second", true),
	}, 0)
	require.NoError(t, err)

	pass, err := r.ValidateResult(map[string]bool{"M1": true, "M2": true})
	require.NoError(t, err)
	assert.True(t, pass)

	pass, err = r.ValidateResult(map[string]bool{"M1": true, "M2": false})
	require.NoError(t, err)
	assert.False(t, pass)
}

func TestValidateResult_JSONInput(t *testing.T) {
	r := reviewRubric(t)

	pass, err := r.ValidateResult(`{"M1": true, "C1": true, "C2": false}`)
	require.NoError(t, err)
	assert.True(t, pass)

	pass, err = r.ValidateResult([]byte(`{"M1": false, "C1": true, "C2": true}`))
	require.NoError(t, err)
	assert.False(t, pass)

	pass, err = r.ValidateResult(json.RawMessage(`{"M1": true, "C1": false, "C2": true}`))
	require.NoError(t, err)
	assert.True(t, pass)
}

func TestValidateResult_MalformedJSON(t *testing.T) {
	r := reviewRubric(t)

	_, err := r.ValidateResult(`{"M1": true,`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResult)
}

func TestValidateResult_WrongShape(t *testing.T) {
	r := reviewRubric(t)

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "JSON array", input: `[true, false]`, want: "an array"},
		{name: "JSON string", input: `"pass"`, want: "a string"},
		{name: "JSON number", input: `42`, want: "a number"},
		{name: "JSON null", input: `null`, want: "null"},
		{name: "unsupported native type", input: 42, want: "int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ValidateResult(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidResultShape)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateResult_MissingIDsByCategory(t *testing.T) {
	r := reviewRubric(t)

	_, err := r.ValidateResult(map[string]bool{"C1": true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingResults)
	assert.Contains(t, err.Error(), "mandatory: M1")
	assert.Contains(t, err.Error(), "cumulative: C2")
	assert.NotContains(t, err.Error(), "C1,", "present ids are not reported missing")
}

func TestValidateResult_MissingIDNearMissHint(t *testing.T) {
	r := reviewRubric(t)

	// "m1" is a case slip away from the missing "M1".
	_, err := r.ValidateResult(map[string]bool{"m1": true, "C1": true, "C2": true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingResults)
	assert.Contains(t, err.Error(), `found similar key "m1"`)
}

func TestValidateResult_NonBooleanValues(t *testing.T) {
	r := reviewRubric(t)

	tests := []struct {
		name     string
		payload  string
		wantID   string
		wantType string
	}{
		{
			name:     "number instead of bool",
			payload:  `{"M1": 1, "C1": true, "C2": false}`,
			wantID:   `"M1"`,
			wantType: "float64",
		},
		{
			name:     "string instead of bool",
			payload:  `{"M1": true, "C1": "yes", "C2": false}`,
			wantID:   `"C1"`,
			wantType: "string",
		},
		{
			name:     "null instead of bool",
			payload:  `{"M1": true, "C1": true, "C2": null}`,
			wantID:   `"C2"`,
			wantType: "<nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ValidateResult(tt.payload)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNonBooleanResult)
			assert.Contains(t, err.Error(), tt.wantID)
			assert.Contains(t, err.Error(), tt.wantType)
		})
	}
}

func TestValidateResult_NonBooleanEchoesDescription(t *testing.T) {
	r := reviewRubric(t)

	_, err := r.ValidateResult(`{"M1": "broken", "C1": true, "C2": false}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Code compiles without errors")
}

func TestValidateResult_ExtraKeysIgnored(t *testing.T) {
	r := reviewRubric(t)

	pass, err := r.ValidateResult(`{
		"M1": true,
		"C1": true,
		"C2": false,
		"M1_justification": "compiled cleanly",
		"unrelated_metadata": 7
	}`)
	require.NoError(t, err)
	assert.True(t, pass)
}

func TestValidateResult_RubricReusableAfterError(t *testing.T) {
	r := reviewRubric(t)

	_, err := r.ValidateResult(`{"M1": true}`)
	require.Error(t, err)

	pass, err := r.ValidateResult(map[string]bool{"M1": true, "C1": true, "C2": true})
	require.NoError(t, err, "a failed call must leave the rubric usable")
	assert.True(t, pass)
}
