package rubric

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxNearMissDistance is the largest Levenshtein distance at which an
// extraneous result key is suggested as a near miss for a missing
// criterion id.
const maxNearMissDistance = 2

// descriptionEchoLimit caps the length of the criterion description
// echoed in type errors.
const descriptionEchoLimit = 60

// ValidateResult scores a single result set against the rubric.
//
// The result may be a native mapping (map[string]bool or
// map[string]any), a *Result, or a serialized JSON object as string,
// []byte, or json.RawMessage. Every criterion id defined in the rubric
// must be present with a strictly boolean value; extra keys, including
// justification fields, are ignored.
//
// It returns true iff every mandatory criterion is true and the count
// of true cumulative criteria is at least the passing threshold.
// Failures to parse, a non-object payload, missing ids, or non-boolean
// values produce an error wrapping the matching sentinel; the boolean
// returned alongside an error is always false and carries no meaning.
func (r *Rubric) ValidateResult(result any) (bool, error) {
	values, err := r.ingestResult(result)
	if err != nil {
		return false, err
	}
	if err := r.checkComplete(values); err != nil {
		return false, err
	}
	return r.evaluate(values), nil
}

// ingestResult normalizes the dual-mode input into a plain mapping so
// the rest of the scoring algorithm is mode-agnostic.
func (r *Rubric) ingestResult(result any) (map[string]any, error) {
	var raw []byte

	switch v := result.(type) {
	case map[string]any:
		return v, nil
	case map[string]bool:
		values := make(map[string]any, len(v))
		for k, b := range v {
			values[k] = b
		}
		return values, nil
	case *Result:
		if v == nil {
			return nil, fmt.Errorf("%w: got a nil *Result", ErrInvalidResultShape)
		}
		values := make(map[string]any, len(v.values))
		for k, b := range v.values {
			values[k] = b
		}
		return values, nil
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil, fmt.Errorf("%w: got %T, want a JSON object or a map of criterion ids to booleans",
			ErrInvalidResultShape, result)
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level JSON must be an object, got %s",
			ErrInvalidResultShape, jsonKind(decoded))
	}
	return obj, nil
}

// checkComplete verifies that every criterion id is present with a
// strictly boolean value. Missing ids are reported with mandatory and
// cumulative ids listed separately; the first non-boolean value found
// is reported with the id, the type encountered, and an echo of the
// criterion description.
func (r *Rubric) checkComplete(values map[string]any) error {
	var missingMandatory, missingCumulative []string
	for _, c := range r.criteria {
		if _, ok := values[c.ID]; ok {
			continue
		}
		if c.Mandatory {
			missingMandatory = append(missingMandatory, c.ID)
		} else {
			missingCumulative = append(missingCumulative, c.ID)
		}
	}

	if len(missingMandatory) > 0 || len(missingCumulative) > 0 {
		extra := r.extraneousKeys(values)
		var parts []string
		if len(missingMandatory) > 0 {
			parts = append(parts, "mandatory: "+joinWithHints(missingMandatory, extra))
		}
		if len(missingCumulative) > 0 {
			parts = append(parts, "cumulative: "+joinWithHints(missingCumulative, extra))
		}
		return fmt.Errorf("%w: %s", ErrMissingResults, strings.Join(parts, "; "))
	}

	for _, c := range r.criteria {
		value := values[c.ID]
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: criterion %q must be boolean, got %T (criterion: %q)",
				ErrNonBooleanResult, c.ID, value, truncate(c.Description, descriptionEchoLimit))
		}
	}

	return nil
}

// evaluate computes the pass/fail outcome over a complete, type-checked
// value map. Any false mandatory criterion fails the whole evaluation
// immediately; otherwise the count of true cumulative criteria is
// compared against the passing threshold. A rubric with no cumulative
// criteria has threshold 0 and trivially satisfies the cumulative gate.
func (r *Rubric) evaluate(values map[string]any) bool {
	cumulativePassed := 0
	for _, c := range r.criteria {
		passed, _ := values[c.ID].(bool)
		if c.Mandatory {
			if !passed {
				return false
			}
		} else if passed {
			cumulativePassed++
		}
	}
	return cumulativePassed >= r.passingThreshold
}

// extraneousKeys returns result keys that are neither criterion ids nor
// their justification fields. They are candidates for near-miss hints
// on missing ids.
func (r *Rubric) extraneousKeys(values map[string]any) []string {
	known := make(map[string]struct{}, 2*len(r.criteria))
	for _, c := range r.criteria {
		known[c.ID] = struct{}{}
		known[c.ID+JustificationSuffix] = struct{}{}
	}

	var extra []string
	for k := range values {
		if _, ok := known[k]; !ok {
			extra = append(extra, k)
		}
	}
	return extra
}

// joinWithHints renders a comma-separated id list, appending a
// near-miss hint when an extraneous key sits within a small edit
// distance of a missing id (typically a typo or a case slip).
func joinWithHints(ids, extra []string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id
		if hint, ok := nearestKey(id, extra); ok {
			parts[i] = fmt.Sprintf("%s (found similar key %q)", id, hint)
		}
	}
	return strings.Join(parts, ", ")
}

// nearestKey returns the extraneous key closest to id, if any is
// within maxNearMissDistance edits.
func nearestKey(id string, extra []string) (string, bool) {
	best := ""
	bestDistance := maxNearMissDistance + 1
	for _, k := range extra {
		if d := levenshtein.ComputeDistance(id, k); d < bestDistance {
			best, bestDistance = k, d
		}
	}
	return best, bestDistance <= maxNearMissDistance
}

// jsonKind names the JSON type a decoded value came from, for error
// messages about wrongly shaped payloads.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// truncate shortens s to at most n runes, marking the cut with an
// ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
