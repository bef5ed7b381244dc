package rubric

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result is a validated, strongly typed result set bound to its rubric.
// It replaces per-rubric code generation with a single generic carrier:
// one boolean value per criterion id plus an optional justification
// text per id, with pass/fail, failed-ids, passed-ids, and report
// rendering built in. This is the recommended integration surface for
// structured-output pipelines.
//
// A Result is complete and type-checked by construction, so its query
// methods cannot fail. It is immutable and safe for concurrent use.
type Result struct {
	rubric         *Rubric
	values         map[string]bool
	justifications map[string]string
}

// NewResult constructs a Result from native maps. Every criterion id of
// the rubric must appear in values; extra keys in either map are
// dropped. Justifications are optional and may be nil.
func (r *Rubric) NewResult(values map[string]bool, justifications map[string]string) (*Result, error) {
	anyValues := make(map[string]any, len(values))
	for k, v := range values {
		anyValues[k] = v
	}
	if err := r.checkComplete(anyValues); err != nil {
		return nil, err
	}

	owned := make(map[string]bool, len(r.criteria))
	ownedJustifications := make(map[string]string, len(justifications))
	for _, c := range r.criteria {
		owned[c.ID] = values[c.ID]
		if j, ok := justifications[c.ID]; ok && j != "" {
			ownedJustifications[c.ID] = j
		}
	}

	return &Result{
		rubric:         r,
		values:         owned,
		justifications: ownedJustifications,
	}, nil
}

// ParseResult constructs a Result from a serialized JSON object in the
// wire shape of the exported schema: one required boolean per criterion
// id and one optional string per "<id>_justification". Unknown keys are
// ignored; a justification present with a non-string value is an error.
func (r *Rubric) ParseResult(data []byte) (*Result, error) {
	values, err := r.ingestResult(data)
	if err != nil {
		return nil, err
	}
	if err := r.checkComplete(values); err != nil {
		return nil, err
	}

	owned := make(map[string]bool, len(r.criteria))
	justifications := make(map[string]string)
	for _, c := range r.criteria {
		owned[c.ID], _ = values[c.ID].(bool)

		raw, ok := values[c.ID+JustificationSuffix]
		if !ok {
			continue
		}
		text, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: justification for %q must be a string, got %T",
				ErrNonBooleanResult, c.ID, raw)
		}
		if text != "" {
			justifications[c.ID] = text
		}
	}

	return &Result{
		rubric:         r,
		values:         owned,
		justifications: justifications,
	}, nil
}

// Rubric returns the rubric this result is bound to.
func (res *Result) Rubric() *Rubric { return res.rubric }

// Passes reports whether this result meets all of the rubric's pass
// requirements: every mandatory criterion true and at least the
// threshold count of cumulative criteria true.
func (res *Result) Passes() bool {
	return res.rubric.evaluateBooleans(res.values)
}

// FailedIDs returns the ids of all criteria that evaluated to false,
// in rubric order.
func (res *Result) FailedIDs() []string {
	var out []string
	for _, c := range res.rubric.criteria {
		if !res.values[c.ID] {
			out = append(out, c.ID)
		}
	}
	return out
}

// PassedIDs returns the ids of all criteria that evaluated to true,
// in rubric order.
func (res *Result) PassedIDs() []string {
	var out []string
	for _, c := range res.rubric.criteria {
		if res.values[c.ID] {
			out = append(out, c.ID)
		}
	}
	return out
}

// Value returns the boolean outcome recorded for the given criterion
// id, and whether the id is defined by the rubric.
func (res *Result) Value(id string) (bool, bool) {
	v, ok := res.values[id]
	return v, ok
}

// Justification returns the free-text justification recorded for the
// given criterion id, if any.
func (res *Result) Justification(id string) (string, bool) {
	j, ok := res.justifications[id]
	return j, ok
}

// Report renders the markdown evaluation report for this result.
// An empty title selects the default rubric-derived heading.
func (res *Result) Report(title string) string {
	return res.rubric.renderReport(res.values, res.justifications, title)
}

// MarshalJSON serializes the result in the wire shape of the exported
// schema, with fields in rubric order.
func (res *Result) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for _, c := range res.rubric.criteria {
		if !first {
			b.WriteByte(',')
		}
		first = false

		key, err := json.Marshal(c.ID)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		if res.values[c.ID] {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}

		if j, ok := res.justifications[c.ID]; ok {
			jKey, err := json.Marshal(c.ID + JustificationSuffix)
			if err != nil {
				return nil, err
			}
			jVal, err := json.Marshal(j)
			if err != nil {
				return nil, err
			}
			b.WriteByte(',')
			b.Write(jKey)
			b.WriteByte(':')
			b.Write(jVal)
		}
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
