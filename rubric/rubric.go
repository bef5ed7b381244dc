package rubric

import (
	"fmt"
	"strings"
)

// Structural limits enforced at rubric construction.
const (
	// MaxCriteria is the maximum total number of criteria in one rubric.
	MaxCriteria = 100

	// MaxMandatoryCriteria is the maximum number of mandatory criteria
	// in one rubric.
	MaxMandatoryCriteria = 20
)

// Rubric is a validated, ordered collection of criteria plus the count
// of cumulative criteria that must pass. It is the long-lived, shared,
// read-only configuration object of an evaluation scheme: construct it
// once, then score any number of result sets against it, concurrently
// if desired.
type Rubric struct {
	rubricID         string
	criteria         []Criterion
	passingThreshold int
}

// NewRubric constructs a validated Rubric.
//
// Validation reports the first violated invariant, checking in this
// order: empty criterion list, per-criterion id validity, total count
// limit, mandatory count limit, duplicate ids, threshold non-negative,
// threshold feasibility. Errors wrap ErrInvalidRubric (or
// ErrInvalidCriterion for a bad id) and name the offending ids, counts,
// and limits.
func NewRubric(rubricID string, criteria []Criterion, passingThreshold int) (*Rubric, error) {
	if len(criteria) == 0 {
		return nil, fmt.Errorf("%w: rubric %q requires at least one criterion",
			ErrInvalidRubric, rubricID)
	}

	for i, c := range criteria {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("rubric %q, criterion %d: %w", rubricID, i, err)
		}
	}

	if len(criteria) > MaxCriteria {
		return nil, fmt.Errorf("%w: rubric %q has %d criteria, exceeding the limit of %d",
			ErrInvalidRubric, rubricID, len(criteria), MaxCriteria)
	}

	mandatoryCount := 0
	for _, c := range criteria {
		if c.Mandatory {
			mandatoryCount++
		}
	}
	if mandatoryCount > MaxMandatoryCriteria {
		return nil, fmt.Errorf("%w: rubric %q has %d mandatory criteria, exceeding the limit of %d",
			ErrInvalidRubric, rubricID, mandatoryCount, MaxMandatoryCriteria)
	}

	if dups := duplicateIDs(criteria); len(dups) > 0 {
		return nil, fmt.Errorf("%w: duplicate criterion ids in rubric %q: %s",
			ErrInvalidRubric, rubricID, strings.Join(dups, ", "))
	}

	if passingThreshold < 0 {
		return nil, fmt.Errorf("%w: passing threshold cannot be negative, got %d",
			ErrInvalidRubric, passingThreshold)
	}

	cumulativeCount := len(criteria) - mandatoryCount
	if passingThreshold > cumulativeCount {
		return nil, fmt.Errorf("%w: passing threshold (%d) cannot exceed the number of cumulative criteria (%d): "+
			"rubric %q has %d mandatory and %d cumulative criteria",
			ErrInvalidRubric, passingThreshold, cumulativeCount, rubricID, mandatoryCount, cumulativeCount)
	}

	// Copy the slice so later mutation of the caller's slice cannot
	// break the immutability contract.
	owned := make([]Criterion, len(criteria))
	copy(owned, criteria)

	return &Rubric{
		rubricID:         rubricID,
		criteria:         owned,
		passingThreshold: passingThreshold,
	}, nil
}

// duplicateIDs returns ids used by more than one criterion, each
// reported once, in first-occurrence order.
func duplicateIDs(criteria []Criterion) []string {
	seen := make(map[string]int, len(criteria))
	for _, c := range criteria {
		seen[c.ID]++
	}

	var dups []string
	reported := make(map[string]struct{})
	for _, c := range criteria {
		if seen[c.ID] > 1 {
			if _, done := reported[c.ID]; !done {
				dups = append(dups, c.ID)
				reported[c.ID] = struct{}{}
			}
		}
	}
	return dups
}

// RubricID returns the display identifier of this rubric.
// It is not required to be unique across the system.
func (r *Rubric) RubricID() string { return r.rubricID }

// PassingThreshold returns the minimum count of cumulative criteria
// that must pass.
func (r *Rubric) PassingThreshold() int { return r.passingThreshold }

// Criteria returns all criteria in insertion order.
// The returned slice is a copy and safe to modify.
func (r *Rubric) Criteria() []Criterion {
	out := make([]Criterion, len(r.criteria))
	copy(out, r.criteria)
	return out
}

// MandatoryCriteria returns the subsequence of criteria with
// Mandatory=true, in insertion order.
func (r *Rubric) MandatoryCriteria() []Criterion {
	var out []Criterion
	for _, c := range r.criteria {
		if c.Mandatory {
			out = append(out, c)
		}
	}
	return out
}

// CumulativeCriteria returns the subsequence of criteria with
// Mandatory=false, in insertion order.
func (r *Rubric) CumulativeCriteria() []Criterion {
	var out []Criterion
	for _, c := range r.criteria {
		if !c.Mandatory {
			out = append(out, c)
		}
	}
	return out
}
