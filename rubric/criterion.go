// Package rubric defines pass/fail evaluation rubrics and the engine
// that scores boolean judgment sets against them.
//
// A Rubric is an ordered, validated collection of Criterion definitions
// plus a passing threshold. Criteria are either mandatory (every one
// must pass) or cumulative (at least the threshold count must pass).
// The rubric scores result sets, renders reports and judge prompts,
// exports a JSON schema for structured-output generation, and measures
// pass/fail alignment between two independent judges.
//
// A Rubric is immutable after construction and safe to share across
// goroutines; every scoring operation is a pure function over the
// rubric and its input.
package rubric

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// MaxIDLength is the maximum allowed length of a criterion id.
const MaxIDLength = 100

// JustificationSuffix is appended to a criterion id to form the name of
// its optional free-text justification field in result payloads and in
// the exported JSON schema.
const JustificationSuffix = "_justification"

// reservedPrefix marks identifiers reserved for the serialization layer
// consumed by downstream structured-output generators.
const reservedPrefix = "model_"

// reservedWords are identifiers that cannot be used as criterion ids
// because the exported schema feeds code generators in multiple host
// languages. The list is the union of Go keywords and the keywords of
// the generator languages the schema is commonly consumed by.
var reservedWords = map[string]struct{}{
	// Go keywords.
	"break": {}, "case": {}, "chan": {}, "const": {}, "continue": {},
	"default": {}, "defer": {}, "else": {}, "fallthrough": {}, "for": {},
	"func": {}, "go": {}, "goto": {}, "if": {}, "import": {},
	"interface": {}, "map": {}, "package": {}, "range": {}, "return": {},
	"select": {}, "struct": {}, "switch": {}, "type": {}, "var": {},
	// Generator-side keywords.
	"and": {}, "as": {}, "assert": {}, "async": {}, "await": {},
	"class": {}, "def": {}, "del": {}, "elif": {}, "except": {},
	"finally": {}, "from": {}, "global": {}, "in": {}, "is": {},
	"lambda": {}, "nonlocal": {}, "not": {}, "or": {}, "pass": {},
	"raise": {}, "try": {}, "while": {}, "with": {}, "yield": {},
	"none": {}, "true": {}, "false": {},
}

// reservedResultNames are field names used by the generated result
// structure and its serialization layer. Criterion ids must not collide
// with any of them; comparison uses Unicode case folding so that, for
// example, "Passes" collides with "passes".
var reservedResultNames = map[string]struct{}{
	"passes":         {},
	"failed_ids":     {},
	"passed_ids":     {},
	"report":         {},
	"to_report":      {},
	"rubric":         {},
	"values":         {},
	"justifications": {},
	"dict":           {},
	"json":           {},
	"copy":           {},
	"schema":         {},
}

// Criterion defines a single yes/no evaluable condition within a rubric.
// The weight of a cumulative criterion is implicitly 1: the cumulative
// score is the plain count of passed cumulative criteria.
//
// Criteria are treated as immutable once their owning rubric has been
// constructed.
type Criterion struct {
	// ID uniquely identifies this criterion within its rubric. It doubles
	// as a key in result payloads and as a field name in the exported
	// schema, so it must be identifier-safe.
	ID string `json:"id" yaml:"id"`

	// Description is the pass/fail condition shown to the judge.
	Description string `json:"description" yaml:"description"`

	// Mandatory marks a criterion that must pass for the whole
	// evaluation to pass. Non-mandatory criteria contribute to the
	// cumulative threshold instead.
	Mandatory bool `json:"mandatory,omitempty" yaml:"mandatory,omitempty"`
}

// NewCriterion constructs a validated Criterion.
// It returns an error wrapping ErrInvalidCriterion if the id violates
// any identifier or reserved-name constraint.
func NewCriterion(id, description string, mandatory bool) (Criterion, error) {
	if err := ValidateCriterionID(id); err != nil {
		return Criterion{}, err
	}
	return Criterion{ID: id, Description: description, Mandatory: mandatory}, nil
}

// MustCriterion is like NewCriterion but panics on an invalid id.
// It simplifies rubric literals in tests and examples.
func MustCriterion(id, description string, mandatory bool) Criterion {
	c, err := NewCriterion(id, description, mandatory)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks the criterion's id against all identifier and
// reserved-name constraints. It is called for every criterion during
// rubric construction, so criteria built as struct literals are still
// validated before use.
func (c Criterion) Validate() error { return ValidateCriterionID(c.ID) }

// ValidateCriterionID reports why an id cannot be used as a criterion
// identifier, or nil if it can. The checks exist because criterion ids
// double as result-map keys, schema field names, and markdown display
// tokens; they guarantee generated schemas are usable without escaping.
func ValidateCriterionID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: criterion id cannot be empty", ErrInvalidCriterion)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: criterion id %q exceeds %d characters (got %d)",
			ErrInvalidCriterion, id, MaxIDLength, len(id))
	}
	if !isIdentifier(id) {
		return fmt.Errorf("%w: criterion id %q is not identifier-safe "+
			"(must start with a letter or underscore, followed by letters, digits, or underscores)",
			ErrInvalidCriterion, id)
	}

	folded := cases.Fold().String(id)
	if _, ok := reservedWords[folded]; ok {
		return fmt.Errorf("%w: criterion id %q is a reserved word", ErrInvalidCriterion, id)
	}
	if _, ok := reservedResultNames[folded]; ok {
		return fmt.Errorf("%w: criterion id %q collides with a reserved result field name",
			ErrInvalidCriterion, id)
	}
	if strings.HasPrefix(folded, reservedPrefix) {
		return fmt.Errorf("%w: criterion id %q uses the reserved prefix %q",
			ErrInvalidCriterion, id, reservedPrefix)
	}
	if strings.HasSuffix(folded, JustificationSuffix) {
		return fmt.Errorf("%w: criterion id %q must not end with %q "+
			"(it would collide with another criterion's justification field)",
			ErrInvalidCriterion, id, JustificationSuffix)
	}

	return nil
}

// isIdentifier reports whether s matches ^[A-Za-z_][A-Za-z0-9_]*$.
func isIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) && r < unicode.MaxASCII {
			continue
		}
		if i > 0 && unicode.IsDigit(r) && r < unicode.MaxASCII {
			continue
		}
		return false
	}
	return len(s) > 0
}
