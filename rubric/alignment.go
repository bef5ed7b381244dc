package rubric

import (
	"fmt"
	"reflect"
)

// Passer is the capability alignment requires of its inputs: a derived
// overall pass/fail outcome. *Result satisfies it; so does any caller
// type that can answer the same question.
type Passer interface {
	Passes() bool
}

// CalculateAlignment measures agreement between two independently
// produced result sets at the level of the overall pass/fail outcome.
//
// Both arguments must be either single results or sequences of results
// of equal length; every element must satisfy Passer. Mixing a single
// result with a sequence is a type error even when the lengths would
// match; unequal sequence lengths are a value error; an element without
// a pass/fail outcome is a type error naming its side and position.
//
// The returned score is the fraction of positions whose derived
// outcomes agree, in [0, 1]. Two empty sequences return 1.0 by
// convention. Agreement is computed on the derived pass/fail boolean
// only; results that disagree on individual criteria but land on the
// same overall outcome count as fully aligned.
func (r *Rubric) CalculateAlignment(a, b any) (float64, error) {
	passersA, singleA, err := collectPassers("a", a)
	if err != nil {
		return 0, err
	}
	passersB, singleB, err := collectPassers("b", b)
	if err != nil {
		return 0, err
	}

	if singleA != singleB {
		return 0, fmt.Errorf("%w: both arguments must be single results or both sequences",
			ErrResultTypeMismatch)
	}
	if len(passersA) != len(passersB) {
		return 0, fmt.Errorf("%w: sequences must have the same length, got %d for a and %d for b",
			ErrLengthMismatch, len(passersA), len(passersB))
	}

	if len(passersA) == 0 {
		return 1.0, nil
	}

	aligned := 0
	for i := range passersA {
		if passersA[i].Passes() == passersB[i].Passes() {
			aligned++
		}
	}
	return float64(aligned) / float64(len(passersA)), nil
}

// collectPassers normalizes one side of the comparison into a slice of
// Passer, reporting whether the input was a single result.
func collectPassers(side string, v any) ([]Passer, bool, error) {
	if p, ok := v.(Passer); ok {
		if isNilValue(p) {
			return nil, false, fmt.Errorf("%w: %s is a nil result", ErrResultTypeMismatch, side)
		}
		return []Passer{p}, true, nil
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false, fmt.Errorf("%w: %s must be a result or a sequence of results, got %T",
			ErrResultTypeMismatch, side, v)
	}

	out := make([]Passer, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		p, ok := elem.(Passer)
		if !ok || isNilValue(p) {
			return nil, false, fmt.Errorf("%w: %s[%d] (%T) does not expose a pass/fail outcome",
				ErrResultTypeMismatch, side, i, elem)
		}
		out[i] = p
	}
	return out, false, nil
}

// isNilValue reports whether an interface holds a typed or untyped nil,
// which would panic on method dispatch.
func isNilValue(p Passer) bool {
	if p == nil {
		return true
	}
	rv := reflect.ValueOf(p)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
