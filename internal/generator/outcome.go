package generator

import (
	"context"
	"errors"
)

// tier classifies a component category under the pipeline's two-tier
// partial-failure policy.
type tier int

const (
	// tierCore categories invalidate the whole blueprint when their fetch
	// fails: a result missing entities, triggers, flows or rules is not a
	// usable document, so the run aborts.
	tierCore tier = iota
	// tierPeripheral categories are quality-of-life extras; a failed fetch
	// degrades to an empty list so the data model still gets documented.
	tierPeripheral
)

// outcomeState tags how a category fetch concluded.
type outcomeState int

const (
	outcomeOK outcomeState = iota
	outcomeDegraded
	outcomeFatal
)

// outcome is the tagged result of one category fetch.
type outcome[T any] struct {
	value T
	state outcomeState
	err   error
}

// runFetch applies the partial-failure policy to one category fetch. Core
// failures are fatal. Peripheral failures degrade to the zero value with the
// cause preserved, except cancellation, which stays fatal in either tier so
// an aborted context cannot masquerade as a degraded category.
func runFetch[T any](t tier, fn func() (T, error)) outcome[T] {
	value, err := fn()
	if err == nil {
		return outcome[T]{value: value, state: outcomeOK}
	}
	var zero T
	if t == tierCore || isCancellation(err) {
		return outcome[T]{value: zero, state: outcomeFatal, err: err}
	}
	return outcome[T]{value: zero, state: outcomeDegraded, err: err}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
