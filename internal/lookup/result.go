// Package lookup models best-effort calls against third-party sources.
//
// A Result distinguishes a found value from an empty answer and from a failed
// call, so callers that collapse both into "nothing" can still be tested for
// which one happened.
package lookup

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoResult is returned by collapsing helpers when no source produced a value.
var ErrNoResult = errors.New("lookup: no result")

type Status int

const (
	StatusFound Status = iota
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Attempt records the outcome of one provider call.
type Attempt struct {
	Provider string `json:"provider"`
	Status   Status `json:"-"`
	Outcome  string `json:"outcome"`
	Error    string `json:"error,omitempty"`
}

type Result[T any] struct {
	Value    T
	Status   Status
	Source   string
	Err      error
	Attempts []Attempt
}

func Found[T any](source string, v T) Result[T] {
	return Result[T]{Value: v, Status: StatusFound, Source: source}
}

func Empty[T any](source string) Result[T] {
	return Result[T]{Status: StatusEmpty, Source: source}
}

func Failed[T any](source string, err error) Result[T] {
	return Result[T]{Status: StatusFailed, Source: source, Err: err}
}

func (r Result[T]) OK() bool { return r.Status == StatusFound }

// Get collapses the result into the public "value or nothing" contract.
func (r Result[T]) Get() (T, bool) {
	if r.Status != StatusFound {
		var zero T
		return zero, false
	}
	return r.Value, true
}

// OrZero returns the value, or T's zero value when nothing was found.
func (r Result[T]) OrZero() T {
	v, _ := r.Get()
	return v
}

func (r Result[T]) attempt() Attempt {
	a := Attempt{Provider: r.Source, Status: r.Status, Outcome: r.Status.String()}
	if r.Err != nil {
		a.Error = r.Err.Error()
	}
	return a
}

// Provider is one source in an ordered chain. Lookup reports ok=false with a
// nil error when the source has no answer for the input.
type Provider[I, T any] struct {
	Name   string
	Lookup func(ctx context.Context, in I) (T, bool, error)
}

// Resolve runs the provider and converts its answer into a Result.
// A panic-free nil Lookup is reported as a failure.
func (p Provider[I, T]) Resolve(ctx context.Context, in I) Result[T] {
	if p.Lookup == nil {
		return Failed[T](p.Name, errors.New("lookup: provider has no lookup func"))
	}
	v, ok, err := p.Lookup(ctx, in)
	switch {
	case err != nil:
		return Failed[T](p.Name, err)
	case !ok:
		return Empty[T](p.Name)
	default:
		return Found(p.Name, v)
	}
}

// FirstOf tries providers strictly in order and returns the first found value.
// Failures and empty answers fall through to the next provider. When nothing is
// found the result is failed if any provider failed (the last failure wins) and
// empty otherwise. Attempts always lists every provider that ran.
func FirstOf[I, T any](ctx context.Context, in I, providers ...Provider[I, T]) Result[T] {
	attempts := make([]Attempt, 0, len(providers))
	var lastFailure *Result[T]

	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			out := Failed[T](p.Name, err)
			out.Attempts = append(attempts, out.attempt())
			return out
		}

		res := p.Resolve(ctx, in)
		attempts = append(attempts, res.attempt())

		switch res.Status {
		case StatusFound:
			res.Attempts = attempts
			return res
		case StatusFailed:
			failed := res
			lastFailure = &failed
		}
	}

	if lastFailure != nil {
		out := *lastFailure
		out.Attempts = attempts
		return out
	}
	out := Empty[T]("")
	out.Attempts = attempts
	return out
}
