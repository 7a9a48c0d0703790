package retrieval

import (
	"context"
	"errors"

	"github.com/hashicorp/go-multierror"
)

// errNothingToRace is returned when the racer is invoked without tasks.
// Callers are expected to guard against this and treat it as "no candidates".
var errNothingToRace = errors.New("no tasks to race")

// raceFirstSuccess runs all tasks concurrently under one shared cancellation
// scope and returns the result of the first task to succeed, cancelling the
// rest. Failures that arrive before the first success are collected, not
// returned: the race only settles early on success, never on first
// completion. If every task fails the individual failures are aggregated
// into one error.
//
// Cancellation of ctx propagates to every task; each then fails with the
// context error and the aggregate reflects the abort.
func raceFirstSuccess[T any](ctx context.Context, tasks []func(context.Context) (T, error)) (T, error) {
	var zero T
	if len(tasks) == 0 {
		return zero, errNothingToRace
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}

	// Buffered so losing tasks can always deliver and exit.
	results := make(chan outcome, len(tasks))
	for _, task := range tasks {
		go func(task func(context.Context) (T, error)) {
			value, err := task(raceCtx)
			results <- outcome{value: value, err: err}
		}(task)
	}

	var failures *multierror.Error
	for range tasks {
		res := <-results
		if res.err == nil {
			return res.value, nil
		}
		failures = multierror.Append(failures, res.err)
	}
	return zero, failures.ErrorOrNil()
}
