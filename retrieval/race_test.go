package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failAfter(d time.Duration, err error) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		select {
		case <-time.After(d):
			return "", err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func succeedAfter(d time.Duration, value string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		select {
		case <-time.After(d):
			return value, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func TestRaceFirstSuccess_WaitsThroughEarlyFailures(t *testing.T) {
	// The only success is also the slowest task; first-settled semantics
	// would return one of the failures instead.
	tasks := []func(context.Context) (string, error){
		failAfter(5*time.Millisecond, errors.New("fast failure")),
		failAfter(15*time.Millisecond, errors.New("slower failure")),
		succeedAfter(60*time.Millisecond, "payload"),
	}

	result, err := raceFirstSuccess(context.Background(), tasks)
	require.NoError(t, err)
	assert.Equal(t, "payload", result)
}

func TestRaceFirstSuccess_FirstSuccessWins(t *testing.T) {
	tasks := []func(context.Context) (string, error){
		succeedAfter(5*time.Millisecond, "fast"),
		succeedAfter(200*time.Millisecond, "slow"),
	}

	start := time.Now()
	result, err := raceFirstSuccess(context.Background(), tasks)
	require.NoError(t, err)
	assert.Equal(t, "fast", result)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "racer should not wait for the slow task")
}

func TestRaceFirstSuccess_AllFail(t *testing.T) {
	errA := errors.New("provider A down")
	errB := errors.New("provider B down")
	tasks := []func(context.Context) (string, error){
		failAfter(time.Millisecond, errA),
		failAfter(time.Millisecond, errB),
	}

	_, err := raceFirstSuccess(context.Background(), tasks)
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestRaceFirstSuccess_CancelsSiblingsOnSuccess(t *testing.T) {
	cancelled := make(chan struct{})
	tasks := []func(context.Context) (string, error){
		succeedAfter(5*time.Millisecond, "winner"),
		func(ctx context.Context) (string, error) {
			<-ctx.Done()
			close(cancelled)
			return "", ctx.Err()
		},
	}

	result, err := raceFirstSuccess(context.Background(), tasks)
	require.NoError(t, err)
	assert.Equal(t, "winner", result)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("sibling probe was not cancelled after the first success")
	}
}

func TestRaceFirstSuccess_ExternalCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tasks := []func(context.Context) (string, error){
		succeedAfter(time.Minute, "never"),
		succeedAfter(time.Minute, "never either"),
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := raceFirstSuccess(ctx, tasks)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRaceFirstSuccess_NoTasks(t *testing.T) {
	_, err := raceFirstSuccess[string](context.Background(), nil)
	assert.ErrorIs(t, err, errNothingToRace)
}
