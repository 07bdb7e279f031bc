package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunnerStop(t *testing.T) {
	r := NewRunner()
	started := make(chan struct{}, 2)
	wait := RunFunc(func(ctx context.Context) error {
		started <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	})
	r.Go(NamedRun("a", wait), wait)
	<-started
	<-started
	r.Stop()
	require.NoError(t, r.Wait())
}

func TestRunnerFailureStopsOthers(t *testing.T) {
	errBoom := errors.New("boom")
	r := NewRunner()
	r.Go(NamedRun("reader", RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})), NamedRun("bridge", RunFunc(func(context.Context) error {
		return errBoom
	})))
	err := r.Wait()
	require.Error(t, err)
	require.True(t, errors.Is(err, errBoom))
	require.Equal(t, "bridge: boom", err.Error())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errA, errB := errors.New("a"), errors.New("b")
	err := errs.Add(errA, nil, errB).Aggregate()
	require.Equal(t, "multiple errors:\n  a\n  b", err.Error())
	require.True(t, errors.Is(err, errB))
}

type testCloser struct {
	closed  int
	unblock chan struct{}
}

func (c *testCloser) Close() error {
	c.closed++
	if c.unblock != nil {
		close(c.unblock)
		c.unblock = nil
	}
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	c := &testCloser{}
	require.NoError(t, RunWithContextCloser(context.Background(), c, func() error { return nil }))
	require.Equal(t, 1, c.closed)

	unblock := make(chan struct{})
	c = &testCloser{unblock: unblock}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := RunWithContextCloser(ctx, c, func() error {
		<-unblock
		return errors.New("closed")
	})
	require.Equal(t, context.DeadlineExceeded, err)
	require.Equal(t, 1, c.closed)
}
