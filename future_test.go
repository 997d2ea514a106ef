package hauntedhouse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureWait(t *testing.T) {
	release := make(chan struct{})
	f := Go(func() (int, error) {
		<-release
		return 42, nil
	})
	assert.False(t, f.Ready())

	close(release)
	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, f.Ready())
}

func TestFutureWaitHonoursContext(t *testing.T) {
	f := Go(func() (int, error) {
		time.Sleep(time.Second)
		return 1, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssetQueueDeliversInOrderOnPoll(t *testing.T) {
	q := NewAssetQueue()
	var got []string

	release := make(chan struct{})
	slow := Go(func() (string, error) {
		<-release
		return "slow", nil
	})
	fast := Resolved("fast", nil)
	failed := Resolved("", errors.New("boom"))

	Enqueue(q, slow, func(s string) { got = append(got, s) }, nil)
	Enqueue(q, fast, func(s string) { got = append(got, s) }, nil)
	var failure error
	Enqueue(q, failed, func(s string) { t.Fatal("attach must not run on failure") }, func(err error) { failure = err })

	assert.Equal(t, 2, q.Poll())
	assert.Equal(t, []string{"fast"}, got)
	assert.EqualError(t, failure, "boom")
	assert.Equal(t, 1, q.Pending())

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, q.Drain(ctx))
	assert.Equal(t, []string{"fast", "slow"}, got)
	assert.Equal(t, 0, q.Pending())
}

func TestAssetQueueCallbackMayEnqueue(t *testing.T) {
	q := NewAssetQueue()
	var got []int
	Enqueue(q, Resolved(1, nil), func(v int) {
		got = append(got, v)
		Enqueue(q, Resolved(2, nil), func(v int) { got = append(got, v) }, nil)
	}, nil)

	assert.Equal(t, 1, q.Poll())
	assert.Equal(t, 1, q.Pending())
	assert.Equal(t, 1, q.Poll())
	assert.Equal(t, []int{1, 2}, got)
}
