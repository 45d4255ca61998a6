package proctree

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/core-tools/hsu-proctree/pkg/errors"
	"github.com/core-tools/hsu-proctree/pkg/signaling"
)

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("callback not invoked")
	}
	var zero T
	return zero
}

func TestBuildTreeAsync(t *testing.T) {
	builder := NewBuilder(newFakeEnumerator(map[int][]int{100: {200}}), Options{}, nil)

	done := make(chan *Tree, 1)
	err := builder.BuildTreeAsync(context.Background(), 100, func(tree *Tree, err error) {
		assert.NoError(t, err)
		done <- tree
	})
	require.NoError(t, err)

	tree := waitFor(t, done)
	assert.Equal(t, map[int][]int{100: {200}, 200: {}}, tree.Map())
}

func TestKillTreeAsync(t *testing.T) {
	sender := newRecordingSender()
	killer := NewKiller(newFakeEnumerator(map[int][]int{100: {200}}), sender, nil, Options{}, nil)

	done := make(chan error, 1)
	require.NoError(t, killer.KillTreeAsync(context.Background(), 100, signaling.SIGTERM, func(err error) {
		done <- err
	}))

	assert.NoError(t, waitFor(t, done))
	assert.ElementsMatch(t, []int{100, 200}, sender.sentPids())
}

func TestKillChildrenOnlyAsync(t *testing.T) {
	sender := newRecordingSender()
	killer := NewKiller(newFakeEnumerator(map[int][]int{100: {200}}), sender, nil, Options{}, nil)

	done := make(chan error, 1)
	require.NoError(t, killer.KillChildrenOnlyAsync(context.Background(), 100, func(err error) {
		done <- err
	}))

	assert.NoError(t, waitFor(t, done))
	assert.Equal(t, []int{200}, sender.sentPids())
}

func TestAsync_UnsupportedIsSynchronous(t *testing.T) {
	called := make(chan struct{}, 3)

	builder := NewBuilder(nil, Options{}, nil)
	err := builder.BuildTreeAsync(context.Background(), 100, func(*Tree, error) { called <- struct{}{} })
	assert.True(t, errors.IsUnsupportedPlatformError(err))

	killer := NewKiller(nil, &MockSender{}, nil, Options{}, nil)
	err = killer.KillTreeAsync(context.Background(), 100, signaling.SIGKILL, func(error) { called <- struct{}{} })
	assert.True(t, errors.IsUnsupportedPlatformError(err))

	err = killer.KillChildrenOnlyAsync(context.Background(), 100, func(error) { called <- struct{}{} })
	assert.True(t, errors.IsUnsupportedPlatformError(err))

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, called, 0)
}
