package proctree

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/core-tools/hsu-proctree/pkg/errors"
	"github.com/core-tools/hsu-proctree/pkg/signaling"
)

func TestKillChildrenOnly_Sequential(t *testing.T) {
	log := &eventLog{}
	enumerator := newFakeEnumerator(map[int][]int{
		1:  {10, 20, 30},
		10: {11, 12},
		20: {21},
	})
	enumerator.log = log
	sender := newRecordingSender()
	sender.log = log

	killer := NewKiller(enumerator, sender, nil, Options{}, nil)
	require.NoError(t, killer.KillChildrenOnly(context.Background(), 1))

	sent := sender.sentPids()
	assert.ElementsMatch(t, []int{10, 11, 12, 20, 21, 30}, sent)
	assert.NotContains(t, sent, 1)
	for _, sig := range sender.signals {
		assert.Equal(t, signaling.SIGKILL, sig)
	}

	events := log.all()
	lastKill := func(pids ...int) int {
		last := -1
		for _, pid := range pids {
			if i := indexOf(events, fmt.Sprintf("kill:%d", pid), 1); i > last {
				last = i
			}
		}
		return last
	}

	// The second query of each child is the start of its own KillTree run
	assert.Less(t, lastKill(10, 11, 12), indexOf(events, "query:20", 2), "B started before A's subtree finished: %v", events)
	assert.Less(t, lastKill(20, 21), indexOf(events, "query:30", 2), "C started before B's subtree finished: %v", events)
}

func TestKillChildrenOnly_NoChildren(t *testing.T) {
	sender := &MockSender{}
	killer := NewKiller(newFakeEnumerator(nil), sender, nil, Options{}, nil)

	require.NoError(t, killer.KillChildrenOnly(context.Background(), 1))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestKillChildrenOnly_ContinuesAfterFailure(t *testing.T) {
	enumerator := newFakeEnumerator(map[int][]int{1: {10, 20, 30}})
	sender := newRecordingSender()
	sender.failures[10] = errors.NewPermissionError("not permitted", nil)

	killer := NewKiller(enumerator, sender, nil, Options{}, nil)
	err := killer.KillChildrenOnly(context.Background(), 1)

	var collection *errors.ErrorCollection
	require.ErrorAs(t, err, &collection)
	require.Len(t, collection.Errors, 1)
	assert.True(t, errors.IsSignalError(collection.Errors[0]))
	assert.Equal(t, []int{10, 20, 30}, sender.sentPids())
}

func TestKillChildrenOnly_NeedsEnumeration(t *testing.T) {
	native := &MockNativeTreeKiller{}
	killer := NewKiller(nil, &MockSender{}, native, Options{}, nil)

	err := killer.KillChildrenOnly(context.Background(), 1)
	assert.True(t, errors.IsUnsupportedPlatformError(err))
	native.AssertNotCalled(t, "KillTree", mock.Anything, mock.Anything)
}
