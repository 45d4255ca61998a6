package proctree

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/core-tools/hsu-proctree/pkg/signaling"
)

// eventLog is a shared, ordered record of queries and signals
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

// fakeEnumerator answers from a fixed parent -> children table
type fakeEnumerator struct {
	children map[int][]int
	delays   map[int]time.Duration
	failures map[int]error
	blocking map[int]bool
	log      *eventLog

	mu        sync.Mutex
	queries   map[int]int
	completed int
}

func newFakeEnumerator(children map[int][]int) *fakeEnumerator {
	return &fakeEnumerator{
		children: children,
		delays:   map[int]time.Duration{},
		failures: map[int]error{},
		blocking: map[int]bool{},
		queries:  map[int]int{},
	}
}

func (f *fakeEnumerator) ListChildren(ctx context.Context, pid int) ([]int, error) {
	f.mu.Lock()
	f.queries[pid]++
	f.mu.Unlock()
	if f.log != nil {
		f.log.add("query:%d", pid)
	}

	defer func() {
		f.mu.Lock()
		f.completed++
		f.mu.Unlock()
	}()

	if f.blocking[pid] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if delay := f.delays[pid]; delay > 0 {
		time.Sleep(delay)
	}
	if err := f.failures[pid]; err != nil {
		return nil, err
	}

	children := f.children[pid]
	out := make([]int, len(children))
	copy(out, children)
	return out, nil
}

func (f *fakeEnumerator) queryCount(pid int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[pid]
}

func (f *fakeEnumerator) totalQueries() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.queries {
		total += n
	}
	return total
}

func (f *fakeEnumerator) completedQueries() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// describingEnumerator adds a fixed verbose listing
type describingEnumerator struct {
	*fakeEnumerator
	listing string
}

func (d *describingEnumerator) Describe(ctx context.Context, pid int) (string, error) {
	return d.listing, nil
}

// recordingSender records every delivery and fails for configured pids
type recordingSender struct {
	failures map[int]error
	log      *eventLog
	before   func(pid int)

	mu      sync.Mutex
	sent    []int
	signals []signaling.Signal
}

func newRecordingSender() *recordingSender {
	return &recordingSender{failures: map[int]error{}}
}

func (s *recordingSender) Send(pid int, sig signaling.Signal) error {
	if s.before != nil {
		s.before(pid)
	}
	if s.log != nil {
		s.log.add("kill:%d", pid)
	}

	s.mu.Lock()
	s.sent = append(s.sent, pid)
	s.signals = append(s.signals, sig)
	s.mu.Unlock()

	return s.failures[pid]
}

func (s *recordingSender) sentPids() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.sent))
	copy(out, s.sent)
	return out
}

// MockSender is a testify mock of signaling.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(pid int, sig signaling.Signal) error {
	args := m.Called(pid, sig)
	return args.Error(0)
}

// MockNativeTreeKiller is a testify mock of signaling.NativeTreeKiller
type MockNativeTreeKiller struct {
	mock.Mock
}

func (m *MockNativeTreeKiller) KillTree(ctx context.Context, pid int) error {
	args := m.Called(ctx, pid)
	return args.Error(0)
}

// captureLogger keeps formatted messages per level
type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *captureLogger) record(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+": "+fmt.Sprintf(format, args...))
}

func (l *captureLogger) LogLevelf(level int, format string, args ...interface{}) {
	l.record(fmt.Sprint(level), format, args...)
}
func (l *captureLogger) Debugf(format string, args ...interface{}) {
	l.record("debug", format, args...)
}
func (l *captureLogger) Infof(format string, args ...interface{}) { l.record("info", format, args...) }
func (l *captureLogger) Warnf(format string, args ...interface{}) { l.record("warn", format, args...) }
func (l *captureLogger) Errorf(format string, args ...interface{}) {
	l.record("error", format, args...)
}

func (l *captureLogger) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// indexOf returns the position of the nth (1-based) occurrence of event
func indexOf(events []string, event string, nth int) int {
	seen := 0
	for i, e := range events {
		if e == event {
			seen++
			if seen == nth {
				return i
			}
		}
	}
	return -1
}
