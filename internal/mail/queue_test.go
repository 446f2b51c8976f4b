package mail

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vrtmanagement/feedback-system/internal/survey/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *recordingSender) SendThankYou(_ context.Context, survey *domain.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, survey.ID)
	return nil
}

type recordingMarker struct {
	mu     sync.Mutex
	marked []string
}

func (m *recordingMarker) MarkEmailSent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marked = append(m.marked, id)
	return nil
}

func TestQueueProcessesAcceptedJobs(t *testing.T) {
	sender := &recordingSender{}
	marker := &recordingMarker{}
	q := NewQueue(sender, marker, nil, 16, 2)

	for i := 0; i < 5; i++ {
		ok := q.Enqueue(domain.Survey{ID: "survey", Email: "jane@x.com"})
		require.True(t, ok)
	}

	q.Stop()

	assert.Len(t, sender.sent, 5)
	assert.Len(t, marker.marked, 5)
}

func TestQueueFailedSendLeavesRecordUnmarked(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp unavailable")}
	marker := &recordingMarker{}
	q := NewQueue(sender, marker, nil, 16, 1)

	require.True(t, q.Enqueue(domain.Survey{ID: "survey-1", Email: "jane@x.com"}))
	q.Stop()

	assert.Empty(t, marker.marked)
}

func TestQueueRejectsAfterStop(t *testing.T) {
	q := NewQueue(&recordingSender{}, &recordingMarker{}, nil, 16, 1)
	q.Stop()

	assert.False(t, q.Enqueue(domain.Survey{ID: "survey-1"}))
}

func TestQueueRejectsWhenFull(t *testing.T) {
	// Zero workers are clamped to 2, so use a blocked sender to fill the
	// buffer deterministically instead.
	release := make(chan struct{})
	sender := &blockingSender{release: release, started: make(chan struct{})}
	q := NewQueue(sender, nil, nil, 1, 1)

	// First job occupies the worker, second fills the buffer.
	require.True(t, q.Enqueue(domain.Survey{ID: "a"}))
	sender.waitUntilBusy()
	require.True(t, q.Enqueue(domain.Survey{ID: "b"}))

	assert.False(t, q.Enqueue(domain.Survey{ID: "c"}))

	close(release)
	q.Stop()
}

type blockingSender struct {
	release chan struct{}
	once    sync.Once
	started chan struct{}
}

func (s *blockingSender) SendThankYou(_ context.Context, _ *domain.Survey) error {
	s.once.Do(func() {
		if s.started != nil {
			close(s.started)
		}
	})
	<-s.release
	return nil
}

func (s *blockingSender) waitUntilBusy() {
	if s.started != nil {
		<-s.started
	}
}
