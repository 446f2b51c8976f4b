package mail

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vrtmanagement/feedback-system/internal/survey/domain"
)

// Sender delivers one thank-you message.
type Sender interface {
	SendThankYou(ctx context.Context, survey *domain.Survey) error
}

// Marker records a confirmed delivery on the survey record.
type Marker interface {
	MarkEmailSent(ctx context.Context, id string) error
}

// Queue dispatches thank-you emails off the request path. Jobs accepted
// before Stop are guaranteed to run to completion: Stop drains the channel
// and waits for in-flight sends, which is what lets the HTTP response return
// before the email result is known without dropping dispatches on shutdown.
//
// There is no retry here. A failed send leaves emailSent false and the
// scheduled sweep picks the record up again.
type Queue struct {
	sender  Sender
	marker  Marker
	logger  *zap.Logger
	jobs    chan domain.Survey
	timeout time.Duration
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewQueue builds a queue with the given buffer size and worker count and
// starts the workers.
func NewQueue(sender Sender, marker Marker, logger *zap.Logger, size, workers int) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = 64
	}
	if workers <= 0 {
		workers = 2
	}

	q := &Queue{
		sender:  sender,
		marker:  marker,
		logger:  logger,
		jobs:    make(chan domain.Survey, size),
		timeout: 30 * time.Second,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue hands a submitted survey to the workers without blocking. A full
// buffer or a stopped queue returns false; the caller logs and relies on the
// sweep.
func (q *Queue) Enqueue(survey domain.Survey) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}

	select {
	case q.jobs <- survey:
		return true
	default:
		return false
	}
}

// Stop closes intake and waits until every accepted job has been processed.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.wg.Wait()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for survey := range q.jobs {
		q.process(survey)
	}
}

func (q *Queue) process(survey domain.Survey) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := q.sender.SendThankYou(ctx, &survey); err != nil {
		q.logger.Warn("thank-you dispatch failed, leaving record for the scheduled sweep",
			zap.String("surveyId", survey.ID),
			zap.String("email", survey.Email),
			zap.Error(err))
		return
	}

	if q.marker == nil {
		return
	}
	if err := q.marker.MarkEmailSent(ctx, survey.ID); err != nil {
		q.logger.Warn("failed to mark email sent",
			zap.String("surveyId", survey.ID),
			zap.Error(err))
	}
}
