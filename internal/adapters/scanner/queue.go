package scanner

import (
	"context"
	"log"
	"time"

	"qrentry/pkg/credential"
)

const (
	DefaultBuffer   = 16
	DefaultCooldown = 2500 * time.Millisecond
)

// Validator submits one uid for entry.
type Validator interface {
	Validate(ctx context.Context, uid, venue string) (Result, error)
}

// Queue decouples decoding from validation. Decoders Push scanned text and a
// single Run loop validates codes one at a time in arrival order.
type Queue struct {
	validator Validator
	venue     string
	cooldown  time.Duration
	codes     chan string
	now       func() time.Time

	// OnResult receives every validation result; it runs on the Run goroutine.
	OnResult func(text string, res Result, err error)

	lastUID  string
	lastScan time.Time
}

// NewQueue returns a Queue holding up to buffer pending codes. Non-positive
// buffer and cooldown select the defaults.
func NewQueue(v Validator, venue string, buffer int, cooldown time.Duration) *Queue {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Queue{
		validator: v,
		venue:     venue,
		cooldown:  cooldown,
		codes:     make(chan string, buffer),
		now:       time.Now,
	}
}

// Push enqueues scanned text without blocking. It returns false when the
// buffer is full and the code was dropped.
func (q *Queue) Push(text string) bool {
	select {
	case q.codes <- text:
		return true
	default:
		log.Printf("⚠️ scan queue full, dropping code")
		return false
	}
}

// PushWait enqueues scanned text, blocking while the buffer is full. Use it
// for finite sources such as files where every code must be validated.
func (q *Queue) PushWait(ctx context.Context, text string) error {
	select {
	case q.codes <- text:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting codes. Run drains what is buffered and returns.
func (q *Queue) Close() {
	close(q.codes)
}

// Run validates queued codes until ctx is done or the queue is closed and drained.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text, ok := <-q.codes:
			if !ok {
				return nil
			}
			q.handle(ctx, text)
		}
	}
}

func (q *Queue) handle(ctx context.Context, text string) {
	uid := credential.ParseUID(text)
	if uid == "" {
		return
	}

	now := q.now()
	if uid == q.lastUID && now.Sub(q.lastScan) < q.cooldown {
		return
	}
	q.lastUID = uid
	q.lastScan = now

	res, err := q.validator.Validate(ctx, uid, q.venue)
	if q.OnResult != nil {
		q.OnResult(text, res, err)
	}
}
