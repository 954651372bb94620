package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"qrentry/internal/domain/entities"
	"qrentry/internal/infrastructure/memory"
)

// fakeRenderer records every batch it was asked to render.
type fakeRenderer struct {
	mu      sync.Mutex
	batches [][]entities.Attendee
	err     error
}

func (f *fakeRenderer) Render(ctx context.Context, attendees []entities.Attendee) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, attendees)
	return []byte(fmt.Sprintf("%%PDF fake %d", len(attendees))), nil
}

func (f *fakeRenderer) ContentType() string { return "application/pdf" }

// failingMarkRepo fails MarkIssued and delegates everything else.
type failingMarkRepo struct {
	*memory.AttendeeRepository
}

func (r failingMarkRepo) MarkIssued(ctx context.Context, uids []string) (int64, error) {
	return 0, errors.New("connection reset")
}

// sequentialUIDs returns deterministic uids u1, u2, ...
func sequentialUIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("u%d", n)
	}
}

// tickingClock advances one second per call, so successive registrations
// get distinct creation times.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

func newTestRegistration(repo *memory.AttendeeRepository) *RegistrationService {
	s := NewRegistrationService(repo)
	s.newUID = sequentialUIDs()
	s.now = tickingClock(time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC))
	return s
}
