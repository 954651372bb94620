package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"qrentry/internal/domain"
	"qrentry/internal/domain/entities"
	"qrentry/internal/ports/output"
)

type RegistrationService struct {
	attendeeRepo output.AttendeeRepository
	newUID       func() string
	now          func() time.Time
}

func NewRegistrationService(attendeeRepo output.AttendeeRepository) *RegistrationService {
	return &RegistrationService{
		attendeeRepo: attendeeRepo,
		newUID:       uuid.NewString,
		now:          time.Now,
	}
}

// Register creates one attendee per distinct name for event. Names already
// registered for the same event are counted as skipped.
func (s *RegistrationService) Register(ctx context.Context, names []string, event string) (entities.RegistrationResult, error) {
	event = strings.TrimSpace(event)
	if event == "" {
		return entities.RegistrationResult{}, domain.ErrEventRequired
	}

	unique := normalizeNames(names)
	if len(unique) == 0 {
		return entities.RegistrationResult{
			SkippedCount: len(names),
			Inserted:     []entities.NewAttendee{},
		}, nil
	}

	batch := make([]entities.NewAttendee, len(unique))
	for i, name := range unique {
		batch[i] = entities.NewAttendee{UID: s.newUID(), Name: name}
	}

	inserted, err := s.attendeeRepo.InsertMissing(ctx, event, batch, s.now().UTC())
	if errors.Is(err, domain.ErrDuplicateAttendee) {
		// Lost a race against an identical submission: nothing of ours was written.
		log.Printf("⚠️ registration for %q raced a concurrent submission: %v", event, err)
		return entities.RegistrationResult{Inserted: []entities.NewAttendee{}}, nil
	}
	if err != nil {
		return entities.RegistrationResult{}, fmt.Errorf("insert attendees: %w", err)
	}
	if inserted == nil {
		inserted = []entities.NewAttendee{}
	}

	return entities.RegistrationResult{
		InsertedCount: len(inserted),
		SkippedCount:  len(unique) - len(inserted),
		Inserted:      inserted,
	}, nil
}

// normalizeNames trims every name, drops empty ones and removes exact
// duplicates, keeping first-seen order.
func normalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
