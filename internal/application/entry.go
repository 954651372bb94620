package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"qrentry/internal/domain"
	"qrentry/internal/domain/entities"
	"qrentry/internal/ports/output"
)

type EntryService struct {
	attendeeRepo output.AttendeeRepository
	now          func() time.Time
}

func NewEntryService(attendeeRepo output.AttendeeRepository) *EntryService {
	return &EntryService{
		attendeeRepo: attendeeRepo,
		now:          time.Now,
	}
}

// Validate redeems uid at venue. Exactly one call per uid ever returns
// EntryAdmitted; the store decides it in a single atomic step.
func (s *EntryService) Validate(ctx context.Context, uid, venue string) (entities.EntryOutcome, error) {
	uid = strings.TrimSpace(uid)
	venue = strings.TrimSpace(venue)
	if uid == "" {
		return entities.EntryOutcome{}, domain.ErrUIDRequired
	}
	if venue == "" {
		return entities.EntryOutcome{}, domain.ErrVenueRequired
	}

	outcome, err := s.attendeeRepo.Admit(ctx, uid, venue, s.now().UTC())
	if err != nil {
		return entities.EntryOutcome{}, fmt.Errorf("admit attendee: %w", err)
	}
	return outcome, nil
}
