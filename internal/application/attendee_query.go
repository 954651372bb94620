package application

import (
	"context"
	"fmt"

	"qrentry/internal/domain/entities"
	"qrentry/internal/ports/output"
)

const (
	DefaultListLimit = 500
	MaxListLimit     = 5000
)

type AttendeeQueryService struct {
	attendeeRepo output.AttendeeRepository
}

func NewAttendeeQueryService(attendeeRepo output.AttendeeRepository) *AttendeeQueryService {
	return &AttendeeQueryService{attendeeRepo: attendeeRepo}
}

// List returns attendees newest first. An unknown status is ignored rather
// than rejected.
func (s *AttendeeQueryService) List(ctx context.Context, filter entities.AttendeeFilter) ([]entities.Attendee, error) {
	if _, ok := entities.ParseStatus(string(filter.Status)); !ok {
		filter.Status = ""
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultListLimit
	case filter.Limit > MaxListLimit:
		filter.Limit = MaxListLimit
	}

	attendees, err := s.attendeeRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	if attendees == nil {
		attendees = []entities.Attendee{}
	}
	return attendees, nil
}
