package input

import (
	"context"

	"qrentry/internal/domain/entities"
)

type RegistrationUseCase interface {
	Register(ctx context.Context, names []string, event string) (entities.RegistrationResult, error)
}

type AttendeeQueryUseCase interface {
	List(ctx context.Context, filter entities.AttendeeFilter) ([]entities.Attendee, error)
}
