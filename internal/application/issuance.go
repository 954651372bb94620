package application

import (
	"context"
	"fmt"

	"qrentry/internal/domain"
	"qrentry/internal/domain/entities"
	"qrentry/internal/ports/output"
)

// CredentialFilename is the download name of a generated credential sheet.
const CredentialFilename = "qrcodes.pdf"

type IssuanceService struct {
	attendeeRepo output.AttendeeRepository
	renderer     output.CredentialRenderer
}

func NewIssuanceService(attendeeRepo output.AttendeeRepository, renderer output.CredentialRenderer) *IssuanceService {
	return &IssuanceService{
		attendeeRepo: attendeeRepo,
		renderer:     renderer,
	}
}

// Generate renders a sheet for every attendee without a credential yet and
// marks exactly those attendees as issued once the sheet is complete.
//
// Rendering and marking are not one transaction. A crash after rendering
// leaves the attendees eligible for the next sheet, so a credential may be
// printed twice but is still redeemable only once.
func (s *IssuanceService) Generate(ctx context.Context) (*entities.CredentialSheet, error) {
	pending, err := s.attendeeRepo.ListUnissued(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unissued attendees: %w", err)
	}
	if len(pending) == 0 {
		return nil, domain.ErrNothingToIssue
	}

	data, err := s.renderer.Render(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("render credentials: %w", err)
	}

	uids := make([]string, len(pending))
	for i := range pending {
		uids[i] = pending[i].UID
	}
	if _, err := s.attendeeRepo.MarkIssued(ctx, uids); err != nil {
		return nil, fmt.Errorf("mark issued: %w", err)
	}

	return &entities.CredentialSheet{
		Filename:    CredentialFilename,
		ContentType: s.renderer.ContentType(),
		Data:        data,
		Count:       len(pending),
	}, nil
}
