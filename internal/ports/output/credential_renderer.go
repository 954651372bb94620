package output

import (
	"context"

	"qrentry/internal/domain/entities"
)

// CredentialRenderer turns attendees into one printable document, one
// scannable code plus name per attendee.
type CredentialRenderer interface {
	Render(ctx context.Context, attendees []entities.Attendee) ([]byte, error)
	ContentType() string
}
