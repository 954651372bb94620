package input

import (
	"context"

	"qrentry/internal/domain/entities"
)

type IssuanceUseCase interface {
	Generate(ctx context.Context) (*entities.CredentialSheet, error)
}

type EntryUseCase interface {
	Validate(ctx context.Context, uid, venue string) (entities.EntryOutcome, error)
}
