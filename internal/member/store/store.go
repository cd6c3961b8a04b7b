package store

import (
	"context"

	"vecinal/internal/member/models"
	"vecinal/internal/query"
)

// Store is the member registry collection boundary. Implementations return
// sentinel errors: ErrNotFound for unknown codes, ErrConflict for uniqueness
// and link collisions, ErrInvalidState when a claim hits a non-VERIFIED
// record.
type Store interface {
	// Create inserts a new record. The idCard+idCardExtension pair and the
	// registrationCode are unique.
	Create(ctx context.Context, member *models.Member) error

	ByRegistrationCode(ctx context.Context, code string) (*models.Member, error)

	// List applies a parsed query and returns one page plus the total
	// filtered count.
	List(ctx context.Context, q query.Query) ([]*models.Member, int, error)

	UpdateStatus(ctx context.Context, code string, status models.Status) (*models.Member, error)

	// ClaimForUser atomically links the member to userID. A claim succeeds
	// when the record is VERIFIED and unlinked, or already linked to the
	// same user (idempotent re-link).
	ClaimForUser(ctx context.Context, code, userID string) (*models.Member, error)

	// ReleaseClaim undoes a claim, only if the record is linked to userID.
	// Compensation path for a failed two-phase link.
	ReleaseClaim(ctx context.Context, code, userID string) error

	// Counts for the stats summary.
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.Status) (int, error)
}
