package store

import (
	"context"
	"errors"

	"github.com/signalworks/billing-backend/models"
)

// ErrNotFound is returned when no record exists for the requested email.
var ErrNotFound = errors.New("record not found")

// RecordStore is the external document store holding per-email account and
// allowlist data.
type RecordStore interface {
	// Account returns the record for the given email, or ErrNotFound.
	Account(ctx context.Context, email string) (*models.AccountRecord, error)

	// EnsureAccount returns the record for the given email, creating it
	// tied to the Stripe customer ID if absent. The create is idempotent:
	// concurrent calls for the same email yield a single record.
	EnsureAccount(ctx context.Context, email, customerID string) (*models.AccountRecord, error)

	// AddAllowedIP appends an allowlist entry to the record for the given
	// email and returns the updated record.
	AddAllowedIP(ctx context.Context, email string, entry models.AllowlistEntry) (*models.AccountRecord, error)

	// RemoveAllowedIP removes the allowlist entry at the given index and
	// returns the updated record.
	RemoveAllowedIP(ctx context.Context, email string, index int) (*models.AccountRecord, error)

	// AddResult appends a trading result for one of the email's
	// sub-accounts and returns the updated record.
	AddResult(ctx context.Context, email, account string, data interface{}) (*models.AccountRecord, error)
}
