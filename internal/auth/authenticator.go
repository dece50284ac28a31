// Package auth is the identity provider in front of the ledger: it registers
// users, checks passwords and issues the tokens whose user ID becomes the
// caller of every ledger operation.
package auth

import (
	"context"

	"github.com/namansharma3007/Equi-share/internal/models"
)

// Authenticator turns credentials into a known user. The ledger never sees
// credentials, only the resulting user ID.
type Authenticator interface {
	// Register creates an account. Emails are unique after normalization.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user owning email if credential matches.
	// Unknown emails and wrong credentials fail the same way.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential rejects credentials too weak to register with.
	ValidateCredential(credential string) error
}
