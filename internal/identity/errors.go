package identity

import "errors"

// Sentinel errors returned by the identity service and repositories.
// Handlers map these onto HTTP statuses; anything else is treated as an
// infrastructure failure.
var (
	// ErrNotFound means no user matched the lookup key.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateIdentity means an identity key (email, phone or provider
	// subject) is already claimed by another user. The store's unique
	// constraint is the authority for this condition.
	ErrDuplicateIdentity = errors.New("identity already registered")

	// ErrConflict means a concurrent first login created the record between
	// our lookup and insert and the winner could not be re-read.
	ErrConflict = errors.New("conflicting identity creation")

	// ErrInvalidFormat means the supplied identifier is neither an email
	// address nor a 10-digit phone number.
	ErrInvalidFormat = errors.New("identifier must be an email or a 10-digit phone number")

	// ErrPasswordTooShort rejects registration passwords below the minimum
	// length.
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")

	// ErrInvalidCredentials means the password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWrongMethod means the account has no password and signs in through
	// a federated provider.
	ErrWrongMethod = errors.New("account uses federated sign-in")
)
