package news

import "errors"

// Sentinel errors the API layer maps onto HTTP statuses.
var (
	// ErrNotFound reports an unknown entity id.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports a duplicate username or email at registration.
	ErrConflict = errors.New("already exists")
)
