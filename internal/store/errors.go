package store

import "errors"

var (
	// ErrNotFound is returned when the requested record is absent.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername is returned when creating an administrator whose
	// username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrProtectedAccount is returned when deleting the main "admin"
	// account, which must always exist.
	ErrProtectedAccount = errors.New("cannot delete main administrator account")

	// ErrInvalidCredentials is returned by Authenticate for an unknown
	// username or a wrong password, without distinguishing the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
