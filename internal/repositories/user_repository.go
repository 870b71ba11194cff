package repositories

import (
	"errors"

	"sekolah/internal/models"
)

// Sentinel errors returned by UserRepository implementations. Callers match
// them with errors.Is so handler status mapping does not depend on message
// text.
var (
	// ErrUsernameTaken is returned by Create when the username already
	// exists (exact, case-sensitive match).
	ErrUsernameTaken = errors.New("username already exists")
	// ErrUserNotFound is returned when no user matches the given id or
	// username.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	GetByID(id string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	List() ([]models.User, error)
	// ListPending returns users awaiting approval, excluding admin
	// accounts (admins are never approval targets).
	ListPending() ([]models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
}
