package repositories

import (
	"errors"
	"fmt"
	"sync"

	"sekolah/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
	// mu serializes the check-then-insert in Create and the
	// read-modify-write in Update. Without it two concurrent
	// registrations for the same username can both pass the uniqueness
	// check before either row is written.
	mu sync.Mutex
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by their username. The match is exact and
// case-sensitive.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// List returns all users. Order is unspecified.
func (r *GORMUserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListPending returns users with pending status, excluding admins.
func (r *GORMUserRepository) ListPending() ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("status = ?", models.StatusPending).
		Where("role <> ?", models.RoleAdmin).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending users: %w", err)
	}
	return users, nil
}

// Create inserts a new user, assigning an ID if none is set. It returns
// ErrUsernameTaken if the username is already present.
func (r *GORMUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	if err := r.db.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check username %s: %w", user.Username, err)
	}
	if count > 0 {
		return ErrUsernameTaken
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		// The unique index is the backstop for writers outside this
		// process.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update saves the full user record. It returns ErrUserNotFound if the ID
// does not exist.
func (r *GORMUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := r.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"username":         user.Username,
		"password_hash":    user.PasswordHash,
		"role":             user.Role,
		"status":           user.Status,
		"rejection_reason": user.RejectionReason,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
