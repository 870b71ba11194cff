package services

import (
	"errors"
	"fmt"
	"log"

	"sekolah/internal/models"
	"sekolah/internal/repositories"
)

// EventPublisher publishes account lifecycle events (registered, approved,
// rejected) for consumers such as the admin notification worker. A nil
// publisher disables publication.
type EventPublisher interface {
	PublishRegistrationEvent(eventType string, payload map[string]interface{}) error
}

// NotActiveError is returned by Login when the credentials are correct but
// the account status (pending or rejected) blocks authentication.
type NotActiveError struct {
	Status string
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("account is %s, not active", e.Status)
}

// AuthService handles registration, credential verification and the
// bootstrap admin account.
type AuthService struct {
	userRepo  repositories.UserRepository
	publisher EventPublisher
}

// NewAuthService creates a new AuthService. publisher may be nil.
func NewAuthService(userRepo repositories.UserRepository, publisher EventPublisher) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// Register creates a new account in pending status. role defaults to
// student; only student and teacher may self-register. The caller is
// responsible for length validation of username and password.
func (s *AuthService) Register(username, password, role string) (*models.User, error) {
	switch role {
	case "":
		role = models.RoleStudent
	case models.RoleStudent, models.RoleTeacher:
	default:
		return nil, ErrInvalidRole
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hashed,
		Role:         role,
		Status:       models.StatusPending,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.publish("user.registered", user)
	return user, nil
}

// Login verifies credentials and the approval status. Unknown username and
// wrong password both come back as ErrInvalidCredentials; a correct password
// on a non-active account comes back as *NotActiveError, checked only after
// the hash so status is never leaked to guessers.
func (s *AuthService) Login(username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Do not reveal whether the username exists.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, &NotActiveError{Status: user.Status}
	}
	return user, nil
}

// EnsureInitialAdmin creates the bootstrap admin account if it is configured
// and does not exist yet. The account is created directly as active, the
// only path that skips approval. With no configuration it warns and returns,
// so a dev instance still starts.
func (s *AuthService) EnsureInitialAdmin(username, password string) error {
	if username == "" || password == "" {
		log.Println("[security] WARNING: INITIAL_ADMIN_USERNAME / INITIAL_ADMIN_PASSWORD are not set. Admin creation is disabled until you configure them.")
		return nil
	}

	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return err
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Username:     username,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
		Status:       models.StatusActive,
	}
	if err := s.userRepo.Create(admin); err != nil {
		return fmt.Errorf("failed to create initial admin: %w", err)
	}
	log.Println("[security] Initial admin account created.")
	return nil
}

func (s *AuthService) publish(eventType string, user *models.User) {
	if s.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"userID":   user.ID,
		"username": user.Username,
		"role":     user.Role,
		"status":   user.Status,
	}
	if err := s.publisher.PublishRegistrationEvent(eventType, payload); err != nil {
		log.Printf("Warning: failed to publish %s event for user %s: %v", eventType, user.ID, err)
	}
}
