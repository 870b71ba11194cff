package services

import (
	"log"

	"sekolah/internal/models"
	"sekolah/internal/repositories"
)

// AdminService handles the registration approval workflow.
type AdminService struct {
	userRepo  repositories.UserRepository
	publisher EventPublisher
}

// NewAdminService creates a new AdminService. publisher may be nil.
func NewAdminService(userRepo repositories.UserRepository, publisher EventPublisher) *AdminService {
	return &AdminService{
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// ListPending returns accounts awaiting approval. Admin accounts are never
// included; they are created through the bootstrap path, not reviewed.
func (s *AdminService) ListPending() ([]models.User, error) {
	return s.userRepo.ListPending()
}

// Approve transitions a user to active. Approving an already-active user is
// a no-op re-set of the same status.
func (s *AdminService) Approve(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.Status = models.StatusActive
	user.RejectionReason = ""
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	s.publishDecision("user.approved", user)
	return user, nil
}

// Reject transitions a user to rejected, recording the optional reason on
// the user record. Rejected is terminal; there is no re-review path.
func (s *AdminService) Reject(userID, reason string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.Status = models.StatusRejected
	user.RejectionReason = reason
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	s.publishDecision("user.rejected", user)
	return user, nil
}

func (s *AdminService) publishDecision(eventType string, user *models.User) {
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
