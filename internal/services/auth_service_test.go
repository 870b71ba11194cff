package services_test

import (
	"errors"
	"log"
	"os"
	"testing"

	"sekolah/internal/models"
	"sekolah/internal/repositories"
	"sekolah/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) ListPending() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishRegistrationEvent(eventType string, payload map[string]interface{}) error {
	args := m.Called(eventType, payload)
	return args.Error(0)
}

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	log.SetOutput(os.Stdout)
	code := m.Run()
	os.Exit(code)
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil)

	// Successful registration: account starts pending, the stored
	// credential is a hash, never the plaintext.
	var created *models.User
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		created = args.Get(0).(*models.User)
	}).Return(nil).Once()

	user, err := authService.Register("alice", "secret1", models.RoleStudent)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, user.Status)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NotEqual(t, "secret1", created.PasswordHash)
	assert.True(t, services.VerifyPassword("secret1", created.PasswordHash))
	mockRepo.AssertExpectations(t)

	// Empty role defaults to student.
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()
	user, err = authService.Register("bob", "secret1", "")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	mockRepo.AssertExpectations(t)

	// Admin cannot be self-registered.
	_, err = authService.Register("mallory", "secret1", models.RoleAdmin)
	assert.ErrorIs(t, err, services.ErrInvalidRole)

	// Duplicate username surfaces the repository conflict unchanged.
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(repositories.ErrUsernameTaken).Once()
	_, err = authService.Register("alice", "secret1", models.RoleStudent)
	assert.ErrorIs(t, err, repositories.ErrUsernameTaken)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_PublishesEvent(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockPublisher := new(MockEventPublisher)
	authService := services.NewAuthService(mockRepo, mockPublisher)

	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()
	mockPublisher.On("PublishRegistrationEvent", "user.registered", mock.Anything).Return(nil).Once()

	_, err := authService.Register("alice", "secret1", models.RoleTeacher)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)

	// A failing publisher must not fail the registration itself.
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()
	mockPublisher.On("PublishRegistrationEvent", "user.registered", mock.Anything).Return(errors.New("broker down")).Once()

	_, err = authService.Register("bob", "secret1", models.RoleStudent)
	assert.NoError(t, err)
	mockPublisher.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil)

	hash, _ := services.HashPassword("secret1")
	active := &models.User{
		ID:           "user-123",
		Username:     "alice",
		PasswordHash: hash,
		Role:         models.RoleStudent,
		Status:       models.StatusActive,
	}

	// Successful login.
	mockRepo.On("GetByUsername", "alice").Return(active, nil).Once()
	user, err := authService.Login("alice", "secret1")
	assert.NoError(t, err)
	assert.Equal(t, "user-123", user.ID)
	mockRepo.AssertExpectations(t)

	// Wrong password.
	mockRepo.On("GetByUsername", "alice").Return(active, nil).Once()
	_, errWrongPassword := authService.Login("alice", "WRONG")
	assert.ErrorIs(t, errWrongPassword, services.ErrInvalidCredentials)

	// Unknown username yields the same error value as a wrong password,
	// so callers cannot enumerate usernames.
	mockRepo.On("GetByUsername", "nobody").Return(nil, repositories.ErrUserNotFound).Once()
	_, errUnknownUser := authService.Login("nobody", "secret1")
	assert.ErrorIs(t, errUnknownUser, services.ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login_StatusGates(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil)

	hash, _ := services.HashPassword("secret1")

	// Correct credentials on a pending account are rejected with a
	// distinguishable error carrying the status.
	pending := &models.User{ID: "u1", Username: "alice", PasswordHash: hash, Role: models.RoleStudent, Status: models.StatusPending}
	mockRepo.On("GetByUsername", "alice").Return(pending, nil).Once()
	_, err := authService.Login("alice", "secret1")
	var notActive *services.NotActiveError
	assert.ErrorAs(t, err, &notActive)
	assert.Equal(t, models.StatusPending, notActive.Status)

	// Same for rejected accounts.
	rejected := &models.User{ID: "u2", Username: "bob", PasswordHash: hash, Role: models.RoleStudent, Status: models.StatusRejected}
	mockRepo.On("GetByUsername", "bob").Return(rejected, nil).Once()
	_, err = authService.Login("bob", "secret1")
	assert.ErrorAs(t, err, &notActive)
	assert.Equal(t, models.StatusRejected, notActive.Status)

	// The wrong password on a pending account must NOT reveal the
	// status; the credential check runs first.
	mockRepo.On("GetByUsername", "alice").Return(pending, nil).Once()
	_, err = authService.Login("alice", "WRONG")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_EnsureInitialAdmin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil)

	// Unconfigured: warns and skips, no repository calls.
	assert.NoError(t, authService.EnsureInitialAdmin("", ""))
	assert.NoError(t, authService.EnsureInitialAdmin("admin", ""))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)

	// Already present: nothing to do.
	existing := &models.User{ID: "a1", Username: "admin", Role: models.RoleAdmin, Status: models.StatusActive}
	mockRepo.On("GetByUsername", "admin").Return(existing, nil).Once()
	assert.NoError(t, authService.EnsureInitialAdmin("admin", "admin-pass"))
	mockRepo.AssertExpectations(t)

	// Missing: created directly as an active admin.
	var created *models.User
	mockRepo.On("GetByUsername", "admin").Return(nil, repositories.ErrUserNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		created = args.Get(0).(*models.User)
	}).Return(nil).Once()

	assert.NoError(t, authService.EnsureInitialAdmin("admin", "admin-pass"))
	assert.Equal(t, models.RoleAdmin, created.Role)
	assert.Equal(t, models.StatusActive, created.Status)
	assert.True(t, services.VerifyPassword("admin-pass", created.PasswordHash))
	mockRepo.AssertExpectations(t)
}
