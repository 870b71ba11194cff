package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"sekolah/internal/middleware"
	"sekolah/internal/models"
	"sekolah/internal/repositories"
	"sekolah/internal/services"
	"sekolah/internal/sessions"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Login attempts allowed per client IP within loginWindow. Exhaustion gets a
// 429, never a fake credentials failure.
const (
	loginMaxAttempts = 10
	loginWindow      = 10 * time.Minute
)

// AuthHandler handles HTTP requests for registration and session
// authentication.
type AuthHandler struct {
	authService *services.AuthService
	manager     *sessions.Manager
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, manager *sessions.Manager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		manager:     manager,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the auth routes with the Fiber app. authRequired
// guards /me.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", loginLimiter(), h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/me", authRequired, h.HandleMe)
}

// loginLimiter builds the fixed-window per-IP limiter for the login route.
func loginLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        loginMaxAttempts,
		Expiration: loginWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many login attempts. Please try again later.",
			})
		},
	})
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=200"`
	Role     string `json:"role" validate:"omitempty,oneof=student teacher"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,max=200"`
}

// HandleRegister handles new account registration. Accounts start pending;
// no session is issued here.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrorMap(err),
		})
	}

	user, err := h.authService.Register(req.Username, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Username already exists",
			})
		}
		if errors.Is(err, services.ErrInvalidRole) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid role",
			})
		}
		log.Printf("Error registering user %s: %v", req.Username, err)
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"user":   user,
		"status": models.StatusPending,
	})
}

// HandleLogin verifies credentials and issues a session cookie. The response
// for an unknown username and a wrong password is byte-identical.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrorMap(err),
		})
	}

	user, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid credentials",
			})
		}
		var notActive *services.NotActiveError
		if errors.As(err, &notActive) {
			message := "Pending approval"
			if notActive.Status == models.StatusRejected {
				message = "Account rejected"
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": message,
				"status":  notActive.Status,
			})
		}
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return internalError(c)
	}

	if err := h.manager.Issue(c, user.ID); err != nil {
		log.Printf("Error issuing session for user %s: %v", user.ID, err)
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"user": user,
	})
}

// HandleLogout destroys the current session. Idempotent: a request without a
// session still gets {ok:true}.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.manager.Destroy(c); err != nil {
		log.Printf("Error destroying session: %v", err)
		return internalError(c)
	}
	return c.JSON(fiber.Map{
		"ok": true,
	})
}

// HandleMe returns the authenticated user. AuthRequired has already resolved
// the session.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, ok := c.Locals(middleware.UserLocalsKey).(*models.User)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}
	return c.JSON(fiber.Map{
		"user": user,
	})
}

// validationErrorMap flattens validator errors into a field -> message map.
// Raw field values (the password in particular) are never included.
func validationErrorMap(err error) map[string]string {
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return errorMessages
}

// internalError is the uniform 500 body; details stay in the server log.
func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}
