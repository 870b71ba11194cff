package handlers

import (
	"errors"
	"log"

	"sekolah/internal/repositories"
	"sekolah/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the registration approval endpoints.
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// RegisterRoutes registers the admin routes. Every route requires an
// authenticated admin session; the guards compose so session resolution
// happens once.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, authRequired, adminRequired fiber.Handler) {
	adminRoutes := router.Group("/admin", authRequired, adminRequired)
	adminRoutes.Get("/registrations", h.HandleListPending)
	adminRoutes.Post("/registrations/:id/approve", h.HandleApprove)
	adminRoutes.Post("/registrations/:id/reject", h.HandleReject)
}

// HandleListPending returns all accounts awaiting an approval decision.
func (h *AdminHandler) HandleListPending(c *fiber.Ctx) error {
	pending, err := h.adminService.ListPending()
	if err != nil {
		log.Printf("Error listing pending registrations: %v", err)
		return internalError(c)
	}
	return c.JSON(fiber.Map{
		"pending": pending,
	})
}

// HandleApprove activates a pending account.
func (h *AdminHandler) HandleApprove(c *fiber.Ctx) error {
	user, err := h.adminService.Approve(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Not found",
			})
		}
		log.Printf("Error approving user %s: %v", c.Params("id"), err)
		return internalError(c)
	}
	return c.JSON(fiber.Map{
		"user": user,
	})
}

// RejectRequest carries the optional rejection reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// HandleReject marks a pending account as rejected. The body is optional;
// when present its reason is stored on the user record.
func (h *AdminHandler) HandleReject(c *fiber.Ctx) error {
	var req RejectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
			})
		}
	}

	user, err := h.adminService.Reject(c.Params("id"), req.Reason)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Not found",
			})
		}
		log.Printf("Error rejecting user %s: %v", c.Params("id"), err)
		return internalError(c)
	}
	return c.JSON(fiber.Map{
		"user": user,
	})
}
