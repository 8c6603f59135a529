package handlers

import (
	"net/http"

	"machly/services/admin"
	"machly/services/booking"
	"machly/services/machine"
	"machly/services/review"
	"machly/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin oversight surface. Moderation actions that
// already exist on the domain services are invoked with the admin actor,
// which bypasses ownership checks.
type AdminHandler struct {
	AdminService   admin.AdminService
	BookingService booking.BookingService
	MachineService machine.MachineService
	ReviewService  review.ReviewService
}

func NewAdminHandler(as admin.AdminService, bs booking.BookingService, ms machine.MachineService, rs review.ReviewService) *AdminHandler {
	return &AdminHandler{AdminService: as, BookingService: bs, MachineService: ms, ReviewService: rs}
}

// StatsHandler handles GET /admin/stats.
func (h *AdminHandler) StatsHandler(c *gin.Context) {
	stats, err := h.AdminService.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsersHandler handles GET /admin/users.
func (h *AdminHandler) ListUsersHandler(c *gin.Context) {
	users, err := h.AdminService.ListUsers(c.Query("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUserHandler handles GET /admin/users/:id.
func (h *AdminHandler) GetUserHandler(c *gin.Context) {
	user, err := h.AdminService.GetUser(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateAdminHandler handles POST /admin/users.
func (h *AdminHandler) CreateAdminHandler(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid admin payload", err.Error())
		return
	}

	created, err := h.AdminService.CreateAdmin(req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// VerifyProviderHandler handles PUT /admin/users/:id/verify.
func (h *AdminHandler) VerifyProviderHandler(c *gin.Context) {
	if err := h.AdminService.VerifyProvider(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Provider verified"})
}

// SetUserRoleHandler handles PUT /admin/users/:id/role.
func (h *AdminHandler) SetUserRoleHandler(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}

	if err := h.AdminService.SetUserRole(c.Param("id"), req.Role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

// DeleteUserHandler handles DELETE /admin/users/:id.
func (h *AdminHandler) DeleteUserHandler(c *gin.Context) {
	if err := h.AdminService.DeleteUser(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// ListBookingsHandler handles GET /admin/bookings.
func (h *AdminHandler) ListBookingsHandler(c *gin.Context) {
	bookings, err := h.AdminService.ListBookings(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// CancelBookingHandler handles POST /admin/bookings/:id/cancel.
func (h *AdminHandler) CancelBookingHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	b, err := h.BookingService.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListMachinesHandler handles GET /admin/machines.
func (h *AdminHandler) ListMachinesHandler(c *gin.Context) {
	machines, err := h.AdminService.ListMachines(c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// SetMachineActiveHandler handles PUT /admin/machines/:id/active.
func (h *AdminHandler) SetMachineActiveHandler(c *gin.Context) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}

	if err := h.AdminService.SetMachineActive(c.Param("id"), *req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Machine updated"})
}

// DeleteMachineHandler handles DELETE /admin/machines/:id.
func (h *AdminHandler) DeleteMachineHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.MachineService.Delete(actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Machine deleted"})
}

// DeleteReviewHandler handles DELETE /admin/reviews/:id.
func (h *AdminHandler) DeleteReviewHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.ReviewService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
