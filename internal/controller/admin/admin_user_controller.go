package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/psytest/internal/controller"
	"github.com/lshigami/psytest/internal/middleware"
	"github.com/lshigami/psytest/internal/service"
)

type AdminUserController struct {
	adminUserService service.AdminUserService
}

func NewAdminUserController(aus service.AdminUserService) *AdminUserController {
	return &AdminUserController{adminUserService: aus}
}

func (ac *AdminUserController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", ac.ListUsers)
	rg.PUT("/users/:id/toggle-status", ac.ToggleUserStatus)
}

// ListUsers godoc
// @Summary (Admin) List user accounts
// @Tags Admin - Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserListResponse
// @Failure 403 {object} dto.ErrorResponse "Insufficient permissions"
// @Router /admin/users [get]
func (ac *AdminUserController) ListUsers(c *gin.Context) {
	resp, err := ac.adminUserService.ListUsers(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "Admin ListUsers", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ToggleUserStatus godoc
// @Summary (Admin) Activate or deactivate an account
// @Tags Admin - Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.ToggleUserResponse
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id}/toggle-status [put]
func (ac *AdminUserController) ToggleUserStatus(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	resp, err := ac.adminUserService.ToggleUserActive(c.Request.Context(), id, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "Admin ToggleUserStatus", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
