package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/psytest/internal/controller"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/middleware"
	"github.com/lshigami/psytest/internal/service"
)

type AuthController struct {
	auth service.AuthService
}

func NewAuthController(auth service.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// RegisterRoutes mounts the auth endpoints. loginGuard runs before register
// and login, requireAuth before the profile endpoints.
func (ac *AuthController) RegisterRoutes(rg *gin.RouterGroup, loginGuard, requireAuth gin.HandlerFunc) {
	rg.POST("/register", loginGuard, ac.Register)
	rg.POST("/login", loginGuard, ac.Login)
	rg.GET("/profile", requireAuth, ac.GetProfile)
	rg.PUT("/profile", requireAuth, ac.UpdateProfile)
}

// Register godoc
// @Summary Register a new user account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account data"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 409 {object} dto.ErrorResponse "Email or username taken"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !controller.BindJSON(c, "Register", &req) {
		return
	}
	resp, err := ac.auth.Register(c.Request.Context(), req)
	if err != nil {
		controller.RespondError(c, "Register", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in by email or username
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid login or password"
// @Failure 403 {object} dto.ErrorResponse "Account deactivated"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !controller.BindJSON(c, "Login", &req) {
		return
	}
	resp, err := ac.auth.Login(c.Request.Context(), req)
	if err != nil {
		controller.RespondError(c, "Login", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProfile godoc
// @Summary Get my profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ProfileResponse
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Router /auth/profile [get]
func (ac *AuthController) GetProfile(c *gin.Context) {
	resp, err := ac.auth.Profile(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "GetProfile", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateProfile godoc
// @Summary Update my first and last name
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.ProfileResponse
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Router /auth/profile [put]
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !controller.BindJSON(c, "UpdateProfile", &req) {
		return
	}
	resp, err := ac.auth.UpdateProfile(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		controller.RespondError(c, "UpdateProfile", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
