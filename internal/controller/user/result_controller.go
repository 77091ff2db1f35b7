package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/psytest/internal/controller"
	"github.com/lshigami/psytest/internal/middleware"
	"github.com/lshigami/psytest/internal/service"
)

type ResultController struct {
	sessions service.SessionService
}

func NewResultController(sessions service.SessionService) *ResultController {
	return &ResultController{sessions: sessions}
}

// RegisterRoutes expects rg to require authentication.
func (rc *ResultController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/results", rc.GetMyResults)
	rg.GET("/results/:id", rc.GetResult)
}

// GetMyResults godoc
// @Summary (User) List my saved results
// @Description Completed and saved attempts of the caller, newest first.
// @Tags User - Results
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ResultListResponse
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Router /results [get]
func (rc *ResultController) GetMyResults(c *gin.Context) {
	resp, err := rc.sessions.GetUserResults(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "GetMyResults", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetResult godoc
// @Summary (User) Get one attempt
// @Description Users may read their own attempts only. Psychologists and admins may read any and also see correct answers.
// @Tags User - Results
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test result ID"
// @Success 200 {object} dto.AttemptDetailDTO
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Failure 403 {object} dto.ErrorResponse "Attempt belongs to another user"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /results/{id} [get]
func (rc *ResultController) GetResult(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	resp, err := rc.sessions.GetAttemptForDisplay(c.Request.Context(), id, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "GetResult", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
