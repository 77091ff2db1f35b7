package public

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/psytest/internal/controller"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/middleware"
	"github.com/lshigami/psytest/internal/service"
)

type TestController struct {
	catalog  service.CatalogService
	sessions service.SessionService
	answers  service.AnswerService
}

func NewTestController(catalog service.CatalogService, sessions service.SessionService, answers service.AnswerService) *TestController {
	return &TestController{catalog: catalog, sessions: sessions, answers: answers}
}

// RegisterRoutes expects rg to carry optional authentication.
func (tc *TestController) RegisterRoutes(rg *gin.RouterGroup) {
	tests := rg.Group("/tests")
	tests.GET("", tc.ListTests)
	tests.GET("/:id", tc.GetTest)
	tests.POST("/start", tc.StartTest)
	tests.POST("/answer", tc.SubmitAnswer)
	tests.POST("/complete", tc.CompleteTest)
}

// ListTests godoc
// @Summary List available tests
// @Description Active tests, newest first. Plain users and guests see display fields only.
// @Tags Tests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.TestListResponse
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tests [get]
func (tc *TestController) ListTests(c *gin.Context) {
	resp, err := tc.catalog.ListTests(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "ListTests", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetTest godoc
// @Summary Get a test with its questions
// @Description Questions are ordered by number. Correct answers are returned to psychologists and admins only.
// @Tags Tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} dto.TestWithQuestionsDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Test ID format"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /tests/{id} [get]
func (tc *TestController) GetTest(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	resp, err := tc.catalog.GetTestForRole(c.Request.Context(), id, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "GetTest", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StartTest godoc
// @Summary Start a test attempt
// @Description Guests get an attempt without an owner.
// @Tags Tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartAttemptRequest true "Test to start"
// @Success 201 {object} dto.StartAttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Test not found or inactive"
// @Router /tests/start [post]
func (tc *TestController) StartTest(c *gin.Context) {
	var req dto.StartAttemptRequest
	if !controller.BindJSON(c, "StartTest", &req) {
		return
	}
	resp, err := tc.sessions.StartAttempt(c.Request.Context(), req.TestID, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "StartTest", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SubmitAnswer godoc
// @Summary Record or overwrite an answer
// @Tags Tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitAnswerRequest true "Answer"
// @Success 200 {object} dto.SubmitAnswerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid option"
// @Failure 403 {object} dto.ErrorResponse "Attempt belongs to another user"
// @Failure 404 {object} dto.ErrorResponse "Attempt or question not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already completed"
// @Router /tests/answer [post]
func (tc *TestController) SubmitAnswer(c *gin.Context) {
	var req dto.SubmitAnswerRequest
	if !controller.BindJSON(c, "SubmitAnswer", &req) {
		return
	}
	resp, err := tc.answers.SubmitAnswer(c.Request.Context(), req, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "SubmitAnswer", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompleteTest godoc
// @Summary Complete a test attempt
// @Description Scores the recorded answers. should_save controls whether the result counts in statistics.
// @Tags Tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CompleteAttemptRequest true "Completion data"
// @Success 200 {object} dto.CompleteAttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 403 {object} dto.ErrorResponse "Attempt belongs to another user"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /tests/complete [post]
func (tc *TestController) CompleteTest(c *gin.Context) {
	var req dto.CompleteAttemptRequest
	if !controller.BindJSON(c, "CompleteTest", &req) {
		return
	}
	resp, err := tc.sessions.CompleteAttempt(c.Request.Context(), req, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "CompleteTest", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
