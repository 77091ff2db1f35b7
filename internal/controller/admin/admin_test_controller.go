package admin

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/psytest/internal/controller"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/middleware"
	"github.com/lshigami/psytest/internal/service"
	"github.com/lshigami/psytest/internal/storage"
	"github.com/rs/zerolog/log"
)

type AdminTestController struct {
	adminTestService service.AdminTestService
}

func NewAdminTestController(ats service.AdminTestService) *AdminTestController {
	return &AdminTestController{adminTestService: ats}
}

// RegisterRoutes expects rg to require an admin.
func (ac *AdminTestController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tests", ac.CreateTest)
	rg.PUT("/tests/:id", ac.UpdateTest)
	rg.DELETE("/tests/:id", ac.DeleteTest)

	rg.POST("/questions", ac.AddQuestion)
	rg.PUT("/questions/:id", ac.UpdateQuestion)
	rg.DELETE("/questions/:id", ac.DeleteQuestion)

	rg.DELETE("/results/test/:testId", ac.ClearTestResults)
	rg.DELETE("/results/all", ac.ClearAllResults)
	rg.DELETE("/results/:id", ac.DeleteResult)
}

// CreateTest godoc
// @Summary (Admin) Create a new test
// @Description Creates an active test without questions. time_limit defaults to 60 minutes, 0 means unlimited.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param test_data body dto.CreateTestRequest true "Test data"
// @Success 201 {object} dto.TestMutationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Insufficient permissions"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests [post]
func (ac *AdminTestController) CreateTest(c *gin.Context) {
	var req dto.CreateTestRequest
	if !controller.BindJSON(c, "Admin CreateTest", &req) {
		return
	}
	log.Info().Str("name", req.Name).Msg("Admin CreateTest: Received request to create test")

	resp, err := ac.adminTestService.CreateTest(c.Request.Context(), req, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "Admin CreateTest", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateTest godoc
// @Summary (Admin) Update a test
// @Description Partial update. Set is_active=false to hide a test from users.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param test_data body dto.UpdateTestRequest true "Fields to change"
// @Success 200 {object} dto.TestMutationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{id} [put]
func (ac *AdminTestController) UpdateTest(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTestRequest
	if !controller.BindJSON(c, "Admin UpdateTest", &req) {
		return
	}
	resp, err := ac.adminTestService.UpdateTest(c.Request.Context(), id, req, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "Admin UpdateTest", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteTest godoc
// @Summary (Admin) Delete a test
// @Description Removes the test with its questions, results and answers.
// @Tags Admin - Tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{id} [delete]
func (ac *AdminTestController) DeleteTest(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	if err := ac.adminTestService.DeleteTest(c.Request.Context(), id, middleware.CallerFrom(c)); err != nil {
		controller.RespondError(c, "Admin DeleteTest", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Test deleted"})
}

// imageUpload returns the optional "image" file of a multipart request.
// The returned closer must be called once the upload is consumed.
func imageUpload(c *gin.Context) (*storage.Upload, func(), error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*storage.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	up := &storage.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	}
	return up, func() { f.Close() }, nil
}

// AddQuestion godoc
// @Summary (Admin) Add a question to a test
// @Description Multipart form. The optional image is stored under an opaque name.
// @Tags Admin - Questions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param test_id formData int true "Test ID"
// @Param question_number formData int true "Question number"
// @Param question_text formData string false "Question text"
// @Param number_of_options formData int true "Number of options (2-8)"
// @Param correct_answer formData int true "Correct option (1-based)"
// @Param image formData file false "Question image"
// @Success 201 {object} dto.QuestionMutationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/questions [post]
func (ac *AdminTestController) AddQuestion(c *gin.Context) {
	var req dto.CreateQuestionRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn().Err(err).Msg("Admin AddQuestion: Failed to bind form")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	image, closeImage, err := imageUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid image upload", Details: []string{err.Error()}})
		return
	}
	defer closeImage()

	resp, err := ac.adminTestService.AddQuestion(c.Request.Context(), req, image, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "Admin AddQuestion", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateQuestion godoc
// @Summary (Admin) Update a question
// @Description Partial update. A new image replaces the old one; remove_image=true drops it.
// @Tags Admin - Questions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param question_number formData int false "Question number"
// @Param question_text formData string false "Question text"
// @Param number_of_options formData int false "Number of options (2-8)"
// @Param correct_answer formData int false "Correct option (1-based)"
// @Param remove_image formData bool false "Remove the current image"
// @Param image formData file false "New question image"
// @Success 200 {object} dto.QuestionMutationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{id} [put]
func (ac *AdminTestController) UpdateQuestion(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateQuestionRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn().Err(err).Msg("Admin UpdateQuestion: Failed to bind form")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	image, closeImage, err := imageUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid image upload", Details: []string{err.Error()}})
		return
	}
	defer closeImage()

	resp, err := ac.adminTestService.UpdateQuestion(c.Request.Context(), id, req, image, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "Admin UpdateQuestion", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a question
// @Description Removes answers referencing the question and recounts the test's questions.
// @Tags Admin - Questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{id} [delete]
func (ac *AdminTestController) DeleteQuestion(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	if err := ac.adminTestService.DeleteQuestion(c.Request.Context(), id, middleware.CallerFrom(c)); err != nil {
		controller.RespondError(c, "Admin DeleteQuestion", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Question deleted"})
}

// ClearTestResults godoc
// @Summary (Admin) Delete all results of a test
// @Tags Admin - Results
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Test ID"
// @Success 200 {object} dto.ClearResultsResponse
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/results/test/{testId} [delete]
func (ac *AdminTestController) ClearTestResults(c *gin.Context) {
	id, ok := controller.ParseID(c, "testId")
	if !ok {
		return
	}
	resp, err := ac.adminTestService.ClearTestResults(c.Request.Context(), id, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "Admin ClearTestResults", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ClearAllResults godoc
// @Summary (Admin) Delete every result
// @Tags Admin - Results
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ClearResultsResponse
// @Router /admin/results/all [delete]
func (ac *AdminTestController) ClearAllResults(c *gin.Context) {
	resp, err := ac.adminTestService.ClearAllResults(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "Admin ClearAllResults", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteResult godoc
// @Summary (Admin) Delete one result
// @Tags Admin - Results
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test result ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse "Result not found"
// @Router /admin/results/{id} [delete]
func (ac *AdminTestController) DeleteResult(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	if err := ac.adminTestService.DeleteResult(c.Request.Context(), id, middleware.CallerFrom(c)); err != nil {
		controller.RespondError(c, "Admin DeleteResult", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Result deleted"})
}
