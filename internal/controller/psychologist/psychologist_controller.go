package psychologist

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/psytest/internal/controller"
	"github.com/lshigami/psytest/internal/middleware"
	"github.com/lshigami/psytest/internal/service"
)

type PsychologistController struct {
	stats   service.StatisticsService
	reports service.ReportService
}

func NewPsychologistController(stats service.StatisticsService, reports service.ReportService) *PsychologistController {
	return &PsychologistController{stats: stats, reports: reports}
}

// RegisterRoutes expects rg to require a psychologist or admin.
func (pc *PsychologistController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/results/all", pc.GetAllResults)
	rg.GET("/results/:id/detailed", pc.GetDetailedResult)
	rg.GET("/results/:id/report.pdf", pc.GetResultReport)
	rg.GET("/statistics/test/:testId", pc.GetTestStatistics)
	rg.GET("/statistics/user/:userId", pc.GetUserStatistics)
	rg.GET("/statistics/overall", pc.GetOverallStatistics)
}

// GetAllResults godoc
// @Summary (Psychologist) List all saved results
// @Tags Psychologist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ResultListResponse
// @Failure 403 {object} dto.ErrorResponse "Insufficient permissions"
// @Router /psychologist/results/all [get]
func (pc *PsychologistController) GetAllResults(c *gin.Context) {
	resp, err := pc.stats.AllResults(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "GetAllResults", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDetailedResult godoc
// @Summary (Psychologist) Get a result with every answer
// @Tags Psychologist
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test result ID"
// @Success 200 {object} dto.DetailedResultDTO
// @Failure 404 {object} dto.ErrorResponse "Result not found"
// @Router /psychologist/results/{id}/detailed [get]
func (pc *PsychologistController) GetDetailedResult(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	resp, err := pc.stats.DetailedResult(c.Request.Context(), id, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "GetDetailedResult", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetResultReport godoc
// @Summary (Psychologist) Download a result as PDF
// @Tags Psychologist
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Test result ID"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse "Result not found"
// @Router /psychologist/results/{id}/report.pdf [get]
func (pc *PsychologistController) GetResultReport(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	pdf, err := pc.reports.DetailedResultPDF(c.Request.Context(), id, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "GetResultReport", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="result-%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GetTestStatistics godoc
// @Summary (Psychologist) Statistics for one test
// @Description Only completed and saved attempts are counted.
// @Tags Psychologist
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Test ID"
// @Success 200 {object} dto.TestStatisticsDTO
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /psychologist/statistics/test/{testId} [get]
func (pc *PsychologistController) GetTestStatistics(c *gin.Context) {
	id, ok := controller.ParseID(c, "testId")
	if !ok {
		return
	}
	resp, err := pc.stats.PerTestStatistics(c.Request.Context(), id, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "GetTestStatistics", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetUserStatistics godoc
// @Summary (Psychologist) Statistics for one user
// @Tags Psychologist
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} dto.UserStatisticsDTO
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /psychologist/statistics/user/{userId} [get]
func (pc *PsychologistController) GetUserStatistics(c *gin.Context) {
	id, ok := controller.ParseID(c, "userId")
	if !ok {
		return
	}
	resp, err := pc.stats.PerUserStatistics(c.Request.Context(), id, middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "GetUserStatistics", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetOverallStatistics godoc
// @Summary (Psychologist) Overall statistics
// @Tags Psychologist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.OverallStatisticsDTO
// @Router /psychologist/statistics/overall [get]
func (pc *PsychologistController) GetOverallStatistics(c *gin.Context) {
	resp, err := pc.stats.OverallStatistics(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		controller.RespondError(c, "GetOverallStatistics", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
