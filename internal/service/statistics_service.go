package service

import (
	"context"
	"math"

	"github.com/jinzhu/copier"
	"github.com/lshigami/psytest/internal/access"
	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/model"
	"github.com/lshigami/psytest/internal/repository"
	"github.com/rs/zerolog/log"
)

// StatisticsService aggregates over qualifying attempts only: completed and saved.
type StatisticsService interface {
	PerTestStatistics(ctx context.Context, testID uint, caller *access.Caller) (*dto.TestStatisticsDTO, error)
	PerUserStatistics(ctx context.Context, userID uint, caller *access.Caller) (*dto.UserStatisticsDTO, error)
	OverallStatistics(ctx context.Context, caller *access.Caller) (*dto.OverallStatisticsDTO, error)
	DetailedResult(ctx context.Context, attemptID uint, caller *access.Caller) (*dto.DetailedResultDTO, error)
	AllResults(ctx context.Context, caller *access.Caller) (*dto.ResultListResponse, error)
}

type statisticsService struct {
	testRepo   repository.TestRepository
	userRepo   repository.UserRepository
	resultRepo repository.TestResultRepository
}

func NewStatisticsService(
	testRepo repository.TestRepository,
	userRepo repository.UserRepository,
	resultRepo repository.TestResultRepository,
) StatisticsService {
	return &statisticsService{testRepo: testRepo, userRepo: userRepo, resultRepo: resultRepo}
}

func (s *statisticsService) PerTestStatistics(ctx context.Context, testID uint, caller *access.Caller) (*dto.TestStatisticsDTO, error) {
	if err := access.Require(caller, access.PermStatisticsView); err != nil {
		return nil, err
	}
	test, err := s.testRepo.FindByID(ctx, testID)
	if err != nil {
		return nil, lookupError(err, "test", testID)
	}
	results, err := s.resultRepo.FindQualifyingByTest(ctx, testID)
	if err != nil {
		log.Error().Err(err).Uint("testID", testID).Msg("PerTestStatistics: Failed to load results")
		return nil, apperror.Internal(err, "failed to load statistics")
	}

	var header dto.TestHeaderDTO
	if err := copier.Copy(&header, test); err != nil {
		return nil, apperror.Internal(err, "failed to prepare statistics")
	}

	rows := make([]dto.ResultSummaryDTO, 0, len(results))
	for i := range results {
		results[i].Test = *test
		row := summarize(&results[i])
		row.UserName = userLabel(results[i].User)
		rows = append(rows, row)
	}

	return &dto.TestStatisticsDTO{
		Test:       header,
		Statistics: summarizeTest(results),
		Results:    rows,
	}, nil
}

// summarizeTest computes the aggregate block; a missing time counts as zero.
func summarizeTest(results []model.TestResult) dto.TestStatisticsSummary {
	var sum dto.TestStatisticsSummary
	n := len(results)
	if n == 0 {
		return sum
	}

	var totalScore, totalTime int
	var totalPct float64
	sum.MaxScore = math.MinInt
	sum.MinScore = math.MaxInt
	for _, r := range results {
		totalScore += r.Score
		totalPct += r.Percentage
		if r.TimeSpent != nil {
			totalTime += *r.TimeSpent
		}
		sum.MaxScore = max(sum.MaxScore, r.Score)
		sum.MinScore = min(sum.MinScore, r.Score)
	}

	sum.TotalAttempts = n
	sum.AverageScore = dto.Round2(float64(totalScore) / float64(n))
	sum.AveragePercentage = dto.Round2(totalPct / float64(n))
	sum.AverageTime = math.Round(float64(totalTime) / float64(n))
	return sum
}

func (s *statisticsService) PerUserStatistics(ctx context.Context, userID uint, caller *access.Caller) (*dto.UserStatisticsDTO, error) {
	if err := access.Require(caller, access.PermStatisticsView); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "user", userID)
	}
	results, err := s.resultRepo.FindQualifyingByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("PerUserStatistics: Failed to load results")
		return nil, apperror.Internal(err, "failed to load statistics")
	}

	var header dto.UserHeaderDTO
	if err := copier.Copy(&header, user); err != nil {
		return nil, apperror.Internal(err, "failed to prepare statistics")
	}

	var totalPct float64
	rows := make([]dto.ResultSummaryDTO, 0, len(results))
	for i := range results {
		totalPct += results[i].Percentage
		row := summarize(&results[i])
		row.UserName = user.DisplayName()
		rows = append(rows, row)
	}

	summary := dto.UserStatisticsSummary{TotalTests: len(results)}
	if len(results) > 0 {
		summary.AveragePercentage = dto.Round2(totalPct / float64(len(results)))
	}
	return &dto.UserStatisticsDTO{User: header, Statistics: summary, Results: rows}, nil
}

func (s *statisticsService) OverallStatistics(ctx context.Context, caller *access.Caller) (*dto.OverallStatisticsDTO, error) {
	if err := access.Require(caller, access.PermStatisticsView); err != nil {
		return nil, err
	}

	var out dto.OverallStatisticsDTO
	var err error
	if out.TotalTests, err = s.testRepo.Count(ctx); err != nil {
		return nil, apperror.Internal(err, "failed to count tests")
	}
	if out.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, apperror.Internal(err, "failed to count users")
	}
	if out.TotalResults, err = s.resultRepo.CountQualifying(ctx); err != nil {
		return nil, apperror.Internal(err, "failed to count results")
	}

	counts, err := s.resultRepo.CountQualifyingPerTest(ctx)
	if err != nil {
		log.Error().Err(err).Msg("OverallStatistics: Failed to count attempts per test")
		return nil, apperror.Internal(err, "failed to load statistics")
	}
	out.TestStatistics = make([]dto.TestAttemptCountDTO, 0, len(counts))
	for _, c := range counts {
		out.TestStatistics = append(out.TestStatistics, dto.TestAttemptCountDTO{
			TestID:          c.TestID,
			TestName:        c.Name,
			TestDisplayName: c.DisplayName,
			AttemptsCount:   c.AttemptsCount,
		})
	}
	return &out, nil
}

func (s *statisticsService) DetailedResult(ctx context.Context, attemptID uint, caller *access.Caller) (*dto.DetailedResultDTO, error) {
	if err := access.Require(caller, access.PermStatisticsView); err != nil {
		return nil, err
	}
	result, err := s.resultRepo.FindByIDWithDetails(ctx, attemptID)
	if err != nil {
		return nil, lookupError(err, "test result", attemptID)
	}

	sortAnswers(result.Answers)
	answers := make([]dto.DetailedAnswerDTO, 0, len(result.Answers))
	for _, a := range result.Answers {
		answers = append(answers, dto.DetailedAnswerDTO{
			QuestionID:     a.QuestionID,
			QuestionNumber: a.Question.QuestionNumber,
			SelectedAnswer: a.SelectedAnswer,
			CorrectAnswer:  a.Question.CorrectAnswer,
			IsCorrect:      a.IsCorrect,
		})
	}

	return &dto.DetailedResultDTO{
		ID:                        result.ID,
		TestID:                    result.TestID,
		TestName:                  result.Test.Name,
		TestDisplayName:           result.Test.DisplayName,
		MethodicalRecommendations: result.Test.MethodicalRecommendations,
		UserID:                    result.UserID,
		UserName:                  userLabel(result.User),
		IsGuest:                   result.UserID == nil,
		Status:                    string(result.Status),
		Score:                     result.Score,
		TotalQuestions:            result.TotalQuestions,
		Percentage:                dto.Round2(result.Percentage),
		TimeSpent:                 result.TimeSpent,
		CompletedAt:               result.CompletedAt,
		Answers:                   answers,
	}, nil
}

func (s *statisticsService) AllResults(ctx context.Context, caller *access.Caller) (*dto.ResultListResponse, error) {
	if err := access.Require(caller, access.PermStatisticsView); err != nil {
		return nil, err
	}
	results, err := s.resultRepo.FindAllQualifying(ctx)
	if err != nil {
		log.Error().Err(err).Msg("AllResults: Failed to load results")
		return nil, apperror.Internal(err, "failed to load results")
	}
	rows := make([]dto.ResultSummaryDTO, 0, len(results))
	for i := range results {
		row := summarize(&results[i])
		row.UserName = userLabel(results[i].User)
		rows = append(rows, row)
	}
	return &dto.ResultListResponse{Results: rows}, nil
}
