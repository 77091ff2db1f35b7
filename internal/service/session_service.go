package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/lshigami/psytest/internal/access"
	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/model"
	"github.com/lshigami/psytest/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SessionService drives an attempt from start to completion.
type SessionService interface {
	StartAttempt(ctx context.Context, testID uint, caller *access.Caller) (*dto.StartAttemptResponse, error)
	CompleteAttempt(ctx context.Context, req dto.CompleteAttemptRequest, caller *access.Caller) (*dto.CompleteAttemptResponse, error)
	GetAttemptForDisplay(ctx context.Context, attemptID uint, caller *access.Caller) (*dto.AttemptDetailDTO, error)
	GetUserResults(ctx context.Context, caller *access.Caller) (*dto.ResultListResponse, error)
}

type sessionService struct {
	testRepo   repository.TestRepository
	resultRepo repository.TestResultRepository
	answers    AnswerService
	db         *gorm.DB
}

func NewSessionService(
	testRepo repository.TestRepository,
	resultRepo repository.TestResultRepository,
	answers AnswerService,
	db *gorm.DB,
) SessionService {
	return &sessionService{
		testRepo:   testRepo,
		resultRepo: resultRepo,
		answers:    answers,
		db:         db,
	}
}

func (s *sessionService) StartAttempt(ctx context.Context, testID uint, caller *access.Caller) (*dto.StartAttemptResponse, error) {
	test, err := s.testRepo.FindByID(ctx, testID)
	if err != nil {
		return nil, lookupError(err, "test", testID)
	}
	if !test.IsActive {
		return nil, apperror.NotFound("test with ID %d not found", testID)
	}

	result := model.TestResult{
		UserID:         caller.ID(),
		TestID:         test.ID,
		Status:         model.StatusInProgress,
		TotalQuestions: test.TotalQuestions,
	}
	if err := s.resultRepo.Create(ctx, &result); err != nil {
		log.Error().Err(err).Uint("testID", testID).Msg("StartAttempt: Failed to create test result")
		return nil, apperror.Internal(err, "failed to start test")
	}
	attemptsStarted.WithLabelValues(callerLabel(caller == nil)).Inc()

	log.Info().Uint("testID", testID).Uint("testResultID", result.ID).Interface("userID", result.UserID).Msg("StartAttempt: Attempt started")
	return &dto.StartAttemptResponse{Message: "Test started", TestResultID: result.ID}, nil
}

func (s *sessionService) CompleteAttempt(ctx context.Context, req dto.CompleteAttemptRequest, caller *access.Caller) (*dto.CompleteAttemptResponse, error) {
	if req.TimeSpent != nil && *req.TimeSpent < 0 {
		return nil, apperror.Validation("time_spent must not be negative")
	}

	var completed model.TestResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		results := s.resultRepo.WithTx(tx)
		result, err := results.FindByIDForUpdate(ctx, req.TestResultID)
		if err != nil {
			return lookupError(err, "test result", req.TestResultID)
		}
		if err := access.CheckOwnership(caller, result.UserID); err != nil {
			return err
		}

		score, err := s.answers.ScoreAttempt(ctx, tx, result.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		result.Score = int(score)
		result.Percentage = model.Percentage(result.Score, result.TotalQuestions)
		result.TimeSpent = req.TimeSpent
		result.CompletedAt = &now
		result.IsSaved = req.ShouldSave
		result.Status = model.StatusCompleted
		if err := results.Update(ctx, result); err != nil {
			return apperror.Internal(err, "failed to complete test result %d", result.ID)
		}
		completed = *result
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			log.Error().Err(err).Uint("testResultID", req.TestResultID).Msg("CompleteAttempt: Transaction failed")
		}
		return nil, err
	}
	attemptsCompleted.WithLabelValues(savedLabel(completed.IsSaved)).Inc()

	log.Info().Uint("testResultID", completed.ID).Int("score", completed.Score).Bool("saved", completed.IsSaved).Msg("CompleteAttempt: Attempt completed")
	return &dto.CompleteAttemptResponse{
		Message: "Test completed",
		Result: dto.CompletedResultDTO{
			Score:          completed.Score,
			TotalQuestions: completed.TotalQuestions,
			Percentage:     dto.Round2(completed.Percentage),
			TimeSpent:      completed.TimeSpent,
		},
	}, nil
}

func (s *sessionService) GetAttemptForDisplay(ctx context.Context, attemptID uint, caller *access.Caller) (*dto.AttemptDetailDTO, error) {
	if caller == nil {
		return nil, apperror.Unauthenticated("authentication required")
	}
	result, err := s.resultRepo.FindByIDWithDetails(ctx, attemptID)
	if err != nil {
		return nil, lookupError(err, "test result", attemptID)
	}
	if err := access.CanViewAttempt(caller, result.UserID); err != nil {
		return nil, err
	}

	sortAnswers(result.Answers)
	answers := make([]dto.AnswerView, 0, len(result.Answers))
	for i := range result.Answers {
		answers = append(answers, access.FilterAnswerView(&result.Answers[i], caller))
	}

	detail := &dto.AttemptDetailDTO{
		ID:             result.ID,
		Test:           access.FilterTestView(&result.Test, caller),
		UserID:         result.UserID,
		Status:         string(result.Status),
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     dto.Round2(result.Percentage),
		IsSaved:        result.IsSaved,
		TimeSpent:      result.TimeSpent,
		CompletedAt:    result.CompletedAt,
		Answers:        answers,
		CreatedAt:      result.CreatedAt,
	}
	if len(result.Interpretation) > 0 {
		detail.Interpretation = json.RawMessage(result.Interpretation)
	}
	return detail, nil
}

func (s *sessionService) GetUserResults(ctx context.Context, caller *access.Caller) (*dto.ResultListResponse, error) {
	if caller == nil {
		return nil, apperror.Unauthenticated("authentication required")
	}
	results, err := s.resultRepo.FindQualifyingByUser(ctx, caller.UserID)
	if err != nil {
		log.Error().Err(err).Uint("userID", caller.UserID).Msg("GetUserResults: Failed to load results")
		return nil, apperror.Internal(err, "failed to load results")
	}

	rows := make([]dto.ResultSummaryDTO, 0, len(results))
	for i := range results {
		row := summarize(&results[i])
		if !caller.Privileged() {
			row.TestName = nil
		}
		rows = append(rows, row)
	}
	return &dto.ResultListResponse{Results: rows}, nil
}

// sortAnswers orders answers by question number, then by id.
func sortAnswers(answers []model.Answer) {
	sort.SliceStable(answers, func(i, j int) bool {
		if answers[i].Question.QuestionNumber != answers[j].Question.QuestionNumber {
			return answers[i].Question.QuestionNumber < answers[j].Question.QuestionNumber
		}
		return answers[i].ID < answers[j].ID
	})
}

// summarize builds a list row from a result with its Test preloaded.
func summarize(r *model.TestResult) dto.ResultSummaryDTO {
	row := dto.ResultSummaryDTO{
		ID:              r.ID,
		TestID:          r.TestID,
		TestDisplayName: r.Test.DisplayName,
		UserID:          r.UserID,
		Score:           r.Score,
		TotalQuestions:  r.TotalQuestions,
		Percentage:      dto.Round2(r.Percentage),
		TimeSpent:       r.TimeSpent,
		CompletedAt:     r.CompletedAt,
	}
	if r.Test.Name != "" {
		name := r.Test.Name
		row.TestName = &name
	}
	return row
}

func userLabel(u *model.User) string {
	if u == nil {
		return "Guest"
	}
	return u.DisplayName()
}
