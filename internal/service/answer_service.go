package service

import (
	"context"

	"github.com/lshigami/psytest/internal/access"
	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/model"
	"github.com/lshigami/psytest/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AnswerService is the answer ledger: one row per (attempt, question), last write wins.
type AnswerService interface {
	SubmitAnswer(ctx context.Context, req dto.SubmitAnswerRequest, caller *access.Caller) (*dto.SubmitAnswerResponse, error)
	// ScoreAttempt counts correct answers of the attempt using tx, so the
	// caller's row lock covers the read.
	ScoreAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) (int64, error)
}

type answerService struct {
	resultRepo   repository.TestResultRepository
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	db           *gorm.DB
}

func NewAnswerService(
	resultRepo repository.TestResultRepository,
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	db *gorm.DB,
) AnswerService {
	return &answerService{
		resultRepo:   resultRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		db:           db,
	}
}

func (s *answerService) SubmitAnswer(ctx context.Context, req dto.SubmitAnswerRequest, caller *access.Caller) (*dto.SubmitAnswerResponse, error) {
	var isCorrect bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result, err := s.resultRepo.WithTx(tx).FindByIDForUpdate(ctx, req.TestResultID)
		if err != nil {
			return lookupError(err, "test result", req.TestResultID)
		}
		if err := access.CheckOwnership(caller, result.UserID); err != nil {
			return err
		}
		if result.Status != model.StatusInProgress {
			return apperror.Conflict("test result %d is %s and no longer accepts answers", result.ID, result.Status)
		}

		question, err := s.questionRepo.WithTx(tx).FindByID(ctx, req.QuestionID)
		if err != nil {
			return lookupError(err, "question", req.QuestionID)
		}
		if question.TestID != result.TestID {
			return apperror.NotFound("question with ID %d not found in test %d", question.ID, result.TestID)
		}
		if req.SelectedAnswer < 1 || req.SelectedAnswer > question.NumberOfOptions {
			return apperror.Validation("selected answer must be between 1 and %d", question.NumberOfOptions)
		}

		isCorrect = question.IsCorrect(req.SelectedAnswer)
		answer := model.Answer{
			TestResultID:   result.ID,
			QuestionID:     question.ID,
			SelectedAnswer: req.SelectedAnswer,
			IsCorrect:      isCorrect,
		}
		if err := s.answerRepo.WithTx(tx).Upsert(ctx, &answer); err != nil {
			return apperror.Internal(err, "failed to save answer")
		}
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			log.Error().Err(err).Uint("testResultID", req.TestResultID).Uint("questionID", req.QuestionID).Msg("SubmitAnswer: Transaction failed")
		}
		return nil, err
	}
	answersSubmitted.Inc()

	resp := &dto.SubmitAnswerResponse{Message: "Answer saved"}
	if caller.Privileged() {
		resp.IsCorrect = &isCorrect
	}
	return resp, nil
}

func (s *answerService) ScoreAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) (int64, error) {
	repo := s.answerRepo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	n, err := repo.CountCorrect(ctx, attemptID)
	if err != nil {
		return 0, apperror.Internal(err, "failed to score test result %d", attemptID)
	}
	return n, nil
}
