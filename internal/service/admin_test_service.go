package service

import (
	"context"
	"strings"

	"github.com/lshigami/psytest/internal/access"
	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/model"
	"github.com/lshigami/psytest/internal/repository"
	"github.com/lshigami/psytest/internal/storage"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AdminTestService manages test content and clears results. Admin only.
type AdminTestService interface {
	CreateTest(ctx context.Context, req dto.CreateTestRequest, caller *access.Caller) (*dto.TestMutationResponse, error)
	UpdateTest(ctx context.Context, testID uint, req dto.UpdateTestRequest, caller *access.Caller) (*dto.TestMutationResponse, error)
	DeleteTest(ctx context.Context, testID uint, caller *access.Caller) error

	AddQuestion(ctx context.Context, req dto.CreateQuestionRequest, image *storage.Upload, caller *access.Caller) (*dto.QuestionMutationResponse, error)
	UpdateQuestion(ctx context.Context, questionID uint, req dto.UpdateQuestionRequest, image *storage.Upload, caller *access.Caller) (*dto.QuestionMutationResponse, error)
	DeleteQuestion(ctx context.Context, questionID uint, caller *access.Caller) error

	ClearTestResults(ctx context.Context, testID uint, caller *access.Caller) (*dto.ClearResultsResponse, error)
	ClearAllResults(ctx context.Context, caller *access.Caller) (*dto.ClearResultsResponse, error)
	DeleteResult(ctx context.Context, resultID uint, caller *access.Caller) error
}

type adminTestService struct {
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
	resultRepo   repository.TestResultRepository
	answerRepo   repository.AnswerRepository
	blobs        storage.BlobStore
	db           *gorm.DB
}

func NewAdminTestService(
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	resultRepo repository.TestResultRepository,
	answerRepo repository.AnswerRepository,
	blobs storage.BlobStore,
	db *gorm.DB,
) AdminTestService {
	return &adminTestService{
		testRepo:     testRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		answerRepo:   answerRepo,
		blobs:        blobs,
		db:           db,
	}
}

func (s *adminTestService) CreateTest(ctx context.Context, req dto.CreateTestRequest, caller *access.Caller) (*dto.TestMutationResponse, error) {
	if err := access.Require(caller, access.PermContentManage); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" || req.DisplayName == "" || req.Description == "" {
		return nil, apperror.Validation("name, display_name and description are required")
	}

	timeLimit := model.DefaultTimeLimit
	if req.TimeLimit != nil {
		if *req.TimeLimit < 0 {
			return nil, apperror.Validation("time_limit must not be negative")
		}
		timeLimit = *req.TimeLimit
	}

	test := model.Test{
		Name:                      req.Name,
		DisplayName:               req.DisplayName,
		Description:               req.Description,
		MethodicalRecommendations: req.MethodicalRecommendations,
		IsActive:                  true,
		TimeLimit:                 timeLimit,
	}
	if err := s.testRepo.Create(ctx, &test); err != nil {
		log.Error().Err(err).Msg("CreateTest: Failed to create test in database")
		return nil, apperror.Internal(err, "database error creating test")
	}

	log.Info().Uint("testID", test.ID).Str("name", test.Name).Msg("CreateTest: Test created")
	return &dto.TestMutationResponse{Message: "Test created", Test: access.FilterTestView(&test, caller)}, nil
}

func (s *adminTestService) UpdateTest(ctx context.Context, testID uint, req dto.UpdateTestRequest, caller *access.Caller) (*dto.TestMutationResponse, error) {
	if err := access.Require(caller, access.PermContentManage); err != nil {
		return nil, err
	}
	test, err := s.testRepo.FindByID(ctx, testID)
	if err != nil {
		return nil, lookupError(err, "test", testID)
	}

	if req.Name != nil {
		if test.Name = strings.TrimSpace(*req.Name); test.Name == "" {
			return nil, apperror.Validation("name must not be empty")
		}
	}
	if req.DisplayName != nil {
		if test.DisplayName = strings.TrimSpace(*req.DisplayName); test.DisplayName == "" {
			return nil, apperror.Validation("display_name must not be empty")
		}
	}
	if req.Description != nil {
		if test.Description = strings.TrimSpace(*req.Description); test.Description == "" {
			return nil, apperror.Validation("description must not be empty")
		}
	}
	if req.MethodicalRecommendations != nil {
		test.MethodicalRecommendations = req.MethodicalRecommendations
	}
	if req.TimeLimit != nil {
		if *req.TimeLimit < 0 {
			return nil, apperror.Validation("time_limit must not be negative")
		}
		test.TimeLimit = *req.TimeLimit
	}
	if req.IsActive != nil {
		test.IsActive = *req.IsActive
	}

	if err := s.testRepo.Update(ctx, test); err != nil {
		log.Error().Err(err).Uint("testID", testID).Msg("UpdateTest: Failed to update test")
		return nil, apperror.Internal(err, "database error updating test")
	}
	return &dto.TestMutationResponse{Message: "Test updated", Test: access.FilterTestView(test, caller)}, nil
}

func (s *adminTestService) DeleteTest(ctx context.Context, testID uint, caller *access.Caller) error {
	if err := access.Require(caller, access.PermContentManage); err != nil {
		return err
	}

	var images []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.testRepo.WithTx(tx).FindByID(ctx, testID); err != nil {
			return lookupError(err, "test", testID)
		}
		questions, err := s.questionRepo.WithTx(tx).FindByTestID(ctx, testID)
		if err != nil {
			return apperror.Internal(err, "failed to load questions of test %d", testID)
		}
		for _, q := range questions {
			if q.ImagePath != nil {
				images = append(images, *q.ImagePath)
			}
		}

		if _, err := s.answerRepo.WithTx(tx).DeleteByTestID(ctx, testID); err != nil {
			return apperror.Internal(err, "failed to delete answers of test %d", testID)
		}
		if _, err := s.resultRepo.WithTx(tx).DeleteByTestID(ctx, testID); err != nil {
			return apperror.Internal(err, "failed to delete results of test %d", testID)
		}
		if _, err := s.questionRepo.WithTx(tx).DeleteByTestID(ctx, testID); err != nil {
			return apperror.Internal(err, "failed to delete questions of test %d", testID)
		}
		if err := s.testRepo.WithTx(tx).Delete(ctx, testID); err != nil {
			return apperror.Internal(err, "failed to delete test %d", testID)
		}
		return nil
	})
	if err != nil {
		if apperror.Is(err, apperror.KindInternal) {
			log.Error().Err(err).Uint("testID", testID).Msg("DeleteTest: Transaction failed")
		}
		return err
	}

	for _, key := range images {
		s.deleteBlob(ctx, key)
	}
	log.Info().Uint("testID", testID).Int("images", len(images)).Msg("DeleteTest: Test deleted")
	return nil
}

func validateQuestion(number, options, correct int) error {
	if number < 1 {
		return apperror.Validation("question_number must be at least 1")
	}
	if options < model.MinOptions || options > model.MaxOptions {
		return apperror.Validation("number_of_options must be between %d and %d", model.MinOptions, model.MaxOptions)
	}
	if correct < 1 || correct > options {
		return apperror.Validation("correct_answer must be between 1 and %d", options)
	}
	return nil
}

func (s *adminTestService) AddQuestion(ctx context.Context, req dto.CreateQuestionRequest, image *storage.Upload, caller *access.Caller) (*dto.QuestionMutationResponse, error) {
	if err := access.Require(caller, access.PermContentManage); err != nil {
		return nil, err
	}
	if err := validateQuestion(req.QuestionNumber, req.NumberOfOptions, req.CorrectAnswer); err != nil {
		return nil, err
	}

	question := model.Question{
		TestID:          req.TestID,
		QuestionNumber:  req.QuestionNumber,
		QuestionText:    req.QuestionText,
		NumberOfOptions: req.NumberOfOptions,
		CorrectAnswer:   req.CorrectAnswer,
	}
	if image != nil {
		key, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		question.ImagePath = &key
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tests := s.testRepo.WithTx(tx)
		if _, err := tests.FindByID(ctx, req.TestID); err != nil {
			return lookupError(err, "test", req.TestID)
		}
		if err := s.questionRepo.WithTx(tx).Create(ctx, &question); err != nil {
			return apperror.Internal(err, "failed to create question")
		}
		if _, err := tests.RecountQuestions(ctx, req.TestID); err != nil {
			return apperror.Internal(err, "failed to recount questions of test %d", req.TestID)
		}
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			log.Error().Err(err).Uint("testID", req.TestID).Msg("AddQuestion: Transaction failed")
		}
		if question.ImagePath != nil {
			s.deleteBlob(ctx, *question.ImagePath)
		}
		return nil, err
	}

	return &dto.QuestionMutationResponse{Message: "Question added", Question: access.FilterQuestionView(&question, caller)}, nil
}

func (s *adminTestService) UpdateQuestion(ctx context.Context, questionID uint, req dto.UpdateQuestionRequest, image *storage.Upload, caller *access.Caller) (*dto.QuestionMutationResponse, error) {
	if err := access.Require(caller, access.PermContentManage); err != nil {
		return nil, err
	}
	question, err := s.questionRepo.FindByID(ctx, questionID)
	if err != nil {
		return nil, lookupError(err, "question", questionID)
	}

	if req.QuestionNumber != nil {
		question.QuestionNumber = *req.QuestionNumber
	}
	if req.QuestionText != nil {
		question.QuestionText = req.QuestionText
	}
	if req.NumberOfOptions != nil {
		question.NumberOfOptions = *req.NumberOfOptions
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = *req.CorrectAnswer
	}
	if err := validateQuestion(question.QuestionNumber, question.NumberOfOptions, question.CorrectAnswer); err != nil {
		return nil, err
	}

	oldImage := question.ImagePath
	var newImage *string
	switch {
	case image != nil:
		key, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		newImage = &key
		question.ImagePath = newImage
	case req.RemoveImage:
		question.ImagePath = nil
	}

	if err := s.questionRepo.Update(ctx, question); err != nil {
		log.Error().Err(err).Uint("questionID", questionID).Msg("UpdateQuestion: Failed to update question")
		if newImage != nil {
			s.deleteBlob(ctx, *newImage)
		}
		return nil, apperror.Internal(err, "database error updating question")
	}
	if oldImage != nil && (newImage != nil || req.RemoveImage) {
		s.deleteBlob(ctx, *oldImage)
	}

	return &dto.QuestionMutationResponse{Message: "Question updated", Question: access.FilterQuestionView(question, caller)}, nil
}

func (s *adminTestService) DeleteQuestion(ctx context.Context, questionID uint, caller *access.Caller) error {
	if err := access.Require(caller, access.PermContentManage); err != nil {
		return err
	}

	var image *string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		question, err := s.questionRepo.WithTx(tx).FindByID(ctx, questionID)
		if err != nil {
			return lookupError(err, "question", questionID)
		}
		image = question.ImagePath

		if _, err := s.answerRepo.WithTx(tx).DeleteByQuestionID(ctx, questionID); err != nil {
			return apperror.Internal(err, "failed to delete answers of question %d", questionID)
		}
		if err := s.questionRepo.WithTx(tx).Delete(ctx, questionID); err != nil {
			return apperror.Internal(err, "failed to delete question %d", questionID)
		}
		if _, err := s.testRepo.WithTx(tx).RecountQuestions(ctx, question.TestID); err != nil {
			return apperror.Internal(err, "failed to recount questions of test %d", question.TestID)
		}
		return nil
	})
	if err != nil {
		if apperror.Is(err, apperror.KindInternal) {
			log.Error().Err(err).Uint("questionID", questionID).Msg("DeleteQuestion: Transaction failed")
		}
		return err
	}
	if image != nil {
		s.deleteBlob(ctx, *image)
	}
	return nil
}

func (s *adminTestService) ClearTestResults(ctx context.Context, testID uint, caller *access.Caller) (*dto.ClearResultsResponse, error) {
	if err := access.Require(caller, access.PermResultsManage); err != nil {
		return nil, err
	}

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.testRepo.WithTx(tx).FindByID(ctx, testID); err != nil {
			return lookupError(err, "test", testID)
		}
		if _, err := s.answerRepo.WithTx(tx).DeleteByTestID(ctx, testID); err != nil {
			return apperror.Internal(err, "failed to delete answers of test %d", testID)
		}
		var err error
		if deleted, err = s.resultRepo.WithTx(tx).DeleteByTestID(ctx, testID); err != nil {
			return apperror.Internal(err, "failed to delete results of test %d", testID)
		}
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			log.Error().Err(err).Uint("testID", testID).Msg("ClearTestResults: Transaction failed")
		}
		return nil, err
	}
	log.Info().Uint("testID", testID).Int64("deleted", deleted).Msg("ClearTestResults: Results cleared")
	return &dto.ClearResultsResponse{Message: "Test results cleared", Deleted: deleted}, nil
}

func (s *adminTestService) ClearAllResults(ctx context.Context, caller *access.Caller) (*dto.ClearResultsResponse, error) {
	if err := access.Require(caller, access.PermResultsManage); err != nil {
		return nil, err
	}

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.answerRepo.WithTx(tx).DeleteAll(ctx); err != nil {
			return apperror.Internal(err, "failed to delete answers")
		}
		var err error
		if deleted, err = s.resultRepo.WithTx(tx).DeleteAll(ctx); err != nil {
			return apperror.Internal(err, "failed to delete results")
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("ClearAllResults: Transaction failed")
		return nil, err
	}
	log.Warn().Int64("deleted", deleted).Msg("ClearAllResults: All results cleared")
	return &dto.ClearResultsResponse{Message: "All results cleared", Deleted: deleted}, nil
}

func (s *adminTestService) DeleteResult(ctx context.Context, resultID uint, caller *access.Caller) error {
	if err := access.Require(caller, access.PermResultsManage); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.resultRepo.WithTx(tx).FindByID(ctx, resultID); err != nil {
			return lookupError(err, "test result", resultID)
		}
		if _, err := s.answerRepo.WithTx(tx).DeleteByResultID(ctx, resultID); err != nil {
			return apperror.Internal(err, "failed to delete answers of result %d", resultID)
		}
		if err := s.resultRepo.WithTx(tx).Delete(ctx, resultID); err != nil {
			return apperror.Internal(err, "failed to delete result %d", resultID)
		}
		return nil
	})
	if err != nil && apperror.Is(err, apperror.KindInternal) {
		log.Error().Err(err).Uint("resultID", resultID).Msg("DeleteResult: Transaction failed")
	}
	return err
}

func (s *adminTestService) storeImage(ctx context.Context, image *storage.Upload) (string, error) {
	if err := image.Validate(); err != nil {
		return "", apperror.Validation("invalid image: %v", err)
	}
	key, err := s.blobs.Put(ctx, image)
	if err != nil {
		log.Error().Err(err).Str("filename", image.Filename).Msg("storeImage: Failed to store image")
		return "", apperror.Internal(err, "failed to store image")
	}
	return key, nil
}

// deleteBlob removes a stored image; failures are logged and otherwise ignored.
func (s *adminTestService) deleteBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("deleteBlob: Failed to delete image")
	}
}
