package service

import (
	"context"

	"github.com/lshigami/psytest/internal/access"
	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/model"
	"github.com/lshigami/psytest/internal/repository"
	"github.com/rs/zerolog/log"
)

type CatalogService interface {
	ListTests(ctx context.Context, caller *access.Caller) (*dto.TestListResponse, error)
	GetTestForRole(ctx context.Context, testID uint, caller *access.Caller) (*dto.TestWithQuestionsDTO, error)
}

type catalogService struct {
	testRepo repository.TestRepository
}

func NewCatalogService(testRepo repository.TestRepository) CatalogService {
	return &catalogService{testRepo: testRepo}
}

// ListTests returns active tests newest first. Privileged callers also see inactive ones.
func (s *catalogService) ListTests(ctx context.Context, caller *access.Caller) (*dto.TestListResponse, error) {
	var tests []model.Test
	var err error
	if caller.Privileged() {
		tests, err = s.testRepo.FindAll(ctx)
	} else {
		tests, err = s.testRepo.FindActive(ctx)
	}
	if err != nil {
		log.Error().Err(err).Msg("ListTests: Failed to get tests from repository")
		return nil, apperror.Internal(err, "error fetching tests")
	}

	views := make([]dto.TestView, 0, len(tests))
	for i := range tests {
		views = append(views, access.FilterTestView(&tests[i], caller))
	}
	return &dto.TestListResponse{Tests: views}, nil
}

func (s *catalogService) GetTestForRole(ctx context.Context, testID uint, caller *access.Caller) (*dto.TestWithQuestionsDTO, error) {
	test, err := s.testRepo.FindByIDWithQuestions(ctx, testID)
	if err != nil {
		lerr := lookupError(err, "test", testID)
		if apperror.Is(lerr, apperror.KindInternal) {
			log.Error().Err(err).Uint("testID", testID).Msg("GetTestForRole: Failed to get test details from repository")
		}
		return nil, lerr
	}
	if !test.IsActive && !caller.Privileged() {
		return nil, apperror.NotFound("test with ID %d not found", testID)
	}

	return &dto.TestWithQuestionsDTO{
		Test:      access.FilterTestView(test, caller),
		Questions: access.FilterQuestionViews(test.Questions, caller),
	}, nil
}
