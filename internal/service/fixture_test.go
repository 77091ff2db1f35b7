package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lshigami/psytest/config"
	"github.com/lshigami/psytest/internal/access"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/model"
	"github.com/lshigami/psytest/internal/repository"
	"github.com/lshigami/psytest/internal/storage"
	"github.com/lshigami/psytest/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	adminCaller = &access.Caller{UserID: 1000, Role: model.RoleAdmin}
	psychCaller = &access.Caller{UserID: 1001, Role: model.RolePsychologist}
)

type fixture struct {
	ctx context.Context
	db  *gorm.DB

	users     repository.UserRepository
	tests     repository.TestRepository
	questions repository.QuestionRepository
	results   repository.TestResultRepository
	answerRp  repository.AnswerRepository
	blobs     *storage.FSStore
	blobDir   string

	answers    AnswerService
	sessions   SessionService
	catalog    CatalogService
	stats      StatisticsService
	reports    ReportService
	adminTests AdminTestService
	adminUsers AdminUserService
	auth       AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	blobDir := t.TempDir()
	blobs, err := storage.NewFSStore(blobDir)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpiresIn = time.Hour

	f := &fixture{
		ctx:       context.Background(),
		db:        db,
		users:     repository.NewUserRepository(db),
		tests:     repository.NewTestRepository(db),
		questions: repository.NewQuestionRepository(db),
		results:   repository.NewTestResultRepository(db),
		answerRp:  repository.NewAnswerRepository(db),
		blobs:     blobs,
		blobDir:   blobDir,
	}
	f.answers = NewAnswerService(f.results, f.questions, f.answerRp, db)
	f.sessions = NewSessionService(f.tests, f.results, f.answers, db)
	f.catalog = NewCatalogService(f.tests)
	f.stats = NewStatisticsService(f.tests, f.users, f.results)
	f.reports = NewReportService(f.stats)
	f.adminTests = NewAdminTestService(f.tests, f.questions, f.results, f.answerRp, blobs, db)
	f.adminUsers = NewAdminUserService(f.users)
	f.auth = NewAuthService(f.users, cfg)
	return f
}

// createTest adds an active test with one 4-option question per correct answer.
func (f *fixture) createTest(t *testing.T, name string, correct ...int) (uint, []uint) {
	t.Helper()
	resp, err := f.adminTests.CreateTest(f.ctx, dto.CreateTestRequest{
		Name:        name,
		DisplayName: "Display " + name,
		Description: "Description of " + name,
	}, adminCaller)
	require.NoError(t, err)

	ids := make([]uint, 0, len(correct))
	for i, c := range correct {
		q, err := f.adminTests.AddQuestion(f.ctx, dto.CreateQuestionRequest{
			TestID:          resp.Test.ID,
			QuestionNumber:  i + 1,
			NumberOfOptions: 4,
			CorrectAnswer:   c,
		}, nil, adminCaller)
		require.NoError(t, err)
		ids = append(ids, q.Question.ID)
	}
	return resp.Test.ID, ids
}

// createUser stores an active account directly, bypassing registration.
func (f *fixture) createUser(t *testing.T, username string, role model.Role) *access.Caller {
	t.Helper()
	u := model.User{
		Email:    username + "@example.com",
		Username: username,
		Password: "x",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, f.users.Create(f.ctx, &u))
	return &access.Caller{UserID: u.ID, Role: role}
}

func (f *fixture) start(t *testing.T, testID uint, caller *access.Caller) uint {
	t.Helper()
	resp, err := f.sessions.StartAttempt(f.ctx, testID, caller)
	require.NoError(t, err)
	return resp.TestResultID
}

func (f *fixture) answer(t *testing.T, resultID, questionID uint, option int, caller *access.Caller) {
	t.Helper()
	_, err := f.answers.SubmitAnswer(f.ctx, dto.SubmitAnswerRequest{
		TestResultID:   resultID,
		QuestionID:     questionID,
		SelectedAnswer: option,
	}, caller)
	require.NoError(t, err)
}

func (f *fixture) complete(t *testing.T, resultID uint, timeSpent int, save bool, caller *access.Caller) *dto.CompleteAttemptResponse {
	t.Helper()
	resp, err := f.sessions.CompleteAttempt(f.ctx, dto.CompleteAttemptRequest{
		TestResultID: resultID,
		TimeSpent:    &timeSpent,
		ShouldSave:   save,
	}, caller)
	require.NoError(t, err)
	return resp
}

func pngUpload(body string) *storage.Upload {
	return &storage.Upload{
		Filename:    "question.png",
		ContentType: "image/png",
		Size:        int64(len(body)),
		Reader:      strings.NewReader(body),
	}
}

func countRows(t *testing.T, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error, fmt.Sprintf("count %T", m))
	return n
}
