package repository

import (
	"context"
	"testing"
	"time"

	"github.com/lshigami/psytest/internal/model"
	"github.com/lshigami/psytest/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTest(t *testing.T, db *gorm.DB, name string, active bool, questions int) (*model.Test, []model.Question) {
	t.Helper()
	ctx := context.Background()
	test := &model.Test{Name: name, DisplayName: "D " + name, Description: "d", IsActive: active, TimeLimit: 60}
	require.NoError(t, NewTestRepository(db).Create(ctx, test))

	qs := make([]model.Question, 0, questions)
	for i := questions; i >= 1; i-- {
		q := model.Question{TestID: test.ID, QuestionNumber: i, NumberOfOptions: 4, CorrectAnswer: 1}
		require.NoError(t, NewQuestionRepository(db).Create(ctx, &q))
		qs = append(qs, q)
	}
	return test, qs
}

func seedResult(t *testing.T, db *gorm.DB, testID uint, status model.TestStatus, saved bool) *model.TestResult {
	t.Helper()
	r := &model.TestResult{TestID: testID, Status: status, IsSaved: saved}
	if status == model.StatusCompleted {
		now := time.Now()
		r.CompletedAt = &now
	}
	require.NoError(t, NewTestResultRepository(db).Create(context.Background(), r))
	return r
}

func TestAnswerUpsert(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	test, qs := seedTest(t, db, "upsert", true, 1)
	result := seedResult(t, db, test.ID, model.StatusInProgress, false)
	repo := NewAnswerRepository(db)

	require.NoError(t, repo.Upsert(ctx, &model.Answer{TestResultID: result.ID, QuestionID: qs[0].ID, SelectedAnswer: 2}))
	require.NoError(t, repo.Upsert(ctx, &model.Answer{TestResultID: result.ID, QuestionID: qs[0].ID, SelectedAnswer: 1, IsCorrect: true}))

	answers, err := repo.FindByResultID(ctx, result.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, 1, answers[0].SelectedAnswer)
	assert.True(t, answers[0].IsCorrect)

	n, err := repo.CountCorrect(ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestFindByIDWithQuestions_Ordered(t *testing.T) {
	db := testutil.NewDB(t)
	test, _ := seedTest(t, db, "order", true, 3)

	got, err := NewTestRepository(db).FindByIDWithQuestions(context.Background(), test.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 3)
	for i, q := range got.Questions {
		assert.Equal(t, i+1, q.QuestionNumber)
	}
}

func TestRecountQuestions(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	test, _ := seedTest(t, db, "count", true, 4)
	repo := NewTestRepository(db)

	n, err := repo.RecountQuestions(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	got, err := repo.FindByID(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalQuestions)
}

func TestFindActive(t *testing.T) {
	db := testutil.NewDB(t)
	seedTest(t, db, "on", true, 0)
	seedTest(t, db, "off", false, 0)
	repo := NewTestRepository(db)

	active, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "on", active[0].Name)

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestQualifyingQueries(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	a, _ := seedTest(t, db, "a", true, 1)
	b, _ := seedTest(t, db, "b", true, 1)
	seedTest(t, db, "c", true, 1)

	seedResult(t, db, a.ID, model.StatusCompleted, true)
	seedResult(t, db, a.ID, model.StatusCompleted, false)
	seedResult(t, db, a.ID, model.StatusInProgress, true)
	seedResult(t, db, b.ID, model.StatusCompleted, true)
	seedResult(t, db, b.ID, model.StatusCompleted, true)
	repo := NewTestResultRepository(db)

	n, err := repo.CountQualifying(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	byTest, err := repo.FindQualifyingByTest(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, byTest, 1)

	counts, err := repo.CountQualifyingPerTest(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, int64(1), counts[0].AttemptsCount)
	assert.Equal(t, int64(2), counts[1].AttemptsCount)
	assert.Equal(t, "c", counts[2].Name)
	assert.Equal(t, int64(0), counts[2].AttemptsCount)
}

func TestDeleteAnswersByTestID(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	a, qa := seedTest(t, db, "a", true, 1)
	b, qb := seedTest(t, db, "b", true, 1)
	ra := seedResult(t, db, a.ID, model.StatusInProgress, false)
	rb := seedResult(t, db, b.ID, model.StatusInProgress, false)
	answers := NewAnswerRepository(db)

	require.NoError(t, answers.Upsert(ctx, &model.Answer{TestResultID: ra.ID, QuestionID: qa[0].ID, SelectedAnswer: 1}))
	require.NoError(t, answers.Upsert(ctx, &model.Answer{TestResultID: rb.ID, QuestionID: qb[0].ID, SelectedAnswer: 1}))

	deleted, err := answers.DeleteByTestID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	left, err := answers.FindByResultID(ctx, rb.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestUserLookup(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	u := &model.User{Email: "a@example.com", Username: "alice", Password: "x", Role: model.RoleUser, IsActive: true}
	require.NoError(t, repo.Create(ctx, u))

	byName, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
	byEmail, err := repo.FindByLogin(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	exists, err := repo.ExistsByEmailOrUsername(ctx, "other@example.com", "alice", 0)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsByEmailOrUsername(ctx, "a@example.com", "alice", u.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
