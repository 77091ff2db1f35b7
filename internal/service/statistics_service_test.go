package service

import (
	"bytes"
	"testing"

	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// attemptWithScore runs an attempt answering the first n questions correctly.
func (f *fixture) attemptWithScore(t *testing.T, testID uint, qs []uint, n, timeSpent int, save bool) uint {
	t.Helper()
	resultID := f.start(t, testID, nil)
	for i := 0; i < n; i++ {
		f.answer(t, resultID, qs[i], 1, nil)
	}
	f.complete(t, resultID, timeSpent, save, nil)
	return resultID
}

func tenQuestions() []int {
	return []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
}

func TestPerTestStatistics_OnlyQualifying(t *testing.T) {
	f := newFixture(t)
	testID, qs := f.createTest(t, "ten", tenQuestions()...)

	f.attemptWithScore(t, testID, qs, 8, 300, true)
	f.attemptWithScore(t, testID, qs, 1, 10, false)
	f.start(t, testID, nil)

	stats, err := f.stats.PerTestStatistics(f.ctx, testID, psychCaller)
	require.NoError(t, err)
	assert.Equal(t, "ten", stats.Test.Name)
	assert.Equal(t, 1, stats.Statistics.TotalAttempts)
	assert.Equal(t, 8.0, stats.Statistics.AverageScore)
	assert.Equal(t, 80.0, stats.Statistics.AveragePercentage)
	assert.Equal(t, 300.0, stats.Statistics.AverageTime)
	assert.Equal(t, 8, stats.Statistics.MaxScore)
	assert.Equal(t, 8, stats.Statistics.MinScore)
	require.Len(t, stats.Results, 1)
	assert.Equal(t, "Guest", stats.Results[0].UserName)
}

func TestPerTestStatistics_Aggregates(t *testing.T) {
	f := newFixture(t)
	testID, qs := f.createTest(t, "agg", tenQuestions()...)

	f.attemptWithScore(t, testID, qs, 3, 100, true)
	f.attemptWithScore(t, testID, qs, 6, 201, true)
	f.attemptWithScore(t, testID, qs, 8, 0, true)

	stats, err := f.stats.PerTestStatistics(f.ctx, testID, adminCaller)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Statistics.TotalAttempts)
	assert.Equal(t, 5.67, stats.Statistics.AverageScore)
	assert.Equal(t, 56.67, stats.Statistics.AveragePercentage)
	assert.Equal(t, 100.0, stats.Statistics.AverageTime)
	assert.Equal(t, 8, stats.Statistics.MaxScore)
	assert.Equal(t, 3, stats.Statistics.MinScore)
}

func TestPerTestStatistics_Empty(t *testing.T) {
	f := newFixture(t)
	testID, _ := f.createTest(t, "quiet", 1)

	stats, err := f.stats.PerTestStatistics(f.ctx, testID, psychCaller)
	require.NoError(t, err)
	assert.Zero(t, stats.Statistics.TotalAttempts)
	assert.Zero(t, stats.Statistics.MaxScore)
	assert.Zero(t, stats.Statistics.MinScore)
	assert.Empty(t, stats.Results)

	_, err = f.stats.PerTestStatistics(f.ctx, 555, psychCaller)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestPerUserStatistics(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice", model.RoleUser)
	testA, qa := f.createTest(t, "a", 1, 1)
	testB, qb := f.createTest(t, "b", 1, 1, 1, 1)

	r1 := f.start(t, testA, alice)
	f.answer(t, r1, qa[0], 1, alice)
	f.complete(t, r1, 10, true, alice)

	r2 := f.start(t, testB, alice)
	f.answer(t, r2, qb[0], 1, alice)
	f.complete(t, r2, 10, true, alice)

	r3 := f.start(t, testB, alice)
	f.complete(t, r3, 10, false, alice)

	stats, err := f.stats.PerUserStatistics(f.ctx, alice.UserID, psychCaller)
	require.NoError(t, err)
	assert.Equal(t, "alice", stats.User.Username)
	assert.Equal(t, 2, stats.Statistics.TotalTests)
	assert.Equal(t, 37.5, stats.Statistics.AveragePercentage)
	require.Len(t, stats.Results, 2)
	require.NotNil(t, stats.Results[0].TestName)

	_, err = f.stats.PerUserStatistics(f.ctx, 9999, psychCaller)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestOverallStatistics(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "alice", model.RoleUser)
	f.createUser(t, "bob", model.RoleUser)
	testA, qa := f.createTest(t, "a", 1)
	testB, _ := f.createTest(t, "b", 1)

	f.attemptWithScore(t, testA, qa, 1, 5, true)
	f.attemptWithScore(t, testA, qa, 0, 5, true)
	f.attemptWithScore(t, testA, qa, 1, 5, false)

	stats, err := f.stats.OverallStatistics(f.ctx, psychCaller)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalTests)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalResults)
	require.Len(t, stats.TestStatistics, 2)
	assert.Equal(t, testA, stats.TestStatistics[0].TestID)
	assert.Equal(t, int64(2), stats.TestStatistics[0].AttemptsCount)
	assert.Equal(t, testB, stats.TestStatistics[1].TestID)
	assert.Equal(t, "Display b", stats.TestStatistics[1].TestDisplayName)
	assert.Equal(t, int64(0), stats.TestStatistics[1].AttemptsCount)
}

func TestDetailedResult(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice", model.RoleUser)
	testID, qs := f.createTest(t, "detail", 2, 3)

	resultID := f.start(t, testID, alice)
	f.answer(t, resultID, qs[1], 3, alice)
	f.answer(t, resultID, qs[0], 1, alice)

	detail, err := f.stats.DetailedResult(f.ctx, resultID, psychCaller)
	require.NoError(t, err)
	assert.Equal(t, "alice", detail.UserName)
	assert.False(t, detail.IsGuest)
	assert.Equal(t, string(model.StatusInProgress), detail.Status)
	require.Len(t, detail.Answers, 2)
	assert.Equal(t, 1, detail.Answers[0].QuestionNumber)
	assert.Equal(t, 2, detail.Answers[0].CorrectAnswer)
	assert.False(t, detail.Answers[0].IsCorrect)
	assert.True(t, detail.Answers[1].IsCorrect)

	_, err = f.stats.DetailedResult(f.ctx, 404, psychCaller)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestAllResults(t *testing.T) {
	f := newFixture(t)
	testID, qs := f.createTest(t, "all", 1)
	f.attemptWithScore(t, testID, qs, 1, 5, true)
	f.attemptWithScore(t, testID, qs, 1, 5, false)

	resp, err := f.stats.AllResults(f.ctx, psychCaller)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.NotNil(t, resp.Results[0].TestName)
	assert.Equal(t, "all", *resp.Results[0].TestName)
	assert.Equal(t, "Guest", resp.Results[0].UserName)
}

func TestStatistics_RequirePermission(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice", model.RoleUser)
	testID, _ := f.createTest(t, "locked", 1)

	_, err := f.stats.PerTestStatistics(f.ctx, testID, user)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
	_, err = f.stats.OverallStatistics(f.ctx, nil)
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))
	_, err = f.stats.AllResults(f.ctx, user)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestDetailedResultPDF(t *testing.T) {
	f := newFixture(t)
	testID, qs := f.createTest(t, "pdf", 1, 2)
	resultID := f.attemptWithScore(t, testID, qs, 1, 42, true)

	pdf, err := f.reports.DetailedResultPDF(f.ctx, resultID, psychCaller)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	_, err = f.reports.DetailedResultPDF(f.ctx, resultID, nil)
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))
}
