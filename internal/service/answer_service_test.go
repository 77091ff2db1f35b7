package service

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitAnswer_ResubmissionOverwrites(t *testing.T) {
	f := newFixture(t)
	testID, qs := f.createTest(t, "resubmit", 3)
	resultID := f.start(t, testID, nil)

	f.answer(t, resultID, qs[0], 1, nil)
	f.answer(t, resultID, qs[0], 3, nil)

	answers, err := f.answerRp.FindByResultID(f.ctx, resultID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, 3, answers[0].SelectedAnswer)
	assert.True(t, answers[0].IsCorrect)

	resp := f.complete(t, resultID, 1, false, nil)
	assert.Equal(t, 1, resp.Result.Score)
}

func TestSubmitAnswer_Rejections(t *testing.T) {
	f := newFixture(t)
	testID, qs := f.createTest(t, "first", 1)
	_, other := f.createTest(t, "second", 1)
	resultID := f.start(t, testID, nil)

	cases := []struct {
		name       string
		questionID uint
		option     int
		kind       apperror.Kind
	}{
		{"question of another test", other[0], 1, apperror.KindNotFound},
		{"unknown question", 9999, 1, apperror.KindNotFound},
		{"option zero", qs[0], 0, apperror.KindValidation},
		{"option above range", qs[0], 5, apperror.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.answers.SubmitAnswer(f.ctx, dto.SubmitAnswerRequest{
				TestResultID:   resultID,
				QuestionID:     tc.questionID,
				SelectedAnswer: tc.option,
			}, nil)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperror.KindOf(err))
		})
	}

	assert.Equal(t, int64(0), countRows(t, f.db, &model.Answer{}))
}

func TestSubmitAnswer_AfterCompletion(t *testing.T) {
	f := newFixture(t)
	testID, qs := f.createTest(t, "closed", 1)
	resultID := f.start(t, testID, nil)
	f.complete(t, resultID, 1, false, nil)

	_, err := f.answers.SubmitAnswer(f.ctx, dto.SubmitAnswerRequest{TestResultID: resultID, QuestionID: qs[0], SelectedAnswer: 1}, nil)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestSubmitAnswer_UnknownAttempt(t *testing.T) {
	f := newFixture(t)
	_, qs := f.createTest(t, "orphan", 1)

	_, err := f.answers.SubmitAnswer(f.ctx, dto.SubmitAnswerRequest{TestResultID: 77, QuestionID: qs[0], SelectedAnswer: 1}, nil)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestSubmitAnswer_CorrectnessEchoedToPrivilegedOnly(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice", model.RoleUser)
	admin := f.createUser(t, "root", model.RoleAdmin)
	testID, qs := f.createTest(t, "echo", 2)

	userAttempt := f.start(t, testID, alice)
	resp, err := f.answers.SubmitAnswer(f.ctx, dto.SubmitAnswerRequest{TestResultID: userAttempt, QuestionID: qs[0], SelectedAnswer: 2}, alice)
	require.NoError(t, err)
	assert.Nil(t, resp.IsCorrect)

	adminAttempt := f.start(t, testID, admin)
	resp, err = f.answers.SubmitAnswer(f.ctx, dto.SubmitAnswerRequest{TestResultID: adminAttempt, QuestionID: qs[0], SelectedAnswer: 2}, admin)
	require.NoError(t, err)
	require.NotNil(t, resp.IsCorrect)
	assert.True(t, *resp.IsCorrect)
}

func TestSubmitAnswer_CorrectnessFixedAtSubmission(t *testing.T) {
	f := newFixture(t)
	testID, qs := f.createTest(t, "frozen", 1)
	resultID := f.start(t, testID, nil)
	f.answer(t, resultID, qs[0], 1, nil)

	newCorrect := 2
	_, err := f.adminTests.UpdateQuestion(f.ctx, qs[0], dto.UpdateQuestionRequest{CorrectAnswer: &newCorrect}, nil, adminCaller)
	require.NoError(t, err)

	resp := f.complete(t, resultID, 1, false, nil)
	assert.Equal(t, 1, resp.Result.Score)
}

func TestSubmitAnswer_RacingCompletionKeepsScoreConsistent(t *testing.T) {
	f := newFixture(t)
	testID, qs := f.createTest(t, "race", 1, 1, 1, 1, 1, 1, 1, 1)
	resultID := f.start(t, testID, nil)

	var (
		wg       sync.WaitGroup
		accepted atomic.Int64
		score    int
	)
	errs := make(chan error, len(qs)+1)
	for _, qid := range qs {
		wg.Add(1)
		go func(qid uint) {
			defer wg.Done()
			_, err := f.answers.SubmitAnswer(f.ctx, dto.SubmitAnswerRequest{TestResultID: resultID, QuestionID: qid, SelectedAnswer: 1}, nil)
			if err == nil {
				accepted.Add(1)
			}
			errs <- err
		}(qid)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		spent := 5
		resp, err := f.sessions.CompleteAttempt(f.ctx, dto.CompleteAttemptRequest{TestResultID: resultID, TimeSpent: &spent}, nil)
		if err == nil {
			score = resp.Result.Score
		}
		errs <- err
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.True(t, apperror.Is(err, apperror.KindConflict), "unexpected error: %v", err)
		}
	}

	stored, err := f.results.FindByID(f.ctx, resultID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, stored.Status)

	committed, err := f.answerRp.CountCorrect(f.ctx, resultID)
	require.NoError(t, err)
	assert.Equal(t, accepted.Load(), committed)
	assert.Equal(t, int(committed), stored.Score)
	assert.Equal(t, stored.Score, score)
}
