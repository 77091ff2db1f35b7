package access

import (
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/model"
)

// FilterTestView projects a test for the caller. Guests and plain users get
// display fields only; the internal name never reaches them.
func FilterTestView(t *model.Test, c *Caller) dto.TestView {
	v := dto.TestView{
		ID:             t.ID,
		DisplayName:    t.DisplayName,
		Description:    t.Description,
		TotalQuestions: t.TotalQuestions,
		TimeLimit:      t.TimeLimit,
	}
	if !c.Privileged() {
		return v
	}
	name := t.Name
	active := t.IsActive
	created := t.CreatedAt
	v.Name = &name
	v.MethodicalRecommendations = t.MethodicalRecommendations
	v.IsActive = &active
	v.CreatedAt = &created
	return v
}

// FilterQuestionView projects a question for the caller; correct answers are
// exposed to privileged roles only.
func FilterQuestionView(q *model.Question, c *Caller) dto.QuestionView {
	v := dto.QuestionView{
		ID:              q.ID,
		QuestionNumber:  q.QuestionNumber,
		ImagePath:       q.ImagePath,
		QuestionText:    q.QuestionText,
		NumberOfOptions: q.NumberOfOptions,
	}
	if !c.Privileged() {
		return v
	}
	testID := q.TestID
	correct := q.CorrectAnswer
	v.TestID = &testID
	v.CorrectAnswer = &correct
	return v
}

func FilterQuestionViews(qs []model.Question, c *Caller) []dto.QuestionView {
	views := make([]dto.QuestionView, 0, len(qs))
	for i := range qs {
		views = append(views, FilterQuestionView(&qs[i], c))
	}
	return views
}

// FilterAnswerView hides correctness from callers who may not see correct answers.
func FilterAnswerView(a *model.Answer, c *Caller) dto.AnswerView {
	v := dto.AnswerView{
		QuestionID:     a.QuestionID,
		QuestionNumber: a.Question.QuestionNumber,
		SelectedAnswer: a.SelectedAnswer,
	}
	if !c.Privileged() {
		return v
	}
	correct := a.Question.CorrectAnswer
	isCorrect := a.IsCorrect
	v.CorrectAnswer = &correct
	v.IsCorrect = &isCorrect
	return v
}
