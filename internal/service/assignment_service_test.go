package service

import (
	"testing"
	"video_mcq_backend/internal/model"
	"video_mcq_backend/internal/repository"
	"video_mcq_backend/internal/util"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *repository.MCQRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.VideoAsset{}, &model.MCQQuestion{}))
	return repository.NewMCQRepository(db)
}

func seedQuestions(t *testing.T, repo *repository.MCQRepository) []model.MCQQuestion {
	t.Helper()
	qs := []model.MCQQuestion{
		{
			Question:     "What is the output of print(2 ** 3)?",
			Options:      model.StringArray{"6", "8", "9"},
			Answer:       "8",
			CorrectIndex: 1,
		},
		{
			Question:     "Which keyword creates a function in Python?",
			Options:      model.StringArray{"func", "def", "define"},
			Answer:       "def",
			CorrectIndex: 1,
		},
		{
			Question:     "What type is 3 / 2 in Python 3?",
			Options:      model.StringArray{"int", "float"},
			Answer:       "float",
			CorrectIndex: 1,
		},
	}
	saved, err := repo.SaveBatch(qs)
	require.NoError(t, err)
	require.Len(t, saved, 3)
	return saved
}

func newSessionService(t *testing.T) (*AssignmentService, []model.MCQQuestion) {
	t.Helper()
	repo := newTestRepo(t)
	qs := seedQuestions(t, repo)
	return NewAssignmentService(repo), qs
}

func TestCreateSessionEmptyQuestionSet(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAssignmentService(repo)

	_, err := svc.CreateSession(0, nil, ModeStepped)
	require.ErrorIs(t, err, util.ErrEmptyQuestionSet)
}

func TestSelectAnswerValidation(t *testing.T) {
	svc, qs := newSessionService(t)
	sess, err := svc.CreateSession(0, nil, ModeSingle)
	require.NoError(t, err)

	err = svc.SelectAnswer(sess.ID, 9999, 0)
	require.ErrorIs(t, err, util.ErrQuestionNotInSession)

	err = svc.SelectAnswer(sess.ID, qs[0].ID, 5)
	require.ErrorIs(t, err, util.ErrInvalidOption)

	err = svc.SelectAnswer(sess.ID, qs[0].ID, 1)
	require.NoError(t, err)

	// 重复选择是覆盖而不是追加
	err = svc.SelectAnswer(sess.ID, qs[0].ID, 0)
	require.NoError(t, err)

	got, err := svc.GetSession(sess.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Answers[qs[0].ID])
	require.Len(t, got.Answers, 1)
}

func TestSteppedNavigationGating(t *testing.T) {
	svc, qs := newSessionService(t)
	sess, err := svc.CreateSession(0, nil, ModeStepped)
	require.NoError(t, err)

	// 首题未作答时不能前进
	idx, err := svc.Advance(sess.ID)
	require.ErrorIs(t, err, util.ErrAnswerRequired)
	require.Equal(t, 0, idx)

	// 首题后退是空操作
	idx, err = svc.Retreat(sess.ID)
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	require.NoError(t, svc.SelectAnswer(sess.ID, qs[0].ID, 1))
	idx, err = svc.Advance(sess.ID)
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	require.NoError(t, svc.SelectAnswer(sess.ID, qs[1].ID, 1))
	idx, err = svc.Advance(sess.ID)
	require.NoError(t, err)
	require.Equal(t, 2, idx)

	// 末题继续前进被夹紧
	require.NoError(t, svc.SelectAnswer(sess.ID, qs[2].ID, 1))
	idx, err = svc.Advance(sess.ID)
	require.NoError(t, err)
	require.Equal(t, 2, idx)
}

func TestNavigationRejectedInSingleMode(t *testing.T) {
	svc, _ := newSessionService(t)
	sess, err := svc.CreateSession(0, nil, ModeSingle)
	require.NoError(t, err)

	_, err = svc.Advance(sess.ID)
	require.ErrorIs(t, err, util.ErrNotSteppedMode)
	_, err = svc.Retreat(sess.ID)
	require.ErrorIs(t, err, util.ErrNotSteppedMode)
}

func TestSubmitGatingAndScoring(t *testing.T) {
	svc, qs := newSessionService(t)
	sess, err := svc.CreateSession(0, nil, ModeSingle)
	require.NoError(t, err)

	// 未全部作答时提交被拒绝
	_, err = svc.Submit(sess.ID)
	require.ErrorIs(t, err, util.ErrUnansweredQuestions)

	// 题1、题3答对，题2答错
	require.NoError(t, svc.SelectAnswer(sess.ID, qs[0].ID, 1))
	require.NoError(t, svc.SelectAnswer(sess.ID, qs[1].ID, 0))
	require.NoError(t, svc.SelectAnswer(sess.ID, qs[2].ID, 1))

	result, err := svc.Submit(sess.ID)
	require.NoError(t, err)
	require.Equal(t, 2, result.Score)
	require.Equal(t, 3, result.TotalQuestions)
	require.False(t, result.CompletedAt.IsZero())

	// 结果按题目原始顺序排列
	require.Len(t, result.Answers, 3)
	require.Equal(t, qs[0].ID, result.Answers[0].QuestionID)
	require.Equal(t, qs[1].ID, result.Answers[1].QuestionID)
	require.Equal(t, qs[2].ID, result.Answers[2].QuestionID)
	require.True(t, result.Answers[0].IsCorrect)
	require.False(t, result.Answers[1].IsCorrect)
	require.True(t, result.Answers[2].IsCorrect)

	// 提交后会话只读
	err = svc.SelectAnswer(sess.ID, qs[0].ID, 0)
	require.ErrorIs(t, err, util.ErrAssignmentSubmitted)

	// 重复提交被拒绝，不重新计算
	_, err = svc.Submit(sess.ID)
	require.ErrorIs(t, err, util.ErrAssignmentSubmitted)

	got, err := svc.GetSession(sess.ID)
	require.NoError(t, err)
	require.Equal(t, StateSubmitted, got.State)
	require.Same(t, got.Result, result)
}

func TestGetSessionReturnsIsolatedCopy(t *testing.T) {
	svc, qs := newSessionService(t)
	sess, err := svc.CreateSession(0, nil, ModeSingle)
	require.NoError(t, err)

	require.NoError(t, svc.SelectAnswer(sess.ID, qs[0].ID, 1))
	before, err := svc.GetSession(sess.ID)
	require.NoError(t, err)
	require.Equal(t, 1, before.Answers[qs[0].ID])

	// 之后的改动不能影响已取出的副本
	require.NoError(t, svc.SelectAnswer(sess.ID, qs[0].ID, 0))
	require.NoError(t, svc.SelectAnswer(sess.ID, qs[1].ID, 1))
	require.Equal(t, 1, before.Answers[qs[0].ID])
	require.Len(t, before.Answers, 1)

	after, err := svc.GetSession(sess.ID)
	require.NoError(t, err)
	require.Equal(t, 0, after.Answers[qs[0].ID])
	require.Len(t, after.Answers, 2)
}

func TestScoringOrderIndependence(t *testing.T) {
	svc, qs := newSessionService(t)
	sess, err := svc.CreateSession(0, nil, ModeSingle)
	require.NoError(t, err)

	// 倒序作答，结果仍按题目原始顺序
	require.NoError(t, svc.SelectAnswer(sess.ID, qs[2].ID, 1))
	require.NoError(t, svc.SelectAnswer(sess.ID, qs[1].ID, 1))
	require.NoError(t, svc.SelectAnswer(sess.ID, qs[0].ID, 1))

	result, err := svc.Submit(sess.ID)
	require.NoError(t, err)
	require.Equal(t, 3, result.Score)
	for i, q := range qs {
		require.Equal(t, q.ID, result.Answers[i].QuestionID)
	}
}

func TestDiscardSession(t *testing.T) {
	svc, qs := newSessionService(t)
	sess, err := svc.CreateSession(0, nil, ModeStepped)
	require.NoError(t, err)

	require.NoError(t, svc.SelectAnswer(sess.ID, qs[0].ID, 1))
	require.NoError(t, svc.Discard(sess.ID))

	// 丢弃后任何迟到的操作都安全失败
	_, err = svc.GetSession(sess.ID)
	require.ErrorIs(t, err, util.ErrAssignmentNotFound)
	_, err = svc.Submit(sess.ID)
	require.ErrorIs(t, err, util.ErrAssignmentNotFound)
	err = svc.Discard(sess.ID)
	require.ErrorIs(t, err, util.ErrAssignmentNotFound)
}

func TestCreateSessionSubsetByIDs(t *testing.T) {
	repo := newTestRepo(t)
	qs := seedQuestions(t, repo)
	svc := NewAssignmentService(repo)

	sess, err := svc.CreateSession(0, []uint{qs[0].ID, qs[2].ID}, ModeSingle)
	require.NoError(t, err)
	require.Len(t, sess.Questions, 2)

	// 不属于会话的题目不能作答
	err = svc.SelectAnswer(sess.ID, qs[1].ID, 0)
	require.ErrorIs(t, err, util.ErrQuestionNotInSession)
}
