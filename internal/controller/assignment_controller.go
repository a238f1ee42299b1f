package controller

import (
	"errors"
	"video_mcq_backend/internal/model"
	"video_mcq_backend/internal/service"
	"video_mcq_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct {
	Service *service.AssignmentService
}

func NewAssignmentController(svc *service.AssignmentService) *AssignmentController {
	return &AssignmentController{Service: svc}
}

type CreateAssignmentReq struct {
	VideoID     uint                   `json:"videoId"`
	QuestionIDs []uint                 `json:"questionIds"`
	Mode        service.AssignmentMode `json:"mode"`
}

type SelectAnswerReq struct {
	QuestionID     uint `json:"questionId" binding:"required"`
	SelectedOption *int `json:"selectedOption" binding:"required"`
}

// StudentQuestion 答题中的学生视图：不暴露正确答案和解析
type StudentQuestion struct {
	ID           uint              `json:"id"`
	SegmentIndex int               `json:"segmentIndex"`
	Question     string            `json:"question"`
	Options      model.StringArray `json:"options"`
}

type AssignmentView struct {
	ID             string                    `json:"id"`
	Mode           service.AssignmentMode    `json:"mode"`
	State          service.AssignmentState   `json:"state"`
	CurrentIndex   int                       `json:"currentIndex"`
	TotalQuestions int                       `json:"totalQuestions"`
	Questions      []StudentQuestion         `json:"questions"`
	Answers        map[uint]int              `json:"answers"`
	Result         *service.AssignmentResult `json:"result,omitempty"`
}

// buildView 把会话快照映射为对外视图；服务层返回的快照是调用方私有的，
// 其 Answers 可以直接引用
func buildView(sess *service.AssignmentSession) AssignmentView {
	qs := make([]StudentQuestion, 0, len(sess.Questions))
	for _, q := range sess.Questions {
		qs = append(qs, StudentQuestion{
			ID:           q.ID,
			SegmentIndex: q.SegmentIndex,
			Question:     q.Question,
			Options:      q.Options,
		})
	}
	return AssignmentView{
		ID:             sess.ID,
		Mode:           sess.Mode,
		State:          sess.State,
		CurrentIndex:   sess.CurrentIndex,
		TotalQuestions: len(sess.Questions),
		Questions:      qs,
		Answers:        sess.Answers,
		Result:         sess.Result,
	}
}

// 会话操作的错误统一映射到HTTP状态码
func (c *AssignmentController) mapError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAssignmentNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrAssignmentSubmitted):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrQuestionNotInSession),
		errors.Is(err, util.ErrUnansweredQuestions),
		errors.Is(err, util.ErrAnswerRequired),
		errors.Is(err, util.ErrNotSteppedMode),
		errors.Is(err, util.ErrInvalidOption),
		errors.Is(err, util.ErrEmptyQuestionSet):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// CreateAssignment godoc
// @Summary 创建测验会话
// @Description 从持久化题库选题建立会话；videoId 和 questionIds 都为空时取全部题目
// @Tags 测验
// @Accept json
// @Produce json
// @Param body body CreateAssignmentReq true "选题与模式"
// @Success 201 {object} util.Response{data=AssignmentView}
// @Router /assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	var req CreateAssignmentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sess, err := c.Service.CreateSession(req.VideoID, req.QuestionIDs, req.Mode)
	if err != nil {
		c.mapError(ctx, err)
		return
	}

	util.Created(ctx, buildView(sess))
}

// GetAssignment godoc
// @Summary 获取会话状态
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=AssignmentView}
// @Router /assignments/{id} [get]
func (c *AssignmentController) GetAssignment(ctx *gin.Context) {
	sess, err := c.Service.GetSession(ctx.Param("id"))
	if err != nil {
		c.mapError(ctx, err)
		return
	}

	util.Success(ctx, buildView(sess))
}

// SelectAnswer godoc
// @Summary 记录某题的选择
// @Tags 测验
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param body body SelectAnswerReq true "题目与选项下标"
// @Success 200 {object} util.Response
// @Router /assignments/{id}/answers [post]
func (c *AssignmentController) SelectAnswer(ctx *gin.Context) {
	var req SelectAnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.SelectAnswer(ctx.Param("id"), req.QuestionID, *req.SelectedOption); err != nil {
		c.mapError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// Advance godoc
// @Summary 游标前进（逐题模式）
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /assignments/{id}/advance [post]
func (c *AssignmentController) Advance(ctx *gin.Context) {
	index, err := c.Service.Advance(ctx.Param("id"))
	if err != nil {
		c.mapError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"currentIndex": index})
}

// Retreat godoc
// @Summary 游标后退（逐题模式）
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /assignments/{id}/retreat [post]
func (c *AssignmentController) Retreat(ctx *gin.Context) {
	index, err := c.Service.Retreat(ctx.Param("id"))
	if err != nil {
		c.mapError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"currentIndex": index})
}

// Submit godoc
// @Summary 提交并判分
// @Description 要求所有题目均已作答；只能提交一次，重复提交返回409
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.AssignmentResult}
// @Router /assignments/{id}/submit [post]
func (c *AssignmentController) Submit(ctx *gin.Context) {
	result, err := c.Service.Submit(ctx.Param("id"))
	if err != nil {
		c.mapError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// Discard godoc
// @Summary 丢弃会话（返回上传页）
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /assignments/{id} [delete]
func (c *AssignmentController) Discard(ctx *gin.Context) {
	if err := c.Service.Discard(ctx.Param("id")); err != nil {
		c.mapError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
