package controller

import (
	"strconv"
	"video_mcq_backend/internal/service"
	"video_mcq_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	MCQService *service.MCQService
}

func NewQuestionController(mcqService *service.MCQService) *QuestionController {
	return &QuestionController{MCQService: mcqService}
}

// ListQuestions godoc
// @Summary 获取持久化的题目列表
// @Description 按入库顺序返回题目，可按视频过滤
// @Tags 题目
// @Produce json
// @Param videoId query int false "按视频过滤"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	videoID, _ := strconv.ParseUint(ctx.DefaultQuery("videoId", "0"), 10, 32)

	qs, total, err := c.MCQService.Repo.ListQuestions(uint(videoID), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: qs, Total: total, Page: page, Limit: limit})
}

// ListVideoQuestions godoc
// @Summary 获取某个视频的全部题目
// @Tags 题目
// @Produce json
// @Param id path int true "视频ID"
// @Success 200 {object} util.Response
// @Router /videos/{id}/questions [get]
func (c *QuestionController) ListVideoQuestions(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid video id")
		return
	}

	qs, err := c.MCQService.Repo.ListAllQuestions(uint(id))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, qs)
}
