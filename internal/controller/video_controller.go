package controller

import (
	"errors"
	"net/http"
	"strconv"
	"video_mcq_backend/internal/model"
	"video_mcq_backend/internal/service"
	"video_mcq_backend/internal/util"
	"video_mcq_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VideoController struct {
	VideoService *service.VideoService
	MCQService   *service.MCQService
}

func NewVideoController(videoService *service.VideoService, mcqService *service.MCQService) *VideoController {
	return &VideoController{VideoService: videoService, MCQService: mcqService}
}

// ConvertVideoToMCQs godoc
// @Summary 上传视频并生成选择题
// @Description 接收multipart视频文件，转写后逐段生成选择题并持久化，返回扁平有序的题目全集。响应体为固定外部契约，不使用统一envelope。
// @Tags 视频
// @Accept multipart/form-data
// @Produce json
// @Param video formData file true "视频文件（mp4/webm/quicktime，≤100MiB）"
// @Param identifier formData string false "进度查询标识，缺省时服务端生成"
// @Success 200 {object} map[string]interface{} "message + mcqQuestions"
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /videos [post]
func (c *VideoController) ConvertVideoToMCQs(ctx *gin.Context) {
	file, err := ctx.FormFile("video")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": util.ErrNoVideoFile.Error()})
		return
	}

	// 校验失败是终态，用户可更正后重新上传，不自动重试
	if err := c.VideoService.Validate(file); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	identifier := ctx.PostForm("identifier")
	if identifier == "" {
		identifier = model.GenerateUUID()
	}
	c.MCQService.MarkReceived(ctx.Request.Context(), identifier)

	asset, questions, err := c.VideoService.ProcessUpload(ctx.Request.Context(), file, identifier)
	if err != nil {
		// 下游细节只进日志，对外折叠为通用失败
		logger.Log.Error("视频转MCQ流水线失败",
			zap.String("file", file.Filename),
			zap.String("identifier", identifier),
			zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to process video"})
		return
	}

	logger.Log.Info("视频处理完成",
		zap.Uint("videoId", asset.ID),
		zap.Int("questions", len(questions)))

	ctx.JSON(http.StatusOK, gin.H{
		"message":      "Video uploaded successfully",
		"mcqQuestions": questions,
	})
}

// GetProgress godoc
// @Summary 查询处理进度
// @Description 返回流水线的粗粒度合成进度，仅用于展示，不代表真实IO进度
// @Tags 视频
// @Produce json
// @Param identifier path string true "上传时的进度标识"
// @Success 200 {object} util.Response{data=model.ProcessingProgress}
// @Router /videos/progress/{identifier} [get]
func (c *VideoController) GetProgress(ctx *gin.Context) {
	identifier := ctx.Param("identifier")

	progress, err := c.MCQService.GetProgress(ctx.Request.Context(), identifier)
	if err == util.ErrProgressNotFound {
		util.NotFound(ctx)
		return
	} else if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// GetVideo godoc
// @Summary 获取视频资产详情
// @Tags 视频
// @Produce json
// @Param id path int true "视频ID"
// @Success 200 {object} util.Response{data=model.VideoAsset}
// @Router /videos/{id} [get]
func (c *VideoController) GetVideo(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid video id")
		return
	}

	asset, err := c.VideoService.GetVideo(uint(id))
	if errors.Is(err, util.ErrVideoNotFound) {
		util.NotFound(ctx)
		return
	} else if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, asset)
}

// ListVideos godoc
// @Summary 获取视频资产列表
// @Tags 视频
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /videos [get]
func (c *VideoController) ListVideos(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	videos, total, err := c.VideoService.ListVideos(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: videos, Total: total, Page: page, Limit: limit})
}
