package app

import (
	"video_mcq_backend/docs"
	"video_mcq_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		// 视频上传与生成流水线
		api.POST("/videos", c.video.ConvertVideoToMCQs)
		api.GET("/videos", c.video.ListVideos)
		api.GET("/videos/progress/:identifier", c.video.GetProgress)
		api.GET("/videos/:id", c.video.GetVideo)
		api.GET("/videos/:id/questions", c.question.ListVideoQuestions)

		// 题库
		api.GET("/questions", c.question.ListQuestions)

		// 测验会话
		assignments := api.Group("/assignments")
		{
			assignments.POST("", c.assignment.CreateAssignment)
			assignments.GET("/:id", c.assignment.GetAssignment)
			assignments.DELETE("/:id", c.assignment.Discard)
			assignments.POST("/:id/answers", c.assignment.SelectAnswer)
			assignments.POST("/:id/advance", c.assignment.Advance)
			assignments.POST("/:id/retreat", c.assignment.Retreat)
			assignments.POST("/:id/submit", c.assignment.Submit)
		}
	}
}
