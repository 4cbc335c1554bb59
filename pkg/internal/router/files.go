package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/handle"
)

// RegisterFilesRoutes 注册文件路由. 公开文件重定向无需认证.
func RegisterFilesRoutes(g *gin.RouterGroup, opts Options) {
	files := g.Group("/files")
	files.GET("/public/:id", handle.PublicFile)

	authed := files.Group("", opts.authRequired())
	{
		authed.POST("/upload", handle.UploadFile)
		authed.GET("/my-files", handle.MyFiles)

		single := authed.Group("/file/:id")
		{
			single.GET("", handle.GetFile)
			single.PUT("", handle.UpdateFile)
			single.DELETE("", handle.DeleteFile)
		}

		authed.PATCH("/:id/move", handle.MoveFile)
	}
}
