package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/handle"
)

// RegisterFolderRoutes 注册文件夹路由，均需认证.
func RegisterFolderRoutes(g *gin.RouterGroup, opts Options) {
	folders := g.Group("/folders", opts.authRequired())
	{
		folders.GET("", handle.ListFolders)
		folders.POST("", handle.CreateFolder)
		folders.GET("/root/contents", handle.RootContents)
		folders.GET("/:id/contents", handle.FolderContents)
		folders.PUT("/:id", handle.UpdateFolder)
		folders.DELETE("/:id", handle.DeleteFolder)
		folders.PATCH("/:id/move", handle.MoveFolder)
	}
}
