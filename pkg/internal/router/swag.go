package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/yeisme/dataroom/docs"
	"github.com/yeisme/dataroom/pkg/configs"
)

// RegisterSwaggerRoute 在调试模式或 server.swagger 开启时提供 /swagger 文档.
func RegisterSwaggerRoute(r *gin.Engine) {
	server := configs.GetConfig().Server
	if !server.SwaggerEnabled() {
		return
	}

	docs.SwaggerInfo.Host = server.PublicHost()
	docs.SwaggerInfo.Version = configs.AppVersion

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.PersistAuthorization(true),
		ginSwagger.DocExpansion("none"),
	))
}
