// Package api 汇总对外暴露的 HTTP 接口.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/router"
)

// Options 注册路由所需的依赖.
type Options = router.Options

// RegisterRoutes 将全部路由注册到传入的 gin 引擎.
func RegisterRoutes(e *gin.Engine, opts Options) *gin.Engine {
	router.Register(e, opts)

	return e
}
