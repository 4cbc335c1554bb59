package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/handle"
)

// RegisterHealthCheckRoute 注册健康检查. 不经过认证，供负载均衡与编排探针使用.
func RegisterHealthCheckRoute(g *gin.RouterGroup) {
	health := g.Group("/health")
	health.GET("", handle.Health)

	for path, h := range map[string]gin.HandlerFunc{
		"/db": handle.HealthDB,
		"/s3": handle.HealthS3,
		"/kv": handle.HealthKV,
		"/mq": handle.HealthMQ,
	} {
		health.GET(path, h)
	}
}
