package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/configs"
)

// CORSMiddleware CORS中间件. 未配置来源时允许所有来源.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Authorization", "X-Requested-With", RequestIDHeader, defaultBypassHeader},
		ExposeHeaders: []string{"ETag", "X-Cache", "Retry-After", RequestIDHeader},
		MaxAge:        24 * time.Hour,
	}

	if len(cfg.CORSOrigins) == 0 || cfg.Debug {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = cfg.CORSOrigins
	}

	return cors.New(config)
}
