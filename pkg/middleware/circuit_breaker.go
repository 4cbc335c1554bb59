package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/yeisme/dataroom/pkg/configs"
	"github.com/yeisme/dataroom/pkg/log"
)

// errServerFailure 标记 5xx 响应，仅用于失败计数.
var errServerFailure = errors.New("server error response")

const defaultBreakerScope = "default"

func newBreaker(name string, cfg configs.CircuitBreakerConfig) *gobreaker.CircuitBreaker {
	logger := log.Named("breaker")

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Window,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRate
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("scope", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}

// CircuitBreakerMiddleware 基于 gobreaker 的熔断，5xx 计为失败. 每个 scope 前缀一个熔断器，其余请求共用默认熔断器.
func CircuitBreakerMiddleware(cfg configs.CircuitBreakerConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker, len(cfg.Scopes)+1)
	breakers[defaultBreakerScope] = newBreaker("dataroom-http", cfg)

	for _, scope := range cfg.Scopes {
		breakers[scope] = newBreaker("dataroom-http"+scope, cfg)
	}

	pick := func(path string) *gobreaker.CircuitBreaker {
		for _, scope := range cfg.Scopes {
			if strings.HasPrefix(path, scope) {
				return breakers[scope]
			}
		}

		return breakers[defaultBreakerScope]
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if hasAnyPrefix(path, cfg.SkipPaths) {
			c.Next()
			return
		}

		_, err := pick(path).Execute(func() (any, error) {
			c.Next()

			if c.Writer.Status() >= http.StatusInternalServerError {
				return nil, errServerFailure
			}

			return nil, nil
		})

		// 熔断打开或半开限流时处理器未执行.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Service temporarily unavailable",
				"message": "Too many recent failures, please retry later",
			})
		}
	}
}
