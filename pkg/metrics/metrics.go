// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP、业务与运行时指标.
//
// Example:
//
//	import "github.com/yeisme/dataroom/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.RequestCounter.WithLabelValues("GET", "/files/my-files", "200").Inc()
//	metrics.FilesUploaded.Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/dataroom/pkg/configs"
)

const namespace = "dataroom"

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// RequestsInFlight 正在处理的请求数.
	RequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "HTTP requests currently being served",
	})

	// ResponseSize 响应体大小，下载与缩略图接口会落在高位桶.
	ResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response body size in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 8, 8),
		},
		[]string{"method", "endpoint"},
	)

	// AuthAttempts 注册与登录结果.
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Signup and login attempts by result",
		},
		[]string{"action", "result"},
	)

	// FilesUploaded 上传成功的文件数.
	FilesUploaded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_uploaded_total",
		Help:      "Number of files uploaded",
	})

	// UploadBytes 上传的字节总数.
	UploadBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_bytes_total",
		Help:      "Total bytes uploaded to the blob store",
	})

	// OrphansSwept 孤儿对象清理数.
	OrphansSwept = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphan_blobs_swept_total",
		Help:      "Blobs removed because no file row references them",
	})

	// EntityTotals 统计快照: users/folders/files.
	EntityTotals = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Row counts captured by the stats snapshot job",
		},
		[]string{"kind"},
	)

	// StoredBytes 所有文件大小之和.
	StoredBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stored_bytes",
		Help:      "Sum of file sizes captured by the stats snapshot job",
	})

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
	initOnce sync.Once
)

// InitMetrics 初始化Metrics，重复调用无副作用.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	initOnce.Do(func() {
		if config.RuntimeMetrics {
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		registry.MustRegister(
			RequestCounter, RequestDuration, RequestsInFlight, ResponseSize,
			AuthAttempts, FilesUploaded, UploadBytes, OrphansSwept,
			EntityTotals, StoredBytes,
		)
	})

	return nil
}

// StartMetricsServer 在引擎上挂载 Metrics 与 pprof 端点.
func StartMetricsServer(config configs.MetricsConfig, engine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	path := config.Path
	if path == "" {
		path = "/metrics"
	}

	engine.GET(path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// ObserveAuth 记录认证结果.
func ObserveAuth(action string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}

	AuthAttempts.WithLabelValues(action, result).Inc()
}
