package handle

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/dataroom/pkg/configs"
	ctxPkg "github.com/yeisme/dataroom/pkg/context"
)

const probeTimeout = 2 * time.Second

// kvProbeKey 健康检查写入的探测键.
const kvProbeKey = "dr:health:probe"

var errNotInitialized = errors.New("client not initialized")

// probe 单个依赖的检查. required 的依赖不可用时整体不可用.
type probe struct {
	name     string
	required bool
	check    func(ctx context.Context) (gin.H, error)
}

// 元数据库与对象存储是文件接口的硬依赖，KV 与 MQ 故障时只影响缓存与事件.
var probes = []probe{
	{name: "db", required: true, check: checkDB},
	{name: "s3", required: true, check: checkS3},
	{name: "kv", check: checkKV},
	{name: "mq", check: checkMQ},
}

func checkDB(ctx context.Context) (gin.H, error) {
	dbc := ctxPkg.GetDBClient(ctx)
	if dbc == nil || dbc.DB == nil {
		return nil, errNotInitialized
	}

	return gin.H{"type": dbc.Type()}, dbc.HealthCheck(ctx)
}

func checkS3(ctx context.Context) (gin.H, error) {
	s3c := ctxPkg.GetS3Client(ctx)
	if s3c == nil || s3c.Store == nil {
		return nil, errNotInitialized
	}

	return gin.H{"driver": s3c.Driver(), "bucket": s3c.Bucket()}, s3c.HealthCheck(ctx)
}

// checkKV 写入并读回探测键.
func checkKV(ctx context.Context) (gin.H, error) {
	kvc := ctxPkg.GetKVClient(ctx)
	if kvc == nil {
		return nil, errNotInitialized
	}

	info := gin.H{"type": kvc.Type()}

	if err := kvc.Set(ctx, kvProbeKey, []byte("ok"), probeTimeout); err != nil {
		return info, err
	}

	_, err := kvc.Get(ctx, kvProbeKey)

	return info, err
}

func checkMQ(ctx context.Context) (gin.H, error) {
	mqc := ctxPkg.GetMQClient(ctx)
	if mqc == nil {
		return nil, errNotInitialized
	}

	return gin.H{"type": mqc.Type()}, mqc.HealthCheck(ctx)
}

// run 执行检查并返回组件状态.
func (p probe) run(ctx context.Context) (gin.H, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	info, err := p.check(ctx)
	if info == nil {
		info = gin.H{}
	}

	info["component"] = p.name

	if err != nil {
		info["status"] = "unhealthy"
		info["error"] = err.Error()

		return info, false
	}

	info["status"] = "ok"

	return info, true
}

func probeHandler(p probe) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := p.run(c.Request.Context())
		if !ok {
			c.JSON(http.StatusServiceUnavailable, info)
			return
		}

		c.JSON(http.StatusOK, info)
	}
}

// Health 并发检查所有依赖. 必需依赖全部可用时返回 200，否则 503.
//
//	@Summary	整体健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Failure	503	{object}	map[string]any
//	@Router		/api/v1/health [get]
func Health(c *gin.Context) {
	var (
		mu         sync.Mutex
		components = make(gin.H, len(probes))
		healthy    = true
	)

	g, ctx := errgroup.WithContext(c.Request.Context())

	for _, p := range probes {
		g.Go(func() error {
			info, ok := p.run(ctx)

			mu.Lock()
			defer mu.Unlock()

			components[p.name] = info
			if !ok && p.required {
				healthy = false
			}

			return nil
		})
	}

	_ = g.Wait()

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{"status": status, "version": configs.AppVersion, "components": components})
}

// HealthDB 数据库健康检查.
//
//	@Summary	数据库健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/health/db [get]
func HealthDB(c *gin.Context) { probeHandler(probes[0])(c) }

// HealthS3 对象存储健康检查.
//
//	@Summary	对象存储健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/health/s3 [get]
func HealthS3(c *gin.Context) { probeHandler(probes[1])(c) }

// HealthKV KV 存储健康检查，写入并读回探测键.
//
//	@Summary	KV 健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/health/kv [get]
func HealthKV(c *gin.Context) { probeHandler(probes[2])(c) }

// HealthMQ 消息队列健康检查.
//
//	@Summary	消息队列健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/health/mq [get]
func HealthMQ(c *gin.Context) { probeHandler(probes[3])(c) }
