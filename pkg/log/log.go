// Package log 提供进程级 zerolog logger. 控制台输出彩色文本或 JSON，文件输出固定为 JSON 并由 lumberjack 轮转.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeisme/dataroom/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 按当前配置初始化全局 logger，只生效一次.
func Init() {
	initOnce.Do(setup)
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		fmt.Fprintf(os.Stderr, "invalid log level %q, using info\n", s)
		return zerolog.InfoLevel
	}

	return lvl
}

func outputs(cfg configs.LogConfig) io.Writer {
	var writers []io.Writer

	if cfg.Console {
		if cfg.JSON {
			writers = append(writers, os.Stderr)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
		}
	}

	if cfg.EnableFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  false,
		})
	}

	switch len(writers) {
	case 0:
		return io.Discard
	case 1:
		return writers[0]
	default:
		return zerolog.MultiLevelWriter(writers...)
	}
}

func setup() {
	cfg := configs.GetConfig()

	zerolog.SetGlobalLevel(parseLevel(cfg.Log.Level))
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lc := zerolog.New(outputs(cfg.Log)).With().
		Timestamp().
		Str("service", "dataroom").
		Str("version", configs.AppVersion)

	if cfg.Server.Debug {
		lc = lc.Caller()
	}

	logger = lc.Logger()
	log.Logger = logger
}

// Logger 返回全局 logger，未初始化时按当前配置初始化.
func Logger() *zerolog.Logger {
	Init()

	return &logger
}

// Named 返回带 component 字段的子 logger.
func Named(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}

// GinWriter 将 gin 自身输出的文本行（路由注册、panic 恢复）转为固定级别的日志.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (int, error) {
	if msg := strings.TrimSpace(string(p)); msg != "" {
		w.logger.WithLevel(w.level).Str("component", "gin").Msg(msg)
	}

	return len(p), nil
}
