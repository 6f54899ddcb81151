// Package logger 构建全局共享的gecho日志器
package logger

import (
	"strings"

	"github.com/MonkyMars/gecho"

	"github.com/xiebiao/tintayhojas/internal/infrastructure/config"
)

// New 创建日志器，启动时调用一次，之后通过依赖注入传递
func New(cfg config.LogConfig) *gecho.Logger {
	l := gecho.NewDefaultLogger()
	l.Info("日志器已初始化", gecho.Field("level", Level(cfg)))
	return l
}

// Level 规范化后的日志级别
func Level(cfg config.LogConfig) string {
	switch level := strings.ToLower(strings.TrimSpace(cfg.Level)); level {
	case "debug", "info", "warn", "error":
		return level
	default:
		return "info"
	}
}

// IsDebug 是否为debug级别（开启SQL日志等调试输出）
func IsDebug(cfg config.LogConfig) bool {
	return Level(cfg) == "debug"
}
