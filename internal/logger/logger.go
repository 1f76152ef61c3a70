// Package logger 结构化日志（slog JSON 输出，LOG_LEVEL 控制级别）
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	defaultLogger *slog.Logger
	initOnce      sync.Once
)

// Init 初始化全局日志，main 中尽早调用
func Init() {
	initOnce.Do(func() {
		defaultLogger = New(os.Stdout, os.Getenv("LOG_LEVEL"))
		slog.SetDefault(defaultLogger)
	})
}

// New 按级别创建 JSON 日志；debug 级别附带源码位置
func New(w io.Writer, level string) *slog.Logger {
	lv := parseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lv,
		AddSource: lv == slog.LevelDebug,
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default 全局日志
func Default() *slog.Logger {
	Init()
	return defaultLogger
}
