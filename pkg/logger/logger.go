// Package logger 提供全域的結構化日誌，基於 zerolog
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var globalLogger zerolog.Logger

// Config 日誌設定
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// Init 初始化全域 logger
func Init(cfg Config) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Format == "console" {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "2006-01-02 15:04:05.000",
		}
		globalLogger = zerolog.New(consoleWriter).With().Timestamp().Logger()
	} else {
		globalLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug 回傳 debug 等級的日誌事件
func Debug() *zerolog.Event {
	return globalLogger.Debug()
}

// Info 回傳 info 等級的日誌事件
func Info() *zerolog.Event {
	return globalLogger.Info()
}

// Warn 回傳 warn 等級的日誌事件
func Warn() *zerolog.Event {
	return globalLogger.Warn()
}

// Error 回傳 error 等級的日誌事件
func Error() *zerolog.Event {
	return globalLogger.Error()
}

// Fatal 回傳 fatal 等級的日誌事件，記錄後結束程式
func Fatal() *zerolog.Event {
	return globalLogger.Fatal()
}
