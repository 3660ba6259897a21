package api

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/config"
)

var defaultLogger *logrus.Logger

// NewLoggerFromConfig 按日志配置构建 logrus 实例。
// 日志聚合依赖 service 字段区分来源, 通过 hook 附加到每条记录
func NewLoggerFromConfig(cfg *config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(newFormatter(cfg.Format))

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	writer, err := newLogWriter(cfg.Output)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(writer)

	logger.AddHook(serviceFieldHook{})
	defaultLogger = logger
	return logger, nil
}

func newFormatter(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		}
	}
	return &logrus.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FullTimestamp:   true,
	}
}

func newLogWriter(output string) (io.Writer, error) {
	var writers []io.Writer
	if output == "stdout" || output == "both" || output == "" {
		writers = append(writers, os.Stdout)
	}
	if output == "file" || output == "both" {
		if err := os.MkdirAll("logs", 0o755); err != nil {
			return nil, err
		}
		file, err := os.OpenFile(filepath.Join("logs", "eqms-server.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
	}
	if len(writers) == 0 {
		return os.Stdout, nil
	}
	return io.MultiWriter(writers...), nil
}

// serviceFieldHook 给每条日志附加 service 字段
type serviceFieldHook struct{}

func (serviceFieldHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (serviceFieldHook) Fire(entry *logrus.Entry) error {
	entry.Data["service"] = "eqms-server"
	return nil
}

// GetLogger 获取进程级日志记录器, 未初始化时回落到默认配置
func GetLogger() *logrus.Logger {
	if defaultLogger == nil {
		logger, _ := NewLoggerFromConfig(&config.LogConfig{Level: "info", Format: "json"})
		defaultLogger = logger
	}
	return defaultLogger
}
