package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

const logFlags = log.Ldate | log.Ltime | log.Lshortfile

var (
	// 不同级别的日志记录器，SetupLogger 之前默认只输出到控制台
	InfoLogger    = log.New(os.Stdout, "INFO: ", logFlags)
	WarningLogger = log.New(os.Stdout, "WARNING: ", logFlags)
	ErrorLogger   = log.New(os.Stderr, "ERROR: ", logFlags)
)

// SetupLogger 初始化日志配置
func SetupLogger() error {
	return SetupLoggerWithDir("logs")
}

// SetupLoggerWithDir 在指定目录下按日期创建日志文件
func SetupLoggerWithDir(logDir string) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}

	logFileName := filepath.Join(logDir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %w", err)
	}

	// 同时输出到控制台和文件
	multiWriter := io.MultiWriter(os.Stdout, logFile)

	InfoLogger = log.New(multiWriter, "INFO: ", logFlags)
	WarningLogger = log.New(multiWriter, "WARNING: ", logFlags)
	ErrorLogger = log.New(multiWriter, "ERROR: ", logFlags)

	return nil
}

// Info 记录信息级别的日志
func Info(format string, v ...interface{}) {
	InfoLogger.Output(2, fmt.Sprintf(format, v...))
}

// Warning 记录警告级别的日志
func Warning(format string, v ...interface{}) {
	WarningLogger.Output(2, fmt.Sprintf(format, v...))
}

// Error 记录错误级别的日志
func Error(format string, v ...interface{}) {
	ErrorLogger.Output(2, fmt.Sprintf(format, v...))
}
