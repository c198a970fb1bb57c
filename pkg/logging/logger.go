/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package logging

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	rootMu sync.RWMutex
	root   = logr.Discard()
)

// SetLogger installs the process-wide root logger used by NewLogger.
func SetLogger(l logr.Logger) {
	rootMu.Lock()
	defer rootMu.Unlock()
	root = l
}

func rootLogger() logr.Logger {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root
}

// NewZapLogger builds a zap backed logr.Logger. level is one of debug, info, warn
// or error; anything else falls back to info.
func NewZapLogger(level string, development bool) (logr.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}

func zapLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		// logr V(1) maps to zap level -1
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger provides structured logging for SDK components
type Logger struct {
	logger    logr.Logger
	component string
	logLevel  string
}

// NewLogger creates a new logger for the specified component
func NewLogger(component string) *Logger {
	return &Logger{
		logger:    rootLogger().WithName(component),
		component: component,
		logLevel:  getLogLevel(),
	}
}

// FromContext creates a logger from the logr.Logger carried by ctx, falling back to
// the root logger.
func FromContext(ctx context.Context, component string) *Logger {
	l, err := logr.FromContext(ctx)
	if err != nil {
		l = rootLogger()
	}
	return &Logger{
		logger:    l.WithName(component),
		component: component,
		logLevel:  getLogLevel(),
	}
}

// IntoContext stores l in ctx for FromContext.
func IntoContext(ctx context.Context, l logr.Logger) context.Context {
	return logr.NewContext(ctx, l)
}

// Info logs an info message with structured key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	if l.shouldLog("info") {
		l.logger.Info(msg, keysAndValues...)
	}
}

// Error logs an error message with structured key-value pairs
func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(err, msg, keysAndValues...)
}

// Debug logs a debug message (only shown if debug logging is enabled)
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	if l.shouldLog("debug") {
		l.logger.V(1).Info(msg, keysAndValues...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	if l.shouldLog("warn") {
		l.logger.Info("WARNING: "+msg, keysAndValues...)
	}
}

// WithValues returns a new logger with additional key-value pairs
func (l *Logger) WithValues(keysAndValues ...interface{}) *Logger {
	return &Logger{
		logger:    l.logger.WithValues(keysAndValues...),
		component: l.component,
		logLevel:  l.logLevel,
	}
}

// WithName returns a new logger with an additional name segment
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		logger:    l.logger.WithName(name),
		component: l.component + "." + name,
		logLevel:  l.logLevel,
	}
}

// GetComponent returns the component name
func (l *Logger) GetComponent() string {
	return l.component
}

// Logr exposes the underlying logr.Logger.
func (l *Logger) Logr() logr.Logger {
	return l.logger
}

func getLogLevel() string {
	level := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if level == "" {
		return "info"
	}
	return level
}

// shouldLog determines if a message should be logged based on the current log level
func (l *Logger) shouldLog(messageLevel string) bool {
	// debug < info < warn < error
	levels := map[string]int{
		"debug": 0,
		"info":  1,
		"warn":  2,
		"error": 3,
	}

	currentLevel, exists := levels[l.logLevel]
	if !exists {
		currentLevel = levels["info"]
	}

	msgLevel, exists := levels[messageLevel]
	if !exists {
		msgLevel = levels["info"]
	}

	return msgLevel >= currentLevel
}

// Component loggers. They are built on demand so SetLogger takes effect for them.
func ClientLogger() *Logger {
	return NewLogger("client")
}

func ProviderLogger() *Logger {
	return NewLogger("provider")
}

func HTTPLogger() *Logger {
	return ClientLogger().WithName("http")
}

func WaitLogger() *Logger {
	return NewLogger("waiter")
}

func PipelineRunLogger() *Logger {
	return ProviderLogger().WithName("pipelinerun")
}

func DLCLogger() *Logger {
	return ProviderLogger().WithName("dlc")
}

func TrainingJobLogger() *Logger {
	return ProviderLogger().WithName("trainingjob")
}

func EASLogger() *Logger {
	return ProviderLogger().WithName("eas")
}

func DSWLogger() *Logger {
	return ProviderLogger().WithName("dsw")
}

func WorkspaceLogger() *Logger {
	return ProviderLogger().WithName("workspace")
}

func OSSLogger() *Logger {
	return NewLogger("oss")
}
