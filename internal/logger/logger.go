// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/drivestream/drivestream/cfg"
	"gopkg.in/natefinch/lumberjack.v2"
)

const asyncLogBufferSize = 1024

var (
	defaultLoggerFactory *loggerFactory
	defaultLogger        *slog.Logger
	programLevel         = new(slog.LevelVar)
)

type loggerFactory struct {
	// If nil, log to stderr. Otherwise, log to this file.
	file            io.WriteCloser
	fileName        string
	format          string
	level           cfg.LogSeverity
	logRotateConfig cfg.LogRotateLoggingConfig
}

// init initializes the logger factory to use stderr.
func init() {
	defaultLoggerFactory = &loggerFactory{
		format:          "text",
		level:           cfg.InfoLogSeverity,
		logRotateConfig: DefaultLogRotateConfig(),
	}
	defaultLogger = defaultLoggerFactory.newLogger("")
	setLoggingLevel(defaultLoggerFactory.level, programLevel)
}

// DefaultLogRotateConfig is used until InitLogFile is called.
func DefaultLogRotateConfig() cfg.LogRotateLoggingConfig {
	return cfg.LogRotateLoggingConfig{
		MaxFileSizeMb:   512,
		BackupFileCount: 10,
		Compress:        true,
	}
}

func (f *loggerFactory) writer() io.Writer {
	if f.file != nil {
		return f.file
	}
	return os.Stderr
}

func (f *loggerFactory) newLogger(prefix string) *slog.Logger {
	return slog.New(f.createJsonOrTextHandler(f.writer(), programLevel, prefix))
}

// InitLogFile initializes the logger factory from the logging config. When a
// file path is set, logs go to that file and are rotated by size.
func InitLogFile(c cfg.LoggingConfig) error {
	factory := &loggerFactory{
		format:          c.Format,
		level:           c.Severity,
		logRotateConfig: c.LogRotate,
	}
	if c.FilePath != "" {
		factory.fileName = string(c.FilePath)
		// Fail early on unwritable paths; lumberjack opens lazily.
		f, err := os.OpenFile(factory.fileName, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file %q: %w", factory.fileName, err)
		}
		f.Close()
		factory.file = NewAsyncLogger(&lumberjack.Logger{
			Filename:   factory.fileName,
			MaxSize:    int(c.LogRotate.MaxFileSizeMb),
			MaxBackups: int(c.LogRotate.BackupFileCount),
			Compress:   c.LogRotate.Compress,
		}, asyncLogBufferSize)
	}

	Close()
	defaultLoggerFactory = factory
	defaultLogger = factory.newLogger("")
	setLoggingLevel(factory.level, programLevel)
	return nil
}

// SetLogFormat updates the log format of the default logger.
func SetLogFormat(format string) {
	defaultLoggerFactory.format = format
	defaultLogger = defaultLoggerFactory.newLogger("")
}

var closeMu sync.Mutex

// Close flushes and closes the log file when necessary.
func Close() {
	closeMu.Lock()
	defer closeMu.Unlock()
	if f := defaultLoggerFactory.file; f != nil {
		f.Close()
		defaultLoggerFactory.file = nil
	}
}

// NewLogger returns a logger sharing the configured output, format and
// severity, with every message prefixed by prefix. Components receive it by
// injection.
func NewLogger(prefix string) *slog.Logger {
	return defaultLoggerFactory.newLogger(prefix)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Tracef prints the message with TRACE severity in the specified format.
func Tracef(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelTrace, fmt.Sprintf(format, v...))
}

// Debugf prints the message with DEBUG severity in the specified format.
func Debugf(format string, v ...interface{}) {
	defaultLogger.Debug(fmt.Sprintf(format, v...))
}

// Infof prints the message with INFO severity in the specified format.
func Infof(format string, v ...interface{}) {
	defaultLogger.Info(fmt.Sprintf(format, v...))
}

// Info prints the message with info severity.
func Info(message string, args ...any) {
	defaultLogger.Info(message, args...)
}

// Warnf prints the message with WARNING severity in the specified format.
func Warnf(format string, v ...interface{}) {
	defaultLogger.Warn(fmt.Sprintf(format, v...))
}

// Errorf prints the message with ERROR severity in the specified format.
func Errorf(format string, v ...interface{}) {
	defaultLogger.Error(fmt.Sprintf(format, v...))
}

// Fatal prints an error log and exits with non-zero exit code.
func Fatal(format string, v ...interface{}) {
	Errorf(format, v...)
	Close()
	os.Exit(1)
}
