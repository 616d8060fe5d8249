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
	"io"
	"log/slog"

	"github.com/drivestream/drivestream/cfg"
)

const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	// LevelOff is above every level a record is emitted at, so nothing is logged.
	LevelOff = slog.Level(12)
)

const (
	timeKey     = "timestamp"
	severityKey = "severity"
	messageKey  = "message"

	textTimeFormat = "01/02/2006 15:04:05.000000"
)

func setLoggingLevel(level cfg.LogSeverity, programLevel *slog.LevelVar) {
	switch level {
	case cfg.TraceLogSeverity:
		programLevel.Set(LevelTrace)
	case cfg.DebugLogSeverity:
		programLevel.Set(LevelDebug)
	case cfg.InfoLogSeverity:
		programLevel.Set(LevelInfo)
	case cfg.WarningLogSeverity:
		programLevel.Set(LevelWarn)
	case cfg.ErrorLogSeverity:
		programLevel.Set(LevelError)
	case cfg.OffLogSeverity:
		programLevel.Set(LevelOff)
	}
}

func severityName(level slog.Level) string {
	switch {
	case level < LevelDebug:
		return string(cfg.TraceLogSeverity)
	case level < LevelInfo:
		return string(cfg.DebugLogSeverity)
	case level < LevelWarn:
		return string(cfg.InfoLogSeverity)
	case level < LevelError:
		return string(cfg.WarningLogSeverity)
	default:
		return string(cfg.ErrorLogSeverity)
	}
}

// replaceAttr renames the built-in keys to severity/message, renders the time
// for the configured format and prepends prefix to every message.
func replaceAttr(format, prefix string) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) > 0 {
			return a
		}
		switch a.Key {
		case slog.TimeKey:
			t := a.Value.Time()
			if format == "text" {
				return slog.String("time", t.Format(textTimeFormat))
			}
			return slog.Group(timeKey,
				slog.Int64("seconds", t.Unix()),
				slog.Int64("nanos", int64(t.Nanosecond())))
		case slog.LevelKey:
			return slog.String(severityKey, severityName(a.Value.Any().(slog.Level)))
		case slog.MessageKey:
			return slog.String(messageKey, prefix+a.Value.String())
		}
		return a
	}
}

func (f *loggerFactory) createJsonOrTextHandler(writer io.Writer, levelVar *slog.LevelVar, prefix string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       levelVar,
		ReplaceAttr: replaceAttr(f.format, prefix),
	}
	if f.format == "text" {
		return slog.NewTextHandler(writer, opts)
	}
	return slog.NewJSONHandler(writer, opts)
}
