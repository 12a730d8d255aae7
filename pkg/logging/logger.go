// pkg/logging/logger.go
package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/logging"
)

// LogName – имя лога в Cloud Logging.
const LogName = "musicfinder"

// Logger пишет записи в Google Cloud Logging, если задан проект,
// иначе в stdout в формате JSON через slog.
type Logger struct {
	client *logging.Client
	cloud  *logging.Logger
	out    *slog.Logger
	level  slog.Level
}

// New создаёт логгер. Пустой projectID означает локальный режим без Cloud Logging.
func New(ctx context.Context, projectID, level string) (*Logger, error) {
	lvl := ParseLevel(level)
	if projectID == "" {
		return NewWriter(os.Stdout, lvl), nil
	}
	client, err := logging.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create cloud logging client: %w", err)
	}
	return &Logger{
		client: client,
		cloud:  client.Logger(LogName),
		level:  lvl,
	}, nil
}

// NewWriter создаёт локальный логгер, пишущий JSON в w.
func NewWriter(w io.Writer, level slog.Level) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{out: slog.New(h), level: level}
}

// Discard возвращает логгер, который ничего не пишет. Удобен в тестах.
func Discard() *Logger {
	return NewWriter(io.Discard, slog.LevelError+4)
}

// ParseLevel переводит строку из конфигурации в уровень slog. По умолчанию info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(slog.LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(slog.LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(slog.LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(slog.LevelError, format, args...) }

func (l *Logger) logf(lvl slog.Level, format string, args ...any) {
	if l == nil || lvl < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.cloud != nil {
		l.cloud.Log(logging.Entry{Severity: severity(lvl), Payload: msg})
		return
	}
	l.out.Log(context.Background(), lvl, msg)
}

// Std возвращает стандартный *log.Logger поверх этого логгера
// (нужен, например, для tgbotapi.SetLogger).
func (l *Logger) Std() *log.Logger {
	if l.cloud != nil {
		return l.cloud.StandardLogger(logging.Info)
	}
	return slog.NewLogLogger(l.out.Handler(), slog.LevelInfo)
}

// Close сбрасывает буфер Cloud Logging и закрывает клиента.
func (l *Logger) Close() error {
	if l == nil || l.client == nil {
		return nil
	}
	if err := l.cloud.Flush(); err != nil {
		return fmt.Errorf("flush cloud logger: %w", err)
	}
	return l.client.Close()
}

func severity(lvl slog.Level) logging.Severity {
	switch {
	case lvl >= slog.LevelError:
		return logging.Error
	case lvl >= slog.LevelWarn:
		return logging.Warning
	case lvl >= slog.LevelInfo:
		return logging.Info
	default:
		return logging.Debug
	}
}
