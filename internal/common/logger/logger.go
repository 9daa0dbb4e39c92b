package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/AlibekovAA/user-service/internal/common/constants"
)

type Fields map[string]interface{}

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	CRITICAL
)

var levelNames = map[LogLevel]string{
	DEBUG:    "DEBUG",
	INFO:     "INFO",
	WARNING:  "WARNING",
	ERROR:    "ERROR",
	CRITICAL: "CRITICAL",
}

const timeLayout = "2006-01-02 15:04:05"

type Options struct {
	// Dir enables app.log and error.log rotation under this directory.
	// Empty keeps output on Output only.
	Dir     string
	Service string
	Level   string
	JSON    bool
	Output  io.Writer
}

type Logger struct {
	level       LogLevel
	serviceName string
	json        bool
	out         io.Writer
	errOut      io.Writer
	closers     []io.Closer
	exit        func(int)
	mu          sync.Mutex
}

func New(opts Options) (*Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	l := &Logger{
		level:       parseLevel(opts.Level),
		serviceName: opts.Service,
		json:        opts.JSON,
		out:         out,
		exit:        os.Exit,
	}

	if opts.Dir == "" {
		return l, nil
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	appFile := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "app.log"),
		MaxSize:    constants.LoggerMaxSize,
		MaxBackups: constants.LoggerMaxBackups,
		MaxAge:     constants.LoggerAppMaxAgeDays,
		Compress:   true,
	}
	errorFile := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "error.log"),
		MaxSize:    constants.LoggerMaxSize,
		MaxBackups: constants.LoggerMaxBackups,
		MaxAge:     constants.LoggerErrorMaxAgeDays,
		Compress:   true,
	}

	l.out = io.MultiWriter(out, appFile)
	l.errOut = errorFile
	l.closers = []io.Closer{appFile, errorFile}

	return l, nil
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.closers = nil
	return firstErr
}

func (l *Logger) ShouldLog(level LogLevel) bool {
	return level >= l.level
}

func (l *Logger) write(level LogLevel, ctx context.Context, msg string, fields Fields) {
	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	} else {
		file = filepath.Base(file)
	}

	traceID := traceIDFromContext(ctx)

	var entry string
	if l.json {
		entry = l.formatJSON(level, traceID, file, line, msg, fields)
	} else {
		entry = l.formatText(level, traceID, file, line, msg, fields)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = io.WriteString(l.out, entry)
	if level >= ERROR && l.errOut != nil {
		_, _ = io.WriteString(l.errOut, entry)
	}
}

func (l *Logger) formatText(level LogLevel, traceID, file string, line int, msg string, fields Fields) string {
	prefix := levelNames[level]
	if l.serviceName != "" {
		prefix = fmt.Sprintf("[%s] [%s]", prefix, l.serviceName)
	} else {
		prefix = fmt.Sprintf("[%s]", prefix)
	}

	var fieldParts []string
	if traceID != "" {
		fieldParts = append(fieldParts, fmt.Sprintf("trace_id=%s", traceID))
	}
	for _, k := range sortedKeys(fields) {
		fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	if len(fieldParts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(fieldParts, " "))
	}

	return fmt.Sprintf("%s %s %s:%d %s\n", time.Now().Format(timeLayout), prefix, file, line, msg)
}

func (l *Logger) formatJSON(level LogLevel, traceID, file string, line int, msg string, fields Fields) string {
	record := make(map[string]interface{}, len(fields)+6)
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		record[k] = v
	}
	record["timestamp"] = time.Now().Format(timeLayout)
	record["level"] = strings.ToLower(levelNames[level])
	record["message"] = msg
	record["caller"] = fmt.Sprintf("%s:%d", file, line)
	if l.serviceName != "" {
		record["service"] = l.serviceName
	}
	if traceID != "" {
		record["trace_id"] = traceID
	}

	b, err := json.Marshal(record)
	if err != nil {
		return fmt.Sprintf(`{"level":"error","message":"failed to encode log record: %v"}`+"\n", err)
	}
	return string(b) + "\n"
}

func (l *Logger) Debug(msg string)    { l.write(DEBUG, nil, msg, nil) }
func (l *Logger) Info(msg string)     { l.write(INFO, nil, msg, nil) }
func (l *Logger) Warn(msg string)     { l.write(WARNING, nil, msg, nil) }
func (l *Logger) Error(msg string)    { l.write(ERROR, nil, msg, nil) }
func (l *Logger) Critical(msg string) { l.write(CRITICAL, nil, msg, nil) }

func (l *Logger) Debugf(format string, args ...any) {
	l.write(DEBUG, nil, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Infof(format string, args ...any) {
	l.write(INFO, nil, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.write(WARNING, nil, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.write(ERROR, nil, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Criticalf(format string, args ...any) {
	l.write(CRITICAL, nil, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Fatal(msg string) {
	l.write(CRITICAL, nil, msg, nil)
	_ = l.Close()
	l.exit(1)
}

func (l *Logger) Fatalf(format string, args ...any) {
	l.write(CRITICAL, nil, fmt.Sprintf(format, args...), nil)
	_ = l.Close()
	l.exit(1)
}

func (l *Logger) WithFields(ctx context.Context, fields Fields) *Entry {
	return &Entry{
		logger: l,
		ctx:    ctx,
		fields: fields,
	}
}

type Entry struct {
	logger *Logger
	ctx    context.Context
	fields Fields
}

func (e *Entry) Debug(msg string)    { e.logger.write(DEBUG, e.ctx, msg, e.fields) }
func (e *Entry) Info(msg string)     { e.logger.write(INFO, e.ctx, msg, e.fields) }
func (e *Entry) Warn(msg string)     { e.logger.write(WARNING, e.ctx, msg, e.fields) }
func (e *Entry) Error(msg string)    { e.logger.write(ERROR, e.ctx, msg, e.fields) }
func (e *Entry) Critical(msg string) { e.logger.write(CRITICAL, e.ctx, msg, e.fields) }

func (e *Entry) Debugf(format string, args ...any) {
	e.logger.write(DEBUG, e.ctx, fmt.Sprintf(format, args...), e.fields)
}

func (e *Entry) Infof(format string, args ...any) {
	e.logger.write(INFO, e.ctx, fmt.Sprintf(format, args...), e.fields)
}

func (e *Entry) Warnf(format string, args ...any) {
	e.logger.write(WARNING, e.ctx, fmt.Sprintf(format, args...), e.fields)
}

func (e *Entry) Errorf(format string, args ...any) {
	e.logger.write(ERROR, e.ctx, fmt.Sprintf(format, args...), e.fields)
}

func (e *Entry) Criticalf(format string, args ...any) {
	e.logger.write(CRITICAL, e.ctx, fmt.Sprintf(format, args...), e.fields)
}

func traceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(constants.TraceIDKey).(string)
	return traceID
}

func sortedKeys(fields Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseLevel(value string) LogLevel {
	value = strings.TrimSpace(strings.ToUpper(value))
	switch value {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARNING", "WARN":
		return WARNING
	case "ERROR":
		return ERROR
	case "CRITICAL":
		return CRITICAL
	default:
		return INFO
	}
}
