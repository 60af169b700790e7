package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const DefaultMaxLogs = 10

// Logger writes through zap and remembers the last few lines so they can be dumped into a crash report.
type Logger struct {
	sugar    *zap.SugaredLogger
	mu       sync.Mutex
	logs     []string
	logIndex int
	maxLogs  int
	crashDir string
}

// NewZap builds the zap logger for the given level. "debug" uses the development config.
func NewZap(level string) (*zap.Logger, error) {
	if level == "debug" {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	return cfg.Build()
}

// NewLogger wraps base and records the last maxLogs lines.
func NewLogger(base *zap.Logger, maxLogs int, crashDir string) *Logger {
	if maxLogs <= 0 {
		maxLogs = DefaultMaxLogs
	}
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{
		sugar:    base.Sugar(),
		logs:     make([]string, maxLogs),
		maxLogs:  maxLogs,
		crashDir: crashDir,
	}
}

func (l *Logger) remember(level, message string, keysAndValues []interface{}) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	formattedMessage := fmt.Sprintf("[%s] [%s] %s", timestamp, level, message)
	if len(keysAndValues) > 0 {
		formattedMessage += fmt.Sprintf(" %v", keysAndValues)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs[l.logIndex] = formattedMessage
	l.logIndex = (l.logIndex + 1) % l.maxLogs
}

func (l *Logger) Info(message string) {
	l.Infow(message)
}

func (l *Logger) Debug(message string) {
	l.Debugw(message)
}

func (l *Logger) Warn(message string) {
	l.Warnw(message)
}

func (l *Logger) Error(message string) {
	l.Errorw(message)
}

func (l *Logger) Infow(message string, keysAndValues ...interface{}) {
	l.sugar.Infow(message, keysAndValues...)
	l.remember("INFO", message, keysAndValues)
}

func (l *Logger) Debugw(message string, keysAndValues ...interface{}) {
	l.sugar.Debugw(message, keysAndValues...)
	l.remember("DEBUG", message, keysAndValues)
}

func (l *Logger) Warnw(message string, keysAndValues ...interface{}) {
	l.sugar.Warnw(message, keysAndValues...)
	l.remember("WARN", message, keysAndValues)
}

func (l *Logger) Errorw(message string, keysAndValues ...interface{}) {
	l.sugar.Errorw(message, keysAndValues...)
	l.remember("ERROR", message, keysAndValues)
}

// Sync flushes the underlying zap logger.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// RecoverAndLogPanic is meant to be deferred. It writes a crash file and re-panics.
func (l *Logger) RecoverAndLogPanic() {
	if r := recover(); r != nil {
		l.sugar.Errorw("panic", "recovered", r)
		if _, err := l.WriteCrashFile(r); err != nil {
			l.sugar.Errorw("could not write crash file", "error", err)
		}
		panic(r)
	}
}

// WriteCrashFile dumps the recent lines into a timestamped file under the crash directory
// and returns the path written.
func (l *Logger) WriteCrashFile(r any) (string, error) {
	recentLogs := l.GetRecentLogs()

	if err := os.MkdirAll(l.crashDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	crashFile := filepath.Join(l.crashDir, fmt.Sprintf("crash-%s.log", timestamp))
	file, err := os.Create(crashFile)
	if err != nil {
		return "", fmt.Errorf("failed to create crash file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "==== Crash Report ====\n")
	fmt.Fprintf(file, "Time: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Panic: %v\n\n", r)
	fmt.Fprintf(file, "==== Last %d Logs ====\n", l.maxLogs)
	for _, log := range recentLogs {
		fmt.Fprintln(file, log)
	}

	return crashFile, nil
}

// GetRecentLogs returns the remembered lines, oldest first.
func (l *Logger) GetRecentLogs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var recentLogs []string
	for i := 0; i < l.maxLogs; i++ {
		index := (l.logIndex + i) % l.maxLogs
		if l.logs[index] != "" {
			recentLogs = append(recentLogs, l.logs[index])
		}
	}
	return recentLogs
}
