package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides component-scoped logging for webpilot.
// All components of one process write to the same session file in
// ~/.webpilot/logs/, rotated by size.
type Logger struct {
	sessionID string
	component string
	sugar     *zap.SugaredLogger
	logPath   string
	closeOnce sync.Once
}

// Options controls the shared log sink. Zero values select the defaults.
type Options struct {
	// Dir overrides the log directory (default ~/.webpilot/logs).
	Dir string
	// Level is a zap level name: debug, info, warn, error. Default debug.
	Level string
	// MaxSizeMB is the size at which the file is rotated. Default 10.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept. Default 5.
	MaxBackups int
}

var (
	// Global session ID for the current execution
	sessionID     string
	sessionIDOnce sync.Once

	// logDir is the directory where log files are stored
	logDir string

	// initOnce ensures directory initialization happens once
	initOnce sync.Once

	// initErr stores any error from directory initialization
	initErr error

	sinkMu     sync.Mutex
	sink       *lumberjack.Logger
	level      = zap.NewAtomicLevelAt(zap.DebugLevel)
	maxSizeMB  = 10
	maxBackups = 5
)

// Configure applies process-wide options. It must be called before the first
// NewLogger call to affect the log directory; the level can change at any time.
func Configure(opts Options) error {
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	sinkMu.Lock()
	defer sinkMu.Unlock()
	if opts.Dir != "" {
		logDir = opts.Dir
		initOnce = sync.Once{}
		initErr = nil
		sink = nil
	}
	if opts.MaxSizeMB > 0 {
		maxSizeMB = opts.MaxSizeMB
	}
	if opts.MaxBackups > 0 {
		maxBackups = opts.MaxBackups
	}
	return nil
}

// getSessionID returns or creates the session ID for this execution
func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// initLogDirectory ensures the log directory exists
func initLogDirectory() error {
	initOnce.Do(func() {
		if logDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				initErr = fmt.Errorf("failed to get home directory: %w", err)
				return
			}
			logDir = filepath.Join(homeDir, ".webpilot", "logs")
		}

		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
	})
	return initErr
}

// sessionSink returns the rotating writer shared by every component logger.
func sessionSink() (*lumberjack.Logger, error) {
	sinkMu.Lock()
	defer sinkMu.Unlock()

	if err := initLogDirectory(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = &lumberjack.Logger{
			Filename:   filepath.Join(logDir, fmt.Sprintf("%s-webpilot.log", getSessionID())),
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		}
	}
	return sink, nil
}

func encoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// NewLogger creates a new logger for a specific component.
// The logger writes to ~/.webpilot/logs/<session-id>-webpilot.log
//
// If the log directory cannot be created, it returns a fallback logger that
// writes to stderr along with the error. Callers can check the error to detect
// fallback mode and log warnings.
func NewLogger(component string) (*Logger, error) {
	w, err := sessionSink()
	if err != nil {
		return newFallbackLogger(component, err), err
	}

	core := zapcore.NewCore(encoder(), zapcore.AddSync(w), level)
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		sugar:     zap.New(core).Named(component).Sugar(),
		logPath:   w.Filename,
	}, nil
}

// newFallbackLogger creates a logger that writes to stderr when file logging fails
func newFallbackLogger(component string, err error) *Logger {
	core := zapcore.NewCore(encoder(), zapcore.Lock(os.Stderr), level)
	sugar := zap.New(core, zap.AddCaller()).Named(component).Sugar()
	sugar.Warnf("failed to initialize file logging: %v", err)
	sugar.Warn("falling back to stderr logging")

	return &Logger{
		sessionID: getSessionID(),
		component: component,
		sugar:     sugar,
	}
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() *Logger {
	return &Logger{sessionID: getSessionID(), component: "nop", sugar: zap.NewNop().Sugar()}
}

// Printf logs a formatted message at info level
func (l *Logger) Printf(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// With returns a child logger carrying the given key/value pairs on every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		sessionID: l.sessionID,
		component: l.component,
		sugar:     l.sugar.With(keysAndValues...),
		logPath:   l.logPath,
	}
}

// SessionID returns the current session ID
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the path to the log file
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close flushes buffered entries. Safe to call multiple times.
// The shared file stays open for other components; use Shutdown to release it.
func (l *Logger) Close() error {
	l.closeOnce.Do(func() {
		// Sync on stderr reports EINVAL on some platforms; it is not actionable.
		_ = l.sugar.Sync()
	})
	return nil
}

// Shutdown closes the shared log file.
func Shutdown() error {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if sink == nil {
		return nil
	}
	err := sink.Close()
	sink = nil
	return err
}

// GetSessionID returns the current global session ID
func GetSessionID() string {
	return getSessionID()
}

// GetLogDirectory returns the directory where logs are stored
func GetLogDirectory() (string, error) {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
