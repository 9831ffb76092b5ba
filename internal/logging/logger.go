package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured-logging interface used by the command entry
// point, so tests can substitute a no-op implementation. The hot-path
// packages take the concrete *zap.Logger instead (see Unwrap).
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, err error, fields ...zap.Field)
	Fatal(msg string, err error, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	Sync() error
}

// zapLogger implements Logger on top of zap.
type zapLogger struct {
	logger *zap.Logger
}

// Config controls how New builds the underlying zap core (§11.2's
// logging ambient stack): level, encoder, and output sink.
type Config struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Output      string `mapstructure:"output"`
	Development bool   `mapstructure:"development"`
}

// New creates a structured logger from Config.
func New(config Config) (Logger, error) {
	level, err := parseLogLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var encoderConfig zapcore.EncoderConfig
	if config.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(config.Format) {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case "console", "":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", config.Format)
	}

	var writeSyncer zapcore.WriteSyncer
	switch strings.ToLower(config.Output) {
	case "stdout", "":
		writeSyncer = zapcore.AddSync(os.Stdout)
	case "stderr":
		writeSyncer = zapcore.AddSync(os.Stderr)
	default:
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writeSyncer = zapcore.AddSync(file)
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)

	var options []zap.Option
	if config.Development {
		options = append(options, zap.Development(), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		options = append(options, zap.AddCaller())
	}

	return &zapLogger{logger: zap.New(core, options...)}, nil
}

// NewDefault creates a logger with sensible defaults for interactive runs.
func NewDefault() Logger {
	logger, err := New(Config{Level: "info", Format: "console", Output: "stdout", Development: true})
	if err != nil {
		zapLog, _ := zap.NewDevelopment()
		return &zapLogger{logger: zapLog}
	}
	return logger
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) {
	l.logger.Debug(msg, fields...)
}

func (l *zapLogger) Info(msg string, fields ...zap.Field) {
	l.logger.Info(msg, fields...)
}

func (l *zapLogger) Warn(msg string, fields ...zap.Field) {
	l.logger.Warn(msg, fields...)
}

func (l *zapLogger) Error(msg string, err error, fields ...zap.Field) {
	allFields := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		allFields = append(allFields, zap.Error(err))
	}
	allFields = append(allFields, fields...)
	l.logger.Error(msg, allFields...)
}

// Fatal logs at zap's fatal level (with a stack trace when the logger was
// built in development mode), then calls os.Exit(1); it never panics.
func (l *zapLogger) Fatal(msg string, err error, fields ...zap.Field) {
	allFields := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		allFields = append(allFields, zap.Error(err))
	}
	allFields = append(allFields, fields...)
	l.logger.Fatal(msg, allFields...)
}

func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{logger: l.logger.With(fields...)}
}

func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

// Unwrap returns the raw *zap.Logger backing l, for the hot-path packages
// (internal/graph, internal/wlrunner, internal/wlconfig) that take a
// *zap.Logger directly rather than this interface — per-node-execution
// logging builds its own zap.Field slices and doesn't need the Logger
// wrapper's Debug/Info/Warn/Error/Fatal dispatch on top. Returns a no-op
// logger if l isn't backed by zap (e.g. a test double).
func Unwrap(l Logger) *zap.Logger {
	if zl, ok := l.(*zapLogger); ok {
		return zl.logger
	}
	return zap.NewNop()
}

func parseLogLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "fatal":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level: %s", level)
	}
}

// Fields provides convenient zap.Field constructors shared across
// packages, so every callsite doesn't repeat zap's own verbose field
// constructors for the handful of shapes this engine logs over and over.
type fieldHelpers struct{}

// Fields is the package-level field-constructor namespace (Fields.String(...), Fields.Node(...), ...).
var Fields fieldHelpers

func (fieldHelpers) String(key, value string) zap.Field { return zap.String(key, value) }
func (fieldHelpers) Int(key string, value int) zap.Field { return zap.Int(key, value) }
func (fieldHelpers) Int64(key string, value int64) zap.Field { return zap.Int64(key, value) }
func (fieldHelpers) Float64(key string, value float64) zap.Field { return zap.Float64(key, value) }
func (fieldHelpers) Bool(key string, value bool) zap.Field { return zap.Bool(key, value) }
func (fieldHelpers) Error(err error) zap.Field { return zap.Error(err) }
func (fieldHelpers) Any(key string, value interface{}) zap.Field { return zap.Any(key, value) }

func (fieldHelpers) Duration(key string, value interface{}) zap.Field {
	switch v := value.(type) {
	case int64:
		return zap.Duration(key, time.Duration(v))
	case time.Duration:
		return zap.Duration(key, v)
	default:
		return zap.String(key, fmt.Sprintf("%v", value))
	}
}

// Workload creates fields describing which workload instance is logging
// (§3's Name/Threads, the top-level config identity a worker or node log
// line should be attributed to).
func (fieldHelpers) Workload(name string, threads int) []zap.Field {
	return []zap.Field{
		zap.String("workload", name),
		zap.Int("threads", threads),
	}
}

// Database creates fields for the database/collection a node is currently
// pointed at (§3's DBName/CollectionName).
func (fieldHelpers) Database(database, collection string) []zap.Field {
	return []zap.Field{
		zap.String("database", database),
		zap.String("collection", collection),
	}
}

// Node creates fields for a node's print-string log line (§4.3: "if node
// has a print string: log it"), identifying which node and which worker
// thread produced it.
func (fieldHelpers) Node(name string, threadID int) []zap.Field {
	return []zap.Field{
		zap.String("node", name),
		zap.Int("thread", threadID),
	}
}
