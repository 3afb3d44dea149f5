package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type key int

const loggerKey key = iota

func NewContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok && l != nil {
		return l
	}

	return NewNoOpLogger()
}

// LogLevel values match zapcore.Level.
type LogLevel int8

const (
	DebugLevel LogLevel = iota - 1
	InfoLevel
	WarnLevel
	ErrorLevel
	DPanicLevel
	PanicLevel
	FatalLevel
)

const (
	defaultBufferSize    = 4096
	defaultFlushInterval = 100 * time.Millisecond
)

type Config struct {
	Level        LogLevel
	IsProduction bool
}

type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	DPanic(msg string, fields ...interface{})
	Panic(msg string, fields ...interface{})
	Fatal(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
	Close()
}

type asyncLogger struct {
	sugar *zap.SugaredLogger
	sink  *zapcore.BufferedWriteSyncer
	stop  *stopper
}

// stopper is shared by a logger and everything derived from it with With.
// closed is closed by Close; stopped is closed once the sink watcher returns.
type stopper struct {
	once    sync.Once
	closed  chan struct{}
	stopped chan struct{}
}

func (s *stopper) close() {
	s.once.Do(func() { close(s.closed) })
}

type options struct {
	out           io.Writer
	bufferSize    int
	flushInterval time.Duration
}

type Option func(*options)

func WithBufferSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.bufferSize = size
		}
	}
}

func WithFlushInterval(interval time.Duration) Option {
	return func(o *options) {
		if interval > 0 {
			o.flushInterval = interval
		}
	}
}

func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

// NewAsyncLogger buffers entries and flushes them every flush interval or when
// the buffer fills. The buffer is flushed and released when ctx is done or on
// Close, whichever comes first.
func NewAsyncLogger(ctx context.Context, cfg Config, opts ...Option) Logger {
	o := &options{
		out:           os.Stdout,
		bufferSize:    defaultBufferSize,
		flushInterval: defaultFlushInterval,
	}
	for _, opt := range opts {
		opt(o)
	}

	sink := &zapcore.BufferedWriteSyncer{
		WS:            zapcore.AddSync(o.out),
		Size:          o.bufferSize,
		FlushInterval: o.flushInterval,
	}

	var (
		encoder zapcore.Encoder
		zapOpts []zap.Option
	)
	if cfg.IsProduction {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
		zapOpts = append(zapOpts, zap.Development())
	}

	core := zapcore.NewCore(encoder, sink, zapcore.Level(cfg.Level))
	l := &asyncLogger{
		sugar: zap.New(core, zapOpts...).Sugar(),
		sink:  sink,
		stop: &stopper{
			closed:  make(chan struct{}),
			stopped: make(chan struct{}),
		},
	}

	go func() {
		defer close(l.stop.stopped)
		select {
		case <-ctx.Done():
		case <-l.stop.closed:
		}
		_ = sink.Stop()
	}()

	return l
}

func (l *asyncLogger) Debug(msg string, fields ...interface{}) {
	l.sugar.Debugw(msg, fields...)
}

func (l *asyncLogger) Info(msg string, fields ...interface{}) {
	l.sugar.Infow(msg, fields...)
}

func (l *asyncLogger) Warn(msg string, fields ...interface{}) {
	l.sugar.Warnw(msg, fields...)
}

func (l *asyncLogger) Error(msg string, fields ...interface{}) {
	l.sugar.Errorw(msg, fields...)
}

// DPanic panics after logging unless the logger is in production mode.
func (l *asyncLogger) DPanic(msg string, fields ...interface{}) {
	l.sugar.DPanicw(msg, fields...)
}

func (l *asyncLogger) Panic(msg string, fields ...interface{}) {
	l.sugar.Panicw(msg, fields...)
}

func (l *asyncLogger) Fatal(msg string, fields ...interface{}) {
	l.sugar.Fatalw(msg, fields...)
}

func (l *asyncLogger) With(fields ...interface{}) Logger {
	return &asyncLogger{
		sugar: l.sugar.With(fields...),
		sink:  l.sink,
		stop:  l.stop,
	}
}

func (l *asyncLogger) Close() {
	_ = l.sugar.Sync()
	_ = l.sink.Stop()
	l.stop.close()
}

func ParseLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "dpanic":
		return DPanicLevel
	case "panic":
		return PanicLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

type noOpLogger struct{}

func (n *noOpLogger) Debug(msg string, fields ...interface{})  {}
func (n *noOpLogger) Info(msg string, fields ...interface{})   {}
func (n *noOpLogger) Warn(msg string, fields ...interface{})   {}
func (n *noOpLogger) Error(msg string, fields ...interface{})  {}
func (n *noOpLogger) DPanic(msg string, fields ...interface{}) {}
func (n *noOpLogger) Panic(msg string, fields ...interface{})  {}
func (n *noOpLogger) Fatal(msg string, fields ...interface{})  {}

func (n *noOpLogger) With(fields ...interface{}) Logger {
	return n
}
func (n *noOpLogger) Close() {}

func NewNoOpLogger() Logger {
	return &noOpLogger{}
}
