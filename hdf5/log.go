package hdf5

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var pkgLogger atomic.Pointer[zap.Logger]

func init() {
	pkgLogger.Store(NewLogger(zapcore.WarnLevel))
}

// NewLogger returns a console logger on stderr at the given level.
func NewLogger(level zapcore.Level) *zap.Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Named("hdf5")
}

// Logger returns the package logger.
func Logger() *zap.Logger {
	return pkgLogger.Load()
}

// SetLogger replaces the package logger. Tables created afterwards use it
// unless given WithLogger. A nil logger silences logging.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	pkgLogger.Store(l)
}
