package utilities

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logMutex sync.RWMutex
	sugar    = zap.NewNop().Sugar()
)

// SetupLogging routes INFO to stdout + info.log, WARNING to stdout + warn.log and
// ERROR to stderr + error.log. Files rotate through lumberjack.
func SetupLogging(logDir string, debug bool) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	fileEnc := zapcore.NewJSONEncoder(encCfg)
	consoleEnc := zapcore.NewConsoleEncoder(encCfg)

	minLevel := zapcore.InfoLevel
	if debug {
		minLevel = zapcore.DebugLevel
	}
	infoOnly := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= minLevel && l < zapcore.WarnLevel })
	warnOnly := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l == zapcore.WarnLevel })
	errorUp := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel })

	core := zapcore.NewTee(
		zapcore.NewCore(fileEnc, rotating(filepath.Join(logDir, "info.log")), infoOnly),
		zapcore.NewCore(fileEnc, rotating(filepath.Join(logDir, "warn.log")), warnOnly),
		zapcore.NewCore(fileEnc, rotating(filepath.Join(logDir, "error.log")), errorUp),
		zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stdout), zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= minLevel && l < zapcore.ErrorLevel
		})),
		zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stderr), errorUp),
	)

	SetLogger(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))
	return nil
}

func rotating(path string) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	})
}

// SetLogger replaces the process logger. Tests use zaptest/observer loggers here.
func SetLogger(l *zap.Logger) {
	logMutex.Lock()
	defer logMutex.Unlock()
	sugar = l.Sugar()
}

// Logger returns the structured logger behind the printf helpers.
func Logger() *zap.Logger {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return sugar.Desugar()
}

// Sync flushes buffered log entries.
func Sync() {
	logMutex.RLock()
	defer logMutex.RUnlock()
	_ = sugar.Sync()
}

func current() *zap.SugaredLogger {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return sugar
}

func Debug(format string, v ...interface{}) {
	current().Debugf(format, v...)
}

func Info(format string, v ...interface{}) {
	current().Infof(format, v...)
}

func Warn(format string, v ...interface{}) {
	current().Warnf(format, v...)
}

func Error(format string, v ...interface{}) {
	current().Errorf(format, v...)
}
