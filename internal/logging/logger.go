package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the process logger: JSON to a rotated file plus a
// console core for the daemon's own stderr.
func NewLogger(logDir string) (*zap.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, "pulseguard.log"),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"

	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(enc), w, zap.InfoLevel)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stderr),
		zap.InfoLevel,
	)
	return zap.New(zapcore.NewTee(fileCore, consoleCore)), nil
}
