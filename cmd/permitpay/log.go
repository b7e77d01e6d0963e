package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// openLog logs info and above to the console and everything to a JSON file
// under dataDir/logs, one file per payment run. logs/latest points at the
// newest file.
func openLog(dataDir string) (*zap.Logger, error) {
	logsDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, errs.Wrap(err)
	}

	logName := "pay-" + time.Now().UTC().Format("20060102T150405.000Z") + ".json"
	logPath, err := filepath.Abs(filepath.Join(logsDir, logName))
	if err != nil {
		return nil, errs.Wrap(err)
	}

	consoleLog, err := openConsoleLog()
	if err != nil {
		return nil, err
	}

	fileEncoder := zap.NewProductionEncoderConfig()
	fileEncoder.EncodeTime = zapcore.ISO8601TimeEncoder
	fileEncoder.EncodeDuration = zapcore.StringDurationEncoder
	fileLog, err := (zap.Config{
		Level:         zap.NewAtomicLevelAt(zap.DebugLevel),
		Encoding:      "json",
		EncoderConfig: fileEncoder,
		OutputPaths:   []string{"file://" + logPath},
	}).Build()
	if err != nil {
		return nil, errs.Wrap(err)
	}

	if err := linkLatest(logsDir, logName); err != nil {
		return nil, err
	}
	return zap.New(zapcore.NewTee(consoleLog.Core(), fileLog.Core())), nil
}

// linkLatest swaps logs/latest over to name without a window where it is
// missing.
func linkLatest(logsDir, name string) error {
	tmp := filepath.Join(logsDir, ".latest")
	_ = os.Remove(tmp)
	if err := os.Symlink(name, tmp); err != nil {
		return errs.Wrap(err)
	}
	return errs.Wrap(os.Rename(tmp, filepath.Join(logsDir, "latest")))
}

// openConsoleLog logs info and above to stderr. PERMITPAY_DEBUG=1 lowers it
// to debug.
func openConsoleLog() (*zap.Logger, error) {
	level := zap.InfoLevel
	if os.Getenv("PERMITPAY_DEBUG") == "1" {
		level = zap.DebugLevel
	}

	encoder := zap.NewDevelopmentEncoderConfig()
	encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	log, err := (zap.Config{
		Level:         zap.NewAtomicLevelAt(level),
		Encoding:      "console",
		EncoderConfig: encoder,
		DisableCaller: true,
		OutputPaths:   []string{"stderr"},
	}).Build()
	return log, errs.Wrap(err)
}
