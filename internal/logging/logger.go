// Package logging builds the service's zap loggers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the root logger. Development mode uses a colored console
// encoder with debug enabled; production emits sampled JSON. Both label
// timestamps "ts" in ISO 8601 so pipeline runs interleave cleanly with
// the browser's own output.
func New(development bool) (*zap.Logger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// ForStage returns a child logger named after one pipeline stage
// (scrape, enrich, api), so every line carries its origin.
func ForStage(logger *zap.Logger, stage string) *zap.Logger {
	return logger.Named(stage)
}
