package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the terminal's zap logger. Mode "prod" emits JSON, anything
// else the development console encoder. An unknown level falls back to info.
func New(level, mode string) (*zap.Logger, error) {
	var cfg zap.Config
	if mode == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stdout"}

	return cfg.Build()
}
