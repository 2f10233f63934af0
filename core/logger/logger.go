package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger. Debug mode logs everything to stdout in the
// development format; otherwise only warnings and errors are written.
func New(debug bool) (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if debug {
		z := zap.NewDevelopmentConfig()
		z.OutputPaths = []string{"stdout"}
		logger, err = z.Build()
	} else {
		z := zap.NewProductionConfig()
		z.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err = z.Build()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	zap.ReplaceGlobals(logger)
	return logger.Sugar(), nil
}

func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
