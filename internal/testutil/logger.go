package testutil

import (
	"io"

	"github.com/dtroode/vision-analyzer/internal/logger"
)

func MakeNoopLogger() *logger.Logger {
	return logger.NewWithFormat(io.Discard, 0, "text")
}
