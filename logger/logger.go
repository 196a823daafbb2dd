package logger

import (
	"os"

	"go.uber.org/zap"
)

var log *zap.Logger

// Init builds the process logger. APP_ENV=development switches to the
// human readable console encoder.
func Init() error {
	var (
		l   *zap.Logger
		err error
	)
	if os.Getenv("APP_ENV") == "development" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	log = l
	return nil
}

// L returns the process logger, or a no-op logger before Init.
func L() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
