package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Init installs the global zap logger. Development gets the console encoder,
// every other environment the JSON production encoder.
func Init(env string) error {
	var (
		l   *zap.Logger
		err error
	)
	switch env {
	case "development", "test":
		l, err = zap.NewDevelopment()
	default:
		l, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("zap.New(%s) -> %w", env, err)
	}
	zap.ReplaceGlobals(l)
	return nil
}
