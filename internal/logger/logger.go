package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init installs the global zap logger for the given environment. Production
// logs JSON at info level, everything else logs colored console output.
func Init(environment string) error {
	var conf zap.Config
	switch environment {
	case "production", "staging":
		conf = zap.NewProductionConfig()
		conf.EncoderConfig.TimeKey = "time"
		conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		conf = zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := conf.Build(zap.Fields(zap.String("env", environment)))
	if err != nil {
		return fmt.Errorf("conf.Build -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}
