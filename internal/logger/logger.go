package logger

import "go.uber.org/zap"

// New builds the process logger. Production gets JSON output, everything
// else the console encoder.
func New(env string) (*zap.Logger, error) {
	var zapConfig zap.Config
	if env == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Enable caller to get function name
	zapConfig.EncoderConfig.FunctionKey = "func"

	logger, err := zapConfig.Build(zap.AddCaller())
	if err != nil {
		return nil, err
	}
	return logger, nil
}
