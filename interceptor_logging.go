package fins

import (
	"time"

	"go.uber.org/zap"
)

// LoggingInterceptor returns an interceptor that logs every operation
// through the given zap logger: one line when the operation starts and one
// when it finishes, with the elapsed time. A nil logger disables output.
//
// Example:
//
//	logger, _ := zap.NewProduction()
//	client.SetInterceptor(fins.LoggingInterceptor(logger))
//
// Output:
//
//	INFO	FINS	starting operation=ReadWords address=D100 count=5
//	INFO	FINS	completed operation=ReadWords duration_ms=5
func LoggingInterceptor(logger *zap.Logger) Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("FINS")

	return func(c *InterceptorCtx) (interface{}, error) {
		info := c.Info()
		opField := zap.String("operation", string(info.Operation))
		addrField := zap.String("address", info.Address)

		logger.Info("starting", opField, addrField, zap.Int("count", info.Count))

		start := time.Now()
		result, err := c.Invoke(nil)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("failed", opField, addrField,
				zap.Duration("duration", elapsed), zap.Error(err))
			return result, err
		}
		logger.Info("completed", opField, zap.Duration("duration", elapsed))
		return result, err
	}
}

// LoggingInterceptorVerbose also logs the payload handed to write
// operations. Useful while bringing up a new PLC; too noisy for production.
func LoggingInterceptorVerbose(logger *zap.Logger) Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("FINS")

	return func(c *InterceptorCtx) (interface{}, error) {
		info := c.Info()
		fields := []zap.Field{
			zap.String("operation", string(info.Operation)),
			zap.String("address", info.Address),
			zap.Int("count", info.Count),
		}
		if info.Operation.IsWrite() && info.Data != nil {
			fields = append(fields, zap.Any("data", info.Data))
		}
		logger.Info("starting", fields...)

		start := time.Now()
		result, err := c.Invoke(nil)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("failed", append(fields, zap.Duration("duration", elapsed), zap.Error(err))...)
			return result, err
		}
		logger.Info("completed", append(fields, zap.Duration("duration", elapsed))...)
		return result, err
	}
}
