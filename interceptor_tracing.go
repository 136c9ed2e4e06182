package fins

import "log"

// TracingInterceptor creates an interceptor that extracts and logs trace IDs from context
// The trace ID is extracted from the context using the provided key.
//
// Example:
//
//	client.SetInterceptor(fins.TracingInterceptor(traceIDKey{}))
//
//	// Use with context
//	ctx := context.WithValue(context.Background(), traceIDKey{}, "trace-12345")
//	client.ReadWords(ctx, "D100", 5)
//	// Output: [TRACE:trace-12345] ReadWords - D100
func TracingInterceptor(traceIDKey interface{}) Interceptor {
	return TracingInterceptorWithLogger(traceIDKey, nil)
}

// TracingInterceptorWithLogger creates a tracing interceptor with a custom logger
func TracingInterceptorWithLogger(traceIDKey interface{}, logger *log.Logger) Interceptor {
	if logger == nil {
		logger = log.Default()
	}

	return func(c *InterceptorCtx) (interface{}, error) {
		// Get trace ID from context
		traceID := c.Context().Value(traceIDKey)
		if traceID != nil {
			info := c.Info()
			logger.Printf("[TRACE:%v] %s - %s", traceID, info.Operation, info.Address)
		}

		return c.Invoke(nil)
	}
}
