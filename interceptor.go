package fins

import "context"

// OperationType identifies a client operation for interceptors and metrics.
type OperationType string

const (
	OpReadWords       OperationType = "ReadWords"
	OpReadBytes       OperationType = "ReadBytes"
	OpReadString      OperationType = "ReadString"
	OpReadBits        OperationType = "ReadBits"
	OpReadBCD16       OperationType = "ReadBCD16"
	OpReadSignedBCD16 OperationType = "ReadSignedBCD16"
	OpReadClock       OperationType = "ReadClock"
	OpCPUUnitStatus   OperationType = "CPUUnitStatus"
	OpCycleTime       OperationType = "CycleTime"

	OpWriteWords       OperationType = "WriteWords"
	OpWriteBytes       OperationType = "WriteBytes"
	OpWriteString      OperationType = "WriteString"
	OpWriteBits        OperationType = "WriteBits"
	OpWriteBCD16       OperationType = "WriteBCD16"
	OpWriteSignedBCD16 OperationType = "WriteSignedBCD16"
	OpSetBit           OperationType = "SetBit"
	OpResetBit         OperationType = "ResetBit"
	OpToggleBit        OperationType = "ToggleBit"
	OpFillArea         OperationType = "FillArea"
	OpWriteClock       OperationType = "WriteClock"
	OpNameSet          OperationType = "NameSet"
)

// IsWrite reports whether the operation changes PLC state.
func (op OperationType) IsWrite() bool {
	switch op {
	case OpWriteWords, OpWriteBytes, OpWriteString, OpWriteBits,
		OpWriteBCD16, OpWriteSignedBCD16,
		OpSetBit, OpResetBit, OpToggleBit, OpFillArea, OpWriteClock, OpNameSet:
		return true
	}
	return false
}

// InterceptorInfo describes the operation being performed.
type InterceptorInfo struct {
	Operation OperationType
	Address   string      // Textual memory address; empty for non-area commands
	Count     int         // Element count for transfers
	Mode      BCDMode     // Sign convention for BCD operations
	Data      interface{} // Payload for write operations
}

// Invoker executes the wrapped operation, optionally under a replacement
// context.
type Invoker func(ctx context.Context) (interface{}, error)

// InterceptorCtx carries one operation through an interceptor chain.
type InterceptorCtx struct {
	ctx     context.Context
	info    *InterceptorInfo
	invoker Invoker
}

// Context returns the context the operation was started with.
func (c *InterceptorCtx) Context() context.Context { return c.ctx }

// Info returns the operation description.
func (c *InterceptorCtx) Info() *InterceptorInfo { return c.info }

// Invoke runs the wrapped operation. A nil ctx reuses the current one.
func (c *InterceptorCtx) Invoke(ctx context.Context) (interface{}, error) {
	if ctx == nil {
		ctx = c.ctx
	}
	return c.invoker(ctx)
}

// Interceptor wraps client operations. An interceptor may log, time, retry,
// validate, rewrite the context or short-circuit the call; it decides when
// (and whether) to call Invoke.
type Interceptor func(c *InterceptorCtx) (interface{}, error)

// ChainInterceptors composes interceptors left to right: the first wraps the
// second, and so on.
func ChainInterceptors(interceptors ...Interceptor) Interceptor {
	switch len(interceptors) {
	case 0:
		return nil
	case 1:
		return interceptors[0]
	}
	rest := ChainInterceptors(interceptors[1:]...)
	first := interceptors[0]
	return func(c *InterceptorCtx) (interface{}, error) {
		return first(&InterceptorCtx{
			ctx:  c.ctx,
			info: c.info,
			invoker: func(ctx context.Context) (interface{}, error) {
				return rest(&InterceptorCtx{ctx: ctx, info: c.info, invoker: c.invoker})
			},
		})
	}
}

// intercept routes an operation through the installed interceptor, if any.
func (c *Client) intercept(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
	c.intMutex.RLock()
	interceptor := c.interceptor
	c.intMutex.RUnlock()
	if interceptor == nil {
		return invoker(ctx)
	}
	return interceptor(&InterceptorCtx{ctx: ctx, info: info, invoker: invoker})
}
