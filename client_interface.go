package fins

import (
	"context"
	"encoding/binary"
	"time"
)

// Configuration operations.
type ClientConfig interface {
	SetByteOrder(o binary.ByteOrder)
	SetTimeoutMs(t uint)
	SetReadTimeout(t time.Duration)
}

// Auto-reconnect controls.
type AutoReconnect interface {
	EnableAutoReconnect(maxRetries int, initialDelay time.Duration)
	DisableAutoReconnect()
	IsReconnecting() bool
}

// Interceptor/plugin hooks.
type ClientHooks interface {
	SetInterceptor(interceptor Interceptor)
	Use(plugins ...Plugin) error
}

// Lifecycle controls.
type ClientLifecycle interface {
	IsClosed() bool
	Close() error
	Shutdown() error
}

// Read operations. Addresses are textual, e.g. "D100" or "CIO20.5".
type ClientReader interface {
	ReadWords(ctx context.Context, address string, readCount int) ([]uint16, error)
	ReadBytes(ctx context.Context, address string, readCount int) ([]byte, error)
	ReadString(ctx context.Context, address string, readCount int) (string, error)
	ReadBits(ctx context.Context, address string, readCount int) ([]bool, error)
	ReadBCD16(ctx context.Context, address string, readCount int) ([]int16, error)
	ReadSignedBCD16(ctx context.Context, address string, readCount int, mode BCDMode) ([]int16, error)
	ReadClock(ctx context.Context) (*time.Time, error)
	CPUUnitStatus(ctx context.Context) (*CPUStatus, error)
	CycleTime(ctx context.Context) (*CycleTimes, error)
}

// Write operations.
type ClientWriter interface {
	WriteWords(ctx context.Context, address string, data []uint16) error
	WriteBytes(ctx context.Context, address string, data []byte) error
	WriteString(ctx context.Context, address string, n int, s string) error
	WriteBits(ctx context.Context, address string, data []bool) error
	WriteBCD16(ctx context.Context, address string, data []int16) error
	WriteSignedBCD16(ctx context.Context, address string, data []int16, mode BCDMode) error
	SetBit(ctx context.Context, address string) error
	ResetBit(ctx context.Context, address string) error
	ToggleBit(ctx context.Context, address string) error
	FillArea(ctx context.Context, address string, value uint16, count int) error
	WriteClock(ctx context.Context, t time.Time) error
	NameSet(ctx context.Context, name string) error
}

// FINSClient defines the public contract of Client for easier testing/mocking.
type FINSClient interface {
	ClientConfig
	AutoReconnect
	ClientHooks
	ClientLifecycle
	ClientReader
	ClientWriter
}

// Ensure Client implements the interface.
var _ FINSClient = (*Client)(nil)
