package fins

import (
	"context"
	"encoding/binary"
	"time"
)

// NopClient implements FINSClient with no-op behavior.
// Useful for tests or placeholders where a real PLC connection is not required.
type NopClient struct{}

func (NopClient) SetByteOrder(binary.ByteOrder)          {}
func (NopClient) SetTimeoutMs(uint)                      {}
func (NopClient) SetReadTimeout(time.Duration)           {}
func (NopClient) EnableAutoReconnect(int, time.Duration) {}
func (NopClient) DisableAutoReconnect()                  {}
func (NopClient) IsReconnecting() bool                   { return false }
func (NopClient) SetInterceptor(Interceptor)             {}
func (NopClient) Use(...Plugin) error                    { return nil }
func (NopClient) IsClosed() bool                         { return false }
func (NopClient) Close() error                           { return nil }
func (NopClient) Shutdown() error                        { return nil }
func (NopClient) ReadWords(context.Context, string, int) ([]uint16, error) {
	return nil, nil
}
func (NopClient) ReadBytes(context.Context, string, int) ([]byte, error) {
	return nil, nil
}
func (NopClient) ReadString(context.Context, string, int) (string, error) {
	return "", nil
}
func (NopClient) ReadBits(context.Context, string, int) ([]bool, error) {
	return nil, nil
}
func (NopClient) ReadBCD16(context.Context, string, int) ([]int16, error) {
	return nil, nil
}
func (NopClient) ReadSignedBCD16(context.Context, string, int, BCDMode) ([]int16, error) {
	return nil, nil
}
func (NopClient) ReadClock(context.Context) (*time.Time, error) {
	return nil, nil
}
func (NopClient) CPUUnitStatus(context.Context) (*CPUStatus, error) {
	return nil, nil
}
func (NopClient) CycleTime(context.Context) (*CycleTimes, error) {
	return nil, nil
}
func (NopClient) WriteWords(context.Context, string, []uint16) error            { return nil }
func (NopClient) WriteBytes(context.Context, string, []byte) error              { return nil }
func (NopClient) WriteString(context.Context, string, int, string) error        { return nil }
func (NopClient) WriteBits(context.Context, string, []bool) error               { return nil }
func (NopClient) WriteBCD16(context.Context, string, []int16) error             { return nil }
func (NopClient) WriteSignedBCD16(context.Context, string, []int16, BCDMode) error {
	return nil
}
func (NopClient) SetBit(context.Context, string) error                  { return nil }
func (NopClient) ResetBit(context.Context, string) error                { return nil }
func (NopClient) ToggleBit(context.Context, string) error               { return nil }
func (NopClient) FillArea(context.Context, string, uint16, int) error   { return nil }
func (NopClient) WriteClock(context.Context, time.Time) error           { return nil }
func (NopClient) NameSet(context.Context, string) error                 { return nil }

var _ FINSClient = NopClient{}
