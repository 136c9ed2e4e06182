package fins

import (
	"bytes"
	"context"
	"encoding/binary"
	"time"
)

// InlineClient exposes a client-like API that operates directly on a Server's memory.
// It bypasses network transport while keeping the same method signatures as Client.
type InlineClient struct {
	srv *Server
}

// Inline client implements FINSClient (no-op reconnect/hooks).
var _ FINSClient = (*InlineClient)(nil)

func (*InlineClient) SetByteOrder(binary.ByteOrder) {}
func (*InlineClient) SetTimeoutMs(uint)             {}
func (*InlineClient) SetReadTimeout(time.Duration)  {}

func (*InlineClient) EnableAutoReconnect(int, time.Duration) {}
func (*InlineClient) DisableAutoReconnect()                  {}
func (*InlineClient) IsReconnecting() bool                   { return false }

func (*InlineClient) SetInterceptor(Interceptor) {}
func (*InlineClient) Use(...Plugin) error        { return nil }

func (ic *InlineClient) IsClosed() bool {
	return ic.srv.IsClosed()
}

func (*InlineClient) Close() error    { return nil }
func (*InlineClient) Shutdown() error { return nil }

// resolve maps a textual address onto the simulator's area code and wire
// offset, honoring the same table the network client uses.
func (ic *InlineClient) resolve(address string, bitAccess bool, mode accessMode) (*areaEntry, MemoryAddress, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, MemoryAddress{}, err
	}
	area := lookupArea(addr, bitAccess, mode)
	if area == nil {
		return nil, MemoryAddress{}, IncompatibleMemoryAreaError{Address: address}
	}
	return area, addr, nil
}

func (ic *InlineClient) ReadWords(ctx context.Context, address string, readCount int) ([]uint16, error) {
	if err := ic.check(ctx); err != nil {
		return nil, err
	}
	area, addr, err := ic.resolve(address, false, accessRead)
	if err != nil {
		return nil, err
	}

	raw, endCode := ic.srv.readWords(area.code, wireAddress(area, addr.Offset), uint16(readCount))
	if endCode != EndCodeNormalCompletion {
		return nil, EndCodeError{Code: endCode}
	}

	data := make([]uint16, readCount)
	for i := 0; i < readCount; i++ {
		data[i] = binary.BigEndian.Uint16(raw[i*2 : i*2+2])
	}
	return data, nil
}

func (ic *InlineClient) ReadBytes(ctx context.Context, address string, readCount int) ([]byte, error) {
	if err := ic.check(ctx); err != nil {
		return nil, err
	}
	area, addr, err := ic.resolve(address, false, accessRead)
	if err != nil {
		return nil, err
	}

	raw, endCode := ic.srv.readWords(area.code, wireAddress(area, addr.Offset), uint16((readCount+1)/2))
	if endCode != EndCodeNormalCompletion {
		return nil, EndCodeError{Code: endCode}
	}
	return raw[:readCount], nil
}

func (ic *InlineClient) ReadString(ctx context.Context, address string, readCount int) (string, error) {
	data, err := ic.ReadBytes(ctx, address, readCount)
	if err != nil {
		return "", err
	}
	n := bytes.IndexByte(data, 0)
	if n == -1 {
		n = len(data)
	}
	return string(data[:n]), nil
}

func (ic *InlineClient) ReadBits(ctx context.Context, address string, readCount int) ([]bool, error) {
	if err := ic.check(ctx); err != nil {
		return nil, err
	}
	area, addr, err := ic.resolve(address, true, accessRead)
	if err != nil {
		return nil, err
	}

	raw, endCode := ic.srv.readBits(area.code, wireAddress(area, addr.Offset), addr.Bit, uint16(readCount))
	if endCode != EndCodeNormalCompletion {
		return nil, EndCodeError{Code: endCode}
	}
	bools := make([]bool, readCount)
	for i := range raw {
		bools[i] = raw[i]&0x01 > 0
	}
	return bools, nil
}

func (ic *InlineClient) ReadBCD16(ctx context.Context, address string, readCount int) ([]int16, error) {
	return ic.readBCD(ctx, address, readCount, BCD)
}

func (ic *InlineClient) ReadSignedBCD16(ctx context.Context, address string, readCount int, mode BCDMode) ([]int16, error) {
	return ic.readBCD(ctx, address, readCount, mode)
}

func (ic *InlineClient) readBCD(ctx context.Context, address string, readCount int, mode BCDMode) ([]int16, error) {
	raw, err := ic.ReadWords(ctx, address, readCount)
	if err != nil {
		return nil, err
	}
	data := make([]int16, readCount)
	for i, w := range raw {
		data[i] = BCDToInt16(w, mode)
	}
	return data, nil
}

func (ic *InlineClient) ReadClock(ctx context.Context) (*time.Time, error) {
	if err := ic.check(ctx); err != nil {
		return nil, err
	}
	ic.srv.memMu.RLock()
	now := ic.srv.clock
	ic.srv.memMu.RUnlock()
	if now.IsZero() {
		now = time.Now()
	}
	return &now, nil
}

func (ic *InlineClient) CPUUnitStatus(ctx context.Context) (*CPUStatus, error) {
	if err := ic.check(ctx); err != nil {
		return nil, err
	}
	ic.srv.memMu.RLock()
	mode := ic.srv.mode
	ic.srv.memMu.RUnlock()
	return &CPUStatus{Running: mode != CPUModeProgram, Mode: mode}, nil
}

func (ic *InlineClient) CycleTime(ctx context.Context) (*CycleTimes, error) {
	if err := ic.check(ctx); err != nil {
		return nil, err
	}
	return &CycleTimes{
		Avg: 123 * 100 * time.Microsecond,
		Max: 200 * 100 * time.Microsecond,
		Min: 80 * 100 * time.Microsecond,
	}, nil
}

func (ic *InlineClient) WriteWords(ctx context.Context, address string, data []uint16) error {
	if err := ic.check(ctx); err != nil {
		return err
	}
	area, addr, err := ic.resolve(address, false, accessWrite)
	if err != nil {
		return err
	}
	bts := make([]byte, 2*len(data))
	for i, w := range data {
		binary.BigEndian.PutUint16(bts[i*2:i*2+2], w)
	}
	if endCode := ic.srv.writeWords(area.code, wireAddress(area, addr.Offset), uint16(len(data)), bts); endCode != EndCodeNormalCompletion {
		return EndCodeError{Code: endCode}
	}
	return nil
}

func (ic *InlineClient) WriteBytes(ctx context.Context, address string, data []byte) error {
	if err := ic.check(ctx); err != nil {
		return err
	}
	area, addr, err := ic.resolve(address, false, accessWrite)
	if err != nil {
		return err
	}
	count := uint16((len(data) + 1) / 2)
	bts := make([]byte, 2*count)
	copy(bts, data)
	if endCode := ic.srv.writeWords(area.code, wireAddress(area, addr.Offset), count, bts); endCode != EndCodeNormalCompletion {
		return EndCodeError{Code: endCode}
	}
	return nil
}

func (ic *InlineClient) WriteString(ctx context.Context, address string, n int, s string) error {
	data := make([]byte, n)
	copy(data, s)
	return ic.WriteBytes(ctx, address, data)
}

func (ic *InlineClient) WriteBits(ctx context.Context, address string, data []bool) error {
	if err := ic.check(ctx); err != nil {
		return err
	}
	area, addr, err := ic.resolve(address, true, accessWrite)
	if err != nil {
		return err
	}
	bts := make([]byte, len(data))
	for i, v := range data {
		if v {
			bts[i] = 0x01
		}
	}
	if endCode := ic.srv.writeBits(area.code, wireAddress(area, addr.Offset), addr.Bit, uint16(len(data)), bts); endCode != EndCodeNormalCompletion {
		return EndCodeError{Code: endCode}
	}
	return nil
}

func (ic *InlineClient) WriteBCD16(ctx context.Context, address string, data []int16) error {
	return ic.writeBCD(ctx, address, data, BCD)
}

func (ic *InlineClient) WriteSignedBCD16(ctx context.Context, address string, data []int16, mode BCDMode) error {
	return ic.writeBCD(ctx, address, data, mode)
}

func (ic *InlineClient) writeBCD(ctx context.Context, address string, data []int16, mode BCDMode) error {
	raw := make([]uint16, len(data))
	for i, v := range data {
		w, err := Int16ToBCD(v, mode)
		if err != nil {
			return err
		}
		raw[i] = w
	}
	return ic.WriteWords(ctx, address, raw)
}

func (ic *InlineClient) SetBit(ctx context.Context, address string) error {
	return ic.WriteBits(ctx, address, []bool{true})
}

func (ic *InlineClient) ResetBit(ctx context.Context, address string) error {
	return ic.WriteBits(ctx, address, []bool{false})
}

func (ic *InlineClient) ToggleBit(ctx context.Context, address string) error {
	b, err := ic.ReadBits(ctx, address, 1)
	if err != nil {
		return err
	}
	return ic.WriteBits(ctx, address, []bool{!b[0]})
}

func (ic *InlineClient) FillArea(ctx context.Context, address string, value uint16, count int) error {
	if err := ic.check(ctx); err != nil {
		return err
	}
	area, addr, err := ic.resolve(address, false, accessWrite)
	if err != nil {
		return err
	}
	payload := make([]byte, 2)
	binary.BigEndian.PutUint16(payload, value)
	if endCode := ic.srv.fillWords(area.code, wireAddress(area, addr.Offset), uint16(count), payload); endCode != EndCodeNormalCompletion {
		return EndCodeError{Code: endCode}
	}
	return nil
}

func (ic *InlineClient) WriteClock(ctx context.Context, t time.Time) error {
	if err := ic.check(ctx); err != nil {
		return err
	}
	ic.srv.SetClock(t)
	return nil
}

func (ic *InlineClient) NameSet(ctx context.Context, name string) error {
	if err := ic.check(ctx); err != nil {
		return err
	}
	if len(name) > 8 {
		name = name[:8]
	}
	ic.srv.memMu.Lock()
	ic.srv.name = name
	ic.srv.memMu.Unlock()
	return nil
}

func (ic *InlineClient) check(ctx context.Context) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if ic.srv.IsClosed() {
		return ClientClosedError{}
	}
	return nil
}
