package fins

import (
	"context"
	"time"
)

// WriteWords writes the given words starting at the textual address.
// Requests larger than one frame are split into strictly sequential chunks,
// so a failed write never leaves holes before the reported position.
func (c *Client) WriteWords(ctx context.Context, address string, data []uint16) error {
	_, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpWriteWords,
		Address:   address,
		Count:     len(data),
		Data:      data,
	}, func(ctx context.Context) (interface{}, error) {
		return nil, c.writeWordsFrom(ctx, address, data, nil)
	})
	return err
}

// WriteBytes writes the given bytes starting at the textual address. An odd
// length is padded with a trailing zero byte.
func (c *Client) WriteBytes(ctx context.Context, address string, data []byte) error {
	_, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpWriteBytes,
		Address:   address,
		Count:     len(data),
		Data:      data,
	}, func(ctx context.Context) (interface{}, error) {
		words := make([]uint16, (len(data)+1)/2)
		for i := range words {
			hi := uint16(data[2*i]) << 8
			var lo uint16
			if 2*i+1 < len(data) {
				lo = uint16(data[2*i+1])
			}
			words[i] = hi | lo
		}
		return nil, c.writeWordsFrom(ctx, address, words, nil)
	})
	return err
}

// WriteString writes s starting at the textual address, padded with NUL
// bytes to fill exactly n bytes. A string longer than n is truncated.
func (c *Client) WriteString(ctx context.Context, address string, n int, s string) error {
	_, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpWriteString,
		Address:   address,
		Count:     n,
		Data:      s,
	}, func(ctx context.Context) (interface{}, error) {
		data := make([]byte, n)
		copy(data, s)
		return nil, c.WriteBytes(ctx, address, data)
	})
	return err
}

// WriteBits writes consecutive bits starting at the textual bit address.
func (c *Client) WriteBits(ctx context.Context, address string, data []bool) error {
	_, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpWriteBits,
		Address:   address,
		Count:     len(data),
		Data:      data,
	}, func(ctx context.Context) (interface{}, error) {
		return nil, c.writeBitsFrom(ctx, address, data)
	})
	return err
}

// WriteBCD16 writes unsigned BCD words. Values outside 0..9999 fail with
// ValueOutOfRangeError before anything is sent for that chunk.
func (c *Client) WriteBCD16(ctx context.Context, address string, data []int16) error {
	return c.writeBCD(ctx, OpWriteBCD16, address, data, BCD)
}

// WriteSignedBCD16 writes signed BCD words using the given sign convention.
func (c *Client) WriteSignedBCD16(ctx context.Context, address string, data []int16, mode BCDMode) error {
	return c.writeBCD(ctx, OpWriteSignedBCD16, address, data, mode)
}

func (c *Client) writeBCD(ctx context.Context, op OperationType, address string, data []int16, mode BCDMode) error {
	_, err := c.intercept(ctx, &InterceptorInfo{
		Operation: op,
		Address:   address,
		Count:     len(data),
		Mode:      mode,
		Data:      data,
	}, func(ctx context.Context) (interface{}, error) {
		raw := make([]uint16, len(data))
		for i, v := range data {
			w, err := Int16ToBCD(v, mode)
			if err != nil {
				return nil, err
			}
			raw[i] = w
		}
		return nil, c.writeWordsFrom(ctx, address, raw, nil)
	})
	return err
}

// SetBit forces the addressed bit on.
func (c *Client) SetBit(ctx context.Context, address string) error {
	return c.writeOneBit(ctx, OpSetBit, address, true)
}

// ResetBit forces the addressed bit off.
func (c *Client) ResetBit(ctx context.Context, address string) error {
	return c.writeOneBit(ctx, OpResetBit, address, false)
}

// ToggleBit reads the addressed bit and writes back its complement. The
// read and write are separate exchanges; a concurrent writer can interleave.
func (c *Client) ToggleBit(ctx context.Context, address string) error {
	_, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpToggleBit,
		Address:   address,
		Count:     1,
	}, func(ctx context.Context) (interface{}, error) {
		cur := make([]bool, 1)
		if err := c.readBitsInto(ctx, address, cur); err != nil {
			return nil, err
		}
		return nil, c.writeBitsFrom(ctx, address, []bool{!cur[0]})
	})
	return err
}

func (c *Client) writeOneBit(ctx context.Context, op OperationType, address string, value bool) error {
	_, err := c.intercept(ctx, &InterceptorInfo{
		Operation: op,
		Address:   address,
		Count:     1,
		Data:      value,
	}, func(ctx context.Context) (interface{}, error) {
		return nil, c.writeBitsFrom(ctx, address, []bool{value})
	})
	return err
}

// FillArea writes value to count consecutive words starting at the textual
// address in a single exchange.
func (c *Client) FillArea(ctx context.Context, address string, value uint16, count int) error {
	_, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpFillArea,
		Address:   address,
		Count:     count,
		Data:      value,
	}, func(ctx context.Context) (interface{}, error) {
		return nil, c.fillAreaWords(ctx, address, value, count)
	})
	return err
}

// WriteClock sets the PLC calendar clock to t. Sub-second precision is
// dropped; the day of week is derived from the date.
func (c *Client) WriteClock(ctx context.Context, t time.Time) error {
	_, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpWriteClock,
		Data:      t,
	}, func(ctx context.Context) (interface{}, error) {
		r, err := c.sendCommand(ctx, clockWriteCommand(t))
		if err = checkResponse(r, err); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

// NameSet assigns a unit name of up to eight bytes to the CPU unit.
func (c *Client) NameSet(ctx context.Context, name string) error {
	_, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpNameSet,
		Data:      name,
	}, func(ctx context.Context) (interface{}, error) {
		r, err := c.sendCommand(ctx, nameSetCommand(name))
		if err = checkResponse(r, err); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
