package fins

import (
	"context"
	"fmt"
	"time"
)

// ReadWords reads readCount words starting at the textual address, for
// example "D100" or "W0". Requests larger than one frame are split
// transparently.
func (c *Client) ReadWords(ctx context.Context, address string, readCount int) ([]uint16, error) {
	out, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpReadWords,
		Address:   address,
		Count:     readCount,
	}, func(ctx context.Context) (interface{}, error) {
		data := make([]uint16, readCount)
		if err := c.readWordsInto(ctx, address, data, nil); err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]uint16), nil
}

// ReadBytes reads readCount bytes starting at the textual address. An odd
// count reads one extra word and drops the trailing byte.
func (c *Client) ReadBytes(ctx context.Context, address string, readCount int) ([]byte, error) {
	out, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpReadBytes,
		Address:   address,
		Count:     readCount,
	}, func(ctx context.Context) (interface{}, error) {
		words := make([]uint16, (readCount+1)/2)
		if err := c.readWordsInto(ctx, address, words, nil); err != nil {
			return nil, err
		}
		data := make([]byte, 0, 2*len(words))
		for _, w := range words {
			data = append(data, byte(w>>8), byte(w))
		}
		return data[:readCount], nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

// ReadString reads a string of readCount bytes starting at the textual
// address. The string stops at the first NUL byte.
func (c *Client) ReadString(ctx context.Context, address string, readCount int) (string, error) {
	out, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpReadString,
		Address:   address,
		Count:     readCount,
	}, func(ctx context.Context) (interface{}, error) {
		data, err := c.ReadBytes(ctx, address, readCount)
		if err != nil {
			return nil, err
		}
		for i, b := range data {
			if b == 0 {
				return string(data[:i]), nil
			}
		}
		return string(data), nil
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// ReadBits reads readCount consecutive bits starting at the textual bit
// address, for example "CIO20.5". Runs cross word boundaries.
func (c *Client) ReadBits(ctx context.Context, address string, readCount int) ([]bool, error) {
	out, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpReadBits,
		Address:   address,
		Count:     readCount,
	}, func(ctx context.Context) (interface{}, error) {
		data := make([]bool, readCount)
		if err := c.readBitsInto(ctx, address, data); err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]bool), nil
}

// ReadBCD16 reads readCount unsigned BCD words. Words that are not valid
// four digit BCD decode as InvalidBCD instead of failing the whole read.
func (c *Client) ReadBCD16(ctx context.Context, address string, readCount int) ([]int16, error) {
	return c.readBCD(ctx, OpReadBCD16, address, readCount, BCD)
}

// ReadSignedBCD16 reads readCount signed BCD words using the given sign
// convention. Undecodable words come back as InvalidBCD.
func (c *Client) ReadSignedBCD16(ctx context.Context, address string, readCount int, mode BCDMode) ([]int16, error) {
	return c.readBCD(ctx, OpReadSignedBCD16, address, readCount, mode)
}

func (c *Client) readBCD(ctx context.Context, op OperationType, address string, readCount int, mode BCDMode) ([]int16, error) {
	out, err := c.intercept(ctx, &InterceptorInfo{
		Operation: op,
		Address:   address,
		Count:     readCount,
		Mode:      mode,
	}, func(ctx context.Context) (interface{}, error) {
		raw := make([]uint16, readCount)
		if err := c.readWordsInto(ctx, address, raw, nil); err != nil {
			return nil, err
		}
		data := make([]int16, readCount)
		for i, w := range raw {
			data[i] = BCDToInt16(w, mode)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]int16), nil
}

// ReadClock reads the PLC calendar clock.
func (c *Client) ReadClock(ctx context.Context) (*time.Time, error) {
	out, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpReadClock,
	}, func(ctx context.Context) (interface{}, error) {
		r, err := c.sendCommand(ctx, clockReadCommand())
		if err = checkResponse(r, err); err != nil {
			return nil, err
		}
		if len(r.data) < 6 {
			return nil, BodyTooShortError{Expected: FINS_END_CODE_SIZE + 6, Actual: FINS_END_CODE_SIZE + len(r.data)}
		}
		fields := make([]int, 6)
		for i := range fields {
			v, ok := byteFromBCD(r.data[i])
			if !ok {
				return nil, fmt.Errorf("fins: clock field %d is not BCD: %#02x", i, r.data[i])
			}
			fields[i] = v
		}
		year := fields[0]
		if year >= 98 {
			year += 1900
		} else {
			year += 2000
		}
		t := time.Date(year, time.Month(fields[1]), fields[2], fields[3], fields[4], fields[5], 0, time.Local)
		return &t, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*time.Time), nil
}

// CPU operating modes as reported by the unit status service.
const (
	CPUModeProgram byte = 0x00
	CPUModeMonitor byte = 0x02
	CPUModeRun     byte = 0x04
)

// CPUStatus is the result of the CPU unit status read service.
type CPUStatus struct {
	Running bool // Program execution in progress
	Standby bool // CPU waiting to start
	Mode    byte // One of the CPUMode constants
}

// CPUUnitStatus reads the run state and operating mode of the CPU unit.
func (c *Client) CPUUnitStatus(ctx context.Context) (*CPUStatus, error) {
	out, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpCPUUnitStatus,
	}, func(ctx context.Context) (interface{}, error) {
		r, err := c.sendCommand(ctx, cpuUnitStatusCommand())
		if err = checkResponse(r, err); err != nil {
			return nil, err
		}
		if len(r.data) < 2 {
			return nil, BodyTooShortError{Expected: FINS_END_CODE_SIZE + 2, Actual: FINS_END_CODE_SIZE + len(r.data)}
		}
		return &CPUStatus{
			Running: r.data[0]&0x01 > 0,
			Standby: r.data[0]&0x80 > 0,
			Mode:    r.data[1],
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*CPUStatus), nil
}

// CycleTimes holds the measured PLC scan cycle times.
type CycleTimes struct {
	Avg time.Duration
	Max time.Duration
	Min time.Duration
}

// CycleTime reads the average, maximum and minimum scan cycle times without
// resetting the measurement.
func (c *Client) CycleTime(ctx context.Context) (*CycleTimes, error) {
	out, err := c.intercept(ctx, &InterceptorInfo{
		Operation: OpCycleTime,
	}, func(ctx context.Context) (interface{}, error) {
		r, err := c.sendCommand(ctx, cycleTimeCommand())
		if err = checkResponse(r, err); err != nil {
			return nil, err
		}
		if len(r.data) < 12 {
			return nil, BodyTooShortError{Expected: FINS_END_CODE_SIZE + 12, Actual: FINS_END_CODE_SIZE + len(r.data)}
		}
		// Values arrive in units of 0.1 ms.
		tenth := func(b []byte) time.Duration {
			v := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
			return time.Duration(v) * 100 * time.Microsecond
		}
		return &CycleTimes{
			Avg: tenth(r.data[0:4]),
			Max: tenth(r.data[4:8]),
			Min: tenth(r.data[8:12]),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*CycleTimes), nil
}
