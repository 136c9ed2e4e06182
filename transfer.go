package fins

import "context"

// Per-frame transfer limits. 247 words fits the strictest link type the
// library supports; callers never see the chunking, only the exchange count.
const (
	MaxWordsPerTransfer = 247
	MaxBitsPerTransfer  = 1994
)

// wordConv converts one word between its wire encoding and the caller's
// value space. nil means raw copy.
type wordConv func(uint16) uint16

// wordEnc encodes one caller value into its wire word, failing when the
// value is not representable.
type wordEnc func(uint16) (uint16, error)

// readWordsInto reads len(dst) words starting at the textual address,
// splitting the request into per-frame chunks and decoding each element
// through conv. On failure the leading elements already received stay
// decoded in dst (a short write); the error reports the first failed chunk.
func (c *Client) readWordsInto(ctx context.Context, address string, dst []uint16, conv wordConv) error {
	if len(dst) == 0 {
		return nil
	}
	addr, err := ParseAddress(address)
	if err != nil {
		return err
	}
	area := lookupArea(addr, false, accessRead)
	if area == nil {
		return IncompatibleMemoryAreaError{Address: address}
	}

	current := wireAddress(area, addr.Offset)
	done := 0
	remaining := len(dst)
	for remaining > 0 {
		chunk := remaining
		if chunk > MaxWordsPerTransfer {
			chunk = MaxWordsPerTransfer
		}

		cmd := areaCommand(CommandCodeMemoryAreaRead, area.code, current, 0, uint16(chunk), nil)
		r, err := c.sendCommand(ctx, cmd)
		if err = checkResponse(r, err); err != nil {
			return err
		}
		if len(r.data) != 2*chunk {
			return BodyTooShortError{
				Expected: FINS_END_CODE_SIZE + 2*chunk,
				Actual:   FINS_END_CODE_SIZE + len(r.data),
			}
		}

		for i := 0; i < chunk; i++ {
			w := c.byteOrder.Uint16(r.data[2*i : 2*i+2])
			if conv != nil {
				w = conv(w)
			}
			dst[done+i] = w
		}

		done += chunk
		remaining -= chunk
		current += uint16(chunk)
	}
	return nil
}

// writeWordsFrom writes len(src) words starting at the textual address,
// encoding each element through enc and chunking per frame. Chunks are
// strictly sequential, so a failure identifies how many leading words the
// PLC accepted.
func (c *Client) writeWordsFrom(ctx context.Context, address string, src []uint16, enc wordEnc) error {
	if len(src) == 0 {
		return nil
	}
	addr, err := ParseAddress(address)
	if err != nil {
		return err
	}
	area := lookupArea(addr, false, accessWrite)
	if area == nil {
		return IncompatibleMemoryAreaError{Address: address}
	}

	current := wireAddress(area, addr.Offset)
	done := 0
	remaining := len(src)
	for remaining > 0 {
		chunk := remaining
		if chunk > MaxWordsPerTransfer {
			chunk = MaxWordsPerTransfer
		}

		payload := make([]byte, 2*chunk)
		for i := 0; i < chunk; i++ {
			w := src[done+i]
			if enc != nil {
				w, err = enc(w)
				if err != nil {
					return err
				}
			}
			c.byteOrder.PutUint16(payload[2*i:2*i+2], w)
		}

		cmd := areaCommand(CommandCodeMemoryAreaWrite, area.code, current, 0, uint16(chunk), payload)
		r, err := c.sendCommand(ctx, cmd)
		if err = checkResponse(r, err); err != nil {
			return err
		}
		if len(r.data) != 0 {
			return BodyTooShortError{Expected: FINS_END_CODE_SIZE, Actual: FINS_END_CODE_SIZE + len(r.data)}
		}

		done += chunk
		remaining -= chunk
		current += uint16(chunk)
	}
	return nil
}

// readBitsInto reads len(dst) consecutive bits starting at the textual
// address, crossing word boundaries as the protocol does.
func (c *Client) readBitsInto(ctx context.Context, address string, dst []bool) error {
	if len(dst) == 0 {
		return nil
	}
	addr, err := ParseAddress(address)
	if err != nil {
		return err
	}
	area := lookupArea(addr, true, accessRead)
	if area == nil {
		return IncompatibleMemoryAreaError{Address: address}
	}

	word := wireAddress(area, addr.Offset)
	bit := addr.Bit
	done := 0
	remaining := len(dst)
	for remaining > 0 {
		chunk := remaining
		if chunk > MaxBitsPerTransfer {
			chunk = MaxBitsPerTransfer
		}

		cmd := areaCommand(CommandCodeMemoryAreaRead, area.code, word, bit, uint16(chunk), nil)
		r, err := c.sendCommand(ctx, cmd)
		if err = checkResponse(r, err); err != nil {
			return err
		}
		if len(r.data) != chunk {
			return BodyTooShortError{
				Expected: FINS_END_CODE_SIZE + chunk,
				Actual:   FINS_END_CODE_SIZE + len(r.data),
			}
		}

		for i := 0; i < chunk; i++ {
			dst[done+i] = r.data[i]&0x01 > 0
		}

		done += chunk
		remaining -= chunk
		word, bit = advanceBits(word, bit, chunk)
	}
	return nil
}

// writeBitsFrom writes len(src) consecutive bits starting at the textual
// address.
func (c *Client) writeBitsFrom(ctx context.Context, address string, src []bool) error {
	if len(src) == 0 {
		return nil
	}
	addr, err := ParseAddress(address)
	if err != nil {
		return err
	}
	area := lookupArea(addr, true, accessWrite)
	if area == nil {
		return IncompatibleMemoryAreaError{Address: address}
	}

	word := wireAddress(area, addr.Offset)
	bit := addr.Bit
	done := 0
	remaining := len(src)
	for remaining > 0 {
		chunk := remaining
		if chunk > MaxBitsPerTransfer {
			chunk = MaxBitsPerTransfer
		}

		payload := make([]byte, chunk)
		for i := 0; i < chunk; i++ {
			if src[done+i] {
				payload[i] = 0x01
			}
		}

		cmd := areaCommand(CommandCodeMemoryAreaWrite, area.code, word, bit, uint16(chunk), payload)
		r, err := c.sendCommand(ctx, cmd)
		if err = checkResponse(r, err); err != nil {
			return err
		}
		if len(r.data) != 0 {
			return BodyTooShortError{Expected: FINS_END_CODE_SIZE, Actual: FINS_END_CODE_SIZE + len(r.data)}
		}

		done += chunk
		remaining -= chunk
		word, bit = advanceBits(word, bit, chunk)
	}
	return nil
}

// fillAreaWords writes the same word value to count consecutive addresses
// with the memory area fill service. Fill is a single exchange regardless of
// count; the PLC applies it atomically.
func (c *Client) fillAreaWords(ctx context.Context, address string, value uint16, count int) error {
	if count == 0 {
		return nil
	}
	addr, err := ParseAddress(address)
	if err != nil {
		return err
	}
	area := lookupArea(addr, false, accessWrite)
	if area == nil {
		return IncompatibleMemoryAreaError{Address: address}
	}

	payload := make([]byte, 2)
	c.byteOrder.PutUint16(payload, value)
	cmd := areaCommand(CommandCodeMemoryAreaFill, area.code, wireAddress(area, addr.Offset), 0, uint16(count), payload)
	r, err := c.sendCommand(ctx, cmd)
	if err = checkResponse(r, err); err != nil {
		return err
	}
	if len(r.data) != 0 {
		return BodyTooShortError{Expected: FINS_END_CODE_SIZE, Actual: FINS_END_CODE_SIZE + len(r.data)}
	}
	return nil
}

// advanceBits moves a word/bit position forward by n bits.
func advanceBits(word uint16, bit byte, n int) (uint16, byte) {
	total := int(bit) + n
	return word + uint16(total/16), byte(total % 16)
}
