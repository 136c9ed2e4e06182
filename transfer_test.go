package fins

import (
	"context"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptTransport answers every sent command through a handler function,
// bypassing the network. It counts exchanges so tests can assert on chunking
// behavior.
type scriptTransport struct {
	mu        sync.Mutex
	handler   func(req request) response
	out       chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	exchanges int
}

func newScriptTransport(handler func(req request) response) *scriptTransport {
	return &scriptTransport{
		handler: handler,
		out:     make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
}

func (t *scriptTransport) Send(ctx context.Context, payload []byte) error {
	req, err := decodeRequest(payload)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.exchanges++
	t.mu.Unlock()
	t.out <- encodeResponse(t.handler(req))
	return nil
}

func (t *scriptTransport) Recv(ctx context.Context) ([]byte, error) {
	select {
	case payload := <-t.out:
		return payload, nil
	case <-t.closed:
		return nil, net.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *scriptTransport) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}

func (t *scriptTransport) LocalAddr() net.Addr  { return &net.UDPAddr{} }
func (t *scriptTransport) RemoteAddr() net.Addr { return &net.UDPAddr{} }

func (t *scriptTransport) exchangeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exchanges
}

func newScriptClient(t *testing.T, handler func(req request) response) (*Client, *scriptTransport) {
	t.Helper()
	local := NewAddress("", 0, 0, 2, 0)
	remote := NewAddress("127.0.0.1", 9600, 0, 10, 0)
	c := newClient(transportUDP, local, remote)
	tr := newScriptTransport(handler)
	c.tr = tr
	go c.listenLoop(tr)
	t.Cleanup(func() { _ = c.Close() })
	return c, tr
}

// echoHandler services area reads with sequential word values and accepts
// every write.
func echoHandler(req request) response {
	resp := response{
		header:      defaultResponseHeader(req.header),
		commandCode: req.commandCode,
		endCode:     EndCodeNormalCompletion,
	}
	switch req.commandCode {
	case CommandCodeMemoryAreaRead:
		addr := uint16(req.data[1])<<8 | uint16(req.data[2])
		count := uint16(req.data[4])<<8 | uint16(req.data[5])
		data := make([]byte, 2*count)
		for i := uint16(0); i < count; i++ {
			v := addr + i
			data[2*i] = byte(v >> 8)
			data[2*i+1] = byte(v)
		}
		resp.data = data
	case CommandCodeMemoryAreaWrite, CommandCodeMemoryAreaFill:
	}
	return resp
}

func TestReadWordsSplitsIntoChunks(t *testing.T) {
	c, tr := newScriptClient(t, echoHandler)

	data, err := c.ReadWords(context.Background(), "D0", 300)
	require.NoError(t, err)
	require.Len(t, data, 300)

	// 300 words with a 247-word frame limit is exactly two exchanges:
	// 247 then 53, the second starting at the next wire address.
	assert.Equal(t, 2, tr.exchangeCount())
	assert.Equal(t, uint16(0), data[0])
	assert.Equal(t, uint16(246), data[246])
	assert.Equal(t, uint16(247), data[247])
	assert.Equal(t, uint16(299), data[299])
}

func TestReadWordsZeroCountSendsNothing(t *testing.T) {
	c, tr := newScriptClient(t, echoHandler)

	data, err := c.ReadWords(context.Background(), "D0", 0)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Equal(t, 0, tr.exchangeCount())
}

func TestWriteWordsSplitsIntoChunks(t *testing.T) {
	var counts []int
	c, tr := newScriptClient(t, func(req request) response {
		if req.commandCode == CommandCodeMemoryAreaWrite {
			counts = append(counts, int(uint16(req.data[4])<<8|uint16(req.data[5])))
		}
		return echoHandler(req)
	})

	err := c.WriteWords(context.Background(), "D0", make([]uint16, 500))
	require.NoError(t, err)
	assert.Equal(t, 3, tr.exchangeCount())
	assert.Equal(t, []int{247, 247, 6}, counts)
}

func TestReadShortBodyAbortsTransfer(t *testing.T) {
	c, tr := newScriptClient(t, func(req request) response {
		resp := echoHandler(req)
		if req.commandCode == CommandCodeMemoryAreaRead {
			resp.data = resp.data[:len(resp.data)-2] // one word short
		}
		return resp
	})

	_, err := c.ReadWords(context.Background(), "D0", 300)
	require.Error(t, err)
	var short BodyTooShortError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, FINS_END_CODE_SIZE+2*247, short.Expected)
	assert.Equal(t, FINS_END_CODE_SIZE+2*246, short.Actual)

	// The failed first chunk stops the transfer; no second exchange.
	assert.Equal(t, 1, tr.exchangeCount())
}

func TestReadBCD16DecodesAndFlagsInvalidWords(t *testing.T) {
	c, _ := newScriptClient(t, func(req request) response {
		resp := response{
			header:      defaultResponseHeader(req.header),
			commandCode: req.commandCode,
			endCode:     EndCodeNormalCompletion,
			data:        []byte{0x12, 0x34, 0xAB, 0xCD},
		}
		return resp
	})

	data, err := c.ReadBCD16(context.Background(), "D0", 2)
	require.NoError(t, err)
	assert.Equal(t, int16(1234), data[0])
	assert.Equal(t, InvalidBCD, data[1])
}

func TestWriteBCD16RejectsOutOfRangeBeforeSending(t *testing.T) {
	c, tr := newScriptClient(t, echoHandler)

	err := c.WriteBCD16(context.Background(), "D0", []int16{12345})
	require.Error(t, err)
	assert.IsType(t, ValueOutOfRangeError{}, err)
	assert.Equal(t, 0, tr.exchangeCount())
}

func TestReadBitsCrossesWordBoundary(t *testing.T) {
	var prefixes [][]byte
	c, tr := newScriptClient(t, func(req request) response {
		prefixes = append(prefixes, append([]byte(nil), req.data[:6]...))
		resp := response{
			header:      defaultResponseHeader(req.header),
			commandCode: req.commandCode,
			endCode:     EndCodeNormalCompletion,
			data:        make([]byte, uint16(req.data[4])<<8|uint16(req.data[5])),
		}
		return resp
	})

	bits, err := c.ReadBits(context.Background(), "CIO0.14", 2000)
	require.NoError(t, err)
	require.Len(t, bits, 2000)
	require.Equal(t, 2, tr.exchangeCount())

	// First chunk starts at word 0 bit 14; the second resumes 1994 bits
	// later at word 125 bit 8.
	assert.Equal(t, []byte{0x30, 0x00, 0x00, 0x0E, 0x07, 0xCA}, prefixes[0])
	assert.Equal(t, []byte{0x30, 0x00, 0x7D, 0x08, 0x00, 0x06}, prefixes[1])
}

func TestFillAreaIsSingleExchange(t *testing.T) {
	var fill []byte
	c, tr := newScriptClient(t, func(req request) response {
		if req.commandCode == CommandCodeMemoryAreaFill {
			fill = append([]byte(nil), req.data...)
		}
		return echoHandler(req)
	})

	err := c.FillArea(context.Background(), "D10", 0xBEEF, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.exchangeCount())
	assert.Equal(t, []byte{0x82, 0x00, 0x0A, 0x00, 0x03, 0xE8, 0xBE, 0xEF}, fill)
}

func TestReadRejectsUnknownOrMismatchedAreas(t *testing.T) {
	c, tr := newScriptClient(t, echoHandler)

	_, err := c.ReadWords(context.Background(), "Z0", 1)
	assert.IsType(t, InvalidAddressError{}, err)

	// A bit address cannot be used for a word transfer.
	_, err = c.ReadWords(context.Background(), "D0.5", 1)
	assert.IsType(t, IncompatibleMemoryAreaError{}, err)

	// A0-A447 rejects writes.
	err = c.WriteWords(context.Background(), "A100", []uint16{1})
	assert.IsType(t, IncompatibleMemoryAreaError{}, err)

	assert.Equal(t, 0, tr.exchangeCount())
}
