package fins

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	DEFAULT_RESPONSE_TIMEOUT = 2 * time.Second
	READ_BUFFER_SIZE         = 2048
	DEFAULT_READ_TIMEOUT     = 5 * time.Second
	MAX_SERVICE_ID_COUNT     = 256 // Service IDs are one byte
	ERROR_CHANNEL_BUFFER     = 1
	RESPONSE_CHANNEL_BUFFER  = 1
	CLOSE_TIMEOUT            = 1 * time.Second
	DEFAULT_MAX_RECONNECT    = 5
	DEFAULT_RECONNECT_DELAY  = 1 * time.Second
	MAX_RECONNECT_DELAY      = 30 * time.Second
)

type transportKind int

const (
	transportUDP transportKind = iota
	transportTCP
)

// Client is an Omron FINS client. One command is in flight per service ID;
// public methods are safe for concurrent use, though callers that care about
// PLC-side ordering should serialize their own calls.
type Client struct {
	kind       transportKind
	tr         transport
	trMutex    sync.RWMutex
	resp       []chan response
	respMutex  sync.RWMutex
	sidMutex   sync.Mutex
	dst        FinsAddress
	src        FinsAddress
	localAddr  Address
	remoteAddr Address
	sid        byte
	closed     bool
	closeMutex sync.RWMutex

	responseTimeout time.Duration
	readTimeout     time.Duration
	byteOrder       binary.ByteOrder

	interceptor Interceptor
	intMutex    sync.RWMutex
	plugins     pluginManager

	listenErr chan error
	done      chan struct{}

	autoReconnect  bool
	maxReconnect   int
	reconnectDelay time.Duration
	reconnecting   bool
	reconnectMutex sync.RWMutex
}

// NewUDPClient creates a FINS client over UDP.
func NewUDPClient(localAddr, plcAddr Address) (*Client, error) {
	c := newClient(transportUDP, localAddr, plcAddr)
	tr, err := newUDPTransport(localAddr.UdpAddress, plcAddr.UdpAddress)
	if err != nil {
		return nil, err
	}
	c.tr = tr
	go c.listenLoop(tr)
	return c, nil
}

// NewTCPClient creates a FINS client over TCP, performing the FINS/TCP node
// assignment handshake. Node numbers negotiated by the handshake replace the
// configured ones.
func NewTCPClient(localAddr, plcAddr Address) (*Client, error) {
	c := newClient(transportTCP, localAddr, plcAddr)
	tr, err := newTCPTransport(context.Background(), localAddr.TcpAddress, plcAddr.TcpAddress, localAddr.FinAddress.Node)
	if err != nil {
		return nil, err
	}
	c.adoptHandshakeNodes(tr)
	c.tr = tr
	go c.listenLoop(tr)
	return c, nil
}

func newClient(kind transportKind, localAddr, plcAddr Address) *Client {
	c := &Client{
		kind:            kind,
		dst:             plcAddr.FinAddress,
		src:             localAddr.FinAddress,
		localAddr:       localAddr,
		remoteAddr:      plcAddr,
		responseTimeout: DEFAULT_RESPONSE_TIMEOUT,
		readTimeout:     DEFAULT_READ_TIMEOUT,
		byteOrder:       binary.BigEndian,
		listenErr:       make(chan error, ERROR_CHANNEL_BUFFER),
		done:            make(chan struct{}),
		maxReconnect:    DEFAULT_MAX_RECONNECT,
		reconnectDelay:  DEFAULT_RECONNECT_DELAY,
	}
	c.resp = make([]chan response, MAX_SERVICE_ID_COUNT)
	return c
}

func (c *Client) adoptHandshakeNodes(tr *tcpTransport) {
	if tr.clientNode != 0 {
		c.src.Node = tr.clientNode
	}
	if tr.serverNode != 0 {
		c.dst.Node = tr.serverNode
	}
}

// SetByteOrder sets the byte order for raw word operations.
// Default value: binary.BigEndian. BCD operations always use the wire's
// big-endian layout regardless of this setting.
func (c *Client) SetByteOrder(o binary.ByteOrder) {
	c.byteOrder = o
}

// SetTimeoutMs sets the response timeout in milliseconds.
// A timeout of zero blocks until the context expires.
func (c *Client) SetTimeoutMs(t uint) {
	c.responseTimeout = time.Duration(t) * time.Millisecond
}

// SetReadTimeout sets how long the listen loop waits on the socket before
// re-checking for shutdown. Call before starting operations.
func (c *Client) SetReadTimeout(t time.Duration) {
	c.closeMutex.Lock()
	defer c.closeMutex.Unlock()
	c.readTimeout = t
}

// SetInterceptor installs an interceptor chain wrapping every operation.
func (c *Client) SetInterceptor(interceptor Interceptor) {
	c.intMutex.Lock()
	defer c.intMutex.Unlock()
	c.interceptor = interceptor
}

// Use registers plugins with the client.
func (c *Client) Use(plugins ...Plugin) error {
	return c.plugins.use(c, plugins...)
}

// EnableAutoReconnect enables automatic reconnection on transport failures.
// maxRetries of 0 retries forever; the delay backs off exponentially up to
// MAX_RECONNECT_DELAY. Reconnection is best effort and never replays
// commands.
func (c *Client) EnableAutoReconnect(maxRetries int, initialDelay time.Duration) {
	c.reconnectMutex.Lock()
	defer c.reconnectMutex.Unlock()
	c.autoReconnect = true
	c.maxReconnect = maxRetries
	c.reconnectDelay = initialDelay
}

// DisableAutoReconnect disables automatic reconnection.
func (c *Client) DisableAutoReconnect() {
	c.reconnectMutex.Lock()
	defer c.reconnectMutex.Unlock()
	c.autoReconnect = false
}

// IsReconnecting reports whether a reconnection attempt is in progress.
func (c *Client) IsReconnecting() bool {
	c.reconnectMutex.RLock()
	defer c.reconnectMutex.RUnlock()
	return c.reconnecting
}

// IsClosed reports whether the client has been closed.
func (c *Client) IsClosed() bool {
	c.closeMutex.RLock()
	defer c.closeMutex.RUnlock()
	return c.closed
}

// Close closes the FINS connection.
func (c *Client) Close() error {
	c.closeMutex.Lock()
	if c.closed {
		c.closeMutex.Unlock()
		return nil
	}
	c.closed = true
	c.closeMutex.Unlock()

	close(c.done)
	err := c.transport().Close()

	// Wait for the listen loop to finish or time out.
	select {
	case <-c.listenErr:
	case <-time.After(CLOSE_TIMEOUT):
	}
	return err
}

// Shutdown gracefully shuts down the client, stopping any reconnection
// attempts first.
func (c *Client) Shutdown() error {
	c.DisableAutoReconnect()
	return c.Close()
}

func (c *Client) transport() transport {
	c.trMutex.RLock()
	defer c.trMutex.RUnlock()
	return c.tr
}

func (c *Client) dial() (transport, error) {
	switch c.kind {
	case transportTCP:
		tr, err := newTCPTransport(context.Background(), c.localAddr.TcpAddress, c.remoteAddr.TcpAddress, c.localAddr.FinAddress.Node)
		if err != nil {
			return nil, err
		}
		c.adoptHandshakeNodes(tr)
		return tr, nil
	default:
		return newUDPTransport(c.localAddr.UdpAddress, c.remoteAddr.UdpAddress)
	}
}

// reconnect re-dials the transport with exponential backoff.
func (c *Client) reconnect() error {
	c.reconnectMutex.Lock()
	if c.reconnecting {
		c.reconnectMutex.Unlock()
		return fmt.Errorf("fins: already reconnecting")
	}
	c.reconnecting = true
	maxRetries := c.maxReconnect
	delay := c.reconnectDelay
	c.reconnectMutex.Unlock()

	defer func() {
		c.reconnectMutex.Lock()
		c.reconnecting = false
		c.reconnectMutex.Unlock()
	}()

	var lastErr error
	attempts := 0
	for {
		if c.IsClosed() {
			return fmt.Errorf("fins: client closed during reconnection")
		}
		c.reconnectMutex.RLock()
		enabled := c.autoReconnect
		c.reconnectMutex.RUnlock()
		if !enabled {
			return fmt.Errorf("fins: auto-reconnect disabled")
		}
		if maxRetries > 0 && attempts >= maxRetries {
			return fmt.Errorf("fins: max reconnection attempts (%d) reached: %w", maxRetries, lastErr)
		}
		attempts++

		if attempts > 1 {
			time.Sleep(delay)
			delay *= 2
			if delay > MAX_RECONNECT_DELAY {
				delay = MAX_RECONNECT_DELAY
			}
		}

		tr, err := c.dial()
		if err != nil {
			lastErr = err
			continue
		}

		c.trMutex.Lock()
		old := c.tr
		c.tr = tr
		c.trMutex.Unlock()
		if old != nil {
			_ = old.Close()
		}

		go c.listenLoop(tr)
		c.plugins.notifyConnected(c)
		return nil
	}
}

// checkResponse folds a transport error and a PLC-reported end code into a
// single error.
func checkResponse(r *response, e error) error {
	if e != nil {
		return e
	}
	return endCodeToError(r.endCode)
}

func (c *Client) nextHeader() *Header {
	sid := c.incrementSid()
	header := defaultCommandHeader(c.src, c.dst, sid)
	return &header
}

func (c *Client) incrementSid() byte {
	c.sidMutex.Lock()
	defer c.sidMutex.Unlock()
	c.sid++
	sid := c.sid

	c.respMutex.Lock()
	c.resp[sid] = make(chan response, RESPONSE_CHANNEL_BUFFER)
	c.respMutex.Unlock()

	return sid
}

// sendCommand performs one request/response exchange: it encodes the frame,
// sends it over the active transport and waits for the matching response,
// the response timeout, context cancellation or client shutdown. It never
// retries; a retry interceptor is the supported way to add that policy.
func (c *Client) sendCommand(ctx context.Context, command []byte) (*response, error) {
	if c.IsClosed() {
		return nil, ClientClosedError{}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header := c.nextHeader()
	frame := append(encodeHeader(*header), command...)
	if err := c.transport().Send(ctx, frame); err != nil {
		return nil, err
	}

	c.respMutex.RLock()
	respChan := c.resp[header.serviceID]
	c.respMutex.RUnlock()

	var timeout <-chan time.Time
	if c.responseTimeout > 0 {
		timer := time.NewTimer(c.responseTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case resp := <-respChan:
		return &resp, nil
	case <-timeout:
		return nil, ResponseTimeoutError{Duration: c.responseTimeout}
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ClientClosedError{}
	}
}

// listenLoop receives frames from one transport instance and routes them to
// the channel registered for their service ID. Garbled frames are dropped.
func (c *Client) listenLoop(tr transport) {
	for {
		rctx := context.Background()
		cancel := func() {}
		c.closeMutex.RLock()
		rt := c.readTimeout
		c.closeMutex.RUnlock()
		if rt > 0 {
			rctx, cancel = context.WithTimeout(rctx, rt)
		}

		payload, err := tr.Recv(rctx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				// Idle socket; poll again unless shutting down.
				select {
				case <-c.done:
					return
				default:
					continue
				}
			}

			select {
			case <-c.done:
				c.reportListenExit(nil)
				return
			default:
			}

			c.plugins.notifyDisconnected(c, err)

			c.reconnectMutex.RLock()
			shouldReconnect := c.autoReconnect
			c.reconnectMutex.RUnlock()
			if shouldReconnect && !c.IsClosed() {
				if rerr := c.reconnect(); rerr != nil {
					c.reportListenExit(fmt.Errorf("fins: reconnection failed: %w (read error: %v)", rerr, err))
				}
				// A successful reconnect starts a fresh loop.
				return
			}

			if !c.IsClosed() {
				c.reportListenExit(fmt.Errorf("fins: listen loop error: %w", err))
			} else {
				c.reportListenExit(nil)
			}
			return
		}

		if len(payload) == 0 {
			continue
		}
		ans, err := decodeResponse(payload)
		if err != nil {
			continue
		}

		c.respMutex.RLock()
		if ch := c.resp[ans.header.serviceID]; ch != nil {
			select {
			case ch <- ans:
			default:
				// No receiver anymore; skip.
			}
		}
		c.respMutex.RUnlock()
	}
}

// reportListenExit signals Close (and interested callers) that the listen
// loop has stopped. The channel is buffered and never closed so that
// successive loops after reconnects stay safe.
func (c *Client) reportListenExit(err error) {
	if err == nil {
		select {
		case c.listenErr <- nil:
		default:
		}
		return
	}
	select {
	case c.listenErr <- err:
	default:
	}
}

// Err exposes listen loop failures that terminated the client's receive
// path, such as exhausted reconnection attempts.
func (c *Client) Err() <-chan error {
	return c.listenErr
}
