package fins

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const (
	SERVER_BUFFER_SIZE = 2048 // UDP receive buffer size
	SERVER_NODE_NUMBER = 1    // Node the simulator claims in FINS/TCP handshakes
)

type serverConfig struct {
	transport transportKind
}

// ServerOption configures the PLC simulator.
type ServerOption func(*serverConfig)

// WithTCPTransport switches the simulator to FINS/TCP instead of UDP.
func WithTCPTransport() ServerOption {
	return func(cfg *serverConfig) {
		cfg.transport = transportTCP
	}
}

// Word and bit areas the simulator backs with memory. Keys are the area
// codes as they appear on the wire.
var (
	serverWordAreas = map[byte]bool{
		0xB0: true, // CIO
		0xB1: true, // W
		0xB2: true, // H
		0xB3: true, // A
		0x89: true, // T and C
		0x82: true, // D
		0x98: true, // E
	}
	serverBitAreas = map[byte]bool{
		0x30: true, // CIO
		0x31: true, // W
		0x32: true, // H
		0x33: true, // A
		0x02: true, // D
		0x0A: true, // E
	}
)

// Server is an Omron FINS server (PLC emulator). Memory is sparse, so the
// whole address space of every area is addressable without preallocation.
type Server struct {
	addr      Address
	conn      *net.UDPConn
	ln        *net.TCPListener
	transport transportKind

	memMu sync.RWMutex
	words map[byte]map[uint16]uint16 // word area code -> address -> value
	bits  map[byte]map[uint32]bool   // bit area code -> address*16+bit -> value
	clock time.Time                  // zero means follow wall time
	name  string
	mode  byte

	closed     bool
	closeMutex sync.RWMutex
	errChan    chan error
	done       chan struct{}
}

// NewPLCSimulator creates a new PLC simulator listening on plcAddr.
func NewPLCSimulator(plcAddr Address, opts ...ServerOption) (*Server, error) {
	cfg := serverConfig{transport: transportUDP}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{
		addr:      plcAddr,
		transport: cfg.transport,
		words:     make(map[byte]map[uint16]uint16),
		bits:      make(map[byte]map[uint32]bool),
		mode:      CPUModeMonitor,
		errChan:   make(chan error, ERROR_CHANNEL_BUFFER),
		done:      make(chan struct{}),
	}
	for code := range serverWordAreas {
		s.words[code] = make(map[uint16]uint16)
	}
	for code := range serverBitAreas {
		s.bits[code] = make(map[uint32]bool)
	}

	switch cfg.transport {
	case transportUDP:
		conn, err := net.ListenUDP("udp", plcAddr.UdpAddress)
		if err != nil {
			return nil, err
		}
		s.conn = conn
		go s.udpLoop()
	case transportTCP:
		if plcAddr.TcpAddress == nil {
			return nil, fmt.Errorf("TCP address is required for TCP simulator")
		}
		ln, err := net.ListenTCP("tcp", plcAddr.TcpAddress)
		if err != nil {
			return nil, err
		}
		s.ln = ln
		go s.tcpAcceptLoop()
	default:
		return nil, fmt.Errorf("unsupported simulator transport")
	}

	return s, nil
}

// IsClosed returns true if the server has been closed
func (s *Server) IsClosed() bool {
	s.closeMutex.RLock()
	defer s.closeMutex.RUnlock()
	return s.closed
}

// Err returns the error channel for server errors
// Errors from the server loop are sent to this channel
func (s *Server) Err() <-chan error {
	return s.errChan
}

// Close closes the FINS server
func (s *Server) Close() error {
	s.closeMutex.Lock()
	if s.closed {
		s.closeMutex.Unlock()
		return nil
	}
	s.closed = true
	s.closeMutex.Unlock()

	close(s.done)
	switch s.transport {
	case transportUDP:
		if s.conn != nil {
			return s.conn.Close()
		}
	case transportTCP:
		if s.ln != nil {
			return s.ln.Close()
		}
	}
	return nil
}

// SetClock pins the simulator clock to t. The zero time restores wall time.
func (s *Server) SetClock(t time.Time) {
	s.memMu.Lock()
	s.clock = t
	s.memMu.Unlock()
}

// SetMode sets the CPU operating mode reported by the status service.
func (s *Server) SetMode(mode byte) {
	s.memMu.Lock()
	s.mode = mode
	s.memMu.Unlock()
}

// UnitName returns the name assigned with the name set service.
func (s *Server) UnitName() string {
	s.memMu.RLock()
	defer s.memMu.RUnlock()
	return s.name
}

// InlineClient returns a lightweight, in-process client for manipulating the
// simulator memory directly. Useful for tests or embedding where sending
// network frames is unnecessary.
func (s *Server) InlineClient() *InlineClient {
	return &InlineClient{srv: s}
}

func (s *Server) readWords(area byte, address uint16, count uint16) ([]byte, uint16) {
	mem, ok := s.words[area]
	if !ok {
		return nil, EndCodeAreaClassificationError
	}
	if int(address)+int(count) > 0x10000 {
		return nil, EndCodeAddressRangeExceeded
	}
	data := make([]byte, 2*count)
	s.memMu.RLock()
	for i := uint16(0); i < count; i++ {
		binary.BigEndian.PutUint16(data[2*i:], mem[address+i])
	}
	s.memMu.RUnlock()
	return data, EndCodeNormalCompletion
}

func (s *Server) writeWords(area byte, address uint16, count uint16, payload []byte) uint16 {
	mem, ok := s.words[area]
	if !ok {
		return EndCodeAreaClassificationError
	}
	if int(address)+int(count) > 0x10000 {
		return EndCodeAddressRangeExceeded
	}
	if len(payload) < int(count)*2 {
		return EndCodeCommandTooShort
	}
	s.memMu.Lock()
	for i := uint16(0); i < count; i++ {
		mem[address+i] = binary.BigEndian.Uint16(payload[2*i:])
	}
	s.memMu.Unlock()
	return EndCodeNormalCompletion
}

func (s *Server) fillWords(area byte, address uint16, count uint16, payload []byte) uint16 {
	mem, ok := s.words[area]
	if !ok {
		return EndCodeAreaClassificationError
	}
	if int(address)+int(count) > 0x10000 {
		return EndCodeAddressRangeExceeded
	}
	if len(payload) < 2 {
		return EndCodeCommandTooShort
	}
	value := binary.BigEndian.Uint16(payload)
	s.memMu.Lock()
	for i := uint16(0); i < count; i++ {
		mem[address+i] = value
	}
	s.memMu.Unlock()
	return EndCodeNormalCompletion
}

func (s *Server) readBits(area byte, address uint16, bitOffset byte, count uint16) ([]byte, uint16) {
	mem, ok := s.bits[area]
	if !ok {
		return nil, EndCodeAreaClassificationError
	}
	if bitOffset > 15 {
		return nil, EndCodeAddressRangeError
	}
	start := uint32(address)*16 + uint32(bitOffset)
	if start+uint32(count) > 0x10000*16 {
		return nil, EndCodeAddressRangeExceeded
	}
	data := make([]byte, count)
	s.memMu.RLock()
	for i := uint32(0); i < uint32(count); i++ {
		if mem[start+i] {
			data[i] = 0x01
		}
	}
	s.memMu.RUnlock()
	return data, EndCodeNormalCompletion
}

func (s *Server) writeBits(area byte, address uint16, bitOffset byte, count uint16, payload []byte) uint16 {
	mem, ok := s.bits[area]
	if !ok {
		return EndCodeAreaClassificationError
	}
	if bitOffset > 15 {
		return EndCodeAddressRangeError
	}
	start := uint32(address)*16 + uint32(bitOffset)
	if start+uint32(count) > 0x10000*16 {
		return EndCodeAddressRangeExceeded
	}
	if len(payload) < int(count) {
		return EndCodeCommandTooShort
	}
	s.memMu.Lock()
	for i := uint32(0); i < uint32(count); i++ {
		mem[start+i] = payload[i]&0x01 > 0
	}
	s.memMu.Unlock()
	return EndCodeNormalCompletion
}

func (s *Server) udpLoop() {
	defer close(s.errChan)

	var buf [SERVER_BUFFER_SIZE]byte
	for {
		select {
		case <-s.done:
			// Graceful shutdown
			return
		default:
		}

		rlen, remote, err := s.conn.ReadFromUDP(buf[:])
		if err != nil {
			if s.IsClosed() {
				return
			}
			s.errChan <- fmt.Errorf("server read error: %w", err)
			return
		}

		if rlen > 0 {
			req, err := decodeRequest(buf[:rlen])
			if err != nil {
				continue
			}
			resp := s.handler(req)

			_, err = s.conn.WriteToUDP(encodeResponse(resp), &net.UDPAddr{IP: remote.IP, Port: remote.Port})
			if err != nil {
				if s.IsClosed() {
					return
				}
				s.errChan <- fmt.Errorf("server write error: %w", err)
				return
			}
		}
	}
}

// handler services one decoded command frame.
func (s *Server) handler(r request) response {
	var endCode uint16
	data := []byte{}
	switch r.commandCode {
	case CommandCodeMemoryAreaRead, CommandCodeMemoryAreaWrite, CommandCodeMemoryAreaFill:
		if len(r.data) < 6 {
			endCode = EndCodeCommandTooShort
			break
		}
		area := r.data[0]
		address := binary.BigEndian.Uint16(r.data[1:3])
		bitOffset := r.data[3]
		count := binary.BigEndian.Uint16(r.data[4:6])
		payload := r.data[6:]

		switch r.commandCode {
		case CommandCodeMemoryAreaRead:
			if serverBitAreas[area] {
				data, endCode = s.readBits(area, address, bitOffset, count)
			} else {
				data, endCode = s.readWords(area, address, count)
			}
		case CommandCodeMemoryAreaWrite:
			if serverBitAreas[area] {
				endCode = s.writeBits(area, address, bitOffset, count, payload)
			} else {
				endCode = s.writeWords(area, address, count, payload)
			}
		case CommandCodeMemoryAreaFill:
			endCode = s.fillWords(area, address, count, payload)
		}

	case CommandCodeClockRead:
		s.memMu.RLock()
		now := s.clock
		s.memMu.RUnlock()
		if now.IsZero() {
			now = time.Now()
		}
		data = encodeClock(now)
		endCode = EndCodeNormalCompletion

	case CommandCodeClockWrite:
		if len(r.data) < 6 {
			endCode = EndCodeCommandTooShort
			break
		}
		t, ok := decodeClock(r.data)
		if !ok {
			endCode = EndCodeCommandFormatError
			break
		}
		s.SetClock(t)
		endCode = EndCodeNormalCompletion

	case CommandCodeNameSet:
		if len(r.data) > 8 {
			endCode = EndCodeCommandTooLong
			break
		}
		s.memMu.Lock()
		s.name = string(r.data)
		s.memMu.Unlock()
		endCode = EndCodeNormalCompletion

	case CommandCodeCPUUnitStatus:
		s.memMu.RLock()
		mode := s.mode
		s.memMu.RUnlock()
		var status byte
		if mode != CPUModeProgram {
			status = 0x01
		}
		data = []byte{status, mode}
		endCode = EndCodeNormalCompletion

	case CommandCodeCycleTimeRead:
		// Fixed synthetic cycle times in 0.1 ms units: avg 12.3 ms,
		// max 20 ms, min 8 ms.
		data = make([]byte, 12)
		binary.BigEndian.PutUint32(data[0:4], 123)
		binary.BigEndian.PutUint32(data[4:8], 200)
		binary.BigEndian.PutUint32(data[8:12], 80)
		endCode = EndCodeNormalCompletion

	default:
		endCode = EndCodeNotSupportedByModel
	}
	return response{defaultResponseHeader(r.header), r.commandCode, endCode, data}
}

// encodeClock returns BCD clock data in the order year, month, day, hour,
// minute, second, day of week. Year carries two digits.
func encodeClock(t time.Time) []byte {
	return []byte{
		bcdByte(t.Year() % 100),
		bcdByte(int(t.Month())),
		bcdByte(t.Day()),
		bcdByte(t.Hour()),
		bcdByte(t.Minute()),
		bcdByte(t.Second()),
		bcdByte(int(t.Weekday())),
	}
}

func decodeClock(data []byte) (time.Time, bool) {
	fields := make([]int, 6)
	for i := range fields {
		v, ok := byteFromBCD(data[i])
		if !ok {
			return time.Time{}, false
		}
		fields[i] = v
	}
	year := fields[0]
	if year >= 98 {
		year += 1900
	} else {
		year += 2000
	}
	return time.Date(year, time.Month(fields[1]), fields[2], fields[3], fields[4], fields[5], 0, time.Local), true
}

// TCP helpers

func (s *Server) tcpAcceptLoop() {
	defer close(s.errChan)

	for {
		conn, err := s.ln.AcceptTCP()
		if err != nil {
			if s.IsClosed() {
				return
			}
			s.errChan <- fmt.Errorf("accept error: %w", err)
			return
		}
		go s.handleTCPConn(conn)
	}
}

func (s *Server) handleTCPConn(conn *net.TCPConn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)

	// Node assignment: the client proposes a node number, the server
	// echoes it back together with its own.
	msg, err := readTCPMessage(reader)
	if err != nil {
		if !s.IsClosed() {
			s.errChan <- fmt.Errorf("handshake read error: %w", err)
		}
		return
	}
	if msg.command != finsTCPClientHandshake || len(msg.body) < 4 {
		return
	}
	clientNode := msg.body[3]
	if clientNode == 0 {
		clientNode = 2 // auto-assign
	}
	ack := []byte{0, 0, 0, clientNode, 0, 0, 0, SERVER_NODE_NUMBER}
	if _, err := conn.Write(finsTCPFrame(finsTCPServerHandshake, ack)); err != nil {
		if !s.IsClosed() {
			s.errChan <- fmt.Errorf("handshake write error: %w", err)
		}
		return
	}

	for {
		msg, err := readTCPMessage(reader)
		if err != nil {
			if !s.IsClosed() && err != io.EOF {
				s.errChan <- fmt.Errorf("read error: %w", err)
			}
			return
		}
		if msg.command != finsTCPDataCommand {
			continue
		}
		req, err := decodeRequest(msg.body)
		if err != nil {
			continue
		}
		resp := s.handler(req)
		frame := finsTCPFrame(finsTCPDataCommand, encodeResponse(resp))
		if _, err := conn.Write(frame); err != nil {
			if !s.IsClosed() {
				s.errChan <- fmt.Errorf("write error: %w", err)
			}
			return
		}
	}
}

func readTCPMessage(reader *bufio.Reader) (*finsTCPMessage, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, err
	}
	if string(header[:4]) != finsTCPSignature {
		return nil, fmt.Errorf("invalid FINS/TCP signature: %q", header[:4])
	}
	length := binary.BigEndian.Uint32(header[4:8])
	if length < 8 || length > SERVER_BUFFER_SIZE {
		return nil, fmt.Errorf("invalid FINS/TCP length: %d", length)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(reader, body); err != nil {
		return nil, err
	}
	return &finsTCPMessage{
		command:   binary.BigEndian.Uint32(body[0:4]),
		errorCode: binary.BigEndian.Uint32(body[4:8]),
		body:      body[8:],
	}, nil
}
