package fins

import (
	"encoding/binary"
	"time"
)

const (
	// FINS protocol frame structure constants
	FINS_HEADER_SIZE       = 10 // FINS header is always 10 bytes
	FINS_COMMAND_CODE_SIZE = 2  // Command code field size
	FINS_END_CODE_SIZE     = 2  // End code field size
	FINS_AREA_PREFIX_SIZE  = 6  // Area, address pair, bit, item count
	FINS_MIN_RESPONSE_SIZE = FINS_HEADER_SIZE + FINS_COMMAND_CODE_SIZE + FINS_END_CODE_SIZE

	// ICF (Information Control Field) byte offsets
	ICF_INDEX               = 0
	GATEWAY_COUNT_INDEX     = 2
	DST_NETWORK_INDEX       = 3
	DST_NODE_INDEX          = 4
	DST_UNIT_INDEX          = 5
	SRC_NETWORK_INDEX       = 6
	SRC_NODE_INDEX          = 7
	SRC_UNIT_INDEX          = 8
	SERVICE_ID_INDEX        = 9
	COMMAND_CODE_INDEX      = 10
	RESPONSE_END_CODE_INDEX = 12
	RESPONSE_DATA_INDEX     = 14
)

// FINS command codes used by this library.
const (
	CommandCodeMemoryAreaRead  uint16 = 0x0101
	CommandCodeMemoryAreaWrite uint16 = 0x0102
	CommandCodeMemoryAreaFill  uint16 = 0x0103
	CommandCodeCPUUnitStatus   uint16 = 0x0601
	CommandCodeCycleTimeRead   uint16 = 0x0620
	CommandCodeClockRead       uint16 = 0x0701
	CommandCodeClockWrite      uint16 = 0x0702
	CommandCodeNameSet         uint16 = 0x2601
)

// request A FINS command request
type request struct {
	header      Header
	commandCode uint16
	data        []byte
}

// response A FINS command response
type response struct {
	header      Header
	commandCode uint16
	endCode     uint16
	data        []byte
}

const (
	icfBridgesBit          byte = 7
	icfMessageTypeBit      byte = 6
	icfResponseRequiredBit byte = 0
)

func decodeHeader(bytes []byte) Header {
	header := Header{}
	icf := bytes[ICF_INDEX]
	if icf&(1<<icfResponseRequiredBit) == 0 {
		header.responseRequired = true
	}
	if icf&(1<<icfMessageTypeBit) == 0 {
		header.messageType = MessageTypeCommand
	} else {
		header.messageType = MessageTypeResponse
	}
	header.gatewayCount = bytes[GATEWAY_COUNT_INDEX]
	header.dst = FinsAddress{bytes[DST_NETWORK_INDEX], bytes[DST_NODE_INDEX], bytes[DST_UNIT_INDEX]}
	header.src = FinsAddress{bytes[SRC_NETWORK_INDEX], bytes[SRC_NODE_INDEX], bytes[SRC_UNIT_INDEX]}
	header.serviceID = bytes[SERVICE_ID_INDEX]
	return header
}

func encodeHeader(h Header) []byte {
	icf := byte(1 << icfBridgesBit)
	if !h.responseRequired {
		icf |= 1 << icfResponseRequiredBit
	}
	if h.messageType == MessageTypeResponse {
		icf |= 1 << icfMessageTypeBit
	}
	return []byte{
		icf, 0x00, h.gatewayCount,
		h.dst.Network, h.dst.Node, h.dst.Unit,
		h.src.Network, h.src.Node, h.src.Unit,
		h.serviceID,
	}
}

func decodeRequest(bytes []byte) (request, error) {
	if len(bytes) < FINS_HEADER_SIZE+FINS_COMMAND_CODE_SIZE {
		return request{}, ResponseTooShortError{Length: len(bytes)}
	}
	return request{
		header:      decodeHeader(bytes[:FINS_HEADER_SIZE]),
		commandCode: binary.BigEndian.Uint16(bytes[COMMAND_CODE_INDEX:]),
		data:        bytes[COMMAND_CODE_INDEX+FINS_COMMAND_CODE_SIZE:],
	}, nil
}

// decodeResponse parses a received byte sequence into a response. Frames
// shorter than the fixed header fail, as do frames whose ICF does not carry
// the response marker.
func decodeResponse(bytes []byte) (response, error) {
	if len(bytes) < FINS_MIN_RESPONSE_SIZE {
		return response{}, ResponseTooShortError{Length: len(bytes)}
	}
	icf := bytes[ICF_INDEX]
	if icf&(1<<icfBridgesBit) == 0 || icf&(1<<icfMessageTypeBit) == 0 {
		return response{}, HeaderInvalidError{ICF: icf}
	}
	return response{
		header:      decodeHeader(bytes[:FINS_HEADER_SIZE]),
		commandCode: binary.BigEndian.Uint16(bytes[COMMAND_CODE_INDEX:]),
		endCode:     binary.BigEndian.Uint16(bytes[RESPONSE_END_CODE_INDEX:]),
		data:        bytes[RESPONSE_DATA_INDEX:],
	}, nil
}

func encodeResponse(resp response) []byte {
	out := make([]byte, 0, FINS_MIN_RESPONSE_SIZE+len(resp.data))
	out = append(out, encodeHeader(resp.header)...)
	out = binary.BigEndian.AppendUint16(out, resp.commandCode)
	out = binary.BigEndian.AppendUint16(out, resp.endCode)
	return append(out, resp.data...)
}

// areaCommand builds the command bytes for the memory area services: the
// command code, the six byte area prefix [area][addr hi][addr lo][bit]
// [count hi][count lo], then any payload.
func areaCommand(code uint16, area byte, addr uint16, bit byte, count uint16, payload []byte) []byte {
	cmd := make([]byte, 0, FINS_COMMAND_CODE_SIZE+FINS_AREA_PREFIX_SIZE+len(payload))
	cmd = binary.BigEndian.AppendUint16(cmd, code)
	cmd = append(cmd, area, byte(addr>>8), byte(addr), bit)
	cmd = binary.BigEndian.AppendUint16(cmd, count)
	return append(cmd, payload...)
}

func clockReadCommand() []byte {
	return binary.BigEndian.AppendUint16(nil, CommandCodeClockRead)
}

// clockWriteCommand encodes a clock set: BCD year (two digits), month, day,
// hour, minute, second and day of week (0 = Sunday).
func clockWriteCommand(t time.Time) []byte {
	cmd := binary.BigEndian.AppendUint16(nil, CommandCodeClockWrite)
	return append(cmd,
		bcdByte(t.Year()%100),
		bcdByte(int(t.Month())),
		bcdByte(t.Day()),
		bcdByte(t.Hour()),
		bcdByte(t.Minute()),
		bcdByte(t.Second()),
		bcdByte(int(t.Weekday())),
	)
}

// nameSetCommand encodes a unit name set. Names longer than eight bytes are
// truncated on the wire; no terminator is sent.
func nameSetCommand(name string) []byte {
	cmd := binary.BigEndian.AppendUint16(nil, CommandCodeNameSet)
	b := []byte(name)
	if len(b) > 8 {
		b = b[:8]
	}
	return append(cmd, b...)
}

func cpuUnitStatusCommand() []byte {
	return binary.BigEndian.AppendUint16(nil, CommandCodeCPUUnitStatus)
}

func cycleTimeCommand() []byte {
	// Parameter 0x00 requests the measured times without resetting them.
	cmd := binary.BigEndian.AppendUint16(nil, CommandCodeCycleTimeRead)
	return append(cmd, 0x00)
}
