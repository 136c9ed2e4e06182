package fins

import (
	"fmt"
	"time"
)

// ClientClosedError is returned by every operation once the client has been
// closed or shut down.
type ClientClosedError struct{}

func (e ClientClosedError) Error() string {
	return "fins: client is closed"
}

// ResponseTimeoutError is returned when the PLC did not answer within the
// configured response timeout.
type ResponseTimeoutError struct {
	Duration time.Duration
}

func (e ResponseTimeoutError) Error() string {
	return fmt.Sprintf("fins: response timeout of %s exceeded", e.Duration)
}

// InvalidAddressError is returned when a textual memory address does not
// follow the <area letters><decimal offset>[.<bit 0-15>] grammar.
type InvalidAddressError struct {
	Text string
}

func (e InvalidAddressError) Error() string {
	return fmt.Sprintf("fins: invalid memory address %q", e.Text)
}

// IncompatibleMemoryAreaError is returned when an address names no memory
// area that supports the requested access width and mode, or when its offset
// falls outside the area's range.
type IncompatibleMemoryAreaError struct {
	Address string
}

func (e IncompatibleMemoryAreaError) Error() string {
	return fmt.Sprintf("fins: address %q is not accessible in the requested mode", e.Address)
}

// ResponseTooShortError is returned when fewer bytes than a FINS response
// header were received.
type ResponseTooShortError struct {
	Length int
}

func (e ResponseTooShortError) Error() string {
	return fmt.Sprintf("fins: response of %d bytes is shorter than the fixed header", e.Length)
}

// HeaderInvalidError is returned when a received frame does not carry the
// response markers the protocol demands.
type HeaderInvalidError struct {
	ICF byte
}

func (e HeaderInvalidError) Error() string {
	return fmt.Sprintf("fins: frame header invalid (ICF 0x%02X)", e.ICF)
}

// BodyTooShortError is returned when a response body length does not match
// the exact size the originating command requires. The transfer loop aborts
// without further I/O when it sees this error.
type BodyTooShortError struct {
	Expected int
	Actual   int
}

func (e BodyTooShortError) Error() string {
	return fmt.Sprintf("fins: response body is %d bytes, expected %d", e.Actual, e.Expected)
}

// ValueOutOfRangeError is returned by write-side numeric conversions when a
// value cannot be represented in the requested encoding.
type ValueOutOfRangeError struct {
	Value int
	Mode  BCDMode
}

func (e ValueOutOfRangeError) Error() string {
	return fmt.Sprintf("fins: value %d is not representable as %s", e.Value, e.Mode)
}
