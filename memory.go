package fins

import "strings"

// MemoryAddress is a parsed PLC memory address such as "D100" or "W10.05".
// Offset is always in the area's native unit (words for every supported
// area); Bit is only meaningful when HasBit is set.
type MemoryAddress struct {
	Area   string
	Offset uint16
	Bit    byte
	HasBit bool
}

// ParseAddress parses a textual memory address. The grammar is one or more
// letters naming the area, a decimal offset, and optionally "." followed by
// a decimal bit index 0-15. Anything else is rejected.
func ParseAddress(text string) (MemoryAddress, error) {
	s := strings.ToUpper(text)

	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 {
		return MemoryAddress{}, InvalidAddressError{Text: text}
	}
	area, ok := areaMnemonics[s[:i]]
	if !ok {
		return MemoryAddress{}, InvalidAddressError{Text: text}
	}

	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i || j-i > 5 {
		return MemoryAddress{}, InvalidAddressError{Text: text}
	}
	offset := 0
	for _, d := range s[i:j] {
		offset = offset*10 + int(d-'0')
	}
	if offset > 0xFFFF {
		return MemoryAddress{}, InvalidAddressError{Text: text}
	}

	addr := MemoryAddress{Area: area, Offset: uint16(offset)}
	if j == len(s) {
		return addr, nil
	}

	if s[j] != '.' || j+1 == len(s) {
		return MemoryAddress{}, InvalidAddressError{Text: text}
	}
	bit := 0
	for k := j + 1; k < len(s); k++ {
		if s[k] < '0' || s[k] > '9' {
			return MemoryAddress{}, InvalidAddressError{Text: text}
		}
		bit = bit*10 + int(s[k]-'0')
		if bit > 15 {
			return MemoryAddress{}, InvalidAddressError{Text: text}
		}
	}
	addr.Bit = byte(bit)
	addr.HasBit = true
	return addr, nil
}

// areaMnemonics maps accepted area spellings to the canonical table name.
var areaMnemonics = map[string]string{
	"CIO": "CIO",
	"W":   "W",
	"H":   "H",
	"A":   "A",
	"T":   "T",
	"TIM": "T",
	"C":   "C",
	"CNT": "C",
	"D":   "D",
	"DM":  "D",
	"E":   "E",
	"EM":  "E",
}

type accessMode uint8

const (
	accessRead accessMode = 1 << iota
	accessWrite

	accessReadWrite = accessRead | accessWrite
)

// areaEntry describes one addressable slice of PLC memory. lowAddr/highAddr
// are the wire-level bounds packed as word<<8|bit; lowID/highID are the
// bounds of the textual offset range. The wire address of offset n is
// n + (lowAddr>>8) - lowID, which lets areas like counters live at a nonzero
// base under a shared area code.
type areaEntry struct {
	name     string
	code     byte
	lowAddr  uint32
	highAddr uint32
	lowID    uint16
	highID   uint16
	bits     bool
	access   accessMode
}

// areaTable is built once and only ever read. Entries with identical name,
// width and overlapping mode must keep the more specific access mode first
// in document order is NOT required; lookupArea prefers an exact mode match
// wherever it sits.
var areaTable = []areaEntry{
	{"CIO", 0x30, 0x000000, 0x17FF0F, 0, 6143, true, accessReadWrite},
	{"CIO", 0xB0, 0x000000, 0x17FF00, 0, 6143, false, accessReadWrite},
	{"W", 0x31, 0x000000, 0x01FF0F, 0, 511, true, accessReadWrite},
	{"W", 0xB1, 0x000000, 0x01FF00, 0, 511, false, accessReadWrite},
	{"H", 0x32, 0x000000, 0x01FF0F, 0, 511, true, accessReadWrite},
	{"H", 0xB2, 0x000000, 0x01FF00, 0, 511, false, accessReadWrite},
	// The auxiliary area is split: A0-A447 is system-maintained and
	// read-only, A448-A959 is freely writable.
	{"A", 0x33, 0x000000, 0x01BF0F, 0, 447, true, accessRead},
	{"A", 0x33, 0x01C000, 0x03BF0F, 448, 959, true, accessReadWrite},
	{"A", 0xB3, 0x000000, 0x01BF00, 0, 447, false, accessRead},
	{"A", 0xB3, 0x01C000, 0x03BF00, 448, 959, false, accessReadWrite},
	// Timer and counter PVs share area code 0x89; counters start at wire
	// address 0x8000.
	{"T", 0x89, 0x000000, 0x0FFF00, 0, 4095, false, accessReadWrite},
	{"C", 0x89, 0x800000, 0x8FFF00, 0, 4095, false, accessReadWrite},
	{"D", 0x02, 0x000000, 0x7FFF0F, 0, 32767, true, accessReadWrite},
	{"D", 0x82, 0x000000, 0x7FFF00, 0, 32767, false, accessReadWrite},
	{"E", 0x0A, 0x000000, 0x7FFF0F, 0, 32767, true, accessReadWrite},
	{"E", 0x98, 0x000000, 0x7FFF00, 0, 32767, false, accessReadWrite},
}

// lookupArea finds the table entry for an address at the given access width
// and mode. An entry granting exactly the requested mode wins over a
// read-write entry. nil means no area supports the access; callers map that
// to IncompatibleMemoryAreaError rather than falling back to a default.
func lookupArea(addr MemoryAddress, bitAccess bool, mode accessMode) *areaEntry {
	if addr.HasBit && !bitAccess {
		return nil
	}
	var fallback *areaEntry
	for i := range areaTable {
		e := &areaTable[i]
		if e.name != addr.Area || e.bits != bitAccess {
			continue
		}
		if addr.Offset < e.lowID || addr.Offset > e.highID {
			continue
		}
		if e.access&mode == 0 {
			continue
		}
		if e.access == mode {
			return e
		}
		if fallback == nil {
			fallback = e
		}
	}
	return fallback
}

// wireAddress translates a textual offset into the word address sent on the
// wire for the entry's area code.
func wireAddress(e *areaEntry, offset uint16) uint16 {
	return uint16(uint32(offset) + (e.lowAddr >> 8) - uint32(e.lowID))
}
