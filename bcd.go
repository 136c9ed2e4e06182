package fins

import "math"

// BCDMode selects the signed-BCD convention used by a PLC data area. Omron
// CPUs offer several ways to store a sign inside a four digit BCD word; the
// modes below are the ones configurable in CX-Programmer. The set is a
// closed enumeration: adapters pass a mode, the codec owns the rules.
type BCDMode uint8

const (
	// BCD is plain unsigned BCD, 0000-9999.
	BCD BCDMode = iota
	// BCDSignNibble stores negative values with 0xF in the most
	// significant nibble and three magnitude digits: -999 to 9999.
	BCDSignNibble
	// BCDSignBit uses bit 15 as the sign and limits the leading digit to
	// 0-7: -7999 to 7999.
	BCDSignBit
	// BCDTensComplement stores negatives as the ten's complement of the
	// magnitude: words 5000-9999 decode to value-10000, range -5000 to 4999.
	BCDTensComplement
)

func (m BCDMode) String() string {
	switch m {
	case BCD:
		return "BCD"
	case BCDSignNibble:
		return "BCD sign-nibble"
	case BCDSignBit:
		return "BCD sign-bit"
	case BCDTensComplement:
		return "BCD ten's complement"
	default:
		return "BCD (unknown mode)"
	}
}

// InvalidBCD is the in-band sentinel BCDToInt16 returns for a word holding
// any nibble that is not a digit under the selected mode. Downstream
// consumers rely on this legacy convention, so a malformed word never
// produces a partially converted value or an error.
const InvalidBCD = int16(math.MaxInt16)

// BCDToInt16 converts a BCD encoded word to its binary value under the
// given sign convention, or InvalidBCD when the word is malformed.
func BCDToInt16(word uint16, mode BCDMode) int16 {
	d3 := byte(word >> 12)
	d2 := byte(word>>8) & 0x0F
	d1 := byte(word>>4) & 0x0F
	d0 := byte(word) & 0x0F

	switch mode {
	case BCD:
		if d3 > 9 || d2 > 9 || d1 > 9 || d0 > 9 {
			return InvalidBCD
		}
		return int16(d3)*1000 + int16(d2)*100 + int16(d1)*10 + int16(d0)

	case BCDSignNibble:
		if d2 > 9 || d1 > 9 || d0 > 9 {
			return InvalidBCD
		}
		v := int16(d2)*100 + int16(d1)*10 + int16(d0)
		if d3 == 0x0F {
			return -v
		}
		if d3 > 9 {
			return InvalidBCD
		}
		return int16(d3)*1000 + v

	case BCDSignBit:
		if d2 > 9 || d1 > 9 || d0 > 9 {
			return InvalidBCD
		}
		v := int16(d3&0x07)*1000 + int16(d2)*100 + int16(d1)*10 + int16(d0)
		if word&0x8000 != 0 {
			return -v
		}
		return v

	case BCDTensComplement:
		if d3 > 9 || d2 > 9 || d1 > 9 || d0 > 9 {
			return InvalidBCD
		}
		v := int16(d3)*1000 + int16(d2)*100 + int16(d1)*10 + int16(d0)
		if v >= 5000 {
			return v - 10000
		}
		return v

	default:
		return InvalidBCD
	}
}

// Int16ToBCD converts a binary value to its BCD word under the given sign
// convention. Values outside the mode's representable range fail with
// ValueOutOfRangeError instead of truncating.
func Int16ToBCD(value int16, mode BCDMode) (uint16, error) {
	switch mode {
	case BCD:
		if value < 0 || value > 9999 {
			return 0, ValueOutOfRangeError{Value: int(value), Mode: mode}
		}
		return packBCD(uint16(value)), nil

	case BCDSignNibble:
		if value < -999 || value > 9999 {
			return 0, ValueOutOfRangeError{Value: int(value), Mode: mode}
		}
		if value < 0 {
			return 0xF000 | packBCD(uint16(-value)), nil
		}
		return packBCD(uint16(value)), nil

	case BCDSignBit:
		if value < -7999 || value > 7999 {
			return 0, ValueOutOfRangeError{Value: int(value), Mode: mode}
		}
		if value < 0 {
			return 0x8000 | packBCD(uint16(-value)), nil
		}
		return packBCD(uint16(value)), nil

	case BCDTensComplement:
		if value < -5000 || value > 4999 {
			return 0, ValueOutOfRangeError{Value: int(value), Mode: mode}
		}
		if value < 0 {
			return packBCD(uint16(value + 10000)), nil
		}
		return packBCD(uint16(value)), nil

	default:
		return 0, ValueOutOfRangeError{Value: int(value), Mode: mode}
	}
}

// packBCD packs a binary value 0-9999 into four BCD nibbles.
func packBCD(v uint16) uint16 {
	return v%10 | (v/10%10)<<4 | (v/100%10)<<8 | (v/1000%10)<<12
}

// bcdByte packs a two digit value into one BCD byte, used by the clock
// commands.
func bcdByte(v int) byte {
	v %= 100
	return byte((v/10)<<4 | v%10)
}

// byteFromBCD decodes one BCD byte; ok is false on a non-digit nibble.
func byteFromBCD(b byte) (int, bool) {
	hi, lo := int(b>>4), int(b&0x0F)
	if hi > 9 || lo > 9 {
		return 0, false
	}
	return hi*10 + lo, true
}
