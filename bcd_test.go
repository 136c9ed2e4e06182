package fins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBCDToInt16Unsigned(t *testing.T) {
	assert.Equal(t, int16(0), BCDToInt16(0x0000, BCD))
	assert.Equal(t, int16(1234), BCDToInt16(0x1234, BCD))
	assert.Equal(t, int16(9999), BCDToInt16(0x9999, BCD))

	// Any hex digit makes the whole word invalid.
	assert.Equal(t, InvalidBCD, BCDToInt16(0xABCD, BCD))
	assert.Equal(t, InvalidBCD, BCDToInt16(0x12A4, BCD))
	assert.Equal(t, InvalidBCD, BCDToInt16(0xF123, BCD))
}

func TestBCDToInt16SignNibble(t *testing.T) {
	assert.Equal(t, int16(1234), BCDToInt16(0x1234, BCDSignNibble))
	assert.Equal(t, int16(-123), BCDToInt16(0xF123, BCDSignNibble))
	assert.Equal(t, int16(-999), BCDToInt16(0xF999, BCDSignNibble))

	// 0xA-0xE are not valid sign markers.
	assert.Equal(t, InvalidBCD, BCDToInt16(0xA123, BCDSignNibble))
	assert.Equal(t, InvalidBCD, BCDToInt16(0xF1A3, BCDSignNibble))
}

func TestBCDToInt16SignBit(t *testing.T) {
	assert.Equal(t, int16(1234), BCDToInt16(0x1234, BCDSignBit))
	assert.Equal(t, int16(7999), BCDToInt16(0x7999, BCDSignBit))
	// 0x9123 = sign bit + leading digit 1.
	assert.Equal(t, int16(-1123), BCDToInt16(0x9123, BCDSignBit))
	assert.Equal(t, int16(-7999), BCDToInt16(0xF999, BCDSignBit))

	assert.Equal(t, InvalidBCD, BCDToInt16(0x12A4, BCDSignBit))
}

func TestBCDToInt16TensComplement(t *testing.T) {
	assert.Equal(t, int16(4999), BCDToInt16(0x4999, BCDTensComplement))
	assert.Equal(t, int16(-5000), BCDToInt16(0x5000, BCDTensComplement))
	assert.Equal(t, int16(-1), BCDToInt16(0x9999, BCDTensComplement))
	assert.Equal(t, int16(0), BCDToInt16(0x0000, BCDTensComplement))

	assert.Equal(t, InvalidBCD, BCDToInt16(0xA000, BCDTensComplement))
}

func TestInt16ToBCDRangeErrors(t *testing.T) {
	cases := []struct {
		value int16
		mode  BCDMode
	}{
		{-1, BCD},
		{10000, BCD},
		{-1000, BCDSignNibble},
		{10000, BCDSignNibble},
		{-8000, BCDSignBit},
		{8000, BCDSignBit},
		{-5001, BCDTensComplement},
		{5000, BCDTensComplement},
	}
	for _, tc := range cases {
		_, err := Int16ToBCD(tc.value, tc.mode)
		require.Error(t, err, "%d/%s", tc.value, tc.mode)
		assert.IsType(t, ValueOutOfRangeError{}, err)
	}
}

func TestInt16ToBCDEncoding(t *testing.T) {
	w, err := Int16ToBCD(1234, BCD)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), w)

	w, err = Int16ToBCD(-123, BCDSignNibble)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xF123), w)

	w, err = Int16ToBCD(-1123, BCDSignBit)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x9123), w)

	w, err = Int16ToBCD(-1, BCDTensComplement)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x9999), w)
}

func TestBCDValueRoundTrip(t *testing.T) {
	ranges := map[BCDMode][2]int16{
		BCD:               {0, 9999},
		BCDSignNibble:     {-999, 9999},
		BCDSignBit:        {-7999, 7999},
		BCDTensComplement: {-5000, 4999},
	}
	for mode, r := range ranges {
		for v := r[0]; ; v++ {
			w, err := Int16ToBCD(v, mode)
			require.NoError(t, err, "%d/%s", v, mode)
			assert.Equal(t, v, BCDToInt16(w, mode), "%d/%s", v, mode)
			if v == r[1] {
				break
			}
		}
	}
}

func TestBCDWordRoundTrip(t *testing.T) {
	// Every valid word must survive decode/encode, except the negative
	// zero words 0xF000 (sign nibble) and 0x8000 (sign bit), which decode
	// to 0 and re-encode as 0x0000.
	for mode, negZero := range map[BCDMode]uint16{
		BCDSignNibble: 0xF000,
		BCDSignBit:    0x8000,
	} {
		assert.Equal(t, int16(0), BCDToInt16(negZero, mode))
		w, err := Int16ToBCD(0, mode)
		require.NoError(t, err)
		assert.Equal(t, uint16(0x0000), w)
	}

	for w := uint32(0); w <= 0xFFFF; w++ {
		word := uint16(w)
		v := BCDToInt16(word, BCD)
		if v == InvalidBCD {
			continue
		}
		back, err := Int16ToBCD(v, BCD)
		require.NoError(t, err)
		assert.Equal(t, word, back)
	}
}

func TestClockByteHelpers(t *testing.T) {
	assert.Equal(t, byte(0x59), bcdByte(59))
	assert.Equal(t, byte(0x07), bcdByte(7))

	v, ok := byteFromBCD(0x59)
	require.True(t, ok)
	assert.Equal(t, 59, v)

	_, ok = byteFromBCD(0x5A)
	assert.False(t, ok)
}
