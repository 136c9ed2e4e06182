package fins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	cases := []struct {
		text string
		want MemoryAddress
	}{
		{"D100", MemoryAddress{Area: "D", Offset: 100}},
		{"DM100", MemoryAddress{Area: "D", Offset: 100}},
		{"d100", MemoryAddress{Area: "D", Offset: 100}},
		{"CIO0", MemoryAddress{Area: "CIO", Offset: 0}},
		{"W511", MemoryAddress{Area: "W", Offset: 511}},
		{"H12.15", MemoryAddress{Area: "H", Offset: 12, Bit: 15, HasBit: true}},
		{"A450", MemoryAddress{Area: "A", Offset: 450}},
		{"T0", MemoryAddress{Area: "T", Offset: 0}},
		{"TIM100", MemoryAddress{Area: "T", Offset: 100}},
		{"C42", MemoryAddress{Area: "C", Offset: 42}},
		{"CNT42", MemoryAddress{Area: "C", Offset: 42}},
		{"E20", MemoryAddress{Area: "E", Offset: 20}},
		{"EM20", MemoryAddress{Area: "E", Offset: 20}},
		{"cio20.5", MemoryAddress{Area: "CIO", Offset: 20, Bit: 5, HasBit: true}},
	}
	for _, tc := range cases {
		got, err := ParseAddress(tc.text)
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.want, got, tc.text)
	}
}

func TestParseAddressRejectsGarbage(t *testing.T) {
	bad := []string{
		"",
		"100",
		"D",
		"X100",
		"D-5",
		"D100.",
		"D100.16",
		"D100.x",
		"D100x",
		"D 100",
		"D100000",
		"D65536",
	}
	for _, text := range bad {
		_, err := ParseAddress(text)
		assert.Error(t, err, text)
		assert.IsType(t, InvalidAddressError{}, err, text)
	}
}

func TestLookupAreaWordAndBit(t *testing.T) {
	addr, err := ParseAddress("D100")
	require.NoError(t, err)

	word := lookupArea(addr, false, accessRead)
	require.NotNil(t, word)
	assert.Equal(t, byte(0x82), word.code)

	bit := lookupArea(MemoryAddress{Area: "D", Offset: 100, Bit: 3, HasBit: true}, true, accessRead)
	require.NotNil(t, bit)
	assert.Equal(t, byte(0x02), bit.code)
}

func TestLookupAreaRejectsBitAddressForWordAccess(t *testing.T) {
	addr, err := ParseAddress("D100.5")
	require.NoError(t, err)
	assert.Nil(t, lookupArea(addr, false, accessRead))
}

func TestLookupAreaRangeChecks(t *testing.T) {
	assert.NotNil(t, lookupArea(MemoryAddress{Area: "W", Offset: 511}, false, accessRead))
	assert.Nil(t, lookupArea(MemoryAddress{Area: "W", Offset: 512}, false, accessRead))
	assert.NotNil(t, lookupArea(MemoryAddress{Area: "CIO", Offset: 6143}, false, accessWrite))
	assert.Nil(t, lookupArea(MemoryAddress{Area: "CIO", Offset: 6144}, false, accessWrite))
}

func TestAuxiliaryAreaSplit(t *testing.T) {
	// A0-A447 is read-only; A448-A959 is writable.
	low := MemoryAddress{Area: "A", Offset: 100}
	high := MemoryAddress{Area: "A", Offset: 500}

	require.NotNil(t, lookupArea(low, false, accessRead))
	assert.Nil(t, lookupArea(low, false, accessWrite))

	e := lookupArea(high, false, accessWrite)
	require.NotNil(t, e)
	assert.Equal(t, byte(0xB3), e.code)

	// The writable entry starts at wire word 448.
	assert.Equal(t, uint16(500), wireAddress(e, high.Offset))
}

func TestWireAddressCounterBase(t *testing.T) {
	// Counters share area code 0x89 with timers but start at 0x8000.
	addr := MemoryAddress{Area: "C", Offset: 10}
	e := lookupArea(addr, false, accessRead)
	require.NotNil(t, e)
	assert.Equal(t, byte(0x89), e.code)
	assert.Equal(t, uint16(0x800A), wireAddress(e, addr.Offset))

	taddr := MemoryAddress{Area: "T", Offset: 10}
	te := lookupArea(taddr, false, accessRead)
	require.NotNil(t, te)
	assert.Equal(t, uint16(10), wireAddress(te, taddr.Offset))
}
