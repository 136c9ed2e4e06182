package fins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndCodeToError(t *testing.T) {
	assert.NoError(t, endCodeToError(EndCodeNormalCompletion))

	err := endCodeToError(EndCodeAddressRangeExceeded)
	require.Error(t, err)
	var ec EndCodeError
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, EndCodeAddressRangeExceeded, ec.Code)
	assert.Equal(t, byte(0x11), ec.Main())
	assert.Equal(t, byte(0x04), ec.Sub())
	assert.Contains(t, ec.Error(), "address range exceeded")
}

func TestEndCodeErrorUnknownCodes(t *testing.T) {
	// A known main code with an unknown sub code falls back to the main
	// code message.
	ec := EndCodeError{Code: 0x11FF}
	assert.Contains(t, ec.Error(), "0x11FF")

	// A fully unknown code still formats.
	unknown := EndCodeError{Code: 0x7F7F}
	assert.Contains(t, unknown.Error(), "0x7F7F")
}
