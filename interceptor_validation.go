package fins

import "fmt"

// ValidationInterceptor creates an interceptor that validates operation parameters
// before executing them. It checks for common mistakes like zero counts or invalid data.
//
// Example:
//
//	client.SetInterceptor(fins.ValidationInterceptor())
//
//	// This will fail validation
//	_, err := client.ReadWords(ctx, "D100", 0)
//	// Error: invalid read count: 0
func ValidationInterceptor() Interceptor {
	return ValidationInterceptorWithLimits(1000, 1000)
}

// ValidationInterceptorWithLimits creates a validation interceptor with custom limits
// maxReadCount: maximum number of words that can be read in a single operation
// maxWriteCount: maximum number of words that can be written in a single operation
//
// Example:
//
//	client.SetInterceptor(fins.ValidationInterceptorWithLimits(500, 500))
func ValidationInterceptorWithLimits(maxReadCount, maxWriteCount int) Interceptor {
	return func(c *InterceptorCtx) (interface{}, error) {
		info := c.Info()
		// Validate based on operation type
		switch info.Operation {
		case OpReadWords, OpReadBytes, OpReadString, OpReadBCD16, OpReadSignedBCD16:
			if info.Count == 0 {
				return nil, fmt.Errorf("invalid read count: 0")
			}
			if info.Count > maxReadCount {
				return nil, fmt.Errorf("read count too large: %d (max %d)", info.Count, maxReadCount)
			}

		case OpReadBits:
			if info.Count == 0 {
				return nil, fmt.Errorf("invalid read count: 0")
			}
			if info.Count > maxReadCount*16 { // Bits are packed
				return nil, fmt.Errorf("read count too large: %d (max %d)", info.Count, maxReadCount*16)
			}

		case OpWriteWords:
			data, ok := info.Data.([]uint16)
			if !ok {
				return nil, fmt.Errorf("invalid write data type: expected []uint16")
			}
			if len(data) == 0 {
				return nil, fmt.Errorf("invalid write data: empty slice")
			}
			if len(data) > maxWriteCount {
				return nil, fmt.Errorf("write count too large: %d (max %d)", len(data), maxWriteCount)
			}

		case OpWriteBCD16, OpWriteSignedBCD16:
			data, ok := info.Data.([]int16)
			if !ok {
				return nil, fmt.Errorf("invalid write data type: expected []int16")
			}
			if len(data) == 0 {
				return nil, fmt.Errorf("invalid write data: empty slice")
			}
			if len(data) > maxWriteCount {
				return nil, fmt.Errorf("write count too large: %d (max %d)", len(data), maxWriteCount)
			}

		case OpWriteBytes, OpWriteString:
			var dataLen int
			switch d := info.Data.(type) {
			case []byte:
				dataLen = len(d)
			case string:
				dataLen = len(d)
			default:
				return nil, fmt.Errorf("invalid write data type")
			}
			if info.Operation == OpWriteBytes && dataLen == 0 {
				return nil, fmt.Errorf("invalid write data: empty")
			}
			if dataLen > maxWriteCount*2 { // Bytes are packed into words
				return nil, fmt.Errorf("write size too large: %d bytes (max %d)", dataLen, maxWriteCount*2)
			}

		case OpWriteBits:
			data, ok := info.Data.([]bool)
			if !ok {
				return nil, fmt.Errorf("invalid write data type: expected []bool")
			}
			if len(data) == 0 {
				return nil, fmt.Errorf("invalid write data: empty slice")
			}
			if len(data) > maxWriteCount*16 {
				return nil, fmt.Errorf("write count too large: %d (max %d)", len(data), maxWriteCount*16)
			}

		case OpFillArea:
			if info.Count == 0 {
				return nil, fmt.Errorf("invalid fill count: 0")
			}
			if info.Count > maxWriteCount {
				return nil, fmt.Errorf("fill count too large: %d (max %d)", info.Count, maxWriteCount)
			}
		}

		return c.Invoke(nil)
	}
}

// AddressRange limits the word offsets an operation may touch in one area.
type AddressRange struct {
	Min, Max uint16
}

// AddressRangeValidator creates an interceptor that validates address ranges
// It ensures operations only access allowed memory regions. Keys are area
// mnemonics as they appear in textual addresses ("D", "CIO", "W", ...).
//
// Example:
//
//	// Only allow DM addresses 0-999
//	validator := fins.AddressRangeValidator(map[string]fins.AddressRange{
//		"D": {Min: 0, Max: 999},
//	})
//	client.SetInterceptor(validator)
func AddressRangeValidator(allowedRanges map[string]AddressRange) Interceptor {
	return func(c *InterceptorCtx) (interface{}, error) {
		info := c.Info()
		if info.Address == "" {
			// Non-area commands carry no address to check.
			return c.Invoke(nil)
		}

		addr, err := ParseAddress(info.Address)
		if err != nil {
			return nil, err
		}

		addrRange, allowed := allowedRanges[addr.Area]
		if !allowed {
			return nil, fmt.Errorf("memory area %s is not allowed", addr.Area)
		}

		if addr.Offset < addrRange.Min || addr.Offset > addrRange.Max {
			return nil, fmt.Errorf("address %s is outside allowed range [%d-%d] for area %s",
				info.Address, addrRange.Min, addrRange.Max, addr.Area)
		}

		// Word transfers must fit inside the range end to end. Bit runs
		// occupy sixteen per word.
		if info.Count > 0 && !addr.HasBit {
			endOffset := int(addr.Offset) + info.Count - 1
			if endOffset > int(addrRange.Max) {
				return nil, fmt.Errorf("operation would access address %d, which exceeds max %d",
					endOffset, addrRange.Max)
			}
		}

		return c.Invoke(nil)
	}
}

// ReadOnlyInterceptor creates an interceptor that blocks all write operations
//
// Example:
//
//	client.SetInterceptor(fins.ReadOnlyInterceptor())
func ReadOnlyInterceptor() Interceptor {
	return func(c *InterceptorCtx) (interface{}, error) {
		info := c.Info()
		if info.Operation.IsWrite() {
			return nil, fmt.Errorf("write operation %s is not allowed in read-only mode", info.Operation)
		}

		return c.Invoke(nil)
	}
}
