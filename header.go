package fins

// Header A FINS frame header
type Header struct {
	messageType      uint8
	responseRequired bool
	src              FinsAddress
	dst              FinsAddress
	serviceID        byte
	gatewayCount     uint8
}

const (
	// MessageTypeCommand Command message type
	MessageTypeCommand uint8 = iota

	// MessageTypeResponse Response message type
	MessageTypeResponse
)

func defaultHeader(messageType uint8, responseRequired bool, src FinsAddress, dst FinsAddress, serviceID byte) Header {
	return Header{
		messageType:      messageType,
		responseRequired: responseRequired,
		gatewayCount:     2,
		src:              src,
		dst:              dst,
		serviceID:        serviceID,
	}
}

func defaultCommandHeader(src FinsAddress, dst FinsAddress, serviceID byte) Header {
	return defaultHeader(MessageTypeCommand, true, src, dst, serviceID)
}

func defaultResponseHeader(commandHeader Header) Header {
	return defaultHeader(MessageTypeResponse, false, commandHeader.dst, commandHeader.src, commandHeader.serviceID)
}
