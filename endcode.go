package fins

import "fmt"

// FINS end codes. The two bytes are a main code and a sub code; the constants
// below cover the codes in section 8 of the W227 command reference that this
// library can trigger. Codes missing from the table still surface as an
// EndCodeError with the raw value.
const (
	EndCodeNormalCompletion        uint16 = 0x0000
	EndCodeServiceCanceled         uint16 = 0x0001
	EndCodeLocalNodeNotInNetwork   uint16 = 0x0101
	EndCodeTokenTimeout            uint16 = 0x0102
	EndCodeRetriesFailed           uint16 = 0x0103
	EndCodeTooManySendFrames       uint16 = 0x0104
	EndCodeNodeAddressRangeError   uint16 = 0x0105
	EndCodeNodeAddressDuplication  uint16 = 0x0106
	EndCodeDestinationNotInNetwork uint16 = 0x0201
	EndCodeUnitMissing             uint16 = 0x0202
	EndCodeThirdNodeMissing        uint16 = 0x0203
	EndCodeDestinationNodeBusy     uint16 = 0x0204
	EndCodeResponseTimeout         uint16 = 0x0205
	EndCodeCommControllerError     uint16 = 0x0301
	EndCodeCPUUnitError            uint16 = 0x0302
	EndCodeControllerError         uint16 = 0x0303
	EndCodeUnitNumberError         uint16 = 0x0304
	EndCodeUndefinedCommand        uint16 = 0x0401
	EndCodeNotSupportedByModel     uint16 = 0x0402
	EndCodeDestinationAddressError uint16 = 0x0501
	EndCodeNoRoutingTables         uint16 = 0x0502
	EndCodeRoutingTableError       uint16 = 0x0503
	EndCodeTooManyRelays           uint16 = 0x0504
	EndCodeCommandTooLong          uint16 = 0x1001
	EndCodeCommandTooShort         uint16 = 0x1002
	EndCodeElementsDataMismatch    uint16 = 0x1003
	EndCodeCommandFormatError      uint16 = 0x1004
	EndCodeHeaderError             uint16 = 0x1005
	EndCodeAreaClassificationError uint16 = 0x1101
	EndCodeAccessSizeError         uint16 = 0x1102
	EndCodeAddressRangeError       uint16 = 0x1103
	EndCodeAddressRangeExceeded    uint16 = 0x1104
	EndCodeProgramMissing          uint16 = 0x1106
	EndCodeRelationalError         uint16 = 0x1109
	EndCodeDuplicateDataAccess     uint16 = 0x110A
	EndCodeResponseTooLong         uint16 = 0x110B
	EndCodeParameterError          uint16 = 0x110C
	EndCodeReadNotPossibleProtect  uint16 = 0x2002
	EndCodeWriteNotPossibleProtect uint16 = 0x2102
	EndCodeServiceAlreadyExecuting uint16 = 0x2605
	EndCodeServiceStopped          uint16 = 0x2606
	EndCodeNoExecutionRight        uint16 = 0x2607
)

// EndCodeError reports a structurally valid response in which the PLC
// rejected the request. The network round trip itself succeeded.
type EndCodeError struct {
	Code uint16
}

// Main returns the main code byte of the end code.
func (e EndCodeError) Main() byte { return byte(e.Code >> 8) }

// Sub returns the sub code byte of the end code.
func (e EndCodeError) Sub() byte { return byte(e.Code) }

func (e EndCodeError) Error() string {
	if msg, ok := endCodeMessages[e.Code]; ok {
		return fmt.Sprintf("fins: end code 0x%04X: %s", e.Code, msg)
	}
	if msg, ok := endCodeMainMessages[e.Main()]; ok {
		return fmt.Sprintf("fins: end code 0x%04X: %s", e.Code, msg)
	}
	return fmt.Sprintf("fins: end code 0x%04X", e.Code)
}

var endCodeMessages = map[uint16]string{
	EndCodeServiceCanceled:         "service canceled",
	EndCodeLocalNodeNotInNetwork:   "local node not in network",
	EndCodeTokenTimeout:            "token timeout",
	EndCodeRetriesFailed:           "send retries failed",
	EndCodeTooManySendFrames:       "too many send frames",
	EndCodeNodeAddressRangeError:   "node address out of range",
	EndCodeNodeAddressDuplication:  "node address duplicated",
	EndCodeDestinationNotInNetwork: "destination node not in network",
	EndCodeUnitMissing:             "destination unit missing",
	EndCodeThirdNodeMissing:        "third node missing",
	EndCodeDestinationNodeBusy:     "destination node busy",
	EndCodeResponseTimeout:         "response timeout at destination",
	EndCodeCommControllerError:     "communications controller error",
	EndCodeCPUUnitError:            "CPU unit error",
	EndCodeControllerError:         "controller error",
	EndCodeUnitNumberError:         "unit number error",
	EndCodeUndefinedCommand:        "undefined command",
	EndCodeNotSupportedByModel:     "not supported by model/version",
	EndCodeDestinationAddressError: "destination address not in routing tables",
	EndCodeNoRoutingTables:         "no routing tables",
	EndCodeRoutingTableError:       "routing table error",
	EndCodeTooManyRelays:           "too many relays",
	EndCodeCommandTooLong:          "command too long",
	EndCodeCommandTooShort:         "command too short",
	EndCodeElementsDataMismatch:    "element count and data length mismatch",
	EndCodeCommandFormatError:      "command format error",
	EndCodeHeaderError:             "header error",
	EndCodeAreaClassificationError: "area classification missing",
	EndCodeAccessSizeError:         "access size error",
	EndCodeAddressRangeError:       "address range error",
	EndCodeAddressRangeExceeded:    "address range exceeded",
	EndCodeProgramMissing:          "program missing",
	EndCodeRelationalError:         "relational error",
	EndCodeDuplicateDataAccess:     "duplicate data access",
	EndCodeResponseTooLong:         "response too long",
	EndCodeParameterError:          "parameter error",
	EndCodeReadNotPossibleProtect:  "read not possible, area protected",
	EndCodeWriteNotPossibleProtect: "write not possible, area protected",
	EndCodeServiceAlreadyExecuting: "service already executing",
	EndCodeServiceStopped:          "service stopped",
	EndCodeNoExecutionRight:        "no execution right",
}

var endCodeMainMessages = map[byte]string{
	0x01: "local node error",
	0x02: "destination node error",
	0x03: "communications controller error",
	0x04: "not executable",
	0x05: "routing error",
	0x10: "command format error",
	0x11: "parameter error",
	0x20: "read not possible",
	0x21: "write not possible",
	0x22: "not executable in current mode",
	0x23: "no such unit",
	0x25: "unit error",
	0x26: "command error",
	0x30: "access right error",
	0x40: "abort",
}

// endCodeToError maps an end code to the error surfaced to callers, nil for
// normal completion.
func endCodeToError(code uint16) error {
	if code == EndCodeNormalCompletion {
		return nil
	}
	return EndCodeError{Code: code}
}
