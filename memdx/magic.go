package memdx

import "encoding/hex"

// Magic identifies the direction of a packet.
type Magic uint8

const (
	// MagicReq indicates that the packet is a request.
	MagicReq = Magic(0x80)

	// MagicRes indicates that the packet is a response.
	MagicRes = Magic(0x81)
)

func (m Magic) IsRequest() bool {
	return m == MagicReq
}

func (m Magic) IsResponse() bool {
	return m == MagicRes
}

func (m Magic) String() string {
	switch m {
	case MagicReq:
		return "Req"
	case MagicRes:
		return "Res"
	}

	return "x" + hex.EncodeToString([]byte{byte(m)})
}

// DataType is the data type byte of a packet header.
type DataType uint8

const (
	// DatatypeRaw indicates the value is an opaque sequence of bytes.
	// It is the only data type understood by this package.
	DatatypeRaw = DataType(0x00)
)

// ParseDataType returns the data type for a header byte, and false if the
// byte is not a data type this package understands.
func ParseDataType(b uint8) (DataType, bool) {
	if DataType(b) == DatatypeRaw {
		return DatatypeRaw, true
	}
	return 0, false
}

func (d DataType) String() string {
	if d == DatatypeRaw {
		return "Raw"
	}
	return "x" + hex.EncodeToString([]byte{byte(d)})
}
