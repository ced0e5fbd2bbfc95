package memdx

import (
	"encoding/binary"
	"io"
	"math"
)

// HeaderLen is the size of the fixed header which starts every packet.
const HeaderLen = 24

// header is the decoded fixed header of a packet.  vbucketOrStatus holds the
// vbucket id of a request or the status of a response.
type header struct {
	magic           uint8
	opCode          uint8
	keyLen          uint16
	extrasLen       uint8
	datatype        uint8
	vbucketOrStatus uint16
	bodyLen         uint32
	opaque          uint32
	cas             uint64
}

func checkPacketLengths(extras, key, value []byte) error {
	if len(key) > math.MaxUint16 {
		return fieldOverflowError{Cause: ErrKeyTooLong, Length: uint64(len(key)), Max: math.MaxUint16}
	}

	if len(extras) > math.MaxUint8 {
		return fieldOverflowError{Cause: ErrExtrasTooLong, Length: uint64(len(extras)), Max: math.MaxUint8}
	}

	bodyLen := uint64(len(extras)) + uint64(len(key)) + uint64(len(value))
	if bodyLen > math.MaxUint32 {
		return fieldOverflowError{Cause: ErrBodyTooLong, Length: bodyLen, Max: math.MaxUint32}
	}

	return nil
}

// appendPacket appends a complete packet to buf.  The lengths must already
// have been validated with checkPacketLengths.
func appendPacket(buf []byte, hdr header, extras, key, value []byte) []byte {
	totalLen := HeaderLen + len(extras) + len(key) + len(value)

	// do a single resize so we dont incrementally grow on each append.
	if cap(buf)-len(buf) < totalLen {
		grown := make([]byte, len(buf), len(buf)+totalLen)
		copy(grown, buf)
		buf = grown
	}

	buf = append(buf, hdr.magic, hdr.opCode)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(key)))
	buf = append(buf, uint8(len(extras)), hdr.datatype)
	buf = binary.BigEndian.AppendUint16(buf, hdr.vbucketOrStatus)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(extras)+len(key)+len(value)))
	buf = binary.BigEndian.AppendUint32(buf, hdr.opaque)
	buf = binary.BigEndian.AppendUint64(buf, hdr.cas)

	// the wire format mandates extras, then key, then value.
	buf = append(buf, extras...)
	buf = append(buf, key...)
	buf = append(buf, value...)

	return buf
}

// frameLen returns the length of the packet at the start of buf, and false
// if buf does not yet hold a whole packet.
func frameLen(buf []byte) (int, bool) {
	if len(buf) < HeaderLen {
		return 0, false
	}

	bodyLen := uint64(binary.BigEndian.Uint32(buf[8:]))
	if uint64(len(buf)) < HeaderLen+bodyLen {
		return 0, false
	}

	return HeaderLen + int(bodyLen), true
}

// decodeHeader reads the header at the start of buf, which must hold at
// least HeaderLen bytes.
func decodeHeader(buf []byte) header {
	return header{
		magic:           buf[0],
		opCode:          buf[1],
		keyLen:          binary.BigEndian.Uint16(buf[2:]),
		extrasLen:       buf[4],
		datatype:        buf[5],
		vbucketOrStatus: binary.BigEndian.Uint16(buf[6:]),
		bodyLen:         binary.BigEndian.Uint32(buf[8:]),
		opaque:          binary.BigEndian.Uint32(buf[12:]),
		cas:             binary.BigEndian.Uint64(buf[16:]),
	}
}

// splitBody copies the body of a validated packet and slices it into its
// extras, key and value.  Zero-length sections are returned as nil.
func splitBody(hdr header, body []byte) (extras, key, value []byte) {
	// we intentionally copy the body so that the caller is free to reuse
	// its read buffer once the packet has been consumed.
	payload := make([]byte, len(body))
	copy(payload, body)

	extrasLen := int(hdr.extrasLen)
	keyLen := int(hdr.keyLen)

	if extrasLen > 0 {
		extras = payload[:extrasLen:extrasLen]
	}
	if keyLen > 0 {
		key = payload[extrasLen : extrasLen+keyLen : extrasLen+keyLen]
	}
	if len(payload) > extrasLen+keyLen {
		value = payload[extrasLen+keyLen:]
	}

	return extras, key, value
}

// validateHeader checks the magic, opcode and data type of a complete packet,
// reporting the first failure in header order.
func validateHeader(hdr header, magic Magic) (OpCode, DataType, error) {
	malformed := func(cause error) error {
		return &MalformedPacketError{
			Cause:  cause,
			Magic:  hdr.magic,
			OpCode: hdr.opCode,
		}
	}

	if Magic(hdr.magic) != magic {
		return 0, 0, malformed(ErrUnknownMagic)
	}

	opCode, ok := ParseOpCode(hdr.opCode)
	if !ok {
		return 0, 0, malformed(ErrUnknownOpCode)
	}

	datatype, ok := ParseDataType(hdr.datatype)
	if !ok {
		return 0, 0, malformed(ErrUnknownDataType)
	}

	return opCode, datatype, nil
}

func validateBodyLength(hdr header) error {
	if uint64(hdr.extrasLen)+uint64(hdr.keyLen) > uint64(hdr.bodyLen) {
		return &MalformedPacketError{
			Cause:  ErrInvalidBodyLength,
			Magic:  hdr.magic,
			OpCode: hdr.opCode,
		}
	}
	return nil
}

// SplitPacket is a bufio.SplitFunc which yields one whole packet, of either
// direction, per token.  The packet is not validated.  Note that
// bufio.Scanner limits tokens to its buffer size, see Scanner.Buffer.
func SplitPacket(data []byte, atEOF bool) (advance int, token []byte, err error) {
	n, ok := frameLen(data)
	if !ok {
		if atEOF && len(data) > 0 {
			return 0, nil, io.ErrUnexpectedEOF
		}
		return 0, nil, nil
	}

	return n, data[:n], nil
}
