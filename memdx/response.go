package memdx

import (
	"io"
)

// Response is a response packet.  The magic is always MagicRes and is not
// stored.  When produced by DecodeResponse, Extras, Key and Value are views
// into a single body buffer owned by the Response, and are nil when empty.
type Response struct {
	OpCode   OpCode
	Status   Status
	Datatype DataType
	Opaque   uint32
	Cas      uint64
	Extras   []byte
	Key      []byte
	Value    []byte
}

// IsOk reports whether the response status is StatusSuccess.
func (r *Response) IsOk() bool {
	return r.Status == StatusSuccess
}

// IsErr reports whether the response status is anything but StatusSuccess.
func (r *Response) IsErr() bool {
	return !r.IsOk()
}

// Len returns the encoded size of the response, header included.  For a
// decoded response this is the number of bytes it was decoded from.
func (r *Response) Len() int {
	return HeaderLen + len(r.Extras) + len(r.Key) + len(r.Value)
}

func (r *Response) header() header {
	return header{
		magic:           uint8(MagicRes),
		opCode:          uint8(r.OpCode),
		datatype:        uint8(r.Datatype),
		vbucketOrStatus: uint16(r.Status),
		opaque:          r.Opaque,
		cas:             r.Cas,
	}
}

// AppendTo appends the encoded response to buf, see Request.AppendTo.
func (r *Response) AppendTo(buf []byte) ([]byte, error) {
	err := checkPacketLengths(r.Extras, r.Key, r.Value)
	if err != nil {
		return buf, err
	}

	return appendPacket(buf, r.header(), r.Extras, r.Key, r.Value), nil
}

// Encode returns the response as a newly allocated byte slice.
func (r *Response) Encode() ([]byte, error) {
	return r.AppendTo(make([]byte, 0, r.Len()))
}

// WriteTo writes the encoded response to w with a single Write call.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	buf, err := r.Encode()
	if err != nil {
		return 0, err
	}

	n, err := w.Write(buf)
	return int64(n), err
}

// DecodeResponse parses the response at the start of buf.
//
// It returns one of three outcomes:
//
//   - nil, 0, nil when buf does not yet hold a whole packet.  buf is left
//     untouched and the caller should call again once more bytes arrived.
//   - nil, 0, err when the packet is complete but its header is invalid.  err
//     is a *MalformedPacketError matching ErrProtocol and one of
//     ErrUnknownMagic, ErrUnknownOpCode, ErrUnknownDataType, ErrUnknownStatus
//     or ErrInvalidBodyLength.
//   - the response and the number of bytes it occupied at the start of buf.
//
// The returned response does not reference buf.
func DecodeResponse(buf []byte) (*Response, int, error) {
	n, ok := frameLen(buf)
	if !ok {
		return nil, 0, nil
	}

	hdr := decodeHeader(buf)

	opCode, datatype, err := validateHeader(hdr, MagicRes)
	if err != nil {
		return nil, 0, err
	}

	status, ok := ParseStatus(hdr.vbucketOrStatus)
	if !ok {
		return nil, 0, &MalformedPacketError{
			Cause:  ErrUnknownStatus,
			Magic:  hdr.magic,
			OpCode: hdr.opCode,
		}
	}

	err = validateBodyLength(hdr)
	if err != nil {
		return nil, 0, err
	}

	extras, key, value := splitBody(hdr, buf[HeaderLen:n])

	return &Response{
		OpCode:   opCode,
		Status:   status,
		Datatype: datatype,
		Opaque:   hdr.opaque,
		Cas:      hdr.cas,
		Extras:   extras,
		Key:      key,
		Value:    value,
	}, n, nil
}
