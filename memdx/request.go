package memdx

import (
	"io"
)

// Request is a request packet.  The magic is always MagicReq and is not
// stored.  Extras, Key and Value are written in that order and may be nil.
type Request struct {
	OpCode    OpCode
	Datatype  DataType
	VbucketID uint16
	Opaque    uint32
	Cas       uint64
	Extras    []byte
	Key       []byte
	Value     []byte
}

// Len returns the encoded size of the request, header included.
func (r *Request) Len() int {
	return HeaderLen + len(r.Extras) + len(r.Key) + len(r.Value)
}

func (r *Request) header() header {
	return header{
		magic:           uint8(MagicReq),
		opCode:          uint8(r.OpCode),
		datatype:        uint8(r.Datatype),
		vbucketOrStatus: r.VbucketID,
		opaque:          r.Opaque,
		cas:             r.Cas,
	}
}

// AppendTo appends the encoded request to buf.  If a length field would
// overflow, buf is returned untouched along with an error matching
// ErrProtocol and one of ErrKeyTooLong, ErrExtrasTooLong or ErrBodyTooLong.
func (r *Request) AppendTo(buf []byte) ([]byte, error) {
	err := checkPacketLengths(r.Extras, r.Key, r.Value)
	if err != nil {
		return buf, err
	}

	return appendPacket(buf, r.header(), r.Extras, r.Key, r.Value), nil
}

// Encode returns the request as a newly allocated byte slice.
func (r *Request) Encode() ([]byte, error) {
	return r.AppendTo(make([]byte, 0, r.Len()))
}

// WriteTo writes the encoded request to w with a single Write call.  Errors
// from w are returned unchanged.
func (r *Request) WriteTo(w io.Writer) (int64, error) {
	buf, err := r.Encode()
	if err != nil {
		return 0, err
	}

	n, err := w.Write(buf)
	return int64(n), err
}

// DecodeRequest parses the request at the start of buf.  It follows the same
// contract as DecodeResponse: nil, 0, nil when buf does not yet hold the
// whole packet.
func DecodeRequest(buf []byte) (*Request, int, error) {
	n, ok := frameLen(buf)
	if !ok {
		return nil, 0, nil
	}

	hdr := decodeHeader(buf)

	opCode, datatype, err := validateHeader(hdr, MagicReq)
	if err != nil {
		return nil, 0, err
	}

	err = validateBodyLength(hdr)
	if err != nil {
		return nil, 0, err
	}

	extras, key, value := splitBody(hdr, buf[HeaderLen:n])

	return &Request{
		OpCode:    opCode,
		Datatype:  datatype,
		VbucketID: hdr.vbucketOrStatus,
		Opaque:    hdr.opaque,
		Cas:       hdr.cas,
		Extras:    extras,
		Key:       key,
		Value:     value,
	}, n, nil
}

// RequestBuilder builds a Request for a single command.  Its Extras method
// only accepts the extras type bound to that command.
type RequestBuilder[ReqX Extras] struct {
	req Request
	err error
}

// NewRequestBuilder starts a request for cmd with every other field zeroed.
// If cmd is not one of the Cmd* values and its extras types do not match its
// opcode, Build returns an error matching ErrInvalidCommand.
func NewRequestBuilder[ReqX Extras, ResX Extras](cmd Command[ReqX, ResX]) *RequestBuilder[ReqX] {
	return &RequestBuilder[ReqX]{
		req: Request{
			OpCode:   cmd.opCode,
			Datatype: DatatypeRaw,
		},
		err: cmd.check(),
	}
}

func (b *RequestBuilder[ReqX]) VbucketID(vbID uint16) *RequestBuilder[ReqX] {
	b.req.VbucketID = vbID
	return b
}

func (b *RequestBuilder[ReqX]) Opaque(opaque uint32) *RequestBuilder[ReqX] {
	b.req.Opaque = opaque
	return b
}

func (b *RequestBuilder[ReqX]) Cas(cas uint64) *RequestBuilder[ReqX] {
	b.req.Cas = cas
	return b
}

func (b *RequestBuilder[ReqX]) Extras(extras ReqX) *RequestBuilder[ReqX] {
	b.req.Extras = extras.Bytes()
	return b
}

func (b *RequestBuilder[ReqX]) Key(key []byte) *RequestBuilder[ReqX] {
	b.req.Key = key
	return b
}

func (b *RequestBuilder[ReqX]) Value(value []byte) *RequestBuilder[ReqX] {
	b.req.Value = value
	return b
}

// Build returns the request.  The builder may be reused afterwards; the
// returned request does not share the builder's state.
func (b *RequestBuilder[ReqX]) Build() (*Request, error) {
	if b.err != nil {
		return nil, b.err
	}

	req := b.req
	return &req, nil
}
