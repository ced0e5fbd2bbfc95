package memdx

import (
	"io"
)

// PacketWriter encodes packets into a buffer which is reused across writes.
type PacketWriter struct {
	// we use a heap-allocated write buffer since io.Write will cause
	// the buffer to escape regardless of what we want.
	writeBuf []byte
}

func (pw *PacketWriter) WriteRequest(w io.Writer, req *Request) (int, error) {
	err := checkPacketLengths(req.Extras, req.Key, req.Value)
	if err != nil {
		return 0, err
	}

	pw.writeBuf = appendPacket(pw.writeBuf[:0], req.header(), req.Extras, req.Key, req.Value)
	return pw.flush(w)
}

func (pw *PacketWriter) WriteResponse(w io.Writer, resp *Response) (int, error) {
	err := checkPacketLengths(resp.Extras, resp.Key, resp.Value)
	if err != nil {
		return 0, err
	}

	pw.writeBuf = appendPacket(pw.writeBuf[:0], resp.header(), resp.Extras, resp.Key, resp.Value)
	return pw.flush(w)
}

func (pw *PacketWriter) flush(w io.Writer) (int, error) {
	// Write guarentees that err is returned if n<len, so we can just ignore
	// n and only inspect the error to determine if something went wrong...
	_, err := w.Write(pw.writeBuf)
	if err != nil {
		return 0, err
	}

	return len(pw.writeBuf), nil
}
