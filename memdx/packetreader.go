package memdx

import (
	"io"
)

const defaultReadBufferSize = 16 * 1024

// DefaultMaxPacketSize is the largest packet, header included, accepted by a
// PacketReader which does not set MaxPacketSize.
const DefaultMaxPacketSize = 32 * 1024 * 1024

// PacketReader frames packets out of a byte stream.  Bytes which arrive
// beyond the end of a packet are kept for the next read, and bytes of a
// packet which has not fully arrived yet are never discarded.
type PacketReader struct {
	// BufferSize is the initial size of the read buffer.  The buffer grows
	// to fit any packet larger than this.
	BufferSize int

	// MaxPacketSize bounds the size, header included, of a packet the reader
	// will buffer.  A header declaring a larger packet is reported as a
	// *MalformedPacketError matching ErrPacketTooLarge before any of its
	// body is read.  DefaultMaxPacketSize is used when it is not positive.
	MaxPacketSize int

	buf   []byte
	start int
	end   int
}

// Buffered returns the number of bytes read from the stream which have not
// been consumed by a packet yet.
func (pr *PacketReader) Buffered() int {
	return pr.end - pr.start
}

func (pr *PacketReader) ReadResponse(r io.Reader) (*Response, int, error) {
	return readPacket(pr, r, DecodeResponse)
}

func (pr *PacketReader) ReadRequest(r io.Reader) (*Request, int, error) {
	return readPacket(pr, r, DecodeRequest)
}

func readPacket[T any](pr *PacketReader, r io.Reader, decode func([]byte) (*T, int, error)) (*T, int, error) {
	for {
		err := pr.checkSize()
		if err != nil {
			return nil, 0, err
		}

		pak, n, err := decode(pr.buf[pr.start:pr.end])
		if err != nil {
			return nil, 0, err
		}

		if pak != nil {
			pr.start += n
			if pr.start == pr.end {
				pr.start = 0
				pr.end = 0
			}
			return pak, n, nil
		}

		err = pr.fill(r)
		if err != nil {
			return nil, 0, err
		}
	}
}

// checkSize rejects the packet at the start of the buffer if its header
// declares more than MaxPacketSize bytes.
func (pr *PacketReader) checkSize() error {
	if pr.Buffered() < HeaderLen {
		return nil
	}

	maxSize := pr.MaxPacketSize
	if maxSize <= 0 {
		maxSize = DefaultMaxPacketSize
	}

	hdr := decodeHeader(pr.buf[pr.start:])
	if uint64(HeaderLen)+uint64(hdr.bodyLen) > uint64(maxSize) {
		return &MalformedPacketError{
			Cause:  ErrPacketTooLarge,
			Magic:  hdr.magic,
			OpCode: hdr.opCode,
		}
	}

	return nil
}

// fill reads at least one more byte from r, making room for the rest of the
// packet which is currently at the start of the buffer.
func (pr *PacketReader) fill(r io.Reader) error {
	need := HeaderLen
	if pr.Buffered() >= HeaderLen {
		need = HeaderLen + int(decodeHeader(pr.buf[pr.start:]).bodyLen)
	}

	if len(pr.buf)-pr.start < need {
		if need <= len(pr.buf) {
			copy(pr.buf, pr.buf[pr.start:pr.end])
		} else {
			newSize := pr.BufferSize
			if newSize <= 0 {
				newSize = defaultReadBufferSize
			}
			for newSize < need {
				newSize *= 2
			}

			newBuf := make([]byte, newSize)
			copy(newBuf, pr.buf[pr.start:pr.end])
			pr.buf = newBuf
		}

		pr.end -= pr.start
		pr.start = 0
	}

	for {
		n, err := r.Read(pr.buf[pr.end:])
		pr.end += n
		if n > 0 {
			return nil
		}

		if err == io.EOF && pr.Buffered() > 0 {
			return io.ErrUnexpectedEOF
		} else if err != nil {
			return err
		}
	}
}
