package memdx

import (
	"context"
	"io"
	"net"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/couchbase/memdcodec/zaputils"
)

var enablePacketLogging bool = os.Getenv("MEMDCODEC_PACKET_LOGGING") != ""

var ErrDeadlineNotSupported = errors.New("stream does not support deadlines")

type ConnOptions struct {
	Logger *zap.Logger

	// ReadBufferSize is the initial size of the read buffer, see
	// PacketReader.BufferSize.
	ReadBufferSize int

	// MaxPacketSize is the largest packet accepted by the reads, see
	// PacketReader.MaxPacketSize.
	MaxPacketSize int

	// PacketLogging logs every packet read or written at debug level.  It
	// is also enabled by the MEMDCODEC_PACKET_LOGGING environment variable.
	PacketLogging bool
}

type DialConnOptions struct {
	ConnOptions

	// Dialer is used to open the connection, a zero net.Dialer is used
	// when it is nil.
	Dialer *net.Dialer
}

// ConnStats is a snapshot of the traffic seen by a Conn.
type ConnStats struct {
	PacketsWritten uint64
	PacketsRead    uint64
	BytesWritten   uint64
	BytesRead      uint64
}

// Conn moves packets over a byte stream.  It performs no request tracking,
// retries or timeouts.  One goroutine may read while another writes, but
// reads must not be issued concurrently with each other, and neither may
// writes.  Stats may be called from anywhere.
type Conn struct {
	rw            io.ReadWriter
	logger        *zap.Logger
	packetLogging bool

	reader PacketReader
	writer PacketWriter

	packetsWritten atomic.Uint64
	packetsRead    atomic.Uint64
	bytesWritten   atomic.Uint64
	bytesRead      atomic.Uint64
}

func NewConn(rw io.ReadWriter, opts *ConnOptions) *Conn {
	if opts == nil {
		opts = &ConnOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Conn{
		rw:            rw,
		logger:        logger,
		packetLogging: opts.PacketLogging || enablePacketLogging,
		reader: PacketReader{
			BufferSize:    opts.ReadBufferSize,
			MaxPacketSize: opts.MaxPacketSize,
		},
	}
}

// DialConn opens a TCP connection to address and wraps it in a Conn.
func DialConn(ctx context.Context, address string, opts *DialConnOptions) (*Conn, error) {
	if opts == nil {
		opts = &DialConnOptions{}
	}

	dialer := opts.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	netConn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", address)
	}

	conn := NewConn(netConn, &opts.ConnOptions)
	conn.logger.Debug("connected",
		zap.String("address", address),
		zap.Stringer("localAddr", netConn.LocalAddr()))

	return conn, nil
}

func (c *Conn) WriteRequest(req *Request) error {
	n, err := c.writer.WriteRequest(c.rw, req)
	if err != nil {
		if errors.Is(err, ErrProtocol) {
			return err
		}
		return errors.Wrap(err, "failed to write request")
	}

	if c.packetLogging {
		c.logger.Debug("wrote request",
			zaputils.Code("opcode", req.OpCode),
			zap.Uint16("vbucketID", req.VbucketID),
			zap.Uint32("opaque", req.Opaque),
			zap.Uint64("cas", req.Cas),
			zaputils.Payload("extras", req.Extras),
			zaputils.ItemKey("key", req.Key),
			zaputils.Payload("value", req.Value),
		)
	}

	c.recordWrite(n)
	return nil
}

func (c *Conn) WriteResponse(resp *Response) error {
	n, err := c.writer.WriteResponse(c.rw, resp)
	if err != nil {
		if errors.Is(err, ErrProtocol) {
			return err
		}
		return errors.Wrap(err, "failed to write response")
	}

	if c.packetLogging {
		c.logger.Debug("wrote response",
			zaputils.Code("opcode", resp.OpCode),
			zaputils.Code("status", resp.Status),
			zap.Uint32("opaque", resp.Opaque),
			zap.Uint64("cas", resp.Cas),
		)
	}

	c.recordWrite(n)
	return nil
}

// ReadResponse blocks until a whole response has arrived.  A malformed
// packet is returned as is (matching ErrProtocol) and leaves the stream in
// an unknown state, the connection should be closed.
func (c *Conn) ReadResponse() (*Response, error) {
	resp, n, err := c.reader.ReadResponse(c.rw)
	if err != nil {
		return nil, c.readError(err, "failed to read response")
	}

	if c.packetLogging {
		c.logger.Debug("read response",
			zaputils.Code("opcode", resp.OpCode),
			zaputils.Code("status", resp.Status),
			zap.Uint32("opaque", resp.Opaque),
			zap.Uint64("cas", resp.Cas),
			zaputils.Payload("extras", resp.Extras),
			zaputils.ItemKey("key", resp.Key),
			zaputils.Payload("value", resp.Value),
		)
	}

	c.recordRead(n)
	return resp, nil
}

// ReadRequest blocks until a whole request has arrived, see ReadResponse.
func (c *Conn) ReadRequest() (*Request, error) {
	req, n, err := c.reader.ReadRequest(c.rw)
	if err != nil {
		return nil, c.readError(err, "failed to read request")
	}

	if c.packetLogging {
		c.logger.Debug("read request",
			zaputils.Code("opcode", req.OpCode),
			zap.Uint16("vbucketID", req.VbucketID),
			zap.Uint32("opaque", req.Opaque),
			zaputils.ItemKey("key", req.Key),
		)
	}

	c.recordRead(n)
	return req, nil
}

func (c *Conn) readError(err error, msg string) error {
	if errors.Is(err, ErrProtocol) {
		malformedPackets.Add(context.Background(), 1)
		c.logger.Debug("received malformed packet", zap.Error(err))
		return err
	}

	return errors.Wrap(err, msg)
}

func (c *Conn) recordWrite(n int) {
	c.packetsWritten.Inc()
	c.bytesWritten.Add(uint64(n))
	packetsWritten.Add(context.Background(), 1)
	bytesWritten.Add(context.Background(), int64(n))
}

func (c *Conn) recordRead(n int) {
	c.packetsRead.Inc()
	c.bytesRead.Add(uint64(n))
	packetsRead.Add(context.Background(), 1)
	bytesRead.Add(context.Background(), int64(n))
}

func (c *Conn) Stats() ConnStats {
	return ConnStats{
		PacketsWritten: c.packetsWritten.Load(),
		PacketsRead:    c.packetsRead.Load(),
		BytesWritten:   c.bytesWritten.Load(),
		BytesRead:      c.bytesRead.Load(),
	}
}

// SetDeadline sets the read and write deadline of the underlying stream.  It
// returns ErrDeadlineNotSupported if the stream has no SetDeadline method,
// as is the case for plain io.ReadWriters.
func (c *Conn) SetDeadline(t time.Time) error {
	dl, ok := c.rw.(interface{ SetDeadline(time.Time) error })
	if !ok {
		return ErrDeadlineNotSupported
	}

	return dl.SetDeadline(t)
}

// Close closes the underlying stream if it is an io.Closer.
func (c *Conn) Close() error {
	closer, ok := c.rw.(io.Closer)
	if !ok {
		return nil
	}

	return closer.Close()
}
