package memdx

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("github.com/couchbase/memdcodec/memdx")
)

var (
	// packetsWritten and bytesWritten track every packet written by a Conn.
	packetsWritten, _ = meter.Int64Counter("memdx.packets_written")
	bytesWritten, _   = meter.Int64Counter("memdx.bytes_written", metric.WithUnit("By"))

	// packetsRead and bytesRead track every well-formed packet read by a Conn.
	packetsRead, _ = meter.Int64Counter("memdx.packets_read")
	bytesRead, _   = meter.Int64Counter("memdx.bytes_read", metric.WithUnit("By"))

	// malformedPackets tracks complete packets which failed header validation.
	malformedPackets, _ = meter.Int64Counter("memdx.malformed_packets")
)
