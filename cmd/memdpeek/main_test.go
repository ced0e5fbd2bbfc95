package main

import (
	"bytes"
	"encoding/hex"
	"math"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchbase/memdcodec/memdx"
)

func TestEncodeGet(t *testing.T) {
	var out bytes.Buffer
	err := runEncode([]string{"-op", "get", "-key", "Hello"}, &out)
	require.NoError(t, err)

	assert.Equal(t,
		"800000050000000000000005000000000000000000000000"+"48656c6c6f\n",
		out.String())
}

func TestEncodeUnknownOp(t *testing.T) {
	var out bytes.Buffer
	err := runEncode([]string{"-op", "frobnicate"}, &out)
	assert.Error(t, err)
	assert.Zero(t, out.Len())
}

func TestBuildRequestExtras(t *testing.T) {
	clock := memdx.ClockFunc(func() time.Time { return time.Unix(1000, 0) })

	f := requestFlags{op: "set", key: "k", value: "v", flags: 0xdeadbeef, expiry: 2 * time.Hour}
	req, err := f.buildRequest(clock)
	require.NoError(t, err)
	assert.Equal(t, memdx.OpCodeSet, req.OpCode)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x00, 0x1c, 0x20}, req.Extras)

	f = requestFlags{op: "incr", key: "k", delta: 3, initial: 1}
	req, err = f.buildRequest(clock)
	require.NoError(t, err)
	assert.Equal(t, memdx.OpCodeIncrement, req.OpCode)
	assert.Equal(t, uint64(3), memdx.DecodeIncrementExtras(req.Extras).Delta())

	f = requestFlags{op: "noop"}
	req, err = f.buildRequest(clock)
	require.NoError(t, err)
	assert.Nil(t, req.Extras)
	assert.Nil(t, req.Key)
}

func TestDecode(t *testing.T) {
	buf, err := (&memdx.Response{
		OpCode: memdx.OpCodeVersion,
		Opaque: 9,
		Value:  []byte("1.6.21"),
	}).Encode()
	require.NoError(t, err)

	var out bytes.Buffer
	err = runDecode([]string{hex.EncodeToString(buf)}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "opcode:   VERSION\n")
	assert.Contains(t, out.String(), "opaque:   9\n")
	assert.Contains(t, out.String(), "version:  v1.6.21\n")
}

func TestDecodeIncomplete(t *testing.T) {
	var out bytes.Buffer
	err := runDecode([]string{"8100"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "incomplete: 2 bytes available\n", out.String())
}

func TestDecodeMalformed(t *testing.T) {
	buf, err := (&memdx.Response{OpCode: memdx.OpCodeNoop}).Encode()
	require.NoError(t, err)
	buf[0] = 0x80

	var out bytes.Buffer
	err = runDecode([]string{hex.EncodeToString(buf)}, &out)
	assert.ErrorIs(t, err, memdx.ErrUnknownMagic)
}

func TestSendTimesOutOnSilentServer(t *testing.T) {
	lsnr, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	accepted := make(chan net.Conn, 1)
	go func() {
		netConn, err := lsnr.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- netConn
	}()
	defer func() {
		_ = lsnr.Close()
		if netConn, ok := <-accepted; ok {
			_ = netConn.Close()
		}
	}()

	addr := lsnr.Addr().(*net.TCPAddr)
	start := time.Now()

	var out bytes.Buffer
	err = runSend([]string{
		"-addr", "memcached://127.0.0.1:" + strconv.Itoa(addr.Port),
		"-timeout", "200ms",
		"-op", "noop",
	}, &out)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Zero(t, out.Len())
}

func TestBuildRequestRejectsOutOfRange(t *testing.T) {
	clock := memdx.ClockFunc(time.Now)

	type test struct {
		Name  string
		Flags requestFlags
	}

	tests := []test{
		{"Flags", requestFlags{op: "set", flags: 1 << 32}},
		{"Level", requestFlags{op: "verbosity", level: 1 << 32}},
		{"Opaque", requestFlags{op: "get", opaque: 1 << 32}},
		{"Vbucket", requestFlags{op: "get", vbucket: 1 << 16}},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			req, err := test.Flags.buildRequest(clock)
			assert.Error(t, err)
			assert.Nil(t, req)
		})
	}

	f := requestFlags{op: "get", opaque: math.MaxUint32, vbucket: math.MaxUint16}
	req, err := f.buildRequest(clock)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), req.Opaque)
	assert.Equal(t, uint16(math.MaxUint16), req.VbucketID)
}

func TestEncodeRejectsOutOfRangeFlag(t *testing.T) {
	var out bytes.Buffer
	err := runEncode([]string{"-op", "set", "-key", "k", "-flags", "4294967296"}, &out)
	assert.Error(t, err)
	assert.Zero(t, out.Len())
}
