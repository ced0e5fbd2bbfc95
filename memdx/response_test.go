package memdx

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestResponse(t *testing.T, resp *Response) []byte {
	buf, err := resp.Encode()
	require.NoError(t, err)
	return buf
}

func TestDecodeResponse(t *testing.T) {
	buf := makeTestResponse(t, &Response{
		OpCode: OpCodeGetK,
		Status: StatusSuccess,
		Opaque: 0x11223344,
		Cas:    0xfeedface,
		Extras: NewGetExtras(0xdeadbeef).Bytes(),
		Key:    []byte("key"),
		Value:  []byte("value"),
	})

	resp, n, err := DecodeResponse(buf)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, len(buf), n)
	assert.Equal(t, OpCodeGetK, resp.OpCode)
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, DatatypeRaw, resp.Datatype)
	assert.Equal(t, uint32(0x11223344), resp.Opaque)
	assert.Equal(t, uint64(0xfeedface), resp.Cas)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, resp.Extras)
	assert.Equal(t, []byte("key"), resp.Key)
	assert.Equal(t, []byte("value"), resp.Value)
	assert.True(t, resp.IsOk())
	assert.False(t, resp.IsErr())
	assert.Equal(t, n, resp.Len())

	extras, err := ResponseExtras(CmdGetK, resp)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), extras.Flags())
}

func TestDecodeResponseEmptySectionsAreNil(t *testing.T) {
	buf := makeTestResponse(t, &Response{
		OpCode: OpCodeDelete,
		Status: StatusKeyNotFound,
	})

	resp, n, err := DecodeResponse(buf)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, HeaderLen, n)
	assert.Nil(t, resp.Extras)
	assert.Nil(t, resp.Key)
	assert.Nil(t, resp.Value)
	assert.True(t, resp.IsErr())
}

func TestDecodeResponseDoesNotAliasInput(t *testing.T) {
	buf := makeTestResponse(t, &Response{
		OpCode: OpCodeGet,
		Extras: NewGetExtras(1).Bytes(),
		Value:  []byte("value"),
	})

	resp, _, err := DecodeResponse(buf)
	require.NoError(t, err)

	for i := range buf {
		buf[i] = 0xff
	}

	assert.Equal(t, []byte("value"), resp.Value)
	assert.Equal(t, []byte{0, 0, 0, 1}, resp.Extras)
}

func TestDecodeResponseIncomplete(t *testing.T) {
	buf := makeTestResponse(t, &Response{
		OpCode: OpCodeGet,
		Extras: NewGetExtras(0).Bytes(),
		Key:    []byte("k"),
		Value:  []byte("hello"),
	})
	bodyLen := int(binary.BigEndian.Uint32(buf[8:]))
	require.Equal(t, 10, bodyLen)

	for i := 0; i < HeaderLen+bodyLen; i++ {
		resp, n, err := DecodeResponse(buf[:i])
		assert.NoError(t, err, "prefix %d", i)
		assert.Nil(t, resp, "prefix %d", i)
		assert.Zero(t, n, "prefix %d", i)
	}

	resp, n, err := DecodeResponse(buf)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, HeaderLen+bodyLen, n)
}

func TestDecodeResponseIncompleteIsStable(t *testing.T) {
	// a valid header declaring 10 body bytes, but only 5 have arrived
	buf := make([]byte, HeaderLen+5)
	buf[0] = uint8(MagicRes)
	buf[1] = uint8(OpCodeGet)
	binary.BigEndian.PutUint32(buf[8:], 10)
	orig := append([]byte(nil), buf...)

	for i := 0; i < 10; i++ {
		resp, n, err := DecodeResponse(buf)
		require.NoError(t, err)
		require.Nil(t, resp)
		require.Zero(t, n)
	}

	assert.Equal(t, orig, buf)
}

func TestDecodeResponseIncompleteBeforeValidation(t *testing.T) {
	// bad magic, but the body has not arrived yet so this is not reported
	buf := make([]byte, HeaderLen)
	buf[0] = 0x42
	binary.BigEndian.PutUint32(buf[8:], 4)

	resp, n, err := DecodeResponse(buf)
	assert.NoError(t, err)
	assert.Nil(t, resp)
	assert.Zero(t, n)

	_, _, err = DecodeResponse(append(buf, 0, 0, 0, 0))
	assert.ErrorIs(t, err, ErrUnknownMagic)
}

func TestDecodeResponseConsumesOnePacket(t *testing.T) {
	first := makeTestResponse(t, &Response{OpCode: OpCodeNoop, Opaque: 1})
	second := makeTestResponse(t, &Response{OpCode: OpCodeVersion, Opaque: 2, Value: []byte("1.6.21")})
	stream := append(append([]byte(nil), first...), second...)

	resp, n, err := DecodeResponse(stream)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), resp.Opaque)
	assert.Equal(t, len(first), n)

	resp, n, err = DecodeResponse(stream[n:])
	require.NoError(t, err)
	assert.Equal(t, uint32(2), resp.Opaque)
	assert.Equal(t, len(second), n)
	assert.Equal(t, []byte("1.6.21"), resp.Value)
}

func TestDecodeResponseMalformed(t *testing.T) {
	type test struct {
		Name   string
		Mutate func(buf []byte)
		Err    error
	}

	tests := []test{
		{
			Name:   "RequestMagic",
			Mutate: func(buf []byte) { buf[0] = uint8(MagicReq) },
			Err:    ErrUnknownMagic,
		},
		{
			Name:   "GarbageMagic",
			Mutate: func(buf []byte) { buf[0] = 0x00 },
			Err:    ErrUnknownMagic,
		},
		{
			Name:   "UnknownOpCode",
			Mutate: func(buf []byte) { buf[1] = 0xfe },
			Err:    ErrUnknownOpCode,
		},
		{
			Name:   "UnknownDataType",
			Mutate: func(buf []byte) { buf[5] = 0x01 },
			Err:    ErrUnknownDataType,
		},
		{
			Name:   "UnknownStatus",
			Mutate: func(buf []byte) { binary.BigEndian.PutUint16(buf[6:], 0x1234) },
			Err:    ErrUnknownStatus,
		},
		{
			Name:   "KeyBeyondBody",
			Mutate: func(buf []byte) { binary.BigEndian.PutUint16(buf[2:], 200) },
			Err:    ErrInvalidBodyLength,
		},
		{
			Name:   "MagicCheckedFirst",
			Mutate: func(buf []byte) { buf[0] = 0x00; buf[1] = 0xfe; buf[5] = 0x01 },
			Err:    ErrUnknownMagic,
		},
		{
			Name:   "StatusCheckedAfterDataType",
			Mutate: func(buf []byte) { buf[5] = 0x01; binary.BigEndian.PutUint16(buf[6:], 0x1234) },
			Err:    ErrUnknownDataType,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			buf := makeTestResponse(t, &Response{
				OpCode: OpCodeGet,
				Extras: NewGetExtras(0).Bytes(),
				Value:  []byte("v"),
			})
			test.Mutate(buf)

			resp, n, err := DecodeResponse(buf)
			assert.Nil(t, resp)
			assert.Zero(t, n)
			assert.ErrorIs(t, err, test.Err)
			assert.ErrorIs(t, err, ErrProtocol)

			var malformedErr *MalformedPacketError
			require.ErrorAs(t, err, &malformedErr)
			assert.Equal(t, buf[0], malformedErr.Magic)
			assert.Equal(t, buf[1], malformedErr.OpCode)
		})
	}
}

func TestResponseStatusDerivation(t *testing.T) {
	for _, status := range []Status{StatusKeyNotFound, StatusKeyExists, StatusBusy, StatusTmpFail} {
		resp := &Response{Status: status}
		assert.True(t, resp.IsErr(), status.String())
		assert.False(t, resp.IsOk(), status.String())
	}
}

func TestResponseEncodeOverflow(t *testing.T) {
	resp := &Response{
		OpCode: OpCodeGetK,
		Key:    make([]byte, 70000),
	}

	_, err := resp.Encode()
	assert.ErrorIs(t, err, ErrKeyTooLong)
}
