package memdx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetExtras(t *testing.T) {
	x := NewSetExtras(0xdeadbeef, 7200)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x00, 0x1c, 0x20}, x.Bytes())

	decoded := DecodeSetExtras([]byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x00, 0x1c, 0x20})
	assert.Equal(t, uint32(0xdeadbeef), decoded.Flags())
	assert.Equal(t, uint32(7200), decoded.Expiry())
	assert.Equal(t, ExtrasShapeSet, decoded.Shape())
	assert.Equal(t, "SetExtras{Flags: 0xdeadbeef, Expiry: 7200}", decoded.String())
}

func TestSetExtrasAccessorsAreIndependent(t *testing.T) {
	var x SetExtras
	x.SetExpiry(300)
	x.SetFlags(0x01020304)
	assert.Equal(t, uint32(300), x.Expiry())
	assert.Equal(t, uint32(0x01020304), x.Flags())

	x.SetFlags(0)
	assert.Equal(t, uint32(300), x.Expiry())
}

func TestGetExtras(t *testing.T) {
	x := NewGetExtras(0x00000102)
	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x02}, x.Bytes())
	assert.Equal(t, uint32(0x102), DecodeGetExtras(x.Bytes()).Flags())
	assert.Equal(t, ExtrasShapeGet, x.Shape())
}

func TestIncrementExtras(t *testing.T) {
	x := NewIncrementExtras(1, 0x0a0b, 60)
	assert.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x0a, 0x0b,
		0x00, 0x00, 0x00, 0x3c,
	}, x.Bytes())

	decoded := DecodeIncrementExtras(x.Bytes())
	assert.Equal(t, uint64(1), decoded.Delta())
	assert.Equal(t, uint64(0x0a0b), decoded.Initial())
	assert.Equal(t, uint32(60), decoded.Expiry())
	assert.Equal(t, "IncrementExtras{Delta: 1, Initial: 2571, Expiry: 60}", decoded.String())
}

func TestIncrementExtrasMaxValues(t *testing.T) {
	x := NewIncrementExtras(^uint64(0), ^uint64(0), ^uint32(0))
	for _, b := range x.Bytes() {
		assert.Equal(t, byte(0xff), b)
	}
	assert.Equal(t, ^uint64(0), x.Delta())
	assert.Equal(t, ^uint32(0), x.Expiry())
}

func TestFlushAndVerbosityExtras(t *testing.T) {
	flush := NewFlushExtras(10)
	assert.Equal(t, []byte{0, 0, 0, 10}, flush.Bytes())
	assert.Equal(t, uint32(10), DecodeFlushExtras(flush.Bytes()).Expiry())

	verbosity := NewVerbosityExtras(2)
	assert.Equal(t, []byte{0, 0, 0, 2}, verbosity.Bytes())
	assert.Equal(t, uint32(2), DecodeVerbosityExtras(verbosity.Bytes()).Level())
}

func TestExtrasShapeSizes(t *testing.T) {
	type test struct {
		Extras Extras
		Shape  ExtrasShape
		Size   int
	}

	tests := []test{
		{NoExtras{}, ExtrasShapeNone, 0},
		{GetExtras{}, ExtrasShapeGet, 4},
		{SetExtras{}, ExtrasShapeSet, 8},
		{IncrementExtras{}, ExtrasShapeIncrement, 20},
		{FlushExtras{}, ExtrasShapeFlush, 4},
		{VerbosityExtras{}, ExtrasShapeVerbosity, 4},
	}

	for _, test := range tests {
		t.Run(test.Shape.String(), func(t *testing.T) {
			assert.Equal(t, test.Shape, test.Extras.Shape())
			assert.Equal(t, test.Size, test.Shape.Size())
			assert.Len(t, test.Extras.Bytes(), test.Size)
		})
	}
}

func TestDecodeExtrasShortBuffer(t *testing.T) {
	x := DecodeSetExtras([]byte{0xde, 0xad})
	assert.Equal(t, uint32(0xdead0000), x.Flags())
	assert.Equal(t, uint32(0), x.Expiry())
}

func FuzzExtrasRoundTrip(f *testing.F) {
	f.Add(uint32(0), uint32(0), uint64(0), uint64(0))
	f.Add(uint32(0xdeadbeef), uint32(7200), uint64(1), uint64(0x0a0b))
	f.Add(^uint32(0), ^uint32(0), ^uint64(0), ^uint64(0))

	f.Fuzz(func(t *testing.T, a uint32, b uint32, c uint64, d uint64) {
		get := DecodeGetExtras(NewGetExtras(a).Bytes())
		if get.Flags() != a {
			t.Fatalf("get flags: got %#x, want %#x", get.Flags(), a)
		}

		set := DecodeSetExtras(NewSetExtras(a, b).Bytes())
		if set.Flags() != a || set.Expiry() != b {
			t.Fatalf("set: got %s, want flags %#x expiry %d", set, a, b)
		}

		incr := DecodeIncrementExtras(NewIncrementExtras(c, d, b).Bytes())
		if incr.Delta() != c || incr.Initial() != d || incr.Expiry() != b {
			t.Fatalf("increment: got %s, want delta %d initial %d expiry %d", incr, c, d, b)
		}

		flush := DecodeFlushExtras(NewFlushExtras(b).Bytes())
		if flush.Expiry() != b {
			t.Fatalf("flush expiry: got %d, want %d", flush.Expiry(), b)
		}

		verbosity := DecodeVerbosityExtras(NewVerbosityExtras(a).Bytes())
		if verbosity.Level() != a {
			t.Fatalf("verbosity level: got %d, want %d", verbosity.Level(), a)
		}
	})
}
