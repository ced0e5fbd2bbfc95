package memdx

import (
	"encoding/binary"
	"fmt"
)

// ExtrasShape identifies one of the fixed extras layouts of the protocol.
type ExtrasShape uint8

const (
	ExtrasShapeNone = ExtrasShape(iota)
	ExtrasShapeGet
	ExtrasShapeSet
	ExtrasShapeIncrement
	ExtrasShapeFlush
	ExtrasShapeVerbosity
)

const (
	getExtrasLen       = 4
	setExtrasLen       = 8
	incrementExtrasLen = 20
	flushExtrasLen     = 4
	verbosityExtrasLen = 4
)

// Size returns the encoded length of the shape in bytes.
func (s ExtrasShape) Size() int {
	switch s {
	case ExtrasShapeGet:
		return getExtrasLen
	case ExtrasShapeSet:
		return setExtrasLen
	case ExtrasShapeIncrement:
		return incrementExtrasLen
	case ExtrasShapeFlush:
		return flushExtrasLen
	case ExtrasShapeVerbosity:
		return verbosityExtrasLen
	}
	return 0
}

func (s ExtrasShape) String() string {
	switch s {
	case ExtrasShapeNone:
		return "None"
	case ExtrasShapeGet:
		return "Get"
	case ExtrasShapeSet:
		return "Set"
	case ExtrasShapeIncrement:
		return "Increment"
	case ExtrasShapeFlush:
		return "Flush"
	case ExtrasShapeVerbosity:
		return "Verbosity"
	}
	return fmt.Sprintf("ExtrasShape(%d)", uint8(s))
}

// Extras is implemented by the fixed-size extras payloads of this package
// only.  The unexported method keeps the set closed.
type Extras interface {
	Shape() ExtrasShape
	Bytes() []byte

	isExtras()
}

// extrasCodec lets generic helpers decode a payload back into its own type.
type extrasCodec[T any] interface {
	Extras
	decode(buf []byte) T
}

// NoExtras is the empty payload of commands without modeled extras.
type NoExtras struct{}

func (NoExtras) Shape() ExtrasShape { return ExtrasShapeNone }

func (NoExtras) Bytes() []byte { return nil }

func (NoExtras) String() string { return "NoExtras{}" }

func (NoExtras) isExtras() {}

func (NoExtras) decode([]byte) NoExtras { return NoExtras{} }

// GetExtras carries the item flags returned by the Get family.
type GetExtras [getExtrasLen]byte

type (
	GetQExtras  = GetExtras
	GetKExtras  = GetExtras
	GetKQExtras = GetExtras
)

func NewGetExtras(flags uint32) GetExtras {
	var x GetExtras
	x.SetFlags(flags)
	return x
}

// DecodeGetExtras reads a GetExtras from the first 4 bytes of buf.
func DecodeGetExtras(buf []byte) GetExtras {
	var x GetExtras
	copy(x[:], buf)
	return x
}

func (x GetExtras) Flags() uint32 {
	return binary.BigEndian.Uint32(x[0:])
}

func (x *GetExtras) SetFlags(flags uint32) {
	binary.BigEndian.PutUint32(x[0:], flags)
}

func (x GetExtras) Shape() ExtrasShape { return ExtrasShapeGet }

func (x GetExtras) Bytes() []byte { return x[:] }

func (x GetExtras) String() string {
	return fmt.Sprintf("GetExtras{Flags: %#x}", x.Flags())
}

func (GetExtras) isExtras() {}

func (GetExtras) decode(buf []byte) GetExtras { return DecodeGetExtras(buf) }

// SetExtras carries the flags and expiry of the Set, Add and Replace families.
type SetExtras [setExtrasLen]byte

type (
	AddExtras      = SetExtras
	ReplaceExtras  = SetExtras
	SetQExtras     = SetExtras
	AddQExtras     = SetExtras
	ReplaceQExtras = SetExtras
)

// NewSetExtras builds a SetExtras.  expiry is the wire value, see EncodeExpiry.
func NewSetExtras(flags uint32, expiry uint32) SetExtras {
	var x SetExtras
	x.SetFlags(flags)
	x.SetExpiry(expiry)
	return x
}

// DecodeSetExtras reads a SetExtras from the first 8 bytes of buf.
func DecodeSetExtras(buf []byte) SetExtras {
	var x SetExtras
	copy(x[:], buf)
	return x
}

func (x SetExtras) Flags() uint32 {
	return binary.BigEndian.Uint32(x[0:])
}

func (x *SetExtras) SetFlags(flags uint32) {
	binary.BigEndian.PutUint32(x[0:], flags)
}

func (x SetExtras) Expiry() uint32 {
	return binary.BigEndian.Uint32(x[4:])
}

func (x *SetExtras) SetExpiry(expiry uint32) {
	binary.BigEndian.PutUint32(x[4:], expiry)
}

func (x SetExtras) Shape() ExtrasShape { return ExtrasShapeSet }

func (x SetExtras) Bytes() []byte { return x[:] }

func (x SetExtras) String() string {
	return fmt.Sprintf("SetExtras{Flags: %#x, Expiry: %d}", x.Flags(), x.Expiry())
}

func (SetExtras) isExtras() {}

func (SetExtras) decode(buf []byte) SetExtras { return DecodeSetExtras(buf) }

// IncrementExtras carries the delta, initial value and expiry of the
// Increment and Decrement families.
type IncrementExtras [incrementExtrasLen]byte

type (
	DecrementExtras  = IncrementExtras
	IncrementQExtras = IncrementExtras
	DecrementQExtras = IncrementExtras
)

func NewIncrementExtras(delta uint64, initial uint64, expiry uint32) IncrementExtras {
	var x IncrementExtras
	x.SetDelta(delta)
	x.SetInitial(initial)
	x.SetExpiry(expiry)
	return x
}

// DecodeIncrementExtras reads an IncrementExtras from the first 20 bytes of buf.
func DecodeIncrementExtras(buf []byte) IncrementExtras {
	var x IncrementExtras
	copy(x[:], buf)
	return x
}

// Delta is the amount to add or subtract.
func (x IncrementExtras) Delta() uint64 {
	return binary.BigEndian.Uint64(x[0:])
}

func (x *IncrementExtras) SetDelta(delta uint64) {
	binary.BigEndian.PutUint64(x[0:], delta)
}

// Initial is the value stored when the key does not exist yet.
func (x IncrementExtras) Initial() uint64 {
	return binary.BigEndian.Uint64(x[8:])
}

func (x *IncrementExtras) SetInitial(initial uint64) {
	binary.BigEndian.PutUint64(x[8:], initial)
}

func (x IncrementExtras) Expiry() uint32 {
	return binary.BigEndian.Uint32(x[16:])
}

func (x *IncrementExtras) SetExpiry(expiry uint32) {
	binary.BigEndian.PutUint32(x[16:], expiry)
}

func (x IncrementExtras) Shape() ExtrasShape { return ExtrasShapeIncrement }

func (x IncrementExtras) Bytes() []byte { return x[:] }

func (x IncrementExtras) String() string {
	return fmt.Sprintf("IncrementExtras{Delta: %d, Initial: %d, Expiry: %d}",
		x.Delta(), x.Initial(), x.Expiry())
}

func (IncrementExtras) isExtras() {}

func (IncrementExtras) decode(buf []byte) IncrementExtras { return DecodeIncrementExtras(buf) }

// FlushExtras carries the delay before a Flush takes effect.
type FlushExtras [flushExtrasLen]byte

type FlushQExtras = FlushExtras

func NewFlushExtras(expiry uint32) FlushExtras {
	var x FlushExtras
	x.SetExpiry(expiry)
	return x
}

// DecodeFlushExtras reads a FlushExtras from the first 4 bytes of buf.
func DecodeFlushExtras(buf []byte) FlushExtras {
	var x FlushExtras
	copy(x[:], buf)
	return x
}

func (x FlushExtras) Expiry() uint32 {
	return binary.BigEndian.Uint32(x[0:])
}

func (x *FlushExtras) SetExpiry(expiry uint32) {
	binary.BigEndian.PutUint32(x[0:], expiry)
}

func (x FlushExtras) Shape() ExtrasShape { return ExtrasShapeFlush }

func (x FlushExtras) Bytes() []byte { return x[:] }

func (x FlushExtras) String() string {
	return fmt.Sprintf("FlushExtras{Expiry: %d}", x.Expiry())
}

func (FlushExtras) isExtras() {}

func (FlushExtras) decode(buf []byte) FlushExtras { return DecodeFlushExtras(buf) }

// VerbosityExtras carries the server log level of a Verbosity request.
type VerbosityExtras [verbosityExtrasLen]byte

func NewVerbosityExtras(level uint32) VerbosityExtras {
	var x VerbosityExtras
	x.SetLevel(level)
	return x
}

// DecodeVerbosityExtras reads a VerbosityExtras from the first 4 bytes of buf.
func DecodeVerbosityExtras(buf []byte) VerbosityExtras {
	var x VerbosityExtras
	copy(x[:], buf)
	return x
}

func (x VerbosityExtras) Level() uint32 {
	return binary.BigEndian.Uint32(x[0:])
}

func (x *VerbosityExtras) SetLevel(level uint32) {
	binary.BigEndian.PutUint32(x[0:], level)
}

func (x VerbosityExtras) Shape() ExtrasShape { return ExtrasShapeVerbosity }

func (x VerbosityExtras) Bytes() []byte { return x[:] }

func (x VerbosityExtras) String() string {
	return fmt.Sprintf("VerbosityExtras{Level: %d}", x.Level())
}

func (VerbosityExtras) isExtras() {}

func (VerbosityExtras) decode(buf []byte) VerbosityExtras { return DecodeVerbosityExtras(buf) }
