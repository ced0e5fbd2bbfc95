package memdx

import (
	"errors"
	"fmt"
)

var ErrProtocol = errors.New("protocol error")

var (
	ErrKeyTooLong    = errors.New("key too long to encode")
	ErrExtrasTooLong = errors.New("extras too long to encode")
	ErrBodyTooLong   = errors.New("packet too long to encode")
)

var (
	ErrUnknownMagic      = errors.New("unknown magic")
	ErrUnknownOpCode     = errors.New("unknown opcode")
	ErrUnknownDataType   = errors.New("unknown data type")
	ErrUnknownStatus     = errors.New("unknown status")
	ErrInvalidBodyLength = errors.New("extras and key lengths exceed body length")
	ErrPacketTooLarge    = errors.New("packet exceeds the maximum packet size")
)

// ErrInvalidCommand is returned when a Command's extras types do not match
// its opcode, which only happens for Command values not taken from the Cmd*
// variables.
var ErrInvalidCommand = errors.New("invalid command")

type protocolError struct {
	message string
}

func (e protocolError) Error() string {
	return "protocol error: " + e.message
}

func (e protocolError) Unwrap() error {
	return ErrProtocol
}

// fieldOverflowError is returned when a request or response cannot be
// encoded because one of its length fields would overflow.
type fieldOverflowError struct {
	Cause  error
	Length uint64
	Max    uint64
}

func (e fieldOverflowError) Error() string {
	return fmt.Sprintf("protocol error: %s (%d > %d)", e.Cause, e.Length, e.Max)
}

func (e fieldOverflowError) Unwrap() []error {
	return []error{ErrProtocol, e.Cause}
}

// MalformedPacketError is returned when a complete packet was received but
// its header failed validation.
type MalformedPacketError struct {
	Cause error

	Magic  uint8
	OpCode uint8
}

func (e *MalformedPacketError) Error() string {
	return fmt.Sprintf("malformed packet (magic: 0x%02x, opcode: 0x%02x): %s", e.Magic, e.OpCode, e.Cause)
}

func (e *MalformedPacketError) Unwrap() []error {
	return []error{ErrProtocol, e.Cause}
}

// InvalidCommandError describes a Command whose extras types disagree with
// the opcode table.
type InvalidCommandError struct {
	OpCode         OpCode
	RequestExtras  ExtrasShape
	ResponseExtras ExtrasShape
}

func (e *InvalidCommandError) Error() string {
	return fmt.Sprintf("invalid command %s: extras %s/%s, expected %s/%s",
		e.OpCode, e.RequestExtras, e.ResponseExtras,
		e.OpCode.RequestExtrasShape(), e.OpCode.ResponseExtrasShape())
}

func (e *InvalidCommandError) Unwrap() error {
	return ErrInvalidCommand
}
