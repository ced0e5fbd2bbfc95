package memdx

import (
	"encoding/hex"

	"golang.org/x/exp/slices"
)

// OpCode represents the specific command the packet is performing.
type OpCode uint8

// These constants provide predefined values for all the operations
// which are known to this library.
const (
	OpCodeGet                = OpCode(0x00)
	OpCodeSet                = OpCode(0x01)
	OpCodeAdd                = OpCode(0x02)
	OpCodeReplace            = OpCode(0x03)
	OpCodeDelete             = OpCode(0x04)
	OpCodeIncrement          = OpCode(0x05)
	OpCodeDecrement          = OpCode(0x06)
	OpCodeQuit               = OpCode(0x07)
	OpCodeFlush              = OpCode(0x08)
	OpCodeGetQ               = OpCode(0x09)
	OpCodeNoop               = OpCode(0x0a)
	OpCodeVersion            = OpCode(0x0b)
	OpCodeGetK               = OpCode(0x0c)
	OpCodeGetKQ              = OpCode(0x0d)
	OpCodeAppend             = OpCode(0x0e)
	OpCodePrepend            = OpCode(0x0f)
	OpCodeStat               = OpCode(0x10)
	OpCodeSetQ               = OpCode(0x11)
	OpCodeAddQ               = OpCode(0x12)
	OpCodeReplaceQ           = OpCode(0x13)
	OpCodeDeleteQ            = OpCode(0x14)
	OpCodeIncrementQ         = OpCode(0x15)
	OpCodeDecrementQ         = OpCode(0x16)
	OpCodeQuitQ              = OpCode(0x17)
	OpCodeFlushQ             = OpCode(0x18)
	OpCodeAppendQ            = OpCode(0x19)
	OpCodePrependQ           = OpCode(0x1a)
	OpCodeVerbosity          = OpCode(0x1b)
	OpCodeTouch              = OpCode(0x1c)
	OpCodeGAT                = OpCode(0x1d)
	OpCodeGATQ               = OpCode(0x1e)
	OpCodeSASLListMechs      = OpCode(0x20)
	OpCodeSASLAuth           = OpCode(0x21)
	OpCodeSASLStep           = OpCode(0x22)
	OpCodeRGet               = OpCode(0x30)
	OpCodeRSet               = OpCode(0x31)
	OpCodeRSetQ              = OpCode(0x32)
	OpCodeRAppend            = OpCode(0x33)
	OpCodeRAppendQ           = OpCode(0x34)
	OpCodeRPrepend           = OpCode(0x35)
	OpCodeRPrependQ          = OpCode(0x36)
	OpCodeRDelete            = OpCode(0x37)
	OpCodeRDeleteQ           = OpCode(0x38)
	OpCodeRIncr              = OpCode(0x39)
	OpCodeRIncrQ             = OpCode(0x3a)
	OpCodeRDecr              = OpCode(0x3b)
	OpCodeRDecrQ             = OpCode(0x3c)
	OpCodeSetVBucket         = OpCode(0x3d)
	OpCodeGetVBucket         = OpCode(0x3e)
	OpCodeDelVBucket         = OpCode(0x3f)
	OpCodeTapConnect         = OpCode(0x40)
	OpCodeTapMutation        = OpCode(0x41)
	OpCodeTapDelete          = OpCode(0x42)
	OpCodeTapFlush           = OpCode(0x43)
	OpCodeTapOpaque          = OpCode(0x44)
	OpCodeTapVBucketSet      = OpCode(0x45)
	OpCodeTapCheckpointStart = OpCode(0x46)
	OpCodeTapCheckpointEnd   = OpCode(0x47)
)

type opCodeInfo struct {
	name          string
	quiet         bool
	requestExtras ExtrasShape
	// responseExtras is the shape of a successful response's extras.
	responseExtras ExtrasShape
}

// opCodeTable is built once and must never be written to afterwards.
var opCodeTable = map[OpCode]opCodeInfo{
	OpCodeGet:                {name: "GET", responseExtras: ExtrasShapeGet},
	OpCodeSet:                {name: "SET", requestExtras: ExtrasShapeSet},
	OpCodeAdd:                {name: "ADD", requestExtras: ExtrasShapeSet},
	OpCodeReplace:            {name: "REPLACE", requestExtras: ExtrasShapeSet},
	OpCodeDelete:             {name: "DELETE"},
	OpCodeIncrement:          {name: "INCREMENT", requestExtras: ExtrasShapeIncrement},
	OpCodeDecrement:          {name: "DECREMENT", requestExtras: ExtrasShapeIncrement},
	OpCodeQuit:               {name: "QUIT"},
	OpCodeFlush:              {name: "FLUSH", requestExtras: ExtrasShapeFlush},
	OpCodeGetQ:               {name: "GETQ", quiet: true, responseExtras: ExtrasShapeGet},
	OpCodeNoop:               {name: "NOOP"},
	OpCodeVersion:            {name: "VERSION"},
	OpCodeGetK:               {name: "GETK", responseExtras: ExtrasShapeGet},
	OpCodeGetKQ:              {name: "GETKQ", quiet: true, responseExtras: ExtrasShapeGet},
	OpCodeAppend:             {name: "APPEND"},
	OpCodePrepend:            {name: "PREPEND"},
	OpCodeStat:               {name: "STAT"},
	OpCodeSetQ:               {name: "SETQ", quiet: true, requestExtras: ExtrasShapeSet},
	OpCodeAddQ:               {name: "ADDQ", quiet: true, requestExtras: ExtrasShapeSet},
	OpCodeReplaceQ:           {name: "REPLACEQ", quiet: true, requestExtras: ExtrasShapeSet},
	OpCodeDeleteQ:            {name: "DELETEQ", quiet: true},
	OpCodeIncrementQ:         {name: "INCREMENTQ", quiet: true, requestExtras: ExtrasShapeIncrement},
	OpCodeDecrementQ:         {name: "DECREMENTQ", quiet: true, requestExtras: ExtrasShapeIncrement},
	OpCodeQuitQ:              {name: "QUITQ", quiet: true},
	OpCodeFlushQ:             {name: "FLUSHQ", quiet: true, requestExtras: ExtrasShapeFlush},
	OpCodeAppendQ:            {name: "APPENDQ", quiet: true},
	OpCodePrependQ:           {name: "PREPENDQ", quiet: true},
	OpCodeVerbosity:          {name: "VERBOSITY", requestExtras: ExtrasShapeVerbosity},
	OpCodeTouch:              {name: "TOUCH"},
	OpCodeGAT:                {name: "GAT"},
	OpCodeGATQ:               {name: "GATQ", quiet: true},
	OpCodeSASLListMechs:      {name: "SASLLISTMECHS"},
	OpCodeSASLAuth:           {name: "SASLAUTH"},
	OpCodeSASLStep:           {name: "SASLSTEP"},
	OpCodeRGet:               {name: "RGET"},
	OpCodeRSet:               {name: "RSET"},
	OpCodeRSetQ:              {name: "RSETQ", quiet: true},
	OpCodeRAppend:            {name: "RAPPEND"},
	OpCodeRAppendQ:           {name: "RAPPENDQ", quiet: true},
	OpCodeRPrepend:           {name: "RPREPEND"},
	OpCodeRPrependQ:          {name: "RPREPENDQ", quiet: true},
	OpCodeRDelete:            {name: "RDELETE"},
	OpCodeRDeleteQ:           {name: "RDELETEQ", quiet: true},
	OpCodeRIncr:              {name: "RINCR"},
	OpCodeRIncrQ:             {name: "RINCRQ", quiet: true},
	OpCodeRDecr:              {name: "RDECR"},
	OpCodeRDecrQ:             {name: "RDECRQ", quiet: true},
	OpCodeSetVBucket:         {name: "SETVBUCKET"},
	OpCodeGetVBucket:         {name: "GETVBUCKET"},
	OpCodeDelVBucket:         {name: "DELVBUCKET"},
	OpCodeTapConnect:         {name: "TAPCONNECT"},
	OpCodeTapMutation:        {name: "TAPMUTATION"},
	OpCodeTapDelete:          {name: "TAPDELETE"},
	OpCodeTapFlush:           {name: "TAPFLUSH"},
	OpCodeTapOpaque:          {name: "TAPOPAQUE"},
	OpCodeTapVBucketSet:      {name: "TAPVBUCKETSET"},
	OpCodeTapCheckpointStart: {name: "TAPCHECKPOINTSTART"},
	OpCodeTapCheckpointEnd:   {name: "TAPCHECKPOINTEND"},
}

// ParseOpCode maps a header byte to a known OpCode.
func ParseOpCode(b uint8) (OpCode, bool) {
	_, ok := opCodeTable[OpCode(b)]
	if !ok {
		return 0, false
	}
	return OpCode(b), true
}

// OpCodes returns every known OpCode in ascending order.
func OpCodes() []OpCode {
	codes := make([]OpCode, 0, len(opCodeTable))
	for code := range opCodeTable {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// IsKnown reports whether the OpCode is part of the protocol's opcode table.
func (command OpCode) IsKnown() bool {
	_, ok := opCodeTable[command]
	return ok
}

// IsQuiet reports whether the command only produces a response on failure
// (and for the quiet gets, on a hit).
func (command OpCode) IsQuiet() bool {
	return opCodeTable[command].quiet
}

// RequestExtrasShape returns the extras carried by a request for this command.
// Commands without modeled extras return ExtrasShapeNone.
func (command OpCode) RequestExtrasShape() ExtrasShape {
	return opCodeTable[command].requestExtras
}

// ResponseExtrasShape returns the extras carried by a successful response to
// this command.  Commands without modeled extras return ExtrasShapeNone.
func (command OpCode) ResponseExtrasShape() ExtrasShape {
	return opCodeTable[command].responseExtras
}

// Name returns the string representation of the OpCode.
func (command OpCode) Name() string {
	info, ok := opCodeTable[command]
	if !ok {
		return "x" + hex.EncodeToString([]byte{byte(command)})
	}
	return info.name
}

func (command OpCode) String() string {
	return command.Name()
}
