package memdx

// Command binds an OpCode to the extras its requests and successful
// responses carry.  Use the Cmd* variables below.  The opcode field is
// unexported, so a Command declared outside this package is always the zero
// value (opcode Get); NewRequestBuilder, RequestExtras and ResponseExtras
// reject any Command whose extras types disagree with its opcode's shapes.
type Command[ReqX Extras, ResX Extras] struct {
	opCode OpCode
}

// check verifies the extras types of the command against the opcode table.
func (c Command[ReqX, ResX]) check() error {
	var reqX ReqX
	var resX ResX
	if reqX.Shape() != c.opCode.RequestExtrasShape() ||
		resX.Shape() != c.opCode.ResponseExtrasShape() {
		return &InvalidCommandError{
			OpCode:         c.opCode,
			RequestExtras:  reqX.Shape(),
			ResponseExtras: resX.Shape(),
		}
	}
	return nil
}

func (c Command[ReqX, ResX]) OpCode() OpCode {
	return c.opCode
}

func (c Command[ReqX, ResX]) String() string {
	return c.opCode.Name()
}

var (
	CmdGet        = Command[NoExtras, GetExtras]{OpCodeGet}
	CmdSet        = Command[SetExtras, NoExtras]{OpCodeSet}
	CmdAdd        = Command[AddExtras, NoExtras]{OpCodeAdd}
	CmdReplace    = Command[ReplaceExtras, NoExtras]{OpCodeReplace}
	CmdDelete     = Command[NoExtras, NoExtras]{OpCodeDelete}
	CmdIncrement  = Command[IncrementExtras, NoExtras]{OpCodeIncrement}
	CmdDecrement  = Command[DecrementExtras, NoExtras]{OpCodeDecrement}
	CmdQuit       = Command[NoExtras, NoExtras]{OpCodeQuit}
	CmdFlush      = Command[FlushExtras, NoExtras]{OpCodeFlush}
	CmdGetQ       = Command[NoExtras, GetQExtras]{OpCodeGetQ}
	CmdNoop       = Command[NoExtras, NoExtras]{OpCodeNoop}
	CmdVersion    = Command[NoExtras, NoExtras]{OpCodeVersion}
	CmdGetK       = Command[NoExtras, GetKExtras]{OpCodeGetK}
	CmdGetKQ      = Command[NoExtras, GetKQExtras]{OpCodeGetKQ}
	CmdAppend     = Command[NoExtras, NoExtras]{OpCodeAppend}
	CmdPrepend    = Command[NoExtras, NoExtras]{OpCodePrepend}
	CmdStat       = Command[NoExtras, NoExtras]{OpCodeStat}
	CmdSetQ       = Command[SetQExtras, NoExtras]{OpCodeSetQ}
	CmdAddQ       = Command[AddQExtras, NoExtras]{OpCodeAddQ}
	CmdReplaceQ   = Command[ReplaceQExtras, NoExtras]{OpCodeReplaceQ}
	CmdDeleteQ    = Command[NoExtras, NoExtras]{OpCodeDeleteQ}
	CmdIncrementQ = Command[IncrementQExtras, NoExtras]{OpCodeIncrementQ}
	CmdDecrementQ = Command[DecrementQExtras, NoExtras]{OpCodeDecrementQ}
	CmdQuitQ      = Command[NoExtras, NoExtras]{OpCodeQuitQ}
	CmdFlushQ     = Command[FlushQExtras, NoExtras]{OpCodeFlushQ}
	CmdAppendQ    = Command[NoExtras, NoExtras]{OpCodeAppendQ}
	CmdPrependQ   = Command[NoExtras, NoExtras]{OpCodePrependQ}
	CmdVerbosity  = Command[VerbosityExtras, NoExtras]{OpCodeVerbosity}

	// The payloads of the following commands are not modeled; they are
	// sent and received with empty extras.
	CmdTouch              = Command[NoExtras, NoExtras]{OpCodeTouch}
	CmdGAT                = Command[NoExtras, NoExtras]{OpCodeGAT}
	CmdGATQ               = Command[NoExtras, NoExtras]{OpCodeGATQ}
	CmdSASLListMechs      = Command[NoExtras, NoExtras]{OpCodeSASLListMechs}
	CmdSASLAuth           = Command[NoExtras, NoExtras]{OpCodeSASLAuth}
	CmdSASLStep           = Command[NoExtras, NoExtras]{OpCodeSASLStep}
	CmdRGet               = Command[NoExtras, NoExtras]{OpCodeRGet}
	CmdRSet               = Command[NoExtras, NoExtras]{OpCodeRSet}
	CmdRSetQ              = Command[NoExtras, NoExtras]{OpCodeRSetQ}
	CmdRAppend            = Command[NoExtras, NoExtras]{OpCodeRAppend}
	CmdRAppendQ           = Command[NoExtras, NoExtras]{OpCodeRAppendQ}
	CmdRPrepend           = Command[NoExtras, NoExtras]{OpCodeRPrepend}
	CmdRPrependQ          = Command[NoExtras, NoExtras]{OpCodeRPrependQ}
	CmdRDelete            = Command[NoExtras, NoExtras]{OpCodeRDelete}
	CmdRDeleteQ           = Command[NoExtras, NoExtras]{OpCodeRDeleteQ}
	CmdRIncr              = Command[NoExtras, NoExtras]{OpCodeRIncr}
	CmdRIncrQ             = Command[NoExtras, NoExtras]{OpCodeRIncrQ}
	CmdRDecr              = Command[NoExtras, NoExtras]{OpCodeRDecr}
	CmdRDecrQ             = Command[NoExtras, NoExtras]{OpCodeRDecrQ}
	CmdSetVBucket         = Command[NoExtras, NoExtras]{OpCodeSetVBucket}
	CmdGetVBucket         = Command[NoExtras, NoExtras]{OpCodeGetVBucket}
	CmdDelVBucket         = Command[NoExtras, NoExtras]{OpCodeDelVBucket}
	CmdTapConnect         = Command[NoExtras, NoExtras]{OpCodeTapConnect}
	CmdTapMutation        = Command[NoExtras, NoExtras]{OpCodeTapMutation}
	CmdTapDelete          = Command[NoExtras, NoExtras]{OpCodeTapDelete}
	CmdTapFlush           = Command[NoExtras, NoExtras]{OpCodeTapFlush}
	CmdTapOpaque          = Command[NoExtras, NoExtras]{OpCodeTapOpaque}
	CmdTapVBucketSet      = Command[NoExtras, NoExtras]{OpCodeTapVBucketSet}
	CmdTapCheckpointStart = Command[NoExtras, NoExtras]{OpCodeTapCheckpointStart}
	CmdTapCheckpointEnd   = Command[NoExtras, NoExtras]{OpCodeTapCheckpointEnd}
)

// RequestExtras decodes the extras of req as the request extras of cmd.
func RequestExtras[ReqX extrasCodec[ReqX], ResX Extras](cmd Command[ReqX, ResX], req *Request) (ReqX, error) {
	var x ReqX
	if err := cmd.check(); err != nil {
		return x, err
	}
	if req.OpCode != cmd.opCode {
		return x, protocolError{"request opcode " + req.OpCode.Name() + " does not match " + cmd.opCode.Name()}
	}
	if len(req.Extras) != x.Shape().Size() {
		return x, protocolError{"bad extras length"}
	}
	return x.decode(req.Extras), nil
}

// ResponseExtras decodes the extras of resp as the response extras of cmd.
// Failed responses usually carry no extras, so callers should check IsOk
// first.
func ResponseExtras[ReqX Extras, ResX extrasCodec[ResX]](cmd Command[ReqX, ResX], resp *Response) (ResX, error) {
	var x ResX
	if err := cmd.check(); err != nil {
		return x, err
	}
	if resp.OpCode != cmd.opCode {
		return x, protocolError{"response opcode " + resp.OpCode.Name() + " does not match " + cmd.opCode.Name()}
	}
	if len(resp.Extras) != x.Shape().Size() {
		return x, protocolError{"bad extras length"}
	}
	return x.decode(resp.Extras), nil
}
