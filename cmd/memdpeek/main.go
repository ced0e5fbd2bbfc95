package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/couchbase/memdcodec/memdx"
)

const usage = `usage: memdpeek <command> [flags]

commands:
  encode   encode a request and print it as hex
  decode   decode a hex encoded response
  send     send one request to a server and print the response
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "encode":
		err = runEncode(os.Args[2:], os.Stdout)
	case "decode":
		err = runDecode(os.Args[2:], os.Stdout)
	case "send":
		err = runSend(os.Args[2:], os.Stdout)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "memdpeek: %s\n", err)
		os.Exit(1)
	}
}

type requestFlags struct {
	op      string
	key     string
	value   string
	flags   uint64
	expiry  time.Duration
	delta   uint64
	initial uint64
	level   uint64
	opaque  uint64
	cas     uint64
	vbucket uint64
}

func (f *requestFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.op, "op", "get", "command name, for example get, set or incr")
	fs.StringVar(&f.key, "key", "", "item key")
	fs.StringVar(&f.value, "value", "", "item value")
	fs.Uint64Var(&f.flags, "flags", 0, "item flags for the set family")
	fs.DurationVar(&f.expiry, "expiry", 0, "item expiry, 0 never expires")
	fs.Uint64Var(&f.delta, "delta", 1, "delta for increment and decrement")
	fs.Uint64Var(&f.initial, "initial", 0, "initial value for increment and decrement")
	fs.Uint64Var(&f.level, "level", 0, "verbosity level")
	fs.Uint64Var(&f.opaque, "opaque", 0, "request opaque")
	fs.Uint64Var(&f.cas, "cas", 0, "request cas")
	fs.Uint64Var(&f.vbucket, "vbucket", 0, "request vbucket id")
}

func lookupOpCode(name string) (memdx.OpCode, error) {
	aliases := map[string]string{
		"INCR": "INCREMENT",
		"DECR": "DECREMENT",
		"DEL":  "DELETE",
	}

	name = strings.ToUpper(name)
	if alias, ok := aliases[name]; ok {
		name = alias
	}

	for _, opCode := range memdx.OpCodes() {
		if opCode.Name() == name {
			return opCode, nil
		}
	}

	return 0, fmt.Errorf("unknown command %q", name)
}

// checkRanges rejects flag values which do not fit their header or extras
// field.
func (f *requestFlags) checkRanges() error {
	fields := []struct {
		name  string
		value uint64
		max   uint64
	}{
		{"flags", f.flags, math.MaxUint32},
		{"level", f.level, math.MaxUint32},
		{"opaque", f.opaque, math.MaxUint32},
		{"vbucket", f.vbucket, math.MaxUint16},
	}

	for _, field := range fields {
		if field.value > field.max {
			return fmt.Errorf("-%s %d is out of range (max %d)", field.name, field.value, field.max)
		}
	}

	return nil
}

// buildRequest builds a request for any opcode, filling in whichever extras
// the opcode carries from the flags.
func (f *requestFlags) buildRequest(clock memdx.Clock) (*memdx.Request, error) {
	opCode, err := lookupOpCode(f.op)
	if err != nil {
		return nil, err
	}

	err = f.checkRanges()
	if err != nil {
		return nil, err
	}

	expiry, err := memdx.NewExpiryEncoder(clock).Duration(f.expiry)
	if err != nil {
		return nil, err
	}

	var extras memdx.Extras = memdx.NoExtras{}
	switch opCode.RequestExtrasShape() {
	case memdx.ExtrasShapeSet:
		extras = memdx.NewSetExtras(uint32(f.flags), expiry)
	case memdx.ExtrasShapeIncrement:
		extras = memdx.NewIncrementExtras(f.delta, f.initial, expiry)
	case memdx.ExtrasShapeFlush:
		extras = memdx.NewFlushExtras(expiry)
	case memdx.ExtrasShapeVerbosity:
		extras = memdx.NewVerbosityExtras(uint32(f.level))
	}

	req := &memdx.Request{
		OpCode:    opCode,
		Datatype:  memdx.DatatypeRaw,
		VbucketID: uint16(f.vbucket),
		Opaque:    uint32(f.opaque),
		Cas:       f.cas,
		Extras:    extras.Bytes(),
	}
	if f.key != "" {
		req.Key = []byte(f.key)
	}
	if f.value != "" {
		req.Value = []byte(f.value)
	}

	return req, nil
}

func runEncode(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	var reqFlags requestFlags
	reqFlags.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := reqFlags.buildRequest(memdx.ClockFunc(time.Now))
	if err != nil {
		return err
	}

	buf, err := req.Encode()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, hex.EncodeToString(buf))
	return err
}

func runDecode(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("decode expects a single hex argument")
	}

	buf, err := hex.DecodeString(strings.Join(strings.Fields(fs.Arg(0)), ""))
	if err != nil {
		return errors.Wrap(err, "invalid hex")
	}

	resp, n, err := memdx.DecodeResponse(buf)
	if err != nil {
		return err
	}
	if resp == nil {
		_, err = fmt.Fprintf(out, "incomplete: %d bytes available\n", len(buf))
		return err
	}

	return printResponse(out, resp, len(buf)-n)
}

func runSend(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	addr := fs.String("addr", "memcached://127.0.0.1", "connection string of the server")
	timeout := fs.Duration("timeout", 5*time.Second, "time allowed for the whole exchange")
	verbose := fs.Bool("v", false, "log every packet")
	var reqFlags requestFlags
	reqFlags.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := zap.NewNop()
	if *verbose {
		devLogger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = devLogger
	}
	defer func() { _ = logger.Sync() }()

	addrs, err := memdx.ParseAddresses(*addr)
	if err != nil {
		return errors.Wrap(err, "invalid address")
	}

	req, err := reqFlags.buildRequest(memdx.ClockFunc(time.Now))
	if err != nil {
		return err
	}
	if req.OpCode.IsQuiet() {
		return fmt.Errorf("%s may not produce a response", req.OpCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := memdx.DialConn(ctx, addrs[0], &memdx.DialConnOptions{
		ConnOptions: memdx.ConnOptions{
			Logger:        logger,
			PacketLogging: *verbose,
		},
	})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		err = conn.SetDeadline(deadline)
		if err != nil {
			return err
		}
	}

	err = conn.WriteRequest(req)
	if err != nil {
		return err
	}

	resp, err := conn.ReadResponse()
	if err != nil {
		return err
	}

	return printResponse(out, resp, 0)
}

func printResponse(out io.Writer, resp *memdx.Response, trailing int) error {
	fmt.Fprintf(out, "opcode:   %s\n", resp.OpCode)
	fmt.Fprintf(out, "status:   %s\n", resp.Status)
	fmt.Fprintf(out, "opaque:   %d\n", resp.Opaque)
	fmt.Fprintf(out, "cas:      %d\n", resp.Cas)

	if resp.IsOk() {
		switch resp.OpCode.ResponseExtrasShape() {
		case memdx.ExtrasShapeGet:
			if len(resp.Extras) == memdx.ExtrasShapeGet.Size() {
				fmt.Fprintf(out, "extras:   %s\n", memdx.DecodeGetExtras(resp.Extras))
			}
		default:
			if resp.Extras != nil {
				fmt.Fprintf(out, "extras:   %s\n", hex.EncodeToString(resp.Extras))
			}
		}
	}

	if resp.Key != nil {
		fmt.Fprintf(out, "key:      %q\n", resp.Key)
	}
	if resp.Value != nil {
		fmt.Fprintf(out, "value:    %q\n", resp.Value)
	}

	if resp.OpCode == memdx.OpCodeVersion && resp.IsOk() {
		vers, err := memdx.ParseVersion(resp)
		if err == nil {
			fmt.Fprintf(out, "version:  %s\n", vers)
		}
	}

	if trailing > 0 {
		fmt.Fprintf(out, "trailing: %d bytes\n", trailing)
	}

	return nil
}
