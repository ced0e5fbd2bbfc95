package zaputils

import (
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"
)

// MaxLoggedPayload is the number of payload bytes written to the log before
// the rest is elided.
const MaxLoggedPayload = 64

func ItemKey(key string, val []byte) zap.Field {
	return zap.String(key, string(val))
}

type LoggablePayload struct {
	Data []byte
}

func (e LoggablePayload) String() string {
	if len(e.Data) <= MaxLoggedPayload {
		return hex.EncodeToString(e.Data)
	}

	return fmt.Sprintf("%s...(%d more bytes)",
		hex.EncodeToString(e.Data[:MaxLoggedPayload]),
		len(e.Data)-MaxLoggedPayload)
}

// Payload logs a binary payload as hex, truncated to MaxLoggedPayload bytes.
func Payload(key string, val []byte) zap.Field {
	if val == nil {
		return zap.Skip()
	}
	return zap.Stringer(key, LoggablePayload{Data: val})
}

// Code logs a protocol code (opcode, status, magic) by its name.
func Code(key string, val fmt.Stringer) zap.Field {
	return zap.Stringer(key, val)
}
