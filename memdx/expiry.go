package memdx

import (
	"errors"
	"math"
	"time"
)

// MaxRelativeExpiry is the largest expiry, in seconds, which the server
// treats as relative to the time the item is stored (30 days).  Anything
// larger is read as an absolute unix timestamp.
const MaxRelativeExpiry = 60 * 60 * 24 * 30

// EncodeExpiry converts an expiry in seconds from now into the value placed
// on the wire.  Expiries up to and including MaxRelativeExpiry are sent as
// they are (0 meaning never expire); longer ones are converted to the unix
// timestamp now+seconds, truncated to 32 bits.
func EncodeExpiry(seconds uint32, now time.Time) uint32 {
	if seconds <= MaxRelativeExpiry {
		return seconds
	}

	return uint32(uint64(now.Unix()) + uint64(seconds))
}

// Clock supplies the current time to an ExpiryEncoder.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function such as time.Now into a Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// ErrNoClock is returned by an ExpiryEncoder without a Clock when it is asked
// for an absolute expiry.
var ErrNoClock = errors.New("expiry encoder has no clock")

// ExpiryEncoder applies EncodeExpiry using the time from its Clock.  The
// Clock is only consulted for expiries beyond MaxRelativeExpiry.
type ExpiryEncoder struct {
	Clock Clock
}

func NewExpiryEncoder(clock Clock) ExpiryEncoder {
	return ExpiryEncoder{Clock: clock}
}

func (e ExpiryEncoder) Seconds(seconds uint32) (uint32, error) {
	// relative expiries never need the clock
	if seconds <= MaxRelativeExpiry {
		return seconds, nil
	}

	if e.Clock == nil {
		return 0, ErrNoClock
	}

	return EncodeExpiry(seconds, e.Clock.Now()), nil
}

// Duration encodes an expiry given as a duration.  Zero and negative
// durations encode as 0 (never expire).  Any positive duration shorter than
// a second encodes as 1, since 0 would keep the item forever.  Otherwise
// sub-second precision is dropped, and durations beyond the 32-bit range are
// clamped to it.
func (e ExpiryEncoder) Duration(d time.Duration) (uint32, error) {
	if d <= 0 {
		return 0, nil
	}

	secs := uint64(d / time.Second)
	if secs == 0 {
		secs = 1
	}
	if secs > math.MaxUint32 {
		secs = math.MaxUint32
	}

	return e.Seconds(uint32(secs))
}
