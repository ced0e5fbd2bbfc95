package leakcheck

import (
	"errors"
	"io"
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slices"
)

var leakTrackingEnabled uint32 = 0
var trackedConnsLock sync.Mutex
var trackedConns []*leakTrackingConn

func EnableConnTracking() {
	atomic.StoreUint32(&leakTrackingEnabled, 1)
}

// WrapConn records where a stream was opened until it is closed.  When
// tracking is disabled the stream is returned unchanged.
func WrapConn(conn io.ReadWriteCloser) io.ReadWriteCloser {
	if atomic.LoadUint32(&leakTrackingEnabled) == 0 {
		return conn
	}

	trackingConn := &leakTrackingConn{
		ReadWriteCloser: conn,
		stackTrace:      debug.Stack(),
	}

	trackedConnsLock.Lock()
	trackedConns = append(trackedConns, trackingConn)
	trackedConnsLock.Unlock()

	return trackingConn
}

func removeTrackedConnRecord(l *leakTrackingConn) {
	trackedConnsLock.Lock()
	recordIdx := slices.Index(trackedConns, l)
	if recordIdx >= 0 {
		trackedConns = slices.Delete(trackedConns, recordIdx, recordIdx+1)
	}
	trackedConnsLock.Unlock()
}

func ReportLeakedConns() bool {
	trackedConnsLock.Lock()
	defer trackedConnsLock.Unlock()

	if len(trackedConns) == 0 {
		log.Printf("No leaked connections")
		return true
	}

	log.Printf("Found %d leaked connections", len(trackedConns))
	for _, leakRecord := range trackedConns {
		log.Printf("Leaked connection stack: %s", leakRecord.stackTrace)
	}

	return false
}

type leakTrackingConn struct {
	io.ReadWriteCloser
	stackTrace []byte
	closeOnce  sync.Once
}

func (l *leakTrackingConn) Close() error {
	l.closeOnce.Do(func() {
		removeTrackedConnRecord(l)
	})
	return l.ReadWriteCloser.Close()
}

// SetDeadline forwards to the wrapped stream so that wrapping does not hide
// deadline support.
func (l *leakTrackingConn) SetDeadline(t time.Time) error {
	dl, ok := l.ReadWriteCloser.(interface{ SetDeadline(time.Time) error })
	if !ok {
		return errors.New("wrapped stream does not support deadlines")
	}
	return dl.SetDeadline(t)
}
