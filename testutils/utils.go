package testutils

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/couchbase/memdcodec/contrib/leakcheck"
)

var TestOpts TestOptions

type TestOptions struct {
	// ConnStr is the connection string given by -connstr or
	// MEMDCODEC_CONNSTR, see memdx.ParseAddresses.
	ConnStr  string
	LongTest bool
	RunName  string
}

func envFlagString(envName, name, value, usage string) *string {
	envValue := os.Getenv(envName)
	if envValue != "" {
		value = envValue
	}
	return flag.String(name, value, usage)
}

var connStr = envFlagString("MEMDCODEC_CONNSTR", "connstr", "",
	"Connection string of a memcached server to run live tests against")

func SetupTests(m *testing.M) {
	flag.Parse()

	if *connStr != "" && !testing.Short() {
		TestOpts.LongTest = true
		TestOpts.ConnStr = *connStr
	}

	TestOpts.RunName = strings.ReplaceAll(uuid.NewString(), "-", "")[0:8]

	leakcheck.EnableAll()

	result := m.Run()

	if !leakcheck.ReportLeakedConns() {
		result = 1
	}

	// goroutine leaks are reported but do not fail the run, since a closed
	// connection's reader may still be unwinding.
	leakcheck.ReportLeakedGoroutines()

	os.Exit(result)
}

func SkipIfShortTest(t *testing.T) {
	if !TestOpts.LongTest {
		t.Skipf("skipping long test")
	}
}

func MakeTestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// MakeTestKey returns a key which is unique to this test run.
func MakeTestKey(t *testing.T) []byte {
	return []byte(fmt.Sprintf("memdcodec-%s-%s-%s", TestOpts.RunName, t.Name(), uuid.NewString()[:8]))
}
