package memdx

import (
	"fmt"

	"github.com/couchbaselabs/gocbconnstr/v2"
)

// DefaultPort is used for hosts in a connection string which do not name
// a port.
const DefaultPort = 11211

// ParseAddresses turns a connection string such as
// "memcached://host1:11211,host2" into host:port addresses suitable for
// DialConn.
func ParseAddresses(connStr string) ([]string, error) {
	spec, err := gocbconnstr.Parse(connStr)
	if err != nil {
		return nil, err
	}

	if len(spec.Addresses) == 0 {
		return nil, fmt.Errorf("no addresses in connection string %q", connStr)
	}

	addrs := make([]string, 0, len(spec.Addresses))
	for _, specHost := range spec.Addresses {
		port := specHost.Port
		if port <= 0 {
			port = DefaultPort
		}
		addrs = append(addrs, fmt.Sprintf("%s:%d", specHost.Host, port))
	}

	return addrs, nil
}
