// Package network provides the node network address type.
package network

import (
	"fmt"
	"net"

	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
)

// Address is a storage node endpoint. Internally it is always a
// multiaddr; FromString also accepts plain "host:port" strings and
// normalizes them.
type Address struct {
	ma multiaddr.Multiaddr
}

// String returns the multiaddr string.
func (a Address) String() string {
	return a.ma.String()
}

// Equal compares Address's.
func (a Address) Equal(addr Address) bool {
	return a.ma.Equal(addr.ma)
}

// HostAddr returns the endpoint in "host:port" form, suitable for
// net.Dial.
//
// Panics if the underlying multiaddr has no dialable form, which
// cannot happen for an Address built with FromString.
func (a Address) HostAddr() string {
	_, host, err := manet.DialArgs(a.ma)
	if err != nil {
		panic(fmt.Errorf("could not get host addr: %w", err))
	}

	return host
}

// FromString parses s as a multiaddr ("/dns4/localhost/tcp/8080") or a
// host address ("localhost:8080", ":8080", "192.168.0.1:8080").
func (a *Address) FromString(s string) error {
	var err error

	a.ma, err = multiaddr.NewMultiaddr(s)
	if err != nil {
		s, err = multiaddrStringFromHostAddr(s)
		if err == nil {
			a.ma, err = multiaddr.NewMultiaddr(s)
		}
	}

	return err
}

// multiaddrStringFromHostAddr converts "localhost:8080" to
// "/dns4/localhost/tcp/8080".
func multiaddrStringFromHostAddr(host string) (string, error) {
	if len(host) == 0 {
		return "", fmt.Errorf("host is empty")
	}

	endpoint, port, err := net.SplitHostPort(host)
	if err != nil {
		return "", err
	}

	// ":8080" must not become "/dns4//tcp/8080" (invalid) or
	// "/tcp/8080" (manet.DialArgs rejects it), so an empty host
	// means the wildcard interface.
	if endpoint == "" {
		return "/ip4/0.0.0.0/tcp/" + port, nil
	}

	prefix := "/dns4"

	if ip := net.ParseIP(endpoint); ip != nil {
		endpoint = ip.String()

		if ip.To4() != nil {
			prefix = "/ip4"
		} else {
			prefix = "/ip6"
		}
	}

	return prefix + "/" + endpoint + "/tcp/" + port, nil
}
