package model

import (
	"context"
	"net"
)

// SecurityLayer abstracts listener creation so the server does not care
// whether it serves plain TCP or TLS.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is the transport-facing lifecycle: Start blocks until the server
// stops, Stop drains in-flight requests within the context deadline.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
