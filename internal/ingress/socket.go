// Package ingress is the concrete "datagram socket setup" collaborator
// named out-of-scope in spec §1: it binds a UDP PacketConn and hands raw
// datagram payloads to a callback. No OS tuning, peer authentication, or
// signal handling lives here (spec §1 Non-goals); those stay in cmd/matchd.
package ingress

import (
	"net"

	"github.com/pkg/errors"
)

// maxDatagramSize bounds a single read; UDP datagrams larger than this
// are truncated by the kernel before we ever see them, so this merely
// needs to be comfortably above any realistic order-entry batch.
const maxDatagramSize = 65536

// Socket wraps a bound UDP PacketConn.
type Socket struct {
	conn net.PacketConn
}

// Listen binds addr ("host:port" or ":port") as a UDP socket.
func Listen(addr string) (*Socket, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen udp %s", addr)
	}
	return &Socket{conn: conn}, nil
}

// Close releases the underlying socket, unblocking any in-flight Serve.
func (s *Socket) Close() error {
	return s.conn.Close()
}

// Addr returns the bound local address.
func (s *Socket) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Serve blocks reading datagrams and invoking onPayload for each one,
// until Close is called (which causes ReadFrom to return an error and
// Serve to return nil) or a non-close error occurs.
func (s *Socket) Serve(onPayload func(payload []byte)) error {
	buf := make([]byte, maxDatagramSize)
	for {
		n, _, err := s.conn.ReadFrom(buf)
		if err != nil {
			if isClosedErr(err) {
				return nil
			}
			return errors.Wrap(err, "read udp datagram")
		}
		if n > 0 {
			onPayload(buf[:n])
		}
	}
}

func isClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
