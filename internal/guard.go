package internal

import (
	"bytes"
	"fmt"
	"net"
	"regexp"
	"sync"
	"time"
)

// requestLinePattern matches a plausible HTTP/1.x request line. Anything a
// connection opens with that does not look like this is answered below the
// HTTP stack and never reaches a handler.
var requestLinePattern = regexp.MustCompile(`^[A-Z]+ \S+ HTTP/\d\.\d$`)

const (
	// maxPreambleBytes bounds how much of a connection is buffered while
	// looking for the end of the request line.
	maxPreambleBytes = 2048
	// preambleTimeout bounds how long a connection may dribble bytes
	// before committing to a request line.
	preambleTimeout = 5 * time.Second

	badRequestBody = "<html><head><title>400 Bad Request</title></head>" +
		"<body><h1>400 Bad Request</h1></body></html>"
)

// GuardedListener screens inbound connections before the HTTP server sees
// them. Each accepted connection is sniffed on its own goroutine up to the
// end of its first line; valid connections are replayed to the server
// byte-for-byte, invalid ones get a raw 400 and a ClientError emission.
//
// Sniffing per connection keeps a slow or hostile peer from stalling
// accepts for everyone else.
type GuardedListener struct {
	inner     net.Listener
	emit      func(*ClientError)
	conns     chan net.Conn
	errs      chan error
	closed    chan struct{}
	closeOnce sync.Once
}

// NewGuardedListener wraps inner. emit receives one ClientError per
// rejected connection and must be safe for concurrent use.
func NewGuardedListener(inner net.Listener, emit func(*ClientError)) *GuardedListener {
	g := &GuardedListener{
		inner:  inner,
		emit:   emit,
		conns:  make(chan net.Conn),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}
	go g.acceptLoop()
	return g
}

func (g *GuardedListener) acceptLoop() {
	for {
		conn, err := g.inner.Accept()
		if err != nil {
			select {
			case g.errs <- err:
			case <-g.closed:
			}
			return
		}
		go g.screen(conn)
	}
}

// screen reads the first line of conn. The bytes consumed while sniffing
// are replayed to the server on success, so the HTTP parser sees the
// untouched stream.
func (g *GuardedListener) screen(conn net.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(preambleTimeout))

	buf := make([]byte, 0, 512)
	chunk := make([]byte, 512)
	for {
		if i := bytes.IndexByte(buf, '\n'); i >= 0 {
			line := bytes.TrimRight(buf[:i], "\r")
			if !requestLinePattern.Match(line) {
				g.reject(conn, buf, fmt.Errorf("malformed request line %q", line))
				return
			}
			_ = conn.SetReadDeadline(time.Time{})
			g.deliver(&replayConn{Conn: conn, pending: buf})
			return
		}
		if len(buf) >= maxPreambleBytes {
			g.reject(conn, buf, fmt.Errorf("no request line within %d bytes", maxPreambleBytes))
			return
		}
		n, err := conn.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if err != nil {
			g.reject(conn, buf, fmt.Errorf("read preamble: %w", err))
			return
		}
	}
}

func (g *GuardedListener) deliver(conn net.Conn) {
	select {
	case g.conns <- conn:
	case <-g.closed:
		_ = conn.Close()
	}
}

// reject answers with a raw 400 whose Content-Length matches the body
// exactly, emits the client error, and drops the connection.
func (g *GuardedListener) reject(conn net.Conn, preamble []byte, cause error) {
	fmt.Fprintf(conn, "HTTP/1.1 400 Bad Request\r\nContent-Length: %d\r\nConnection: close\r\n\r\n%s",
		len(badRequestBody), badRequestBody)
	_ = conn.Close()
	if g.emit != nil {
		g.emit(&ClientError{
			RemoteAddr: conn.RemoteAddr().String(),
			Preamble:   preamble,
			Err:        cause,
		})
	}
}

// Accept returns the next screened connection.
func (g *GuardedListener) Accept() (net.Conn, error) {
	select {
	case conn := <-g.conns:
		return conn, nil
	case err := <-g.errs:
		return nil, err
	case <-g.closed:
		return nil, net.ErrClosed
	}
}

// Close stops the listener. Connections still being screened are dropped.
func (g *GuardedListener) Close() error {
	g.closeOnce.Do(func() {
		close(g.closed)
	})
	return g.inner.Close()
}

// Addr returns the underlying listener address.
func (g *GuardedListener) Addr() net.Addr {
	return g.inner.Addr()
}

var _ net.Listener = (*GuardedListener)(nil)

// replayConn serves the sniffed prefix before reading from the socket
// again.
type replayConn struct {
	net.Conn
	pending []byte
}

func (c *replayConn) Read(p []byte) (int, error) {
	if len(c.pending) > 0 {
		n := copy(p, c.pending)
		c.pending = c.pending[n:]
		return n, nil
	}
	return c.Conn.Read(p)
}
