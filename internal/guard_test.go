package internal_test

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/WMTcore/egg/internal"
)

type clientErrorSink struct {
	mu     sync.Mutex
	errors []*internal.ClientError
}

func (s *clientErrorSink) add(e *internal.ClientError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, e)
}

func (s *clientErrorSink) all() []*internal.ClientError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*internal.ClientError{}, s.errors...)
}

func newGuard(t *testing.T) (*internal.GuardedListener, *clientErrorSink) {
	t.Helper()
	raw, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	sink := &clientErrorSink{}
	g := internal.NewGuardedListener(raw, sink.add)
	t.Cleanup(func() { _ = g.Close() })
	return g, sink
}

func TestGuardPassesValidRequest(t *testing.T) {
	t.Parallel()

	g, sink := newGuard(t)

	preamble := "GET /health HTTP/1.1\r\nHost: example.test\r\n\r\n"
	conn, err := net.Dial("tcp", g.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte(preamble))
	require.NoError(t, err)

	accepted, err := g.Accept()
	require.NoError(t, err)
	defer accepted.Close()

	// The server side must see the stream byte-for-byte, including what
	// the guard consumed while sniffing.
	buf := make([]byte, len(preamble))
	_, err = io.ReadFull(accepted, buf)
	require.NoError(t, err)
	require.Equal(t, preamble, string(buf))
	require.Empty(t, sink.all())
}

func TestGuardRejectsMalformedPreamble(t *testing.T) {
	t.Parallel()

	g, sink := newGuard(t)

	conn, err := net.Dial("tcp", g.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("SSH-2.0-OpenSSH_9.6\r\n"))
	require.NoError(t, err)

	resp, err := io.ReadAll(conn)
	require.NoError(t, err)

	text := string(resp)
	require.True(t, strings.HasPrefix(text, "HTTP/1.1 400 Bad Request\r\n"), text)

	// Content-Length must match the fixed HTML document exactly.
	head, body, found := strings.Cut(text, "\r\n\r\n")
	require.True(t, found)
	require.Contains(t, head, fmt.Sprintf("Content-Length: %d", len(body)))
	require.True(t, strings.HasPrefix(body, "<html>"), body)
	require.True(t, strings.HasSuffix(body, "</html>"), body)

	require.Eventually(t, func() bool {
		return len(sink.all()) == 1
	}, time.Second, 5*time.Millisecond)
	require.ErrorContains(t, sink.all()[0].Err, "malformed request line")
}

func TestGuardRejectsOverlongPreamble(t *testing.T) {
	t.Parallel()

	g, sink := newGuard(t)

	conn, err := net.Dial("tcp", g.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte(strings.Repeat("A", 2048)))
	require.NoError(t, err)

	resp, err := io.ReadAll(conn)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(resp), "HTTP/1.1 400 Bad Request\r\n"))

	require.Eventually(t, func() bool {
		return len(sink.all()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestGuardSlowPeerDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	g, _ := newGuard(t)

	// Open a connection that sends nothing; it must not stall the fast one.
	slow, err := net.Dial("tcp", g.Addr().String())
	require.NoError(t, err)
	defer slow.Close()

	fast, err := net.Dial("tcp", g.Addr().String())
	require.NoError(t, err)
	defer fast.Close()
	_, err = fast.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		accepted, err := g.Accept()
		if err == nil {
			_ = accepted.Close()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("screened connection was not delivered while a slow peer lingered")
	}
}

func TestGuardServesHTTP(t *testing.T) {
	t.Parallel()

	g, _ := newGuard(t)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})}
	go func() { _ = srv.Serve(g) }()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := net.Dial("tcp", g.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"))
	require.NoError(t, err)

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))
}
