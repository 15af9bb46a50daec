package server

import (
	"context"
	"io/ioutil"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func startDispatcher(t *testing.T) (*Dispatcher, string) {
	t.Helper()
	h := NewHandler(newFakeStore("Alice", "Bob", "Charlie"), "admin123", zerolog.Nop())
	d := NewDispatcher(h, zerolog.Nop())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go d.Serve(ln)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		d.Shutdown(ctx)
	})
	return d, ln.Addr().String()
}

func exchange(t *testing.T, addr string, request string) string {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte(request))
	require.NoError(t, err)
	reply, err := ioutil.ReadAll(conn)
	require.NoError(t, err)
	return string(reply)
}

func TestDispatcherRoundTrip(t *testing.T) {
	require := require.New(t)
	_, addr := startDispatcher(t)

	require.Equal("Registration successful.", exchange(t, addr, "REGISTER alice pw1\n"))
	require.Equal("Username already exists.", exchange(t, addr, "REGISTER alice pw2\n"))
	require.Equal("Login success. Candidates: Alice, Bob, Charlie.", exchange(t, addr, "LOGIN alice pw1\n"))
	require.Equal("Vote successful.", exchange(t, addr, "VOTE alice Bob\n"))
	require.Equal("Vote failed or already voted.", exchange(t, addr, "VOTE alice Bob\n"))
	require.Equal("--- Results ---\nAlice: 0 votes\nBob: 1 votes\nCharlie: 0 votes\n",
		exchange(t, addr, "RESULTS admin123\n"))
	require.Equal("Invalid request.", exchange(t, addr, "FOO bar\n"))
}

func TestDispatcherCRLFAndHalfClose(t *testing.T) {
	require := require.New(t)
	_, addr := startDispatcher(t)

	require.Equal("Registration successful.", exchange(t, addr, "REGISTER crlf pw\r\n"))

	// A client may half-close instead of sending a newline.
	conn, err := net.Dial("tcp", addr)
	require.NoError(err)
	defer conn.Close()
	_, err = conn.Write([]byte("LOGIN crlf pw"))
	require.NoError(err)
	require.NoError(conn.(*net.TCPConn).CloseWrite())
	reply, err := ioutil.ReadAll(conn)
	require.NoError(err)
	require.Equal("Login success. Candidates: Alice, Bob, Charlie.", string(reply))
}

func TestDispatcherConcurrentConnections(t *testing.T) {
	require := require.New(t)
	_, addr := startDispatcher(t)

	done := make(chan string, 10)
	for i := 0; i < 10; i++ {
		go func(i int) {
			done <- exchange(t, addr, "RESULTS wrong\n")
		}(i)
	}
	for i := 0; i < 10; i++ {
		require.Equal("Unauthorized access.", <-done)
	}
}

func TestDispatcherShutdown(t *testing.T) {
	require := require.New(t)
	d, addr := startDispatcher(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(d.Shutdown(ctx))

	_, err := net.Dial("tcp", addr)
	if err == nil {
		t.Fatal("expected dial to fail after shutdown")
	}
}
