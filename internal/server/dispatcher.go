package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MaxRequestBytes bounds one request line, including the terminator.
const MaxRequestBytes = 1024

const readTimeout = 30 * time.Second

// Dispatcher accepts connections and runs one request/response exchange per
// connection: read a line, handle it, write the reply, close. Connections
// are served concurrently; per-user serialization is the store's job.
type Dispatcher struct {
	handler *Handler
	logger  zerolog.Logger

	mu     sync.Mutex
	ln     net.Listener
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(handler *Handler, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{handler: handler, logger: logger}
}

// Serve accepts on ln until Shutdown closes it.
func (d *Dispatcher) Serve(ln net.Listener) error {
	d.mu.Lock()
	d.ln = ln
	d.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			d.mu.Lock()
			closed := d.closed
			d.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}
		d.wg.Add(1)
		go d.handleConn(conn)
	}
}

// Shutdown stops accepting and waits for in-flight exchanges, up to the
// context deadline.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	ln := d.ln
	d.mu.Unlock()
	if ln != nil {
		ln.Close()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) handleConn(conn net.Conn) {
	defer d.wg.Done()
	defer conn.Close()

	logger := d.logger.With().Str("remote_addr", conn.RemoteAddr().String()).Logger()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Recovered handling connection")
		}
	}()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	line, err := readLine(conn)
	if err != nil {
		logger.Debug().Err(err).Msg("Dropping unreadable request")
		return
	}

	reply := d.handler.Handle(context.Background(), line)
	if _, err := io.WriteString(conn, reply.Encode()); err != nil {
		logger.Debug().Err(err).Msg("Failed to write reply")
	}
}

// readLine reads one newline-terminated request. A client that half-closes
// without a newline still gets its buffered bytes treated as the line.
// Anything past MaxRequestBytes is never read; the truncated line then fails
// the parser's field bounds.
func readLine(conn net.Conn) (string, error) {
	r := bufio.NewReaderSize(io.LimitReader(conn, MaxRequestBytes), MaxRequestBytes)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
