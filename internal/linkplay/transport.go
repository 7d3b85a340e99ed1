package linkplay

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/life-stream-dev/life-stream-go-linkplay/internal/logger"
)

// maxResponseSize bounds a single response line. A join response carries a
// base64 bitmap, about 4/3 of the unlock length.
const maxResponseSize = 64 * 1024

type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

func send(conn net.Conn, data []byte, connID string) error {
	total := 0
	for total < len(data) {
		n, err := conn.Write(data[total:])
		if err != nil {
			logger.ErrorF("[%s] Fail to send data, details: %v", connID, err)
			return err
		}
		total += n
	}
	logger.DebugF("[%s] Send %d bytes to link play server", connID, total)
	return nil
}

func isNetClosedError(err error) bool {
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	var opErr *net.OpError
	ok := errors.As(err, &opErr)
	return ok && opErr.Timeout()
}

func handleReadError(connID string, err error) {
	switch {
	case errors.Is(err, io.EOF):
		logger.WarnF("[%s] Link play server closed connection without a response", connID)
	case os.IsTimeout(err):
		logger.WarnF("[%s] Reading timeout", connID)
	default:
		logger.ErrorF("[%s] Error occured while reading response, details: %v", connID, err)
	}
}

// readLine reads one newline terminated response. A final line without the
// terminator is accepted when the server closes the connection after it.
func readLine(conn net.Conn) (string, error) {
	reader := bufio.NewReader(io.LimitReader(conn, maxResponseSize))
	line, err := reader.ReadString(lineTerminator)
	if err == nil {
		return line, nil
	}
	if errors.Is(err, io.EOF) && line != "" {
		if len(line) >= maxResponseSize {
			return "", errResponseTooLong
		}
		return line, nil
	}
	return "", err
}

var errResponseTooLong = errors.New("response exceeds size limit")

// exchange performs one request/response round trip on a fresh connection.
// The connection is closed before exchange returns.
func (cl *Client) exchange(ctx context.Context, op Operation, fields ...string) (*responseFields, error) {
	request, err := EncodeRequest(cl.authentication, op, fields...)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(cl.timeout)
	ctxBound := false
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
		ctxBound = true
	}
	// timeoutErr reports a hit deadline as the caller's when it came from ctx
	timeoutErr := func() error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if ctxBound {
			return context.DeadlineExceeded
		}
		return ErrTimeout
	}

	dialCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	conn, err := cl.dialer.DialContext(dialCtx, "tcp", cl.addr)
	if err != nil {
		if ctx.Err() != nil || (ctxBound && errors.Is(err, context.DeadlineExceeded)) {
			return nil, timeoutErr()
		}
		return nil, &ConnectError{Addr: cl.addr, Err: err}
	}
	connID := conn.RemoteAddr().String()

	defer func() {
		logger.DebugF("[%s] Connection closed", connID)
		if err := conn.Close(); err != nil && !isNetClosedError(err) {
			logger.WarnF("[%s] Error occured while closing connection, details: %v", connID, err)
		}
	}()

	if err = conn.SetDeadline(deadline); err != nil {
		return nil, &ConnectError{Addr: cl.addr, Err: err}
	}
	// cancelling ctx unblocks the read through the deadline
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	logger.DebugF("[%s] Sending %s request", connID, op)
	if err = send(conn, request, connID); err != nil {
		if ctx.Err() != nil || os.IsTimeout(err) {
			return nil, timeoutErr()
		}
		return nil, &ConnectError{Addr: cl.addr, Err: err}
	}

	line, err := readLine(conn)
	if err != nil {
		handleReadError(connID, err)
		switch {
		case ctx.Err() != nil, os.IsTimeout(err):
			return nil, timeoutErr()
		case errors.Is(err, io.EOF):
			return nil, &MalformedResponseError{Op: op, Reason: "connection closed without a response"}
		case errors.Is(err, errResponseTooLong):
			return nil, &MalformedResponseError{Op: op, Reason: err.Error()}
		default:
			return nil, &ConnectError{Addr: cl.addr, Err: err}
		}
	}
	logger.DebugF("[%s] Receive %d bytes for %s", connID, len(line), op)

	resp, err := parseResponse(op, line)
	if err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) {
			logger.WarnF("[%s] Link play server rejected %s with code %d", connID, op, remote.Code)
		}
		return nil, err
	}
	return resp, nil
}
