package linkplay

import (
	"errors"
	"fmt"
)

var (
	ErrSongIndexOutOfRange  = errors.New("song index out of range")
	ErrSongIndexInvalid     = errors.New("song index is not a canonical decimal integer")
	ErrUnlockLengthMismatch = errors.New("song unlock map length does not match player")
	ErrIdentityLookup       = errors.New("unable to resolve player identity")
	ErrTimeout              = errors.New("timeout when waiting for data from link play server")
	ErrMalformedResponse    = errors.New("malformed link play response")
	ErrNoRoomToken          = errors.New("player has no link play token, create or join a room first")
	ErrInvalidRequestField  = errors.New("request field contains a reserved character")
)

// RemoteError carries a non-zero status code returned by the link play
// server. Codes are passed through to the caller untouched.
type RemoteError struct {
	Op   Operation
	Code int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("link play error code: %d (%s)", e.Code, e.Op)
}

// MalformedResponseError reports a response that could not be applied.
type MalformedResponseError struct {
	Op     Operation
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrMalformedResponse, e.Op, e.Reason)
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// ConnectError reports that the link play server could not be reached.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("unable to connect to link play server %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// RemoteCode extracts the server status code from err.
func RemoteCode(err error) (int, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Code, true
	}
	return 0, false
}
