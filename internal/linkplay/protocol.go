package linkplay

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Operation is the command number sent after the authentication token.
type Operation int

const (
	OpCreateRoom Operation = iota + 1
	OpJoinRoom
	OpUpdateRoom
)

var operationNames = map[Operation]string{
	OpCreateRoom: "create_room",
	OpJoinRoom:   "join_room",
	OpUpdateRoom: "update_room",
}

func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return "op_" + strconv.Itoa(int(op))
}

// responseFieldCount is the minimum number of fields, status included, of a
// successful response.
var responseFieldCount = map[Operation]int{
	OpCreateRoom: 6,
	OpJoinRoom:   7,
	OpUpdateRoom: 6,
}

const (
	fieldSeparator = "|"
	lineTerminator = '\n'
	statusOK       = "0"
)

// EncodeRequest builds "auth|op|field...\n".
func EncodeRequest(authentication string, op Operation, fields ...string) ([]byte, error) {
	parts := make([]string, 0, len(fields)+2)
	parts = append(parts, authentication, strconv.Itoa(int(op)))
	parts = append(parts, fields...)
	for i, part := range parts {
		if strings.ContainsAny(part, fieldSeparator+string(lineTerminator)+"\r") {
			return nil, fmt.Errorf("%w: field %d of %s", ErrInvalidRequestField, i, op)
		}
	}
	return []byte(strings.Join(parts, fieldSeparator) + string(lineTerminator)), nil
}

// responseFields walks the fields of one response line.
type responseFields struct {
	op         Operation
	fields     []string
	currentPtr int
}

// parseResponse checks the status field and the field count. A non-zero
// status yields *RemoteError regardless of how many fields follow.
func parseResponse(op Operation, line string) (*responseFields, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, &MalformedResponseError{Op: op, Reason: "empty response"}
	}
	fields := strings.Split(line, fieldSeparator)

	if fields[0] != statusOK {
		code, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, &MalformedResponseError{Op: op, Reason: fmt.Sprintf("status %q is not an integer", fields[0])}
		}
		return nil, &RemoteError{Op: op, Code: code}
	}

	if want := responseFieldCount[op]; len(fields) < want {
		return nil, &MalformedResponseError{Op: op, Reason: fmt.Sprintf("expected %d fields, got %d", want, len(fields))}
	}

	return &responseFields{op: op, fields: fields, currentPtr: 1}, nil
}

func (r *responseFields) malformed(format string, v ...interface{}) error {
	return &MalformedResponseError{Op: r.op, Reason: fmt.Sprintf("field %d: ", r.currentPtr-1) + fmt.Sprintf(format, v...)}
}

func (r *responseFields) readString() (string, error) {
	if r.currentPtr >= len(r.fields) {
		r.currentPtr++
		return "", r.malformed("missing")
	}
	field := r.fields[r.currentPtr]
	r.currentPtr++
	return field, nil
}

func (r *responseFields) readInt() (int64, error) {
	field, err := r.readString()
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, r.malformed("%q is not an integer", field)
	}
	return value, nil
}

func (r *responseFields) readBytes() ([]byte, error) {
	field, err := r.readString()
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(field)
	if err != nil {
		return nil, r.malformed("invalid base64: %v", err)
	}
	return data, nil
}

// roomResponse holds every field an operation may apply. It is filled
// completely before anything is mutated.
type roomResponse struct {
	roomCode   string
	roomID     int64
	token      int64
	key        []byte
	playerID   int64
	songUnlock []byte
}

func (r *responseFields) decodeRoom() (roomResponse, error) {
	var (
		resp roomResponse
		err  error
	)
	if resp.roomCode, err = r.readString(); err != nil {
		return resp, err
	}
	if resp.roomID, err = r.readInt(); err != nil {
		return resp, err
	}

	switch r.op {
	case OpCreateRoom, OpJoinRoom:
		if resp.token, err = r.readInt(); err != nil {
			return resp, err
		}
		if resp.key, err = r.readBytes(); err != nil {
			return resp, err
		}
		if resp.playerID, err = r.readInt(); err != nil {
			return resp, err
		}
		if r.op == OpJoinRoom {
			if resp.songUnlock, err = r.readBytes(); err != nil {
				return resp, err
			}
		}
	case OpUpdateRoom:
		if resp.key, err = r.readBytes(); err != nil {
			return resp, err
		}
		if resp.playerID, err = r.readInt(); err != nil {
			return resp, err
		}
		if resp.songUnlock, err = r.readBytes(); err != nil {
			return resp, err
		}
	default:
		return resp, r.malformed("unsupported operation")
	}
	return resp, nil
}
