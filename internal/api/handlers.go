package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/database"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/linkplay"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/logger"
)

// Error codes returned in the envelope when the failure is local. Link play
// server codes are passed through as they are.
const (
	ErrorCodeBadRequest   = 108
	ErrorCodeUserNotFound = 401
	ErrorCodeNoRoom       = 402
	ErrorCodeUnavailable  = -1
)

const maxBodySize = 1 << 20

type roomRequest struct {
	UserID        int               `json:"user_id"`
	ClientSongMap map[string][]bool `json:"client_song_map"`
}

type updateRequest struct {
	UserID int    `json:"user_id"`
	Token  string `json:"token"`
}

type envelope struct {
	Success   bool           `json:"success"`
	Value     *linkplay.View `json:"value,omitempty"`
	ErrorCode int            `json:"error_code,omitempty"`
	Message   string         `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeView(w http.ResponseWriter, view linkplay.View) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Value: &view})
}

func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, ErrorCodeUnavailable
	var (
		remote     *linkplay.RemoteError
		connectErr *linkplay.ConnectError
	)

	switch {
	case errors.As(err, &remote):
		status, code = http.StatusBadRequest, remote.Code
	case errors.Is(err, database.ErrUserNotFound), errors.Is(err, database.ErrUserIDInvalid):
		status, code = http.StatusNotFound, ErrorCodeUserNotFound
	case errors.Is(err, linkplay.ErrIdentityLookup):
		status, code = http.StatusInternalServerError, ErrorCodeUserNotFound
	case errors.Is(err, linkplay.ErrNoRoomToken):
		status, code = http.StatusBadRequest, ErrorCodeNoRoom
	case errors.Is(err, linkplay.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, linkplay.ErrMalformedResponse), errors.As(err, &connectErr):
		status = http.StatusBadGateway
	case errors.Is(err, linkplay.ErrSongIndexOutOfRange), errors.Is(err, linkplay.ErrSongIndexInvalid),
		errors.Is(err, linkplay.ErrInvalidRequestField):
		status, code = http.StatusBadRequest, ErrorCodeBadRequest
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorF("Link play request failed: %v", err)
	} else {
		logger.DebugF("Link play request rejected: %v", err)
	}
	writeJSON(w, status, envelope{ErrorCode: code, Message: err.Error()})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{ErrorCode: ErrorCodeBadRequest, Message: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := decoder.Decode(v); err != nil {
		badRequest(w, "bad json")
		return false
	}
	return true
}

func preparePlayer(client *linkplay.Client, req roomRequest) (*linkplay.Player, error) {
	player := client.NewPlayer(req.UserID)
	songMap, err := linkplay.ParseClientSongMap(req.ClientSongMap, client.UnlockLength())
	if err != nil {
		return nil, err
	}
	if err = player.SetSongUnlockMap(songMap); err != nil {
		return nil, err
	}
	return player, nil
}

func CreateRoom(client *linkplay.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req roomRequest
		if !decodeBody(w, r, &req) {
			return
		}
		player, err := preparePlayer(client, req)
		if err != nil {
			writeError(w, err)
			return
		}

		room, err := client.CreateRoom(r.Context(), player)
		if err != nil {
			writeError(w, err)
			return
		}
		writeView(w, linkplay.NewView(room, player))
	}
}

func JoinRoom(client *linkplay.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if code == "" {
			badRequest(w, "missing code")
			return
		}
		var req roomRequest
		if !decodeBody(w, r, &req) {
			return
		}
		player, err := preparePlayer(client, req)
		if err != nil {
			writeError(w, err)
			return
		}

		room := linkplay.NewRoomWithCode(code)
		if err = client.JoinRoom(r.Context(), player, room); err != nil {
			writeError(w, err)
			return
		}
		writeView(w, linkplay.NewView(room, player))
	}
}

func UpdateRoom(client *linkplay.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		token, err := strconv.ParseInt(req.Token, 10, 64)
		if err != nil {
			badRequest(w, "token must be an integer")
			return
		}

		player := client.NewPlayer(req.UserID)
		player.Token = token
		room, err := client.UpdateRoom(r.Context(), player)
		if err != nil {
			writeError(w, err)
			return
		}
		writeView(w, linkplay.NewView(room, player))
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
