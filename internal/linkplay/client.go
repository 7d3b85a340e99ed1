package linkplay

import (
	"context"
	"encoding/base64"
	"net"
	"strconv"
	"time"

	c "github.com/life-stream-dev/life-stream-go-linkplay/internal/config"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/logger"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/utils"
)

const DefaultTimeout = 10 * time.Second

type Options struct {
	Host           string
	Port           int
	Authentication string
	Timeout        time.Duration
	UnlockLength   int
	Users          NameResolver
	Dialer         Dialer
}

// Client talks to the link play server. Each room operation opens its own
// connection, writes one request, reads one response line and closes it,
// so a Client may be shared; the Player and Room passed in may not.
type Client struct {
	addr           string
	authentication string
	timeout        time.Duration
	unlockLength   int
	users          NameResolver
	dialer         Dialer
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UnlockLength <= 0 {
		opts.UnlockLength = DefaultUnlockLength
	}
	if opts.Dialer == nil {
		opts.Dialer = &net.Dialer{Timeout: opts.Timeout}
	}
	return &Client{
		addr:           net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		authentication: opts.Authentication,
		timeout:        opts.Timeout,
		unlockLength:   opts.UnlockLength,
		users:          opts.Users,
		dialer:         opts.Dialer,
	}
}

func NewClientFromConfig(config c.LinkPlayConfig, users NameResolver) *Client {
	return NewClient(Options{
		Host:           config.Host,
		Port:           config.TCPPort,
		Authentication: config.Authentication,
		Timeout:        utils.ParseStringTimeOr(config.Timeout, DefaultTimeout),
		UnlockLength:   config.UnlockLength,
		Users:          users,
	})
}

func (cl *Client) Addr() string {
	return cl.addr
}

func (cl *Client) UnlockLength() int {
	return cl.unlockLength
}

// NewPlayer returns a player sized for this client's bitmap length.
func (cl *Client) NewPlayer(userID int) *Player {
	return NewPlayer(userID, cl.unlockLength)
}

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// CreateRoom asks the server for a new room hosted by player. The room
// carries the player's own song unlock bitmap.
func (cl *Client) CreateRoom(ctx context.Context, player *Player) (*Room, error) {
	if err := player.ResolveName(ctx, cl.users); err != nil {
		return nil, err
	}
	songUnlock := player.SongUnlock()

	fields, err := cl.exchange(ctx, OpCreateRoom, player.Name, encodeBase64(songUnlock))
	if err != nil {
		return nil, err
	}
	resp, err := fields.decodeRoom()
	if err != nil {
		return nil, err
	}

	room := NewRoom()
	room.ApplyServerFields(resp.roomCode, resp.roomID, songUnlock)
	player.applyCredentials(roomCredentials{token: resp.token, key: resp.key, playerID: resp.playerID})
	logger.InfoF("Link play room created: code=%s room_id=%d user_id=%d player_id=%d", room.Code, room.ID, player.UserID, player.PlayerID)
	return room, nil
}

// JoinRoom joins room by its code and updates it in place with the
// server's view, including the room's song unlock bitmap.
func (cl *Client) JoinRoom(ctx context.Context, player *Player, room *Room) error {
	if err := player.ResolveName(ctx, cl.users); err != nil {
		return err
	}

	fields, err := cl.exchange(ctx, OpJoinRoom, player.Name, encodeBase64(player.SongUnlock()), room.Code)
	if err != nil {
		return err
	}
	resp, err := fields.decodeRoom()
	if err != nil {
		return err
	}

	room.ApplyServerFields(resp.roomCode, resp.roomID, resp.songUnlock)
	player.applyCredentials(roomCredentials{token: resp.token, key: resp.key, playerID: resp.playerID})
	logger.InfoF("Link play room joined: code=%s room_id=%d user_id=%d player_id=%d", room.Code, room.ID, player.UserID, player.PlayerID)
	return nil
}

// UpdateRoom refreshes the room the player's token belongs to. The token
// itself is kept; the server does not reissue it.
func (cl *Client) UpdateRoom(ctx context.Context, player *Player) (*Room, error) {
	if player.Token == 0 {
		return nil, ErrNoRoomToken
	}

	fields, err := cl.exchange(ctx, OpUpdateRoom, strconv.FormatInt(player.Token, 10))
	if err != nil {
		return nil, err
	}
	resp, err := fields.decodeRoom()
	if err != nil {
		return nil, err
	}

	room := NewRoom()
	room.ApplyServerFields(resp.roomCode, resp.roomID, resp.songUnlock)
	player.applyCredentials(roomCredentials{token: player.Token, key: resp.key, playerID: resp.playerID})
	logger.DebugF("Link play room updated: code=%s room_id=%d player_id=%d", room.Code, room.ID, player.PlayerID)
	return room, nil
}
