package linkplay

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
)

// NameResolver looks up a user's display name.
type NameResolver interface {
	GetUserName(ctx context.Context, userID int) (string, error)
}

// encodeSongUnlock is swapped in tests to count encodings.
var encodeSongUnlock = EncodeSongUnlock

// songUnlockCache is either empty or holds the bitmap computed from the
// current song map.
type songUnlockCache struct {
	bitmap   []byte
	computed bool
}

// Player is one user's link play session state. It is not safe for
// concurrent use.
type Player struct {
	UserID   int
	Name     string
	PlayerID int64
	Token    int64
	Key      []byte

	unlockLength int
	songMap      *SongUnlockMap
	songUnlock   songUnlockCache
}

func NewPlayer(userID int, unlockLength int) *Player {
	if unlockLength <= 0 {
		unlockLength = DefaultUnlockLength
	}
	return &Player{
		UserID:       userID,
		unlockLength: unlockLength,
	}
}

func (p *Player) UnlockLength() int {
	return p.unlockLength
}

// ResolveName fetches the display name once; later calls are no-ops.
func (p *Player) ResolveName(ctx context.Context, resolver NameResolver) error {
	if p.Name != "" {
		return nil
	}
	if resolver == nil {
		return fmt.Errorf("%w: user_id=%d: no name resolver", ErrIdentityLookup, p.UserID)
	}
	name, err := resolver.GetUserName(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIdentityLookup, err)
	}
	p.Name = name
	return nil
}

// SetSongUnlockMap replaces the song map and drops the cached bitmap.
func (p *Player) SetSongUnlockMap(m *SongUnlockMap) error {
	if m != nil && m.UnlockLength() != p.unlockLength {
		return fmt.Errorf("%w: map=%d player=%d", ErrUnlockLengthMismatch, m.UnlockLength(), p.unlockLength)
	}
	p.songMap = m
	p.InvalidateSongUnlock()
	return nil
}

func (p *Player) SongUnlockMap() *SongUnlockMap {
	return p.songMap
}

func (p *Player) InvalidateSongUnlock() {
	p.songUnlock = songUnlockCache{}
}

// SongUnlock returns a copy of the packed bitmap, encoding it on first use.
func (p *Player) SongUnlock() []byte {
	if !p.songUnlock.computed {
		m := p.songMap
		if m == nil {
			m = NewSongUnlockMap(p.unlockLength)
		}
		p.songUnlock = songUnlockCache{bitmap: encodeSongUnlock(m), computed: true}
	}
	return bytes.Clone(p.songUnlock.bitmap)
}

type roomCredentials struct {
	token    int64
	key      []byte
	playerID int64
}

func parseRoomCredentials(token, key, playerID string) (roomCredentials, error) {
	var (
		creds roomCredentials
		err   error
	)
	if creds.token, err = strconv.ParseInt(token, 10, 64); err != nil {
		return creds, fmt.Errorf("token %q: %w", token, err)
	}
	if creds.key, err = base64.StdEncoding.DecodeString(key); err != nil {
		return creds, fmt.Errorf("key: %w", err)
	}
	if creds.playerID, err = strconv.ParseInt(playerID, 10, 64); err != nil {
		return creds, fmt.Errorf("player id %q: %w", playerID, err)
	}
	return creds, nil
}

// ApplyRoomCredentials overwrites token, key and player id from their wire
// form. Nothing is written unless all three parse.
func (p *Player) ApplyRoomCredentials(token, key, playerID string) error {
	creds, err := parseRoomCredentials(token, key, playerID)
	if err != nil {
		return err
	}
	p.applyCredentials(creds)
	return nil
}

func (p *Player) applyCredentials(creds roomCredentials) {
	p.Token = creds.token
	p.Key = creds.key
	p.PlayerID = creds.playerID
}
