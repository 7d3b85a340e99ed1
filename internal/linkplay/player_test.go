package linkplay

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"
)

var errNotFound = errors.New("user does not exist")

type fakeResolver struct {
	names map[int]string
	calls int
}

func (f *fakeResolver) GetUserName(_ context.Context, userID int) (string, error) {
	f.calls++
	name, ok := f.names[userID]
	if !ok {
		return "", errNotFound
	}
	return name, nil
}

func countEncodes(t *testing.T) *int {
	t.Helper()
	count := 0
	original := encodeSongUnlock
	encodeSongUnlock = func(m *SongUnlockMap) []byte {
		count++
		return original(m)
	}
	t.Cleanup(func() { encodeSongUnlock = original })
	return &count
}

func TestPlayerSongUnlockCached(t *testing.T) {
	count := countEncodes(t)
	player := NewPlayer(1, 4)
	m := NewSongUnlockMap(4)
	_ = m.Set(0, Tiers{true})
	if err := player.SetSongUnlockMap(m); err != nil {
		t.Fatal(err)
	}

	first := player.SongUnlock()
	second := player.SongUnlock()
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical bitmaps, got %v and %v", first, second)
	}
	if *count != 1 {
		t.Fatalf("expected a single encoding, got %d", *count)
	}

	replacement := NewSongUnlockMap(4)
	_ = replacement.Set(1, Tiers{true})
	_ = player.SetSongUnlockMap(replacement)
	if got := player.SongUnlock(); got[0] != 0x10 {
		t.Fatalf("expected recomputed bitmap after SetSongUnlockMap, got %v", got)
	}
	if *count != 2 {
		t.Fatalf("expected re-encoding after invalidation, got %d encodings", *count)
	}
}

func TestPlayerSongUnlockNotShared(t *testing.T) {
	player := NewPlayer(1, 4)
	m := NewSongUnlockMap(4)
	_ = m.Set(0, Tiers{true})
	_ = player.SetSongUnlockMap(m)

	got := player.SongUnlock()
	got[0] = 0xFF
	if again := player.SongUnlock(); again[0] != 0x01 {
		t.Fatalf("writing the returned bitmap changed the cached one: %v", again)
	}
}

func TestPlayerSongUnlockWithoutMap(t *testing.T) {
	player := NewPlayer(1, 3)
	if got := player.SongUnlock(); !bytes.Equal(got, []byte{0, 0, 0}) {
		t.Fatalf("expected all-locked bitmap, got %v", got)
	}
}

func TestPlayerSetSongUnlockMapLengthMismatch(t *testing.T) {
	player := NewPlayer(1, 4)
	if err := player.SetSongUnlockMap(NewSongUnlockMap(8)); !errors.Is(err, ErrUnlockLengthMismatch) {
		t.Fatalf("expected ErrUnlockLengthMismatch, got %v", err)
	}
}

func TestPlayerResolveName(t *testing.T) {
	resolver := &fakeResolver{names: map[int]string{1: "hikari"}}
	player := NewPlayer(1, 4)

	for i := 0; i < 2; i++ {
		if err := player.ResolveName(context.Background(), resolver); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if player.Name != "hikari" || resolver.calls != 1 {
		t.Fatalf("expected one lookup resolving hikari, got name=%q calls=%d", player.Name, resolver.calls)
	}

	missing := NewPlayer(2, 4)
	err := missing.ResolveName(context.Background(), resolver)
	if !errors.Is(err, ErrIdentityLookup) || !errors.Is(err, errNotFound) {
		t.Fatalf("expected identity lookup error wrapping not found, got %v", err)
	}
	if err = missing.ResolveName(context.Background(), nil); !errors.Is(err, ErrIdentityLookup) {
		t.Fatalf("expected identity lookup error without resolver, got %v", err)
	}
}

func TestPlayerApplyRoomCredentials(t *testing.T) {
	player := NewPlayer(1, 4)
	key := base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4})
	if err := player.ApplyRoomCredentials("7", key, "5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if player.Token != 7 || player.PlayerID != 5 || !bytes.Equal(player.Key, []byte{1, 2, 3, 4}) {
		t.Fatalf("credentials not applied: %+v", player)
	}

	tests := []struct{ token, key, playerID string }{
		{"x", key, "6"},
		{"8", "%%%", "6"},
		{"8", key, "six"},
	}
	for _, tt := range tests {
		if err := player.ApplyRoomCredentials(tt.token, tt.key, tt.playerID); err == nil {
			t.Errorf("%+v: expected parse error", tt)
		}
		if player.Token != 7 || player.PlayerID != 5 {
			t.Fatalf("%+v: failed parse must not change credentials, got token=%d player=%d", tt, player.Token, player.PlayerID)
		}
	}
}

func TestRoomDefaults(t *testing.T) {
	room := NewRoom()
	if room.Code != DefaultRoomCode || room.ID != 0 || room.SongUnlock != nil {
		t.Fatalf("unexpected fresh room: %+v", room)
	}
	other := NewRoom()
	other.Code = "CCCC22"
	if room.Code != DefaultRoomCode {
		t.Fatal("fresh rooms must not share state")
	}

	room.ApplyServerFields("BBBB11", 42, []byte{9})
	if room.Code != "BBBB11" || room.ID != 42 || !bytes.Equal(room.SongUnlock, []byte{9}) {
		t.Fatalf("server fields not applied: %+v", room)
	}
}
