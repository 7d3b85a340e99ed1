package linkplay

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

func TestEncodeSongUnlockPacking(t *testing.T) {
	m := NewSongUnlockMap(4)
	_ = m.Set(0, Tiers{true, false, false, false})
	_ = m.Set(1, Tiers{false, true, false, false})

	bitmap := EncodeSongUnlock(m)
	if len(bitmap) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(bitmap))
	}
	if bitmap[0] != 33 {
		t.Fatalf("byte 0: expected 33, got %d", bitmap[0])
	}
	if !bytes.Equal(bitmap[1:], []byte{0, 0, 0}) {
		t.Fatalf("untouched bytes must be zero, got %v", bitmap[1:])
	}
}

func TestEncodeSongUnlockNibbles(t *testing.T) {
	tests := []struct {
		index int
		tiers Tiers
		byteN int
		value byte
	}{
		{0, Tiers{true, true, true, true}, 0, 0x0F},
		{1, Tiers{true, true, true, true}, 0, 0xF0},
		{2, Tiers{false, false, true, false}, 1, 0x04},
		{3, Tiers{false, false, false, true}, 1, 0x80},
		{7, Tiers{true, false, true, false}, 3, 0x50},
	}

	for _, tt := range tests {
		m := NewSongUnlockMap(4)
		if err := m.Set(tt.index, tt.tiers); err != nil {
			t.Fatalf("Set(%d): %v", tt.index, err)
		}
		bitmap := EncodeSongUnlock(m)
		if bitmap[tt.byteN] != tt.value {
			t.Errorf("index=%d tiers=%v: byte %d expected %#02x, got %#02x", tt.index, tt.tiers, tt.byteN, tt.value, bitmap[tt.byteN])
		}
	}
}

func TestSongUnlockRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const unlockLength = 64

	for round := 0; round < 50; round++ {
		m := NewSongUnlockMap(unlockLength)
		for index := 0; index < m.SongCount(); index++ {
			if rng.Intn(3) == 0 {
				continue
			}
			var tiers Tiers
			for tier := range tiers {
				tiers[tier] = rng.Intn(2) == 1
			}
			if err := m.Set(index, tiers); err != nil {
				t.Fatal(err)
			}
		}

		decoded := DecodeSongUnlock(EncodeSongUnlock(m))
		if decoded.UnlockLength() != unlockLength {
			t.Fatalf("decoded length: expected %d, got %d", unlockLength, decoded.UnlockLength())
		}
		for index := 0; index < m.SongCount(); index++ {
			if decoded.Tiers(index) != m.Tiers(index) {
				t.Fatalf("round %d index %d: expected %v, got %v", round, index, m.Tiers(index), decoded.Tiers(index))
			}
		}
	}
}

func TestDecodeSongUnlockAbsentIndices(t *testing.T) {
	decoded := DecodeSongUnlock([]byte{0x00, 0x30})
	if decoded.Len() != 1 {
		t.Fatalf("expected one unlocked song, got %v", decoded.Indices())
	}
	if got := decoded.Tiers(3); got != (Tiers{true, true, false, false}) {
		t.Fatalf("index 3: got %v", got)
	}
	if got := decoded.Tiers(0); got != (Tiers{}) {
		t.Fatalf("absent index must decode to all locked, got %v", got)
	}
}

func TestSongUnlockMapRejectsOutOfRange(t *testing.T) {
	m := NewSongUnlockMap(2)
	for _, index := range []int{-1, 4, 100} {
		if err := m.Set(index, Tiers{true}); !errors.Is(err, ErrSongIndexOutOfRange) {
			t.Errorf("Set(%d): expected ErrSongIndexOutOfRange, got %v", index, err)
		}
	}
	if err := m.Set(3, Tiers{true}); err != nil {
		t.Fatalf("Set(3) within range: %v", err)
	}

	// clearing all tiers removes the entry
	_ = m.Set(3, Tiers{})
	if m.Len() != 0 {
		t.Fatalf("expected empty map, got %v", m.Indices())
	}
}

func TestEncodeSongUnlockIgnoresHandBuiltOutOfRange(t *testing.T) {
	m := &SongUnlockMap{unlockLength: 1, songs: map[int]Tiers{0: {true}, 2: {true}, -1: {true}}}
	bitmap := EncodeSongUnlock(m)
	if !bytes.Equal(bitmap, []byte{0x01}) {
		t.Fatalf("expected [1], got %v", bitmap)
	}
}

func TestParseClientSongMap(t *testing.T) {
	m, err := ParseClientSongMap(map[string][]bool{
		"0": {true, false, false, false},
		"1": {false, true},
		"5": {true, true, true, true, true},
	}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Tiers(1); got != (Tiers{false, true, false, false}) {
		t.Errorf("missing tiers must be locked, got %v", got)
	}
	if got := m.Tiers(5); got != (Tiers{true, true, true, true}) {
		t.Errorf("extra tiers must be ignored, got %v", got)
	}
	if got := EncodeSongUnlock(m)[0]; got != 33 {
		t.Errorf("byte 0: expected 33, got %d", got)
	}

	tests := []struct {
		name    string
		songMap map[string][]bool
		wantErr error
	}{
		{"not a number", map[string][]bool{"x": {true}}, ErrSongIndexInvalid},
		{"empty key", map[string][]bool{"": {true}}, ErrSongIndexInvalid},
		{"leading zero", map[string][]bool{"01": {true}}, ErrSongIndexInvalid},
		{"plus sign", map[string][]bool{"+1": {true}}, ErrSongIndexInvalid},
		{"aliases of one song", map[string][]bool{"1": {true}, "01": {false, true}, "+1": {false, false, true}}, ErrSongIndexInvalid},
		{"negative", map[string][]bool{"-1": {true}}, ErrSongIndexOutOfRange},
		{"past the end", map[string][]bool{"8": {true}}, ErrSongIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseClientSongMap(tt.songMap, 4); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
