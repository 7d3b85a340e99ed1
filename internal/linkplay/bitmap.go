package linkplay

import (
	"fmt"
	"sort"
	"strconv"
)

// TierCount is the number of difficulty tiers packed per song.
const TierCount = 4

// DefaultUnlockLength is the bitmap size the link play server expects.
const DefaultUnlockLength = 512

type Tiers [TierCount]bool

// SongUnlockMap records which difficulty tiers of each song a player may
// play. Indices are validated against 2*UnlockLength on insertion; an
// absent index means every tier is locked.
type SongUnlockMap struct {
	unlockLength int
	songs        map[int]Tiers
}

func NewSongUnlockMap(unlockLength int) *SongUnlockMap {
	return &SongUnlockMap{
		unlockLength: unlockLength,
		songs:        make(map[int]Tiers),
	}
}

func (m *SongUnlockMap) UnlockLength() int {
	return m.unlockLength
}

// SongCount is the number of song indices the bitmap can address.
func (m *SongUnlockMap) SongCount() int {
	return m.unlockLength * 2
}

func (m *SongUnlockMap) Set(index int, tiers Tiers) error {
	if index < 0 || index >= m.SongCount() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrSongIndexOutOfRange, index, m.SongCount())
	}
	if m.songs == nil {
		m.songs = make(map[int]Tiers)
	}
	if tiers == (Tiers{}) {
		delete(m.songs, index)
		return nil
	}
	m.songs[index] = tiers
	return nil
}

func (m *SongUnlockMap) Tiers(index int) Tiers {
	return m.songs[index]
}

// Indices returns the unlocked song indices in ascending order.
func (m *SongUnlockMap) Indices() []int {
	indices := make([]int, 0, len(m.songs))
	for index := range m.songs {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return indices
}

func (m *SongUnlockMap) Len() int {
	return len(m.songs)
}

// ParseClientSongMap converts the client form, keyed by the decimal song
// index, into a SongUnlockMap. Keys must be canonical ("1", not "01" or
// "+1") so no two keys name the same song. Missing tiers are locked and
// extra tiers are ignored.
func ParseClientSongMap(clientSongMap map[string][]bool, unlockLength int) (*SongUnlockMap, error) {
	m := NewSongUnlockMap(unlockLength)
	for key, flags := range clientSongMap {
		index, err := strconv.Atoi(key)
		if err != nil || strconv.Itoa(index) != key {
			return nil, fmt.Errorf("%w: %q", ErrSongIndexInvalid, key)
		}
		var tiers Tiers
		copy(tiers[:], flags)
		if err = m.Set(index, tiers); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func packTiers(tiers Tiers) byte {
	var nibble byte
	for tier, unlocked := range tiers {
		if unlocked {
			nibble |= 1 << tier
		}
	}
	return nibble
}

func unpackTiers(nibble byte) Tiers {
	var tiers Tiers
	for tier := range tiers {
		tiers[tier] = nibble&(1<<tier) != 0
	}
	return tiers
}

// EncodeSongUnlock packs m into UnlockLength bytes. Byte i holds song 2i in
// the low nibble and song 2i+1 in the high nibble, tier t at bit t.
func EncodeSongUnlock(m *SongUnlockMap) []byte {
	bitmap := make([]byte, m.UnlockLength())
	for index, tiers := range m.songs {
		// Set rejects these, but the map may have been built by hand
		if index < 0 || index >= len(bitmap)*2 {
			continue
		}
		nibble := packTiers(tiers)
		if index%2 == 1 {
			nibble <<= 4
		}
		bitmap[index/2] |= nibble
	}
	return bitmap
}

// DecodeSongUnlock is the inverse of EncodeSongUnlock.
func DecodeSongUnlock(bitmap []byte) *SongUnlockMap {
	m := NewSongUnlockMap(len(bitmap))
	for i, b := range bitmap {
		if low := unpackTiers(b & 0x0F); low != (Tiers{}) {
			m.songs[2*i] = low
		}
		if high := unpackTiers(b >> 4); high != (Tiers{}) {
			m.songs[2*i+1] = high
		}
	}
	return m
}
