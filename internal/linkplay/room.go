package linkplay

// DefaultRoomCode is the placeholder code of a room the server has not
// assigned yet.
const DefaultRoomCode = "AAAA00"

type Room struct {
	Code       string
	ID         int64
	SongUnlock []byte
}

// NewRoom returns a room with the default code, no id and no bitmap.
func NewRoom() *Room {
	return &Room{Code: DefaultRoomCode}
}

// NewRoomWithCode returns a room to be joined by code.
func NewRoomWithCode(code string) *Room {
	room := NewRoom()
	room.Code = code
	return room
}

// ApplyServerFields overwrites the room in place. Values are trusted.
func (r *Room) ApplyServerFields(code string, id int64, songUnlock []byte) {
	r.Code = code
	r.ID = id
	r.SongUnlock = songUnlock
}
