package linkplay

import "strconv"

// View is the public form of a player in a room. Numbers are decimal
// strings and binary fields are base64.
type View struct {
	RoomID              string `json:"roomId"`
	RoomCode            string `json:"roomCode"`
	OrderedAllowedSongs string `json:"orderedAllowedSongs"`
	UserID              string `json:"userId"`
	PlayerID            string `json:"playerId"`
	Token               string `json:"token"`
	Key                 string `json:"key"`
}

func NewView(room *Room, player *Player) View {
	return View{
		RoomID:              strconv.FormatInt(room.ID, 10),
		RoomCode:            room.Code,
		OrderedAllowedSongs: encodeBase64(room.SongUnlock),
		UserID:              strconv.Itoa(player.UserID),
		PlayerID:            strconv.FormatInt(player.PlayerID, 10),
		Token:               strconv.FormatInt(player.Token, 10),
		Key:                 encodeBase64(player.Key),
	}
}
