package model

import "time"

// Player is a registered player, identified on the API by Name.
type Player struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerRating is a player's persisted B50 total for a region.
type PlayerRating struct {
	PlayerID  int64     `json:"player_id"`
	Player    string    `json:"player"`
	Region    string    `json:"region"`
	Rating    int       `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}
