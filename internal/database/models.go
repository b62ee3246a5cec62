package database

import "time"

// Key is the logical name of one persisted blob.
type Key string

// The fixed set of keys used by the assistant. Clear removes exactly these.
const (
	KeyProfile     Key = "pet_info"
	KeyAvatar      Key = "pet_profile_image"
	KeyPlanHistory Key = "plan_history_log"
	KeyChatHistory Key = "chat_history_log"
	KeyFavorites   Key = "pet_fav_spots"
)

// Keys lists every key owned by this system.
var Keys = []Key{KeyProfile, KeyAvatar, KeyPlanHistory, KeyChatHistory, KeyFavorites}

// Entry is one row of the kv_entries table.
type Entry struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
