package domain

import "time"

type User struct {
	ID          string     `db:"id"`
	Username    string     `db:"username"`
	DisplayName *string    `db:"display_name"`
	AvatarURL   *string    `db:"avatar_url"`
	Blocked     bool       `db:"blocked"`
	Online      bool       `db:"online"`
	LastSeen    *time.Time `db:"last_seen"`

	// Friends is populated only by UserWithFriends; mutual links only.
	Friends []string
}
