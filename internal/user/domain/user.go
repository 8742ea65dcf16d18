package domain

import "time"

type UserStatus string

const (
	StatusOnline  UserStatus = "ONLINE"
	StatusOffline UserStatus = "OFFLINE"
)

// User is the single persisted entity. Id, token, status and creationDate
// are assigned server-side at registration; a profile update may only touch
// Username and Birthday, and Status changes only through login and logout.
type User struct {
	ID           int64
	Username     string
	Password     string
	Token        string
	Status       UserStatus
	Birthday     *time.Time
	CreationDate time.Time
}
