package identity

import "time"

// User represents a registered account owner. PINs are stored only as bcrypt
// hashes.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	PINHash   []byte
	CreatedAt time.Time
}

// FullName is the display name used when naming the user's accounts.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Session identifies the acting user for core operations. It is passed
// explicitly into every operation that needs the caller's identity; there is
// no process-wide current user.
type Session struct {
	UserID   int64
	FullName string
}

// Session derives the session value for the user.
func (u User) Session() Session {
	return Session{UserID: u.ID, FullName: u.FullName()}
}
