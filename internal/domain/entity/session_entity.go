package entity

import "time"

// Session is the server-side record of a login. Only the session whose ID is
// embedded in a token is accepted for that user.
type Session struct {
	UserID    string
	SessionID string
	Role      Role
	CreatedAt time.Time
}

// Identity is the authenticated caller of a request. It is produced by the
// session middleware and passed explicitly into service calls.
type Identity struct {
	UserID    string
	Role      Role
	SessionID string
}
