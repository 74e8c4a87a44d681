package model

import "time"

// AuthContext keeps the external identifiers returned by the authentication
// endpoint.  TokenExpiry is only known when the token is a JWT carrying exp.
type AuthContext struct {
	UUID            string     `json:"uuid"`
	UserID          ID         `json:"userId"`
	IDIndividu      ID         `json:"idIndividu"`
	EtablissementID ID         `json:"etablissementId"`
	UserName        string     `json:"userName"`
	TokenExpiry     *time.Time `json:"tokenExpiry"`
}

// Session is the persisted login.  It is valid only when every field is
// present and LastLoginTime is younger than the configured lifetime.
type Session struct {
	AuthToken     string      `json:"authToken"`
	CurrentUser   UserProfile `json:"currentUser"`
	AuthContext   AuthContext `json:"authContext"`
	LastLoginTime time.Time   `json:"lastLoginTime"`
}

// Complete reports whether all four persisted parts are populated.
func (s Session) Complete() bool {
	return s.AuthToken != "" && s.CurrentUser.UUID != "" && s.AuthContext.UUID != "" && !s.LastLoginTime.IsZero()
}

// Age is the time elapsed since login at now.
func (s Session) Age(now time.Time) time.Duration { return now.Sub(s.LastLoginTime) }

// AuthResponse is the body of POST /authentication/v1/.
type AuthResponse struct {
	Token           string `json:"token"`
	UserID          ID     `json:"userId"`
	UUID            string `json:"uuid"`
	IDIndividu      ID     `json:"idIndividu"`
	EtablissementID ID     `json:"etablissementId"`
	UserName        string `json:"userName"`
}

// Credentials is the body sent to the authentication endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
