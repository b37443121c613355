package models

// AuthSession is the process-wide authenticated session. Mutated only by the
// refresh coordinator and the login/logout flows; read by every authenticated
// request when it builds its Authorization header.
type AuthSession struct {
	AccessToken     string `json:"accessToken"`
	RefreshToken    string `json:"refreshToken"`
	ProfileComplete bool   `json:"profileComplete"`
}

// Authenticated reports whether the session holds a usable access token.
func (s AuthSession) Authenticated() bool { return s.AccessToken != "" }
