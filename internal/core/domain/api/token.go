package api

// TokenPair is the bearer credential pair issued by the backend at login.
// Refreshing an expired access token is the session collaborator's job, not
// this client's; the pair is only replaced wholesale by re-initialization.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// IsZero reports whether no credentials have been set.
func (t TokenPair) IsZero() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}
