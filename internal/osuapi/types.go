package osuapi

// Response shapes for the subset of osu! API v2 this service consumes.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type MatchResponse struct {
	Match  MatchInfo    `json:"match"`
	Events []MatchEvent `json:"events"`
	Users  []MatchUser  `json:"users"`
}

type MatchInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type MatchEvent struct {
	ID   int64      `json:"id"`
	Game *MatchGame `json:"game"`
}

type MatchGame struct {
	ID      int64       `json:"id"`
	Beatmap *Beatmap    `json:"beatmap"`
	Scores  []GameScore `json:"scores"`
}

type Beatmap struct {
	ID         int64       `json:"id"`
	Version    string      `json:"version"`
	Beatmapset *Beatmapset `json:"beatmapset"`
}

type Beatmapset struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

type GameScore struct {
	UserID   int64     `json:"user_id"`
	Score    int64     `json:"score"`
	MaxCombo int       `json:"max_combo"`
	Rank     string    `json:"rank"`
	Mods     []string  `json:"mods"`
	Match    ScoreSlot `json:"match"`
}

type ScoreSlot struct {
	Team string `json:"team"` // "red", "blue" or "none"
}

type MatchUser struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	CountryCode string `json:"country_code"`
	AvatarURL   string `json:"avatar_url"`
}

// Me is the authenticated user's profile from GET /me.
type Me struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Country   struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"country"`
}
