package models

import (
	"strings"
	"time"
)

// User represents a registered football professional
type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"-" db:"password"`
	FullName  string    `json:"fullName" db:"full_name"`
	Position  string    `json:"position,omitempty" db:"position"`
	Club      string    `json:"club,omitempty" db:"club"`
	Location  string    `json:"location,omitempty" db:"location"`
	Bio       string    `json:"bio,omitempty" db:"bio"`
	AvatarURL string    `json:"avatarUrl,omitempty" db:"avatar_url"`
	CoverURL  string    `json:"coverUrl,omitempty" db:"cover_url"`
	Verified  bool      `json:"verified" db:"verified"`
	IsPro     bool      `json:"isPro" db:"is_pro"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// DisplayName falls back to the username when no full name is set
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	return u.Username
}

// Summary projects the user onto the fields shown next to posts, comments and connections
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.DisplayName(),
		Position:  u.Position,
		Club:      u.Club,
		AvatarURL: u.AvatarURL,
	}
}

// UserSummary is the lightweight user projection
type UserSummary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	Position  string `json:"position,omitempty"`
	Club      string `json:"club,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// UserUpdate holds a partial profile update; nil fields are left untouched
type UserUpdate struct {
	FullName  *string
	Position  *string
	Club      *string
	Location  *string
	Bio       *string
	AvatarURL *string
	CoverURL  *string
}

// IsEmpty reports whether the update changes nothing
func (u UserUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Position == nil && u.Club == nil && u.Location == nil &&
		u.Bio == nil && u.AvatarURL == nil && u.CoverURL == nil
}

// Apply copies the set fields onto user
func (u UserUpdate) Apply(user *User) {
	if u.FullName != nil {
		user.FullName = *u.FullName
	}
	if u.Position != nil {
		user.Position = *u.Position
	}
	if u.Club != nil {
		user.Club = *u.Club
	}
	if u.Location != nil {
		user.Location = *u.Location
	}
	if u.Bio != nil {
		user.Bio = *u.Bio
	}
	if u.AvatarURL != nil {
		user.AvatarURL = *u.AvatarURL
	}
	if u.CoverURL != nil {
		user.CoverURL = *u.CoverURL
	}
}

// ScoutingData holds the scouting insight counters shown on a profile
type ScoutingData struct {
	ProfileViews       int `json:"profileViews"`
	HighlightViews     int `json:"highlightViews"`
	OpportunityMatches int `json:"opportunityMatches"`
}
