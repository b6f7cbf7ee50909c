package models

import (
	"strings"
	"time"
)

// PostType discriminates which optional payload fields of a Post are meaningful
type PostType string

const (
	PostTypeText        PostType = "text"
	PostTypeVideo       PostType = "video"
	PostTypeAchievement PostType = "achievement"
	PostTypeStats       PostType = "stats"
	PostTypeShared      PostType = "shared"
)

// IsCreatable reports whether clients may create a post of this type directly.
// Shared posts are only produced by the share operation.
func (t PostType) IsCreatable() bool {
	switch t {
	case PostTypeText, PostTypeVideo, PostTypeAchievement, PostTypeStats:
		return true
	}
	return false
}

// IsValid reports whether t is a known post type
func (t PostType) IsValid() bool {
	return t.IsCreatable() || t == PostTypeShared
}

// feedLabels maps UI category labels onto stored post types
var feedLabels = map[string]PostType{
	"highlights":   PostTypeVideo,
	"matches":      PostTypeStats,
	"achievements": PostTypeAchievement,
	"shares":       PostTypeShared,
}

// ParseFeedFilter resolves a feed filter label. The empty type means no filtering.
func ParseFeedFilter(label string) (PostType, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || label == "all" {
		return "", true
	}
	if t, ok := feedLabels[label]; ok {
		return t, true
	}
	if t := PostType(label); t.IsValid() {
		return t, true
	}
	return "", false
}

// Post is a feed entry. Likes is always computed from like rows.
type Post struct {
	ID                  int64           `json:"id" db:"id"`
	AuthorID            int64           `json:"authorId" db:"author_id"`
	Content             string          `json:"content" db:"content"`
	Type                PostType        `json:"type" db:"type"`
	MediaURL            string          `json:"mediaUrl,omitempty" db:"media_url"`
	Views               int             `json:"views" db:"views"`
	AchievementTitle    string          `json:"achievementTitle,omitempty" db:"achievement_title"`
	AchievementSubtitle string          `json:"achievementSubtitle,omitempty" db:"achievement_subtitle"`
	StatsData           map[string]any  `json:"statsData,omitempty" db:"stats_data"`
	SharedPost          *SharedSnapshot `json:"sharedPost,omitempty" db:"shared_data"`
	Likes               int             `json:"likes" db:"likes"`
	CreatedAt           time.Time       `json:"createdAt" db:"created_at"`

	Author   *UserSummary `json:"author,omitempty"`
	Comments []Comment    `json:"comments"`
	HasLiked bool         `json:"hasLiked"`
}

// SharedSnapshot is a copy of the original post taken when it was shared
type SharedSnapshot struct {
	OriginalPostID  int64     `json:"originalPostId"`
	AuthorID        int64     `json:"authorId"`
	AuthorUsername  string    `json:"authorUsername"`
	AuthorFullName  string    `json:"authorFullName"`
	AuthorAvatarURL string    `json:"authorAvatarUrl,omitempty"`
	Content         string    `json:"content"`
	Type            PostType  `json:"type"`
	MediaURL        string    `json:"mediaUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// NewSharedSnapshot captures the display fields of original and its author
func NewSharedSnapshot(original *Post, author *User) *SharedSnapshot {
	return &SharedSnapshot{
		OriginalPostID:  original.ID,
		AuthorID:        author.ID,
		AuthorUsername:  author.Username,
		AuthorFullName:  author.DisplayName(),
		AuthorAvatarURL: author.AvatarURL,
		Content:         original.Content,
		Type:            original.Type,
		MediaURL:        original.MediaURL,
		CreatedAt:       original.CreatedAt,
	}
}

// PostFilter narrows a post listing. Zero values mean "no restriction".
type PostFilter struct {
	Type      PostType
	AuthorIDs []int64
	Limit     int
}

// Comment is attached to exactly one post
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	PostID    int64     `json:"postId" db:"post_id"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Author *UserSummary `json:"author,omitempty"`
}

// Like joins a user to a post; at most one per pair
type Like struct {
	PostID    int64     `json:"postId" db:"post_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// LikeState is the outcome of a like toggle
type LikeState struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}
