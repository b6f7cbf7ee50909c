package dto

import "github.com/yigit/footlink/internal/app/models"

// CreatePostRequest represents data for creating a post
type CreatePostRequest struct {
	Content             string          `json:"content" binding:"max=5000"`
	Type                models.PostType `json:"type" binding:"omitempty,oneof=text video achievement stats"`
	MediaURL            string          `json:"mediaUrl" binding:"max=2048"`
	AchievementTitle    string          `json:"achievementTitle" binding:"max=200"`
	AchievementSubtitle string          `json:"achievementSubtitle" binding:"max=200"`
	StatsData           map[string]any  `json:"statsData"`
}

// ToModel converts the request into an unsaved post authored by authorID
func (r CreatePostRequest) ToModel(authorID int64) *models.Post {
	postType := r.Type
	if postType == "" {
		postType = models.PostTypeText
	}
	return &models.Post{
		AuthorID:            authorID,
		Content:             r.Content,
		Type:                postType,
		MediaURL:            r.MediaURL,
		AchievementTitle:    r.AchievementTitle,
		AchievementSubtitle: r.AchievementSubtitle,
		StatsData:           r.StatsData,
	}
}

// SharePostRequest carries the optional commentary added when sharing
type SharePostRequest struct {
	Content string `json:"content" binding:"max=5000"`
}

// CreateCommentRequest represents data for commenting on a post
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// FeedQuery holds the feed query string
type FeedQuery struct {
	Filter string `form:"filter"`
	Scope  string `form:"scope" binding:"omitempty,oneof=all network"`
}
