package dto

import "github.com/yigit/footlink/internal/app/models"

// UpdateProfileRequest is a partial profile update; omitted fields stay unchanged
type UpdateProfileRequest struct {
	FullName  *string `json:"fullName" binding:"omitempty,max=100"`
	Position  *string `json:"position" binding:"omitempty,max=100"`
	Club      *string `json:"club" binding:"omitempty,max=100"`
	Location  *string `json:"location" binding:"omitempty,max=100"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	AvatarURL *string `json:"avatarUrl" binding:"omitempty,max=2048"`
	CoverURL  *string `json:"coverUrl" binding:"omitempty,max=2048"`
}

// ToModel converts the request into a models.UserUpdate
func (r UpdateProfileRequest) ToModel() models.UserUpdate {
	return models.UserUpdate{
		FullName:  r.FullName,
		Position:  r.Position,
		Club:      r.Club,
		Location:  r.Location,
		Bio:       r.Bio,
		AvatarURL: r.AvatarURL,
		CoverURL:  r.CoverURL,
	}
}

// MediaUploadResponse is returned after an upload to the media store
type MediaUploadResponse struct {
	URL string `json:"url" example:"http://localhost:8080/uploads/media/3f1c.jpg"`
}
