package filestorage

import (
	"context"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Media folders
const (
	FolderAvatars = "avatars"
	FolderCovers  = "covers"
	FolderPosts   = "posts"
)

// ErrUnsupportedMedia is returned for uploads that are neither images nor videos
var ErrUnsupportedMedia = errors.New("unsupported media type")

// FileStorage stores uploaded media and returns the URL clients fetch it from
type FileStorage interface {
	// SaveFile stores the upload under folder and returns its public URL
	SaveFile(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error)

	// DeleteFile removes a previously stored file. Missing files are not an error.
	DeleteFile(ctx context.Context, fileURL string) error
}

// DetectContentType sniffs the upload's magic numbers, so phone formats such
// as QuickTime and HEIC are recognised.
func DetectContentType(fileHeader *multipart.FileHeader) (string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	return mtype.String(), nil
}

// ValidateImage accepts image uploads only
func ValidateImage(fileHeader *multipart.FileHeader) (string, error) {
	return validate(fileHeader, "image/")
}

// ValidateMedia accepts image or video uploads
func ValidateMedia(fileHeader *multipart.FileHeader) (string, error) {
	return validate(fileHeader, "image/", "video/")
}

func validate(fileHeader *multipart.FileHeader, prefixes ...string) (string, error) {
	if fileHeader == nil {
		return "", ErrUnsupportedMedia
	}
	contentType, err := DetectContentType(fileHeader)
	if err != nil {
		return "", err
	}
	for _, p := range prefixes {
		if strings.HasPrefix(contentType, p) {
			return contentType, nil
		}
	}
	return "", ErrUnsupportedMedia
}

func extension(fileHeader *multipart.FileHeader) string {
	return strings.ToLower(filepath.Ext(fileHeader.Filename))
}
