package filestorage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// newFileHeader builds a multipart file header the way gin's c.FormFile does
func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := ls.SaveFile(ctx, newFileHeader(t, "Avatar.PNG", pngHeader), FolderAvatars)
	require.NoError(t, err)
	assert.Regexp(t, `^http://localhost:8080/uploads/avatars/[0-9a-f-]{36}\.png$`, url)

	full := ls.GetFullPath(url)
	require.NotEmpty(t, full)
	_, err = os.Stat(full)
	require.NoError(t, err)

	require.NoError(t, ls.DeleteFile(ctx, url))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, ls.DeleteFile(ctx, url))
}

func TestLocalStorage_GetFullPathRejectsTraversal(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	assert.Empty(t, ls.GetFullPath("/uploads/../../etc/passwd"))
	assert.Empty(t, ls.GetFullPath("/static/a.png"))
}

func TestValidateMedia(t *testing.T) {
	ct, err := ValidateImage(newFileHeader(t, "a.png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, err = ValidateImage(newFileHeader(t, "notes.txt", []byte("plain text notes")))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	_, err = ValidateMedia(nil)
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

// ftypHeader is the leading ISO base media box of an upload with the given brand
func ftypHeader(brand string) []byte {
	box := append([]byte("\x00\x00\x00\x18ftyp"), brand...)
	box = append(box, 0x00, 0x00, 0x02, 0x00)
	box = append(box, brand...)
	return append(box, make([]byte, 32)...)
}

func TestValidateMedia_PhoneFormats(t *testing.T) {
	tests := []struct {
		filename string
		brand    string
		want     string
	}{
		{"clip.mov", "qt  ", "video/quicktime"},
		{"photo.heic", "heic", "image/heic"},
		{"clip.mp4", "mp42", "video/mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			ct, err := ValidateMedia(newFileHeader(t, tt.filename, ftypHeader(tt.brand)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ct)
		})
	}

	ct, err := ValidateImage(newFileHeader(t, "photo.heic", ftypHeader("heic")))
	require.NoError(t, err)
	assert.Equal(t, "image/heic", ct)

	_, err = ValidateImage(newFileHeader(t, "clip.mov", ftypHeader("qt  ")))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestMinIOStorage_ObjectNameRoundTrip(t *testing.T) {
	s := &MinIOStorage{bucket: "media", publicURL: "https://cdn.example.com"}
	url := s.objectURL("posts/2024/05/abc.mp4")
	assert.Equal(t, "https://cdn.example.com/media/posts/2024/05/abc.mp4", url)
	assert.Equal(t, "posts/2024/05/abc.mp4", s.objectName(url))
	assert.Empty(t, s.objectName("https://elsewhere/media/x"))
}
