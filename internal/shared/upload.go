package shared

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxUploadSize bounds images forwarded to the backend.
const MaxUploadSize = 5 << 20

// ErrUploadTooLarge is returned when the file exceeds MaxUploadSize.
var ErrUploadTooLarge = errors.New("upload too large")

// ErrUploadType is returned for files that are not images.
var ErrUploadType = errors.New("upload is not an image")

// Upload is an image read from a multipart request, ready to forward.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Reader returns a fresh reader over the file content.
func (u *Upload) Reader() io.Reader {
	if u == nil {
		return nil
	}
	return bytes.NewReader(u.Data)
}

// ReadImage reads the optional image in field. A missing file gives (nil, nil).
// The request must already be parsed with ParseMultipartForm.
func ReadImage(r *http.Request, field string) (*Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()
	if header.Size > MaxUploadSize {
		return nil, ErrUploadTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrUploadTooLarge
	}
	if len(data) == 0 {
		return nil, nil
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUploadType
	}
	return &Upload{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}

// UploadMessage is the inline message for an upload error.
func UploadMessage(err error) string {
	switch {
	case errors.Is(err, ErrUploadTooLarge):
		return "L'image dépasse 5 Mo."
	case errors.Is(err, ErrUploadType):
		return "Le fichier doit être une image (JPEG, PNG, WebP)."
	}
	return "Image illisible."
}
