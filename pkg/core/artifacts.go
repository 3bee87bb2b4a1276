// Package core provides the shared media and error types for cypress-report.
package core

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Attachment is a media file body with its MIME type.
type Attachment struct {
	ContentType string
	Body        []byte
}

// Common content types
const (
	ContentTypePNG  = "image/png"
	ContentTypeJPEG = "image/jpeg"
	ContentTypeGIF  = "image/gif"
	ContentTypeMP4  = "video/mp4"
	ContentTypeWebM = "video/webm"
	ContentTypeText = "text/plain"
)

// ContentTypeFor returns the MIME type for a media file based on its extension.
func ContentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return ContentTypePNG
	case ".jpg", ".jpeg":
		return ContentTypeJPEG
	case ".gif":
		return ContentTypeGIF
	case ".mp4":
		return ContentTypeMP4
	case ".webm":
		return ContentTypeWebM
	default:
		return ContentTypeText
	}
}

// IsImage reports whether the path looks like an image file.
func IsImage(path string) bool {
	return strings.HasPrefix(ContentTypeFor(path), "image/")
}

// IsVideo reports whether the path looks like a video file.
func IsVideo(path string) bool {
	return strings.HasPrefix(ContentTypeFor(path), "video/")
}

// NewScreenshotAttachment creates an attachment for a screenshot file read into data.
func NewScreenshotAttachment(path string, data []byte) Attachment {
	return Attachment{
		ContentType: ContentTypeFor(path),
		Body:        data,
	}
}

// DataURI returns the attachment body as a data: URI.
func (a Attachment) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", a.ContentType, base64.StdEncoding.EncodeToString(a.Body))
}

// LoadAsDataURI reads a file and encodes it as a data: URI.
func LoadAsDataURI(path string) (string, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- screenshot paths come from the configured screenshots dir
	if err != nil {
		return "", err
	}
	return NewScreenshotAttachment(path, data).DataURI(), nil
}
