package entities

import (
	"strings"
	"time"
)

type FileType string

const (
	FileImage   FileType = "image"
	FileAudio   FileType = "audio"
	FileVideo   FileType = "video"
	FileFile    FileType = "file"
	FileUnknown FileType = "unknown"
)

// FileTypeFromMime derives the generic file kind from a MIME type.
func FileTypeFromMime(mimeType string) FileType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return FileImage
	case strings.HasPrefix(mimeType, "audio/"):
		return FileAudio
	case strings.HasPrefix(mimeType, "video/"):
		return FileVideo
	default:
		return FileFile
	}
}

type Attachment struct {
	ID        string    `json:"id" bson:"_id"`
	MediaID   string    `json:"media_id" bson:"media_id"`
	Name      string    `json:"name" bson:"name"`
	Type      FileType  `json:"type" bson:"type"`
	MimeType  string    `json:"mime_type" bson:"mime_type"`
	Size      int64     `json:"size" bson:"size"`
	SHA256    string    `json:"sha256,omitempty" bson:"sha256,omitempty"`
	SourceURL string    `json:"source_url,omitempty" bson:"source_url,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// AttachmentRef points at a stored attachment, optionally with an already
// public URL.
type AttachmentRef struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url,omitempty"`
}
