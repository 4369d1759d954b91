package media

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaType distinguishes catalog entries; it is derived from the object
// key's extension, never from client-supplied metadata.
type MediaType string

const (
	TypePhoto MediaType = "photo"
	TypeVideo MediaType = "video"
)

// Item is the durable catalog entry for one stored object. An Item is
// created only after the bytes are confirmed present in storage.
type Item struct {
	ID           uuid.UUID `json:"id"`
	MediaURL     string    `json:"media_url"`
	MediaType    MediaType `json:"media_type"`
	Title        string    `json:"title,omitempty"`
	UploaderName string    `json:"uploader_name"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedDate  time.Time `json:"created_date"`
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
	".webm": true, ".m4v": true, ".3gp": true,
}

// TypeFromKey infers the media type from an object key's extension.
// Anything that is not a known video extension counts as a photo.
func TypeFromKey(key string) MediaType {
	ext := strings.ToLower(path.Ext(key))
	if videoExtensions[ext] {
		return TypeVideo
	}
	return TypePhoto
}
