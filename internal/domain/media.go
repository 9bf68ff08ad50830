package domain

import (
	"strconv"
	"strings"
	"time"
)

// Media types.
const (
	TypeImage    = "image"
	TypeVideo    = "video"
	TypeDocument = "document"
	TypePodcast  = "podcast"
)

// Locked status values. New media defaults to locked.
const (
	StatusLocked   = "locked"
	StatusUnlocked = "unlocked"
)

// Privacy values. New media defaults to private.
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// MaxFileSize is the maximum allowed file size in bytes (50 MB).
const MaxFileSize int64 = 50 * 1024 * 1024

// Media represents a managed media asset: its metadata plus the embedded
// sequence of stored files. NumberOfContents is derived at query time from
// the relation to the host application's content entity.
type Media struct {
	ID               string    `json:"id" bson:"_id,omitempty"`
	Title            string    `json:"title" bson:"title" validate:"required"`
	Author           string    `json:"author" bson:"author" validate:"required"`
	Tags             []string  `json:"tags" bson:"tags"`
	Type             string    `json:"type" bson:"type" validate:"required,oneof=image video document podcast"`
	LockedStatus     string    `json:"locked_status" bson:"locked_status" validate:"omitempty,oneof=locked unlocked"`
	PrivateStatus    string    `json:"private_status" bson:"private_status" validate:"omitempty,oneof=public private"`
	Namespace        string    `json:"namespace" bson:"namespace"`
	Files            []File    `json:"files" bson:"files" validate:"dive"`
	ContentIDs       []string  `json:"-" bson:"content_ids,omitempty"`
	NumberOfContents int       `json:"number_of_contents" bson:"number_of_contents,omitempty"`
	InsertedAt       time.Time `json:"inserted_at" bson:"inserted_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

// File is a stored binary embedded within its Media, never queryable as a
// top-level entity. FileID is the backend-specific handle: an object-storage
// key or a platform-issued id such as a YouTube video id.
type File struct {
	URL          string `json:"url" bson:"url"`
	Filename     string `json:"filename" bson:"filename" validate:"required"`
	Type         string `json:"type" bson:"type" validate:"required"`
	Size         int64  `json:"size" bson:"size" validate:"gte=0"`
	Duration     string `json:"duration,omitempty" bson:"duration,omitempty"`
	FileID       string `json:"file_id" bson:"file_id"`
	ThumbnailURL string `json:"thumbnail_url,omitempty" bson:"thumbnail_url,omitempty"`
	PlatformID   string `json:"platform_id" bson:"platform_id" validate:"required"`
}

// Platform describes a rendering target (dimensions plus naming).
// NumberOfMedias is derived at query time: the count of files across all
// media referencing this platform.
type Platform struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	Name           string    `json:"name" bson:"name" validate:"required"`
	Width          int       `json:"width" bson:"width" validate:"gt=0"`
	Height         int       `json:"height" bson:"height" validate:"gt=0"`
	Description    string    `json:"description" bson:"description"`
	Namespace      string    `json:"namespace" bson:"namespace"`
	NumberOfMedias int       `json:"number_of_medias" bson:"number_of_medias,omitempty"`
	InsertedAt     time.Time `json:"inserted_at" bson:"inserted_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// ApplyDefaults fills the status fields new media get when the caller leaves
// them unset: locked and private.
func (m *Media) ApplyDefaults() {
	if m.LockedStatus == "" {
		m.LockedStatus = StatusLocked
	}
	if m.PrivateStatus == "" {
		m.PrivateStatus = PrivacyPrivate
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.Files == nil {
		m.Files = []File{}
	}
}

// IsValidType checks whether the given media type is one of the allowed set.
func IsValidType(t string) bool {
	switch t {
	case TypeImage, TypeVideo, TypeDocument, TypePodcast:
		return true
	}
	return false
}

// Stored reports whether the file's bytes live in this library's object
// storage. Object keys always carry a namespace segment; external handles
// such as YouTube video ids never contain a slash.
func (f *File) Stored() bool {
	return strings.Contains(f.FileID, "/")
}

// VideoLike reports whether a file's declared type indicates video content,
// which makes a parseable non-negative duration mandatory.
func (f *File) VideoLike() bool {
	return f.Type == TypeVideo || f.Type == "video/mp4" || f.Type == "video/webm" || f.Type == "video/ogg"
}

// ValidDuration checks the duration requirement: video-like files must carry
// a duration parseable as a non-negative integer; other types may omit it.
func (f *File) ValidDuration() bool {
	if !f.VideoLike() {
		return true
	}
	n, err := strconv.Atoi(f.Duration)
	return err == nil && n >= 0
}
