package upload

import "time"

// Kind is the coarse media class of a stored upload.
type Kind string

const (
	KindAny   Kind = ""
	KindImage Kind = "image"
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
	KindOther Kind = "other"
)

// Upload is a file that was saved from a request into the uploads directory.
type Upload struct {
	ID               string    `gorm:"column:id;primaryKey" json:"id"`
	UserID           int64     `gorm:"column:user_id;index" json:"user_id"`
	OriginalName     string    `gorm:"column:original_name" json:"original_name"`
	StoredName       string    `gorm:"column:stored_name" json:"stored_name"`
	FilePath         string    `gorm:"column:file_path;uniqueIndex" json:"-"` // relative to the uploads dir
	FileURL          string    `gorm:"column:file_url" json:"url"`
	MimeType         string    `gorm:"column:mime_type" json:"mime_type"`                   // as declared by the client
	DetectedMimeType string    `gorm:"column:detected_mime_type" json:"detected_mime_type"` // sniffed from content
	Kind             Kind      `gorm:"column:kind" json:"kind"`
	Size             int64     `gorm:"column:size" json:"size"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Upload) TableName() string { return "uploads" }
