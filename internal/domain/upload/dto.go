package upload

import (
	"time"

	"github.com/dustin/go-humanize"
)

type UploadResponse struct {
	ID               string    `json:"id"`
	URL              string    `json:"url"`
	Name             string    `json:"name"`
	StoredName       string    `json:"stored_name"`
	MimeType         string    `json:"mime_type"`
	DetectedMimeType string    `json:"detected_mime_type,omitempty"`
	Kind             Kind      `json:"kind"`
	Size             int64     `json:"size"`
	SizeHuman        string    `json:"size_human"`
	CreatedAt        time.Time `json:"created_at"`
}

func toResponse(u *Upload) UploadResponse {
	return UploadResponse{
		ID:               u.ID,
		URL:              u.FileURL,
		Name:             u.OriginalName,
		StoredName:       u.StoredName,
		MimeType:         u.MimeType,
		DetectedMimeType: u.DetectedMimeType,
		Kind:             u.Kind,
		Size:             u.Size,
		SizeHuman:        humanize.Bytes(uint64(u.Size)),
		CreatedAt:        u.CreatedAt,
	}
}
