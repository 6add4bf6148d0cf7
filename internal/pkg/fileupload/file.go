// Package fileupload wraps the files received with a multipart request and
// offers type inspection and a safe save into a destination directory.
//
// A typical handler:
//
//	f := files["avatar"]
//	if !f.HasError() && f.IsImage() {
//		name, err := f.Save("/srv/uploads")
//		...
//	}
package fileupload

import (
	"io/fs"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	imageExtensions = []string{"jpg", "jpeg", "png", "gif", "tiff", "bmp", "ico"}
	audioExtensions = []string{"mp3", "ogg", "webm"}
	videoExtensions = []string{"avi", "mpeg", "mp4", "mkv", "webm", "flv"}
)

// File is one uploaded file of one request.
// Name and MimeType come from the client and must not be trusted.
type File struct {
	Name     string
	MimeType string
	Size     int64

	tmpPath    string
	code       ErrorCode
	extension  string
	storedName string

	registry *Registry
	names    func() string
	writable func(dir string, info fs.FileInfo) bool
}

// New wraps a record. The registry is the one the record's temp file was
// registered with; it may be nil for files that never went through a
// Receiver, in which case Save needs AllowNonUploaded.
func New(rec Record, reg *Registry) *File {
	return &File{
		Name:      rec.Name,
		MimeType:  rec.Type,
		Size:      rec.Size,
		tmpPath:   rec.TempPath,
		code:      rec.Error,
		extension: extensionOf(rec.Name),
		registry:  reg,
		names:     randomName,
		writable:  isWritable,
	}
}

// FromRecord validates the record and wraps it.
func FromRecord(rec Record, reg *Registry) (*File, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return New(rec, reg), nil
}

func extensionOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// Extension is the lower-cased suffix after the last '.' of Name.
func (f *File) Extension() string { return f.extension }

// TempPath is where the transport left the received content.
func (f *File) TempPath() string { return f.tmpPath }

// Code is the transport error code, CodeOK for a received file.
func (f *File) Code() ErrorCode { return f.code }

// StoredName is the name assigned with SetStoredName or picked by Save.
func (f *File) StoredName() string { return f.storedName }

// HasError reports whether the transport failed to receive the file.
func (f *File) HasError() bool {
	return f.code != CodeOK
}

// ErrorMessage returns a readable description of the transport error, or "".
func (f *File) ErrorMessage() string {
	return f.code.Message()
}

// IsImage reports whether the file has an image extension and no
// contradicting declared type.
func (f *File) IsImage() bool {
	return f.checkFileType("image", imageExtensions)
}

// IsAudio is IsImage for audio files.
func (f *File) IsAudio() bool {
	return f.checkFileType("audio", audioExtensions)
}

// IsVideo is IsImage for video files.
func (f *File) IsVideo() bool {
	return f.checkFileType("video", videoExtensions)
}

// checkFileType uses the declared MIME type only to reject; the extension
// decides.
func (f *File) checkFileType(segment string, extensions []string) bool {
	if f.MimeType != "" {
		first := ""
		if i := strings.IndexByte(f.MimeType, '/'); i >= 0 {
			first = f.MimeType[:i]
		}
		if first != segment {
			return false
		}
	}

	for _, ext := range extensions {
		if ext == f.extension {
			return true
		}
	}
	return false
}

// DetectedMimeType sniffs the received content. It is advisory and only
// available until the file has been saved.
func (f *File) DetectedMimeType() (string, error) {
	mt, err := mimetype.DetectFile(f.tmpPath)
	if err != nil {
		return "", err
	}
	return mt.String(), nil
}

// SetStoredName fixes the file name used by Save instead of a random one.
// A later call overwrites an earlier one. The name must be a bare file
// name; Save rejects anything containing a path separator.
func (f *File) SetStoredName(name string) *File {
	f.storedName = name
	return f
}
