package fileupload

import (
	"fmt"

	"uploadkit/internal/pkg/validator"
)

// ErrorCode is the transport-level outcome of a single uploaded part.
// Values follow the classic upload error numbering; 5 is unused.
type ErrorCode int

const (
	CodeOK        ErrorCode = 0
	CodeIniSize   ErrorCode = 1
	CodeFormSize  ErrorCode = 2
	CodePartial   ErrorCode = 3
	CodeNoFile    ErrorCode = 4
	CodeNoTmpDir  ErrorCode = 6
	CodeCantWrite ErrorCode = 7
	CodeExtension ErrorCode = 8
)

// Message returns the human readable text for the code, or "" for CodeOK.
func (c ErrorCode) Message() string {
	switch c {
	case CodeIniSize:
		return "The uploaded file exceeds the maximum allowed size."
	case CodeFormSize:
		return "The uploaded file exceeds the size limit specified by the form."
	case CodePartial:
		return "The uploaded file was only partially uploaded."
	case CodeNoFile:
		return "No file was uploaded."
	case CodeNoTmpDir:
		return "Missing a temporary folder."
	case CodeCantWrite:
		return "Failed to write file to disk."
	case CodeExtension:
		return "A server extension stopped the file upload."
	default:
		return ""
	}
}

// Record is the raw metadata the request layer produces for one uploaded part.
type Record struct {
	Name     string    `json:"name" validate:"required_if=Error 0"`
	Type     string    `json:"type"`
	Size     int64     `json:"size" validate:"gte=0"`
	TempPath string    `json:"tmp_name" validate:"required_if=Error 0"`
	Error    ErrorCode `json:"error" validate:"oneof=0 1 2 3 4 6 7 8"`
}

// Validate checks the record before it is wrapped.
func (r Record) Validate() error {
	if errs := validator.Validate(r); errs != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, validator.Describe(errs))
	}
	return nil
}
