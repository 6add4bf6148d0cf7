package upload

import "errors"

var (
	ErrUploadNotFound  = errors.New("upload not found")
	ErrNotOwner        = errors.New("you do not own this upload")
	ErrNoFile          = errors.New("no file provided")
	ErrTransport       = errors.New("file upload failed")
	ErrKindMismatch    = errors.New("file type is not allowed")
	ErrInvalidKind     = errors.New("unknown file kind")
	ErrDuplicateUpload = errors.New("upload path already recorded")
)
