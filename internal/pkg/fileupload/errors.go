package fileupload

import "errors"

var (
	ErrNonUploadedFile       = errors.New("file was not received through the upload transport")
	ErrDirectoryDoesNotExist = errors.New("destination directory does not exist")
	ErrDirectoryUnwritable   = errors.New("destination directory is not writable")
	ErrCouldNotMoveFile      = errors.New("could not move uploaded file")
	ErrUnsafeStoredName      = errors.New("stored name must be a plain file name")
	ErrInvalidRecord         = errors.New("invalid upload record")
)
