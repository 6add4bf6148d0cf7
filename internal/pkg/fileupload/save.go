package fileupload

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// maxNameAttempts bounds purely random candidates; later candidates carry a
// counter suffix so name generation always terminates.
const maxNameAttempts = 16

type saveOptions struct {
	allowNonUploaded bool
}

type SaveOption func(*saveOptions)

// AllowNonUploaded skips the check that the temp file came from the upload
// transport. Only use it for files the application produced itself.
func AllowNonUploaded() SaveOption {
	return func(o *saveOptions) { o.allowNonUploaded = true }
}

func randomName() string {
	sum := md5.Sum([]byte(strconv.FormatInt(time.Now().UnixNano(), 10) + uuid.NewString()))
	return hex.EncodeToString(sum[:])
}

// GenerateName returns a random file name, keeping the extension, that does
// not exist in dir at call time. Only an existing entry counts as a
// collision; any other lookup error, such as a name longer than the
// filesystem allows, is returned.
func (f *File) GenerateName(dir string) (string, error) {
	dir = withTrailingSeparator(dir)
	for attempt := 1; ; attempt++ {
		stem := f.names()
		if attempt > maxNameAttempts {
			stem += "-" + strconv.Itoa(attempt)
		}
		candidate := stem
		if f.extension != "" {
			candidate += "." + f.extension
		}
		_, err := os.Lstat(dir + candidate)
		switch {
		case err == nil:
			continue
		case errors.Is(err, fs.ErrNotExist):
			return candidate, nil
		default:
			return "", err
		}
	}
}

// Save moves the uploaded file into dir and returns the stored file name.
//
// Errors: ErrNonUploadedFile, ErrDirectoryDoesNotExist,
// ErrDirectoryUnwritable, ErrUnsafeStoredName and ErrCouldNotMoveFile, which
// wraps the underlying OS error. Nothing is written on failure.
//
// A successful save consumes the temp file, so saving the same File again
// fails.
func (f *File) Save(dir string, opts ...SaveOption) (string, error) {
	var o saveOptions
	for _, opt := range opts {
		opt(&o)
	}

	dir = withTrailingSeparator(dir)

	if !o.allowNonUploaded && !f.registry.IsUploaded(f.tmpPath) {
		return "", ErrNonUploadedFile
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", ErrDirectoryDoesNotExist
	}

	if !f.writable(dir, info) {
		return "", ErrDirectoryUnwritable
	}

	if f.storedName == "" {
		name, err := f.GenerateName(dir)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrCouldNotMoveFile, err)
		}
		f.storedName = name
	} else if !isPlainName(f.storedName) {
		return "", ErrUnsafeStoredName
	}

	if err := moveFile(f.tmpPath, dir+f.storedName); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCouldNotMoveFile, err)
	}
	f.registry.Release(f.tmpPath)

	return f.storedName, nil
}

func withTrailingSeparator(dir string) string {
	if dir == "" || !os.IsPathSeparator(dir[len(dir)-1]) {
		dir += string(os.PathSeparator)
	}
	return dir
}

func isPlainName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return copyAcrossDevices(src, dst)
}

// copyAcrossDevices is the rename fallback when temp dir and destination
// live on different filesystems.
func copyAcrossDevices(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err = out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
