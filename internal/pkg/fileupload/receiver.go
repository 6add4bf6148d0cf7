package fileupload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	tempPattern = "uploadkit-*"
	// FormSizeField is the form value a page can send to lower the size
	// limit for its own uploads.
	FormSizeField = "MAX_FILE_SIZE"
)

// Receiver turns the parts of a parsed multipart form into Records. Each
// accepted part is copied into its own temp file, which is registered with
// the request's Registry.
type Receiver struct {
	TempDir string
	// MaxFileSize is the server-wide per-file limit; zero disables it.
	MaxFileSize       int64
	BlockedExtensions []string
	// Fields are the file inputs the handler expects. An expected field
	// without a file yields a CodeNoFile record.
	Fields []string
}

func (rc *Receiver) tempDir() string {
	if rc.TempDir == "" {
		return os.TempDir()
	}
	return rc.TempDir
}

// Receive maps every file part of form to a Record, keyed by form field.
func (rc *Receiver) Receive(form *multipart.Form, reg *Registry) map[string][]Record {
	records := make(map[string][]Record)
	if form == nil {
		form = &multipart.Form{}
	}

	formLimit := formSizeLimit(form)
	for field, headers := range form.File {
		for _, h := range headers {
			records[field] = append(records[field], rc.receivePart(h, formLimit, reg))
		}
	}

	for _, field := range rc.Fields {
		if len(records[field]) == 0 {
			records[field] = []Record{{Error: CodeNoFile}}
		}
	}
	return records
}

func (rc *Receiver) receivePart(h *multipart.FileHeader, formLimit int64, reg *Registry) Record {
	rec := Record{
		Name: h.Filename,
		Type: h.Header.Get("Content-Type"),
		Size: h.Size,
	}

	switch {
	case h.Filename == "" && h.Size == 0:
		rec.Error = CodeNoFile
	case rc.blocked(extensionOf(h.Filename)):
		rec.Error = CodeExtension
	case rc.MaxFileSize > 0 && h.Size > rc.MaxFileSize:
		rec.Error = CodeIniSize
	case formLimit > 0 && h.Size > formLimit:
		rec.Error = CodeFormSize
	}
	if rec.Error != CodeOK {
		return rec
	}

	dir := rc.tempDir()
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		rec.Error = CodeNoTmpDir
		return rec
	}

	path, code := copyToTemp(h, dir)
	if code != CodeOK {
		rec.Error = code
		return rec
	}

	reg.Register(path)
	rec.TempPath = path
	return rec
}

func (rc *Receiver) blocked(ext string) bool {
	if ext == "" {
		return false
	}
	for _, b := range rc.BlockedExtensions {
		if strings.EqualFold(strings.TrimPrefix(b, "."), ext) {
			return true
		}
	}
	return false
}

func formSizeLimit(form *multipart.Form) int64 {
	values := form.Value[FormSizeField]
	if len(values) == 0 {
		return 0
	}
	limit, err := strconv.ParseInt(strings.TrimSpace(values[0]), 10, 64)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func copyToTemp(h *multipart.FileHeader, dir string) (string, ErrorCode) {
	src, err := h.Open()
	if err != nil {
		return "", CodeCantWrite
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return "", CodeCantWrite
	}

	n, copyErr := io.Copy(tmp, src)
	closeErr := tmp.Close()

	code := CodeOK
	switch {
	case errors.Is(copyErr, io.ErrUnexpectedEOF), copyErr == nil && n != h.Size:
		code = CodePartial
	case copyErr != nil, closeErr != nil:
		code = CodeCantWrite
	}
	if code != CodeOK {
		_ = os.Remove(tmp.Name())
		return "", code
	}
	return tmp.Name(), CodeOK
}

// WrapAll validates and wraps one record per field.
func WrapAll(records map[string]Record, reg *Registry) (map[string]*File, error) {
	files := make(map[string]*File, len(records))
	for field, rec := range records {
		f, err := FromRecord(rec, reg)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		files[field] = f
	}
	return files, nil
}

// WrapFields is WrapAll for fields carrying several files.
func WrapFields(records map[string][]Record, reg *Registry) (map[string][]*File, error) {
	files := make(map[string][]*File, len(records))
	for field, recs := range records {
		wrapped := make([]*File, 0, len(recs))
		for i, rec := range recs {
			f, err := FromRecord(rec, reg)
			if err != nil {
				return nil, fmt.Errorf("field %q[%d]: %w", field, i, err)
			}
			wrapped = append(wrapped, f)
		}
		files[field] = wrapped
	}
	return files, nil
}

// PurgeStale removes temp files left behind in dir by requests that never
// finished, if they are older than olderThan. It returns how many were removed.
func PurgeStale(dir string, olderThan time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	prefix := strings.TrimSuffix(tempPattern, "*")
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < olderThan {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
