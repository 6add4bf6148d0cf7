package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"uploadkit/internal/pkg/fileupload"
)

const (
	UploadsBaseDir = "./uploads"
	StaticURLBase  = "/static/uploads"
)

// ParseKind validates the kind a client asks for. The empty string accepts
// any file.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindAny, KindImage, KindAudio, KindVideo:
		return k, nil
	default:
		return "", ErrInvalidKind
	}
}

// Classify returns the media class of f. A webm file without a declared
// type counts as video.
func Classify(f *fileupload.File) Kind {
	switch {
	case f.IsImage():
		return KindImage
	case f.IsVideo():
		return KindVideo
	case f.IsAudio():
		return KindAudio
	default:
		return KindOther
	}
}

func matches(f *fileupload.File, want Kind) bool {
	switch want {
	case KindImage:
		return f.IsImage()
	case KindAudio:
		return f.IsAudio()
	case KindVideo:
		return f.IsVideo()
	default:
		return true
	}
}

// Service stores uploaded files under baseDir/YYYY/MM/DD and records them.
type Service struct {
	repo       Repository
	baseDir    string
	staticBase string
	now        func() time.Time
}

func NewService(repo Repository, baseDir, staticBase string) *Service {
	if baseDir == "" {
		baseDir = UploadsBaseDir
	}
	if staticBase == "" {
		staticBase = StaticURLBase
	}
	return &Service{repo: repo, baseDir: baseDir, staticBase: staticBase, now: time.Now}
}

// Store saves f and records it for userID. want restricts the accepted kind.
func (s *Service) Store(ctx context.Context, userID int64, f *fileupload.File, want Kind) (*Upload, error) {
	if f == nil {
		return nil, ErrNoFile
	}
	if f.HasError() {
		return nil, fmt.Errorf("%w: %s", ErrTransport, f.ErrorMessage())
	}
	if !matches(f, want) {
		return nil, ErrKindMismatch
	}

	detected, err := f.DetectedMimeType()
	if err != nil {
		log.Printf("upload_sniff_failed user_id=%d name=%q error=%v", userID, f.Name, err)
	}

	now := s.now()
	relDir := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())
	absDir := filepath.Join(s.baseDir, filepath.FromSlash(relDir))
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	stored, err := f.Save(absDir)
	if err != nil {
		if errors.Is(err, fileupload.ErrNonUploadedFile) {
			log.Printf("upload_security_violation user_id=%d name=%q tmp=%q", userID, f.Name, f.TempPath())
		}
		return nil, err
	}

	relPath := path.Join(relDir, stored)
	upload := &Upload{
		ID:               uuid.New().String(),
		UserID:           userID,
		OriginalName:     f.Name,
		StoredName:       stored,
		FilePath:         relPath,
		FileURL:          s.staticBase + "/" + relPath,
		MimeType:         f.MimeType,
		DetectedMimeType: detected,
		Kind:             Classify(f),
		Size:             f.Size,
		CreatedAt:        now,
	}

	if err := s.repo.Create(ctx, upload); err != nil {
		_ = os.Remove(filepath.Join(absDir, stored)) // rollback file on DB error
		return nil, fmt.Errorf("failed to save upload record: %w", err)
	}

	log.Printf("upload_stored id=%s user_id=%d kind=%s size=%d path=%s", upload.ID, userID, upload.Kind, upload.Size, relPath)
	return upload, nil
}

// GetByID returns upload metadata by ID.
func (s *Service) GetByID(ctx context.Context, id string) (*Upload, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes the stored file and the record. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, id string, userID int64) error {
	upload, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if upload.UserID != userID {
		return ErrNotOwner
	}

	if err := os.Remove(s.absPath(upload)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove stored file: %w", err)
	}

	return s.repo.Delete(ctx, id)
}

// ListByUser returns all uploads for a user, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*Upload, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// PruneMissing deletes records whose stored file is gone from disk.
func (s *Service) PruneMissing(ctx context.Context) (int, error) {
	uploads, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, u := range uploads {
		if _, err := os.Stat(s.absPath(u)); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := s.repo.Delete(ctx, u.ID); err != nil && !errors.Is(err, ErrUploadNotFound) {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

func (s *Service) absPath(u *Upload) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(u.FilePath))
}
