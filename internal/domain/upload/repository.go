package upload

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, u *Upload) error
	GetByID(ctx context.Context, id string) (*Upload, error)
	Delete(ctx context.Context, id string) error
	ListByUserID(ctx context.Context, userID int64) ([]*Upload, error)
	ListAll(ctx context.Context) ([]*Upload, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *Upload) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if isUniqueViolation(err) {
		return ErrDuplicateUpload
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Upload, error) {
	var u Upload
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Upload{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUploadNotFound
	}
	return nil
}

func (r *repository) ListByUserID(ctx context.Context, userID int64) ([]*Upload, error) {
	var uploads []*Upload
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&uploads).Error
	return uploads, err
}

func (r *repository) ListAll(ctx context.Context) ([]*Upload, error) {
	var uploads []*Upload
	err := r.db.WithContext(ctx).Order("created_at").Find(&uploads).Error
	return uploads, err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	// the pure-Go sqlite driver is not covered by gorm's error translation
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
