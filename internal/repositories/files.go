package repositories

import (
	"context"

	"github.com/avelkov/cloudnest/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InsertFile stores one metadata row. UploadedAt defaults to insertion time
// unless the caller set it already.
func InsertFile(ctx context.Context, db *gorm.DB, file *models.File) error {
	return db.WithContext(ctx).Create(file).Error
}

// ListFilesByOwner returns the owner's files, most recent upload first.
func ListFilesByOwner(ctx context.Context, db *gorm.DB, ownerID uuid.UUID) ([]models.File, error) {
	var files []models.File
	err := db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("uploaded_at DESC").
		Find(&files).Error
	return files, err
}

// FindFileByOwnerAndFilename returns the newest row matching (owner, filename),
// or gorm.ErrRecordNotFound. Duplicate rows for one name are legal; taking the
// newest makes the ambiguous lookup deterministic.
func FindFileByOwnerAndFilename(ctx context.Context, db *gorm.DB, ownerID uuid.UUID, filename string) (*models.File, error) {
	var file models.File
	err := db.WithContext(ctx).
		Where("user_id = ? AND filename = ?", ownerID, filename).
		Order("uploaded_at DESC").
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// DeleteFilesByOwnerAndFilename removes every row matching (owner, filename).
func DeleteFilesByOwnerAndFilename(ctx context.Context, db *gorm.DB, ownerID uuid.UUID, filename string) error {
	return db.WithContext(ctx).
		Where("user_id = ? AND filename = ?", ownerID, filename).
		Delete(&models.File{}).Error
}
