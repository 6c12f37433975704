// Package service holds the file service: the one place where the blob
// directory and the metadata store are kept in agreement.
//
// There is deliberately no transaction spanning the two stores. The ordering
// contract is:
//
//   - upload writes the blob before inserting the metadata row, so a crash in
//     between leaves an orphaned blob (invisible to users) rather than a
//     dangling row (which would break downloads);
//   - delete removes the blob before the metadata rows, and keeps the rows
//     whenever the blob removal fails, so the user never silently loses track
//     of a file they believe still exists.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/avelkov/cloudnest/internal/models"
	"github.com/avelkov/cloudnest/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upload is one file of an upload batch: the client-supplied name and the
// byte stream to store.
type Upload struct {
	Filename string
	Content  io.Reader
}

type FileService struct {
	db    *gorm.DB
	blobs *repositories.BlobDir
}

func NewFileService(db *gorm.DB, blobs *repositories.BlobDir) *FileService {
	return &FileService{db: db, blobs: blobs}
}

// UploadBatch stores each file of the batch as an independent save+insert
// pair: the blob write happens before the metadata insert, and a failure
// partway through does not roll back files already stored. A nil batch means
// the request had no file part; an empty selection fails before touching
// storage.
func (s *FileService) UploadBatch(ctx context.Context, ownerID uuid.UUID, batch []Upload) error {
	if batch == nil {
		return ErrNoFilePart
	}
	if len(batch) == 0 || batch[0].Filename == "" {
		return ErrNoFileSelected
	}

	for _, up := range batch {
		name := repositories.SanitizeFilename(up.Filename)
		if name == "" {
			continue
		}

		path, size, err := s.blobs.Save(name, up.Content)
		if err != nil {
			return fmt.Errorf("saving %q: %w", name, err)
		}

		rec := &models.File{
			ID:       uuid.New(),
			UserID:   ownerID,
			Filename: name,
			Path:     path,
			Size:     size,
		}
		if err := repositories.InsertFile(ctx, s.db, rec); err != nil {
			return fmt.Errorf("recording %q: %w", name, err)
		}
	}
	return nil
}

// Download looks up the newest (owner, filename) row and streams the blob.
// The blob is resolved via the directory root plus the sanitized name, not
// the stored path column, matching what the metadata lookup keyed on. A
// missing row or a missing blob both come back as ErrNotFound.
func (s *FileService) Download(ctx context.Context, ownerID uuid.UUID, filename string) (*models.File, io.ReadSeekCloser, error) {
	name := repositories.SanitizeFilename(filename)
	if name == "" {
		return nil, nil, ErrNotFound
	}

	rec, err := repositories.FindFileByOwnerAndFilename(ctx, s.db, ownerID, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("looking up %q: %w", name, err)
	}

	blob, err := s.blobs.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening %q: %w", name, err)
	}
	return rec, blob, nil
}

// Delete removes the blob at the stored path, then every (owner, filename)
// metadata row. When the blob removal fails — already missing included — the
// rows are retained and the error is surfaced, so a retry still sees the file.
func (s *FileService) Delete(ctx context.Context, ownerID uuid.UUID, filename string) error {
	name := repositories.SanitizeFilename(filename)
	if name == "" {
		return ErrNotFound
	}

	rec, err := repositories.FindFileByOwnerAndFilename(ctx, s.db, ownerID, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up %q: %w", name, err)
	}

	if err := s.blobs.Remove(rec.Path); err != nil {
		return fmt.Errorf("removing blob for %q: %w", name, err)
	}
	if err := repositories.DeleteFilesByOwnerAndFilename(ctx, s.db, ownerID, name); err != nil {
		return fmt.Errorf("deleting rows for %q: %w", name, err)
	}
	return nil
}

// List returns the owner's files, most recently uploaded first.
func (s *FileService) List(ctx context.Context, ownerID uuid.UUID) ([]models.File, error) {
	return repositories.ListFilesByOwner(ctx, s.db, ownerID)
}
