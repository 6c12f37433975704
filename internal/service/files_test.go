package service

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/avelkov/cloudnest/internal/models"
	"github.com/avelkov/cloudnest/internal/repositories"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*FileService, *gorm.DB, *repositories.BlobDir) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.File{}))

	blobs, err := repositories.NewBlobDir(t.TempDir())
	require.NoError(t, err)

	return NewFileService(db, blobs), db, blobs
}

func upload(t *testing.T, svc *FileService, owner uuid.UUID, name, content string) {
	t.Helper()
	err := svc.UploadBatch(context.Background(), owner, []Upload{
		{Filename: name, Content: strings.NewReader(content)},
	})
	require.NoError(t, err)
}

func readAll(t *testing.T, r io.ReadCloser) string {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	return string(data)
}

func countRows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.File{}).Count(&n).Error)
	return n
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := uuid.New()

	upload(t, svc, owner, "notes.txt", "hello")

	files, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "notes.txt", files[0].Filename)
	assert.Equal(t, int64(5), files[0].Size)

	rec, blob, err := svc.Download(context.Background(), owner, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", rec.Filename)
	assert.Equal(t, "hello", readAll(t, blob))
}

func TestUploadNoFilePart(t *testing.T) {
	svc, db, _ := newTestService(t)

	err := svc.UploadBatch(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrNoFilePart)
	assert.Zero(t, countRows(t, db))
}

func TestUploadNoFileSelected(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := uuid.New()

	err := svc.UploadBatch(context.Background(), owner, []Upload{})
	assert.ErrorIs(t, err, ErrNoFileSelected)

	err = svc.UploadBatch(context.Background(), owner, []Upload{
		{Filename: "", Content: strings.NewReader("x")},
	})
	assert.ErrorIs(t, err, ErrNoFileSelected)
	assert.Zero(t, countRows(t, db))
}

func TestUploadSkipsNamesThatSanitizeAway(t *testing.T) {
	svc, db, _ := newTestService(t)

	err := svc.UploadBatch(context.Background(), uuid.New(), []Upload{
		{Filename: "..", Content: strings.NewReader("x")},
	})
	require.NoError(t, err)
	assert.Zero(t, countRows(t, db))
}

func TestUploadSanitizesTraversalNames(t *testing.T) {
	svc, _, blobs := newTestService(t)
	owner := uuid.New()

	upload(t, svc, owner, "../../evil.txt", "payload")

	files, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "evil.txt", files[0].Filename)
	assert.Equal(t, blobs.Root(), filepath.Dir(files[0].Path))

	_, err = os.Stat(filepath.Join(blobs.Root(), "evil.txt"))
	assert.NoError(t, err)
}

func TestUploadBatchKeepsEarlierFilesOnLaterFailure(t *testing.T) {
	svc, db, blobs := newTestService(t)
	owner := uuid.New()

	err := svc.UploadBatch(context.Background(), owner, []Upload{
		{Filename: "good.txt", Content: strings.NewReader("fine")},
		{Filename: "bad.txt", Content: failingReader{}},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFilePart)

	// The first file's save+insert pair survived the later failure.
	assert.Equal(t, int64(1), countRows(t, db))
	_, statErr := os.Stat(filepath.Join(blobs.Root(), "good.txt"))
	assert.NoError(t, statErr)
}

// failingReader always fails mid-read.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestDownloadNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.Download(context.Background(), uuid.New(), "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDownloadMissingBlobReportsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := uuid.New()

	upload(t, svc, owner, "notes.txt", "hello")

	rec, blob, err := svc.Download(context.Background(), owner, "notes.txt")
	require.NoError(t, err)
	require.NoError(t, blob.Close())

	// The blob vanishes out of band; the dangling row must not crash reads.
	require.NoError(t, os.Remove(rec.Path))

	_, _, err = svc.Download(context.Background(), owner, "notes.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesFileAndSecondDeleteNotFound(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := uuid.New()

	upload(t, svc, owner, "notes.txt", "hello")
	require.NoError(t, svc.Delete(context.Background(), owner, "notes.txt"))

	files, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Zero(t, countRows(t, db))

	err = svc.Delete(context.Background(), owner, "notes.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteKeepsMetadataWhenBlobRemovalFails(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := uuid.New()

	upload(t, svc, owner, "notes.txt", "hello")

	rec, blob, err := svc.Download(context.Background(), owner, "notes.txt")
	require.NoError(t, err)
	require.NoError(t, blob.Close())
	require.NoError(t, os.Remove(rec.Path))

	err = svc.Delete(context.Background(), owner, "notes.txt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	// Retained row: the user has not silently lost track of the file.
	assert.Equal(t, int64(1), countRows(t, db))
}

func TestOwnerIsolation(t *testing.T) {
	svc, _, _ := newTestService(t)
	alice, bob := uuid.New(), uuid.New()

	upload(t, svc, alice, "notes.txt", "alice's notes")

	_, _, err := svc.Download(context.Background(), bob, "notes.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), bob, "notes.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	// Alice's file is untouched by Bob's attempts.
	files, err := svc.List(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestDeleteThenReuploadServesNewContent(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := uuid.New()

	upload(t, svc, owner, "notes.txt", "old content")
	require.NoError(t, svc.Delete(context.Background(), owner, "notes.txt"))

	_, _, err := svc.Download(context.Background(), owner, "notes.txt")
	require.ErrorIs(t, err, ErrNotFound)

	upload(t, svc, owner, "notes.txt", "new content")

	_, blob, err := svc.Download(context.Background(), owner, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "new content", readAll(t, blob))
}

func TestDuplicateFilenameUploads(t *testing.T) {
	svc, db, blobs := newTestService(t)
	owner := uuid.New()

	upload(t, svc, owner, "notes.txt", "first")
	// Force distinct timestamps so "newest row" is well defined on sqlite's
	// timestamp resolution.
	require.NoError(t, db.Model(&models.File{}).
		Where("1 = 1").
		Update("uploaded_at", time.Now().Add(-time.Minute)).Error)
	upload(t, svc, owner, "notes.txt", "second!")

	// Two rows, one blob: the second write overwrote the first in place.
	assert.Equal(t, int64(2), countRows(t, db))
	entries, err := os.ReadDir(blobs.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	rec, blob, err := svc.Download(context.Background(), owner, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.Size)
	assert.Equal(t, "second!", readAll(t, blob))

	// Delete clears the blob and every duplicate row.
	require.NoError(t, svc.Delete(context.Background(), owner, "notes.txt"))
	assert.Zero(t, countRows(t, db))
}
