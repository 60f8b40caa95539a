package files

import (
	"context"
	"io"
	"testing"

	"github.com/docdrop/server/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// putBlob backfills the fake store with bytes for a seeded record.
func putBlob(t *testing.T, store *fakeStore, f models.File, data []byte) {
	t.Helper()
	store.mu.Lock()
	defer store.mu.Unlock()
	store.objects[f.Path] = data
}

func TestPreviewByNonOwnerIsForbidden(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	g := Gateway{DB: db, Store: store}

	owner := uuid.New()
	f := seedFile(t, db, owner, "secret.pdf", "pdf", 4)
	putBlob(t, store, f, []byte("data"))

	_, err := g.Preview(context.Background(), f.ID, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = g.Download(context.Background(), f.ID, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)

	err = g.Delete(context.Background(), f.ID, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)

	// Nothing was touched.
	assert.Equal(t, 1, store.len())
	var count int64
	require.NoError(t, db.Model(&models.File{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPreviewUnknownRecordIsNotFound(t *testing.T) {
	db := testDB(t)
	g := Gateway{DB: db, Store: newFakeStore()}

	_, err := g.Preview(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPreviewNonPreviewableTypeIsUnsupported(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	g := Gateway{DB: db, Store: store}

	owner := uuid.New()
	f := seedFile(t, db, owner, "contract.docx", "docx", 4)
	putBlob(t, store, f, []byte("data"))

	_, err := g.Preview(context.Background(), f.ID, owner)
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestPreviewReturnsBytesAndResolvedContentType(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	g := Gateway{DB: db, Store: store}

	owner := uuid.New()
	f := seedFile(t, db, owner, "report.pdf", "pdf", 9)
	putBlob(t, store, f, []byte("%PDF-1.7\n"))

	content, err := g.Preview(context.Background(), f.ID, owner)
	require.NoError(t, err)
	defer content.Body.Close()

	assert.Equal(t, "application/pdf", content.ContentType)
	assert.Equal(t, "report.pdf", content.Name)
	assert.Equal(t, int64(9), content.Size)

	data, err := io.ReadAll(content.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7\n"), data)
}

func TestPreviewTypeCheckIsCaseInsensitive(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	g := Gateway{DB: db, Store: store}

	owner := uuid.New()
	f := seedFile(t, db, owner, "photo.JPG", "JPG", 4)
	putBlob(t, store, f, []byte("data"))

	content, err := g.Preview(context.Background(), f.ID, owner)
	require.NoError(t, err)
	defer content.Body.Close()
	assert.Equal(t, "image/jpeg", content.ContentType)
}

func TestPreviewMissingBlobIsNotFound(t *testing.T) {
	db := testDB(t)
	g := Gateway{DB: db, Store: newFakeStore()}

	owner := uuid.New()
	f := seedFile(t, db, owner, "gone.png", "png", 4)

	_, err := g.Preview(context.Background(), f.ID, owner)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = g.Download(context.Background(), f.ID, owner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDownloadStreamsAnyAcceptedType(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	g := Gateway{DB: db, Store: store}

	owner := uuid.New()
	// docx cannot be previewed but downloads fine.
	f := seedFile(t, db, owner, "contract.docx", "docx", 4)
	putBlob(t, store, f, []byte("data"))

	content, err := g.Download(context.Background(), f.ID, owner)
	require.NoError(t, err)
	defer content.Body.Close()

	assert.Equal(t, "contract.docx", content.Name)
	data, err := io.ReadAll(content.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)
}

func TestDeleteRemovesBlobThenRecord(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	g := Gateway{DB: db, Store: store}

	owner := uuid.New()
	f := seedFile(t, db, owner, "old.pdf", "pdf", 4)
	putBlob(t, store, f, []byte("data"))

	require.NoError(t, g.Delete(context.Background(), f.ID, owner))

	assert.Zero(t, store.len())
	var count int64
	require.NoError(t, db.Model(&models.File{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteWithMissingBlobStillSucceeds(t *testing.T) {
	db := testDB(t)
	g := Gateway{DB: db, Store: newFakeStore()}

	owner := uuid.New()
	// Record exists, blob was never written (or already removed).
	f := seedFile(t, db, owner, "dangling.pdf", "pdf", 4)

	require.NoError(t, g.Delete(context.Background(), f.ID, owner))

	var count int64
	require.NoError(t, db.Model(&models.File{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"pdf":  "application/pdf",
		"PDF":  "application/pdf",
		"png":  "image/png",
		"jpg":  "image/jpeg",
		"jpeg": "image/jpeg",
		"gif":  "image/gif",
		"docx": "application/octet-stream",
		"odt":  "application/octet-stream",
		"":     "application/octet-stream",
	}
	for ext, want := range tests {
		assert.Equal(t, want, ContentType(ext), "extension %q", ext)
	}
}
