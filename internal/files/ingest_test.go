package files

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/docdrop/server/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upload(name string, size int64) Upload {
	return Upload{Name: name, Size: size, Content: strings.NewReader("data")}
}

func countFiles(t *testing.T, ing Ingestor) int64 {
	t.Helper()
	var count int64
	require.NoError(t, ing.DB.Model(&models.File{}).Count(&count).Error)
	return count
}

func TestIngestStoresBatchInSubmissionOrder(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	ing := Ingestor{DB: db, Store: store}
	owner := uuid.New()

	created, err := ing.Ingest(context.Background(), owner, []Upload{
		upload("Tax-Return.PDF", 2048),
		upload("scan.jpeg", 4096),
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	// Submission order preserved.
	assert.Equal(t, "Tax-Return.PDF", created[0].Name)
	assert.Equal(t, "scan.jpeg", created[1].Name)

	// Type derived once, lower-cased.
	assert.Equal(t, "pdf", created[0].Type)
	assert.Equal(t, "jpeg", created[1].Type)

	// Keys are owner-namespaced and backed by stored blobs.
	prefix := fmt.Sprintf("files/%s/", owner)
	for _, f := range created {
		assert.True(t, strings.HasPrefix(f.Path, prefix), "key %q not namespaced", f.Path)
		ok, err := store.Exists(context.Background(), f.Path)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	assert.Equal(t, int64(2), countFiles(t, ing))
}

func TestIngestRejectsEmptyBatch(t *testing.T) {
	ing := Ingestor{DB: testDB(t), Store: newFakeStore()}

	_, err := ing.Ingest(context.Background(), uuid.New(), nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 1)
}

func TestIngestRejectsBatchOfSixEntirely(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	ing := Ingestor{DB: db, Store: store}

	batch := make([]Upload, 6)
	for i := range batch {
		batch[i] = upload(fmt.Sprintf("file-%d.pdf", i), 100)
	}

	_, err := ing.Ingest(context.Background(), uuid.New(), batch)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// Nothing written anywhere.
	assert.Zero(t, store.len())
	assert.Zero(t, countFiles(t, ing))
}

func TestIngestRejectsWholeBatchBeforeAnyWrite(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	ing := Ingestor{DB: db, Store: store}

	// File 2 of 3 has a disallowed extension; files 1 and 3 are valid.
	_, err := ing.Ingest(context.Background(), uuid.New(), []Upload{
		upload("ok-one.pdf", 100),
		upload("malware.exe", 100),
		upload("ok-two.png", 100),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 1)
	assert.Contains(t, verr.Problems[0], "malware.exe")

	assert.Zero(t, store.len())
	assert.Zero(t, countFiles(t, ing))
}

func TestIngestRejectsOversizeFile(t *testing.T) {
	ing := Ingestor{DB: testDB(t), Store: newFakeStore()}

	_, err := ing.Ingest(context.Background(), uuid.New(), []Upload{
		upload("huge.pdf", MaxFileSize+1),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Problems[0], "huge.pdf")
}

func TestIngestAcceptsFileAtSizeLimit(t *testing.T) {
	ing := Ingestor{DB: testDB(t), Store: newFakeStore()}

	created, err := ing.Ingest(context.Background(), uuid.New(), []Upload{
		upload("exactly-10mib.pdf", MaxFileSize),
	})
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestIngestExtensionCheckIsCaseInsensitive(t *testing.T) {
	ing := Ingestor{DB: testDB(t), Store: newFakeStore()}

	created, err := ing.Ingest(context.Background(), uuid.New(), []Upload{
		upload("SHOUTY.DOCX", 100),
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "docx", created[0].Type)
}

func TestIngestReportsEveryViolation(t *testing.T) {
	ing := Ingestor{DB: testDB(t), Store: newFakeStore()}

	_, err := ing.Ingest(context.Background(), uuid.New(), []Upload{
		upload("notes.txt", 100),
		upload("huge.pdf", MaxFileSize+1),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 2)
	assert.Contains(t, verr.Problems[0], "notes.txt")
	assert.Contains(t, verr.Problems[1], "huge.pdf")
}

func TestIngestStorageFailureStoresNothing(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	store.failPut = true
	ing := Ingestor{DB: db, Store: store}

	created, err := ing.Ingest(context.Background(), uuid.New(), []Upload{
		upload("doomed.pdf", 100),
	})
	require.Error(t, err)
	assert.Empty(t, created)
	assert.Zero(t, countFiles(t, ing))
}

func TestIngestInsertFailureLeavesOrphanedBlob(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	ing := Ingestor{DB: db, Store: store}

	// Force the insert to fail after the blob write by dropping the table.
	require.NoError(t, db.Migrator().DropTable(&models.File{}))

	created, err := ing.Ingest(context.Background(), uuid.New(), []Upload{
		upload("orphan.pdf", 100),
	})
	require.Error(t, err)
	assert.Empty(t, created)

	// The blob write happened first; the orphan is the documented
	// accepted inconsistency.
	assert.Equal(t, 1, store.len())
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "pdf", extension("report.pdf"))
	assert.Equal(t, "pdf", extension("REPORT.PDF"))
	assert.Equal(t, "docx", extension("archive.tar.docx"))
	assert.Equal(t, "", extension("no-extension"))
	assert.Equal(t, "", extension(""))
}
