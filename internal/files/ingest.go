package files

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/docdrop/server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upload policy.
const (
	// MaxBatchSize is the largest number of files accepted per upload.
	MaxBatchSize = 5
	// MaxFileSize is the per-file byte limit (10 MiB).
	MaxFileSize = 10 << 20
)

// acceptedTypes are the extensions the ingestor will store.
var acceptedTypes = map[string]bool{
	"pdf":  true,
	"docx": true,
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"odt":  true,
}

// AcceptedTypes returns the accepted extensions for clients building an
// upload form.
func AcceptedTypes() []string {
	return []string{"pdf", "docx", "png", "jpg", "jpeg", "odt"}
}

// Upload is one incoming file of a batch.
type Upload struct {
	// Name is the client-supplied filename; its extension decides the
	// stored type.
	Name string
	// Size is the byte length declared by the multipart part.
	Size int64
	// Content streams the file's bytes.
	Content io.Reader
}

// Ingestor validates and persists upload batches for one owner.
type Ingestor struct {
	DB    *gorm.DB
	Store Storage
}

// Ingest stores a batch of files for the owner. The whole batch is
// validated before any write; a batch with any invalid file stores nothing.
// After validation, files are processed in submission order: blob write,
// then record insert. A blob written whose insert then fails is left
// orphaned; the error is returned along with the records created so far.
func (ing *Ingestor) Ingest(ctx context.Context, ownerID uuid.UUID, uploads []Upload) ([]models.File, error) {
	if err := ValidateBatch(uploads); err != nil {
		return nil, err
	}

	created := make([]models.File, 0, len(uploads))
	for _, up := range uploads {
		ext := extension(up.Name)
		fileID := uuid.New()
		key := fmt.Sprintf("files/%s/%s.%s", ownerID, fileID, ext)

		if err := ing.Store.Put(ctx, key, up.Content, up.Size); err != nil {
			return created, fmt.Errorf("store %q: %w", up.Name, err)
		}

		record := models.File{
			ID:     fileID,
			UserID: ownerID,
			Name:   up.Name,
			Path:   key,
			Type:   ext,
			Size:   up.Size,
		}
		err := ing.DB.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&record).Error
		})
		if err != nil {
			// The blob is already written; the orphan is accepted
			// rather than reconciled here.
			return created, fmt.Errorf("record %q: %w", up.Name, err)
		}

		created = append(created, record)
	}
	return created, nil
}

// ValidateBatch checks the whole batch against the upload policy and
// reports every violation. It touches no storage.
func ValidateBatch(uploads []Upload) error {
	var problems []string

	if len(uploads) == 0 {
		problems = append(problems, "you must select at least one file")
	}
	if len(uploads) > MaxBatchSize {
		problems = append(problems, fmt.Sprintf("you cannot upload more than %d files at once", MaxBatchSize))
	}

	for _, up := range uploads {
		if !acceptedTypes[extension(up.Name)] {
			problems = append(problems, fmt.Sprintf("%s: file type is not accepted; only PDF, DOCX, PNG, JPG, JPEG and ODT are allowed", up.Name))
		}
		if up.Size > MaxFileSize {
			problems = append(problems, fmt.Sprintf("%s: file size must not exceed 10 MB", up.Name))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// extension returns the lowercase extension of a filename without the dot.
func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
