package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/docdrop/server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// previewableTypes are the extensions a browser can render inline.
var previewableTypes = map[string]bool{
	"pdf":  true,
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// Gateway mediates every per-file operation through an ownership check
// before any byte is read or any row mutated.
type Gateway struct {
	DB    *gorm.DB
	Store Storage
}

// Content is an authorized file ready to be written to a response.
type Content struct {
	// Body streams the blob's bytes. The caller must close it.
	Body io.ReadCloser
	// ContentType is resolved from the stored extension.
	ContentType string
	// Name is the original filename, for the Content-Disposition header.
	Name string
	Size int64
}

// load fetches the record and authorizes the requester against its owner.
func (g *Gateway) load(fileID, requesterID uuid.UUID) (*models.File, error) {
	var f models.File
	err := g.DB.Where("id = ?", fileID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load file: %w", err)
	}
	if f.UserID != requesterID {
		return nil, ErrForbidden
	}
	return &f, nil
}

// Preview returns the file's bytes for inline display. Fails with
// ErrUnsupportedMedia for non-previewable types and ErrNotFound when the
// backing blob is missing.
func (g *Gateway) Preview(ctx context.Context, fileID, requesterID uuid.UUID) (*Content, error) {
	f, err := g.load(fileID, requesterID)
	if err != nil {
		return nil, err
	}

	if !previewableTypes[strings.ToLower(f.Type)] {
		return nil, ErrUnsupportedMedia
	}

	return g.open(ctx, f)
}

// Download returns the file's bytes for an attachment response. Fails with
// ErrNotFound when the backing blob is missing.
func (g *Gateway) Download(ctx context.Context, fileID, requesterID uuid.UUID) (*Content, error) {
	f, err := g.load(fileID, requesterID)
	if err != nil {
		return nil, err
	}
	return g.open(ctx, f)
}

func (g *Gateway) open(ctx context.Context, f *models.File) (*Content, error) {
	ok, err := g.Store.Exists(ctx, f.Path)
	if err != nil {
		return nil, fmt.Errorf("check blob %q: %w", f.Path, err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	body, err := g.Store.Get(ctx, f.Path)
	if err != nil {
		return nil, fmt.Errorf("read blob %q: %w", f.Path, err)
	}

	return &Content{
		Body:        body,
		ContentType: ContentType(f.Type),
		Name:        f.Name,
		Size:        f.Size,
	}, nil
}

// Delete removes the blob and then the record. A blob already absent from
// the store is treated as success, so deletion stays idempotent from the
// caller's perspective.
func (g *Gateway) Delete(ctx context.Context, fileID, requesterID uuid.UUID) error {
	f, err := g.load(fileID, requesterID)
	if err != nil {
		return err
	}

	// Blob first, record second. The store's delete is a no-op for a
	// missing key.
	if err := g.Store.Delete(ctx, f.Path); err != nil {
		return fmt.Errorf("delete blob %q: %w", f.Path, err)
	}

	if err := g.DB.Delete(&models.File{}, "id = ?", f.ID).Error; err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// ContentType resolves a MIME type from a stored extension. The
// octet-stream default is only reachable defensively; preview filters to
// previewable types first.
func ContentType(ext string) string {
	switch strings.ToLower(ext) {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
