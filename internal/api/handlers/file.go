package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/docdrop/server/internal/api/middleware"
	"github.com/docdrop/server/internal/files"
	"github.com/docdrop/server/internal/repositories"
	"github.com/docdrop/server/internal/utils"
	"github.com/google/uuid"
)

// requesterID extracts the authenticated user's ID from the request context.
// The core never reads it ambiently; it is passed explicitly from here.
func requesterID(r *http.Request) (uuid.UUID, bool) {
	raw, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// writeFileError maps core errors to HTTP responses. Forbidden and NotFound
// stay generic so nothing about other owners' files leaks.
func writeFileError(w http.ResponseWriter, err error) {
	var verr *files.ValidationError

	switch {
	case errors.Is(err, files.ErrForbidden):
		utils.JSONResponse(w, http.StatusForbidden, utils.Payload{
			Success: false,
			Message: "You do not have access to this file",
		})
	case errors.Is(err, files.ErrNotFound):
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "File not found",
		})
	case errors.Is(err, files.ErrUnsupportedMedia):
		utils.JSONResponse(w, http.StatusUnsupportedMediaType, utils.Payload{
			Success: false,
			Message: "This file type cannot be previewed",
		})
	case errors.As(err, &verr):
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Upload validation failed",
			Data:    map[string]any{"problems": verr.Problems},
		})
	default:
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Something went wrong",
		})
	}
}

// GET /api/v1/files
// ListFiles godoc
// @Summary List the authenticated user's files
// @Description Returns one page of the user's files with optional search, type, date and size filters.
// @Tags Files
// @Produce json
// @Param search query string false "Substring match on filename"
// @Param type query string false "Exact match on file extension"
// @Param date query string false "Date bucket" Enums(today, week, month, year)
// @Param size query string false "Size bucket" Enums(small, medium, large)
// @Param sort_field query string false "Sort field" Enums(name, type, size, created_at)
// @Param sort_direction query string false "Sort direction" Enums(asc, desc)
// @Param page query int false "1-based page number"
// @Success 200 {object} utils.Payload
// @Router /api/v1/files [get]
func ListFiles(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requesterID(r)
	if !ok {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))

	result, err := files.List(repositories.DB, files.ListParams{
		OwnerID:    ownerID,
		Search:     query.Get("search"),
		Type:       query.Get("type"),
		DateBucket: query.Get("date"),
		SizeBucket: query.Get("size"),
		SortField:  query.Get("sort_field"),
		SortDir:    query.Get("sort_direction"),
		Page:       page,
	})
	if err != nil {
		writeFileError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Files retrieved successfully",
		Data:    result,
	})
}

// POST /api/v1/files
// UploadFiles godoc
// @Summary Upload a batch of files
// @Description Stores up to 5 files (PDF, DOCX, PNG, JPG, JPEG, ODT; ≤10 MB each) for the authenticated user.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files to upload" style(form) explode(true)
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/files [post]
func UploadFiles(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requesterID(r)
	if !ok {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	// Batch ceiling: 5 files of 10 MB plus form overhead.
	const maxUploadSize = 64 << 20
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid file upload form",
		})
		return
	}

	formFiles := r.MultipartForm.File["files"]
	uploads := make([]files.Upload, 0, len(formFiles))
	for _, fh := range formFiles {
		src, err := fh.Open()
		if err != nil {
			utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
				Success: false,
				Message: "Failed to read uploaded file",
			})
			return
		}
		defer src.Close()

		uploads = append(uploads, files.Upload{
			Name:    fh.Filename,
			Size:    fh.Size,
			Content: src,
		})
	}

	ing := files.Ingestor{DB: repositories.DB, Store: repositories.Blob}
	created, err := ing.Ingest(r.Context(), ownerID, uploads)
	if err != nil {
		writeFileError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "File(s) uploaded successfully",
		Data:    map[string]any{"files": created},
	})
}

// GET /api/v1/files/accepted-types
// AcceptedTypes godoc
// @Summary List accepted upload extensions
// @Tags Files
// @Produce json
// @Success 200 {object} utils.Payload
// @Router /api/v1/files/accepted-types [get]
func AcceptedTypes(w http.ResponseWriter, r *http.Request) {
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Accepted file types",
		Data:    map[string]any{"acceptedTypes": files.AcceptedTypes()},
	})
}

// GET /api/v1/files/{id}/preview
// PreviewFile godoc
// @Summary Preview a file inline
// @Description Streams the file's bytes with an inline disposition. Only PDF, PNG, JPG, JPEG and GIF can be previewed.
// @Tags Files
// @Produce octet-stream
// @Param id path string true "File ID"
// @Success 200 {file} binary
// @Failure 403 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Failure 415 {object} utils.Payload
// @Router /api/v1/files/{id}/preview [get]
func PreviewFile(w http.ResponseWriter, r *http.Request) {
	serveFile(w, r, true)
}

// GET /api/v1/files/{id}/download
// DownloadFile godoc
// @Summary Download a file
// @Description Streams the file's bytes as an attachment named after the original filename.
// @Tags Files
// @Produce octet-stream
// @Param id path string true "File ID"
// @Success 200 {file} binary
// @Failure 403 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/files/{id}/download [get]
func DownloadFile(w http.ResponseWriter, r *http.Request) {
	serveFile(w, r, false)
}

func serveFile(w http.ResponseWriter, r *http.Request, inline bool) {
	reqID, ok := requesterID(r)
	if !ok {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	fileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "File not found",
		})
		return
	}

	g := files.Gateway{DB: repositories.DB, Store: repositories.Blob}

	var content *files.Content
	if inline {
		content, err = g.Preview(r.Context(), fileID, reqID)
	} else {
		content, err = g.Download(r.Context(), fileID, reqID)
	}
	if err != nil {
		writeFileError(w, err)
		return
	}
	defer content.Body.Close()

	disposition := "attachment"
	if inline {
		disposition = "inline"
	}

	w.Header().Set("Content-Type", content.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, content.Name))
	w.Header().Set("Content-Length", strconv.FormatInt(content.Size, 10))
	if _, err := io.Copy(w, content.Body); err != nil {
		// Headers are already out; nothing left to do but log via the
		// request logger's status line.
		return
	}
}

// DELETE /api/v1/files/{id}
// DeleteFile godoc
// @Summary Delete a file
// @Description Removes the file's bytes from storage, then its record. Deleting a file whose bytes are already gone still succeeds.
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} utils.Payload
// @Failure 403 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/files/{id} [delete]
func DeleteFile(w http.ResponseWriter, r *http.Request) {
	reqID, ok := requesterID(r)
	if !ok {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	fileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "File not found",
		})
		return
	}

	g := files.Gateway{DB: repositories.DB, Store: repositories.Blob}
	if err := g.Delete(r.Context(), fileID, reqID); err != nil {
		writeFileError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File deleted successfully",
	})
}
