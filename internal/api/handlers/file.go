package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/avelkov/cloudnest/internal/api/middleware"
	"github.com/avelkov/cloudnest/internal/config"
	"github.com/avelkov/cloudnest/internal/repositories"
	"github.com/avelkov/cloudnest/internal/service"
	"github.com/avelkov/cloudnest/internal/utils"
	"github.com/google/uuid"
)

// multipartMemory is the in-memory threshold for multipart parsing; anything
// larger spills to temp files. The 16 GiB request cap is separate.
const multipartMemory = 32 << 20

func fileService() *service.FileService {
	return service.NewFileService(repositories.DB, repositories.Blobs)
}

func currentUserID(r *http.Request) (uuid.UUID, bool) {
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

// GET /
// ListFiles godoc
// @Summary List the caller's files
// @Description Returns the authenticated user's files, most recent upload first.
// @Tags Files
// @Produce json
// @Success 200 {object} utils.Payload
// @Router / [get]
func ListFiles(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUserID(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	files, err := fileService().List(r.Context(), ownerID)
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to list files",
		})
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Files retrieved successfully",
		Data: map[string]any{
			"files":  files,
			"notice": r.URL.Query().Get("notice"),
		},
	})
}

// POST /upload
// UploadFiles godoc
// @Summary Upload one or more files
// @Description Accepts multipart files under the field name "file" (≤16 GiB per request) and stores them under the caller's account.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Files to upload" style(form) explode(true)
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /upload [post]
func UploadFiles(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUserID(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.Envs.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid file upload form",
		})
		return
	}

	// A nil batch means the form had no "file" part at all; an empty or
	// blank-named selection is the service's ErrNoFileSelected case. A file
	// input submitted with nothing chosen arrives as a bare value part with
	// an empty filename, which multipart parsing files under Value, not File.
	var batch []service.Upload
	if _, present := r.MultipartForm.Value["file"]; present {
		batch = []service.Upload{}
	}
	if headers, present := r.MultipartForm.File["file"]; present {
		batch = make([]service.Upload, 0, len(headers))
		for _, h := range headers {
			src, err := h.Open()
			if err != nil {
				utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
					Success: false,
					Message: "Invalid file upload form",
				})
				return
			}
			defer src.Close()
			batch = append(batch, service.Upload{Filename: h.Filename, Content: src})
		}
	}

	err := fileService().UploadBatch(r.Context(), ownerID, batch)
	switch {
	case errors.Is(err, service.ErrNoFilePart):
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "No file part",
		})
	case errors.Is(err, service.ErrNoFileSelected):
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "No selected file",
		})
	case err != nil:
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to store files",
		})
	default:
		utils.JSONResponse(w, http.StatusOK, utils.Payload{
			Success: true,
			Message: "Files uploaded successfully",
		})
	}
}

// GET /download/{filename}
// DownloadFile godoc
// @Summary Download a file
// @Description Streams the named file as an attachment, or redirects to the listing with a notice when it does not exist.
// @Tags Files
// @Produce octet-stream
// @Param filename path string true "Filename"
// @Success 200 {file} binary
// @Failure 303 "Redirects to / with a notice"
// @Router /download/{filename} [get]
func DownloadFile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUserID(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	rec, blob, err := fileService().Download(r.Context(), ownerID, r.PathValue("filename"))
	switch {
	case errors.Is(err, service.ErrNotFound):
		utils.RedirectWithNotice(w, r, "File not found")
		return
	case err != nil:
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to read file",
		})
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Filename))
	http.ServeContent(w, r, rec.Filename, rec.UploadedAt, blob)
}

// GET /delete/{filename}
// DeleteFile godoc
// @Summary Delete a file
// @Description Removes the blob and its metadata, then redirects to the listing with an outcome notice.
// @Tags Files
// @Param filename path string true "Filename"
// @Success 303 "Redirects to / with a notice"
// @Router /delete/{filename} [get]
func DeleteFile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUserID(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	err := fileService().Delete(r.Context(), ownerID, r.PathValue("filename"))
	switch {
	case errors.Is(err, service.ErrNotFound):
		utils.RedirectWithNotice(w, r, "File not found")
	case err != nil:
		utils.RedirectWithNotice(w, r, "Error deleting file")
	default:
		utils.RedirectWithNotice(w, r, "File deleted successfully")
	}
}
