package handler

import (
	"io"
	"log/slog"
	"net/http"

	"filecrate/internal/domain/services"
	"filecrate/internal/httputil"
)

// StorageHandler handles the file storage HTTP requests
type StorageHandler struct {
	service        services.FileStorageService
	defaultPerPage int
	logger         *slog.Logger
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(service services.FileStorageService, defaultPerPage int, logger *slog.Logger) *StorageHandler {
	return &StorageHandler{
		service:        service,
		defaultPerPage: defaultPerPage,
		logger:         logger,
	}
}

// HealthCheck responds to liveness probes
// GET /health
func (h *StorageHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListFiles lists one page of a folder (or a search across all files)
// GET /api/files?folder_id=&query=&page=&per_page=
func (h *StorageHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	req := &services.ListRequest{
		FolderID: httputil.QueryStringPtr(r, "folder_id"),
		Query:    r.URL.Query().Get("query"),
		Page:     httputil.QueryInt(r, "page", 1),
		PerPage:  httputil.QueryInt(r, "per_page", h.defaultPerPage),
	}

	page, err := h.service.ListFolderItems(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// CreateFolder creates a new folder
// POST /api/folders
func (h *StorageHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	page, err := h.service.CreateFolder(r.Context(), &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, page)
}

// UploadFile stores an uploaded file in a folder
// POST /api/files (multipart: file, optional folder_id)
func (h *StorageHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	var folderID *string
	if v := r.FormValue("folder_id"); v != "" {
		folderID = &v
	}

	item, err := h.service.UploadFile(r.Context(), &services.UploadFileRequest{
		Filename: header.Filename,
		FolderID: folderID,
		Content:  file,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, item)
}

// UploadFileByPath stores the raw request body at a full path, overwriting
// any item already there
// PUT /api/files/by-path?path=a/b/c.txt
func (h *StorageHandler) UploadFileByPath(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		httputil.RespondError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}

	item, err := h.service.UploadFileByPath(r.Context(), path, r.Body)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, item)
}

// DownloadFile streams a file's content
// GET /api/files/{id}/content
func (h *StorageHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file id is required")
		return
	}

	content, err := h.service.DownloadFile(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, content); err != nil {
		h.logger.Warn("download interrupted", "id", id, "error", err)
	}
}

// MoveItem reparents an item and returns its destination page
// POST /api/move
func (h *StorageHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	var req services.MoveItemRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PerPage <= 0 {
		req.PerPage = h.defaultPerPage
	}

	page, err := h.service.MoveItem(r.Context(), &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// DeleteItem runs the delete protocol. A blocked delete is a modeled
// outcome, not an HTTP error: the response carries the blocking items.
// DELETE /api/items/{id}?page=&per_page=
func (h *StorageHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item id is required")
		return
	}

	page := httputil.QueryInt(r, "page", 0)
	perPage := httputil.QueryInt(r, "per_page", h.defaultPerPage)

	result, err := h.service.RemoveItem(r.Context(), id, page, perPage)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// GetPageByPath resolves a path to the listing page containing the item
// GET /api/page-by-path?path=a/b/c.txt&per_page=
func (h *StorageHandler) GetPageByPath(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		httputil.RespondError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}

	perPage := httputil.QueryInt(r, "per_page", h.defaultPerPage)

	page, err := h.service.GetPageByPath(r.Context(), path, perPage)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}
