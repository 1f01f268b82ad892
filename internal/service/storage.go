package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"filecrate/internal/domain"
	"filecrate/internal/domain/models"
	"filecrate/internal/domain/repositories"
	"filecrate/internal/domain/services"
)

// DefaultPerPage is the listing page size used when a request leaves it out.
const DefaultPerPage = 50

type fileStorageService struct {
	repo      repositories.StorageRepository
	store     repositories.ObjectStore
	bindings  repositories.BindingRepository
	txManager repositories.TransactionManager
	newID     func() string
	srcPrefix string
	logger    *slog.Logger
}

// NewFileStorageService creates a new file storage service
func NewFileStorageService(
	repo repositories.StorageRepository,
	store repositories.ObjectStore,
	bindings repositories.BindingRepository,
	txManager repositories.TransactionManager,
	srcPrefix string,
	logger *slog.Logger,
) services.FileStorageService {
	return &fileStorageService{
		repo:      repo,
		store:     store,
		bindings:  bindings,
		txManager: txManager,
		newID:     uuid.NewString,
		srcPrefix: srcPrefix,
		logger:    logger,
	}
}

// ListFolderItems builds one page of a folder listing with bind counts and
// the breadcrumb path.
func (s *fileStorageService) ListFolderItems(ctx context.Context, req *services.ListRequest) (*models.Page, error) {
	page, perPage := normalizePaging(req.Page, req.PerPage)
	return s.buildPage(ctx, req.FolderID, req.Query, page, perPage)
}

// CreateFolder creates a folder and returns its (empty) first page.
func (s *fileStorageService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Page, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.requireFolder(ctx, req.ParentID); err != nil {
		return nil, err
	}

	folder := &models.Item{
		ID:       s.newID(),
		Name:     req.Name,
		ParentID: req.ParentID,
		Type:     models.ItemTypeFolder,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created", "id", folder.ID, "path", folder.Path)

	breadcrumb, err := s.buildBreadcrumb(ctx, &folder.ID)
	if err != nil {
		return nil, err
	}

	return &models.Page{
		CurrentPage: 1,
		Items:       []models.ItemView{},
		Breadcrumb:  breadcrumb,
		AllPages:    1,
		Total:       0,
	}, nil
}

// UploadFile creates a file item and stores its content under the item id.
// The row insert and the object upload share one transaction: a failed
// upload rolls the metadata back. The commit itself is not atomic with the
// upload; if it fails the blob stays behind and the error surfaces.
func (s *fileStorageService) UploadFile(ctx context.Context, req *services.UploadFileRequest) (*models.Item, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.requireFolder(ctx, req.FolderID); err != nil {
		return nil, err
	}

	file := &models.Item{
		ID:       s.newID(),
		Name:     req.Filename,
		ParentID: req.FolderID,
		Type:     models.ItemTypeFile,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, file); err != nil {
			return err
		}
		return s.store.Upload(txCtx, file.ID, req.Content)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file uploaded", "id", file.ID, "path", file.Path)
	return file, nil
}

// UploadFileByPath uploads content to a full materialized path, overwriting
// whatever item currently occupies it. The overwrite is a real delete: the
// binding check runs and a referenced destination aborts the upload.
func (s *fileStorageService) UploadFileByPath(ctx context.Context, path string, content io.Reader) (*models.Item, error) {
	path = strings.Trim(path, models.PathDelimiter)
	if path == "" {
		return nil, fmt.Errorf("empty path: %w", domain.ErrValidation)
	}

	filename := path
	var folderID *string
	if idx := strings.LastIndex(path, models.PathDelimiter); idx >= 0 {
		folderPath := path[:idx]
		filename = path[idx+1:]

		id, err := s.repo.GetItemIDByPath(ctx, folderPath)
		if err != nil {
			return nil, fmt.Errorf("destination folder: %w", err)
		}
		folderID = &id
	}

	if existingID, err := s.repo.GetItemIDByPath(ctx, path); err == nil {
		result, err := s.RemoveItem(ctx, existingID, 1, DefaultPerPage)
		if err != nil {
			return nil, err
		}
		if result.Status == models.DeleteStatusBlocked {
			return nil, fmt.Errorf("destination '%s' is referenced externally: %w", path, domain.ErrConflict)
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return s.UploadFile(ctx, &services.UploadFileRequest{
		Filename: filename,
		FolderID: folderID,
		Content:  content,
	})
}

// DownloadFile streams the content behind a file item.
func (s *fileStorageService) DownloadFile(ctx context.Context, id string) (io.ReadCloser, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.IsFolder() {
		return nil, fmt.Errorf("folders have no content: %w", domain.ErrValidation)
	}

	return s.store.Download(ctx, item.ID)
}

// MoveItem reparents an item and returns the destination folder's listing
// at the page that now contains it, so a client can show the item in its
// new location immediately.
func (s *fileStorageService) MoveItem(ctx context.Context, req *services.MoveItemRequest) (*models.Page, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	_, perPage := normalizePaging(1, req.PerPage)

	item, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := s.requireFolder(ctx, req.NewParentID); err != nil {
		return nil, err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.repo.ChangeParent(txCtx, req.ID, req.NewParentID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item moved", "id", item.ID, "new_parent", parentLabel(req.NewParentID))

	page, err := s.repo.GetPageNumber(ctx, req.NewParentID, req.ID, perPage)
	if err != nil {
		// Concurrently deleted after the move; fall back to the first page.
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		page = 1
	}

	return s.buildPage(ctx, req.NewParentID, "", page, perPage)
}

// RemoveItem runs the delete protocol.
//
// A file is checked against the binding collaborator by its path; a folder
// by the paths of itself and every descendant. Any reference blocks the
// delete with zero mutations. Otherwise the object-store blobs of all
// affected files are removed, the root row is deleted (the cascade takes
// the descendants) and a refreshed listing of the parent is returned,
// falling back one page when the delete emptied the last one.
func (s *fileStorageService) RemoveItem(ctx context.Context, id string, page, perPage int) (*models.DeleteResult, error) {
	_, perPage = normalizePaging(1, perPage)

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page, err = s.repo.GetPageNumber(ctx, item.ParentID, id, perPage)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			page = 1
		}
	}

	toDelete := []models.Item{*item}
	if item.IsFolder() {
		toDelete, err = s.repo.ListSubtree(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	paths := make([]string, len(toDelete))
	for i, it := range toDelete {
		paths[i] = it.Path
	}

	binds, err := s.bindings.GetFileBinds(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("binding check: %w", err)
	}

	if len(binds) > 0 {
		boundPaths := make([]string, 0, len(binds))
		for path := range binds {
			boundPaths = append(boundPaths, path)
		}
		blocking, err := s.repo.GetByPaths(ctx, boundPaths)
		if err != nil {
			return nil, err
		}

		entries := make([]models.PathEntry, len(blocking))
		for i := range blocking {
			id := blocking[i].ID
			entries[i] = models.PathEntry{ID: &id, Name: blocking[i].Path}
		}

		s.logger.Info("delete blocked by bindings", "id", id, "blocking", len(entries))
		return &models.DeleteResult{Status: models.DeleteStatusBlocked, Blocking: entries}, nil
	}

	var keys []string
	for _, it := range toDelete {
		if !it.IsFolder() {
			keys = append(keys, it.ID)
		}
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if len(keys) > 0 {
			if err := s.store.Remove(txCtx, keys); err != nil {
				return err
			}
		}
		return s.repo.Remove(txCtx, id)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item removed", "id", id, "type", item.Type.Display(), "blobs", len(keys))

	refreshed, err := s.buildPage(ctx, item.ParentID, "", page, perPage)
	if err != nil {
		return nil, err
	}
	if len(refreshed.Items) == 0 && page > 1 {
		refreshed, err = s.buildPage(ctx, item.ParentID, "", page-1, perPage)
		if err != nil {
			return nil, err
		}
	}

	return &models.DeleteResult{Status: models.DeleteStatusOK, Page: refreshed}, nil
}

// GetPageByPath resolves a materialized path and returns the page of the
// parent's listing containing the resolved item, marked highlighted.
func (s *fileStorageService) GetPageByPath(ctx context.Context, path string, perPage int) (*models.HighlightedPage, error) {
	_, perPage = normalizePaging(1, perPage)
	path = strings.Trim(path, models.PathDelimiter)

	id, err := s.repo.GetItemIDByPath(ctx, path)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	page, err := s.repo.GetPageNumber(ctx, item.ParentID, id, perPage)
	if err != nil {
		return nil, err
	}

	listing, err := s.buildPage(ctx, item.ParentID, "", page, perPage)
	if err != nil {
		return nil, err
	}

	return &models.HighlightedPage{Page: *listing, HighlightedID: id}, nil
}

// buildPage assembles a listing page: items, bind counts, breadcrumb and
// page arithmetic.
func (s *fileStorageService) buildPage(ctx context.Context, folderID *string, query string, page, perPage int) (*models.Page, error) {
	limit, offset := models.PageToLimitOffset(page, perPage)
	opts := repositories.ListOptions{
		ParentID: folderID,
		Search:   query,
		Limit:    limit,
		Offset:   offset,
	}

	items, err := s.repo.ListItems(ctx, opts)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountItems(ctx, opts)
	if err != nil {
		return nil, err
	}

	binds, err := s.bindings.GetFileBinds(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("binding counts: %w", err)
	}

	views := make([]models.ItemView, len(items))
	for i, item := range items {
		views[i] = models.ItemView{
			ID:        item.ID,
			Title:     item.Name,
			Type:      item.Type.Display(),
			Src:       s.srcPrefix + item.Path,
			Path:      item.Path,
			BindCount: binds[item.Path],
		}
	}

	breadcrumb, err := s.buildBreadcrumb(ctx, folderID)
	if err != nil {
		return nil, err
	}

	return &models.Page{
		CurrentPage: page,
		Items:       views,
		Breadcrumb:  breadcrumb,
		AllPages:    models.TotalPages(total, perPage),
		Total:       total,
	}, nil
}

// requireFolder verifies that a prospective parent exists and is a folder.
// Only folders may have children; a nil id means the root and always passes.
func (s *fileStorageService) requireFolder(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	parent, err := s.repo.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if !parent.IsFolder() {
		return fmt.Errorf("destination is not a folder: %w", domain.ErrValidation)
	}
	return nil
}

// buildBreadcrumb renders the ancestor chain for a folder, starting at the
// synthetic root entry.
func (s *fileStorageService) buildBreadcrumb(ctx context.Context, folderID *string) ([]models.PathEntry, error) {
	breadcrumb := []models.PathEntry{{ID: nil, Name: models.PathDelimiter}}
	if folderID == nil {
		return breadcrumb, nil
	}

	chain, err := s.repo.GetItemPath(ctx, *folderID)
	if err != nil {
		return nil, err
	}

	for i := range chain {
		id := chain[i].ID
		breadcrumb = append(breadcrumb, models.PathEntry{ID: &id, Name: chain[i].Name})
	}

	return breadcrumb, nil
}

func normalizePaging(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return page, perPage
}

func parentLabel(id *string) string {
	if id == nil {
		return "root"
	}
	return *id
}
