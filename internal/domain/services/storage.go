package services

import (
	"context"
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"filecrate/internal/domain/models"
)

// maxItemNameLength caps file and folder names. Postgres would take far
// longer names; the cap keeps materialized paths within index-friendly size.
const maxItemNameLength = 255

// ListRequest selects a page of a folder listing.
type ListRequest struct {
	FolderID *string `json:"folder_id"`
	Query    string  `json:"query"`
	Page     int     `json:"page"`
	PerPage  int     `json:"per_page"`
}

// CreateFolderRequest creates a folder under an optional parent.
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// Validate implements request validation
func (r CreateFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required,
			validation.Length(1, maxItemNameLength),
			validation.By(nameHasNoDelimiter),
		),
	)
}

// UploadFileRequest uploads content as a new file item.
type UploadFileRequest struct {
	Filename string
	FolderID *string
	Content  io.Reader
}

// Validate implements request validation
func (r UploadFileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Filename,
			validation.Required,
			validation.Length(1, maxItemNameLength),
			validation.By(nameHasNoDelimiter),
		),
	)
}

// MoveItemRequest reparents an item. NewParentID nil moves to the root.
type MoveItemRequest struct {
	ID          string  `json:"id"`
	NewParentID *string `json:"new_parent_id"`
	PerPage     int     `json:"per_page"`
}

// Validate implements request validation
func (r MoveItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
	)
}

func nameHasNoDelimiter(value interface{}) error {
	s, _ := value.(string)
	for i := 0; i < len(s); i++ {
		if string(s[i]) == models.PathDelimiter {
			return validation.NewError("validation_no_delimiter",
				"must not contain the path delimiter")
		}
	}
	return nil
}

// FileStorageService orchestrates the storage repository, the object store
// and the binding collaborator into the user-facing tree operations.
type FileStorageService interface {
	ListFolderItems(ctx context.Context, req *ListRequest) (*models.Page, error)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Page, error)
	UploadFile(ctx context.Context, req *UploadFileRequest) (*models.Item, error)

	// UploadFileByPath resolves the destination folder from a materialized
	// path and overwrites any item already occupying the full path. The
	// overwrite runs the complete delete protocol, so an externally
	// referenced destination blocks the upload.
	UploadFileByPath(ctx context.Context, path string, content io.Reader) (*models.Item, error)

	DownloadFile(ctx context.Context, id string) (io.ReadCloser, error)

	// MoveItem reparents the item and returns the destination folder's
	// listing at the page now containing it.
	MoveItem(ctx context.Context, req *MoveItemRequest) (*models.Page, error)

	// RemoveItem runs the delete protocol: binding check over the item and
	// all descendants, object-store cleanup, cascade row delete, and a
	// refreshed listing with previous-page fallback.
	RemoveItem(ctx context.Context, id string, page, perPage int) (*models.DeleteResult, error)

	// GetPageByPath resolves a path to an item and returns the page of its
	// parent's listing containing it, with the item marked highlighted.
	GetPageByPath(ctx context.Context, path string, perPage int) (*models.HighlightedPage, error)
}
