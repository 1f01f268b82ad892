package models

import "encoding/json"

// ItemView is the listing representation of an item.
type ItemView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"` // "folder" or "file"
	Src       string `json:"src"`  // prefixed path used by clients to address content
	Path      string `json:"path"`
	BindCount int    `json:"bind_count"`
}

// PathEntry is one breadcrumb segment. ID is nil for the synthetic root.
type PathEntry struct {
	ID   *string `json:"id"`
	Name string  `json:"path"`
}

// Page is a single page of a folder listing.
type Page struct {
	CurrentPage int         `json:"current_page"`
	Items       []ItemView  `json:"items"`
	Breadcrumb  []PathEntry `json:"path"`
	AllPages    int         `json:"all_page"`
	Total       int         `json:"total"`
}

// HighlightedPage is a Page with one item marked as the lookup target.
type HighlightedPage struct {
	Page
	HighlightedID string `json:"highlighted_id"`
}

// DeleteStatus discriminates the two modeled outcomes of a delete.
type DeleteStatus string

const (
	DeleteStatusOK      DeleteStatus = "ok"
	DeleteStatusBlocked DeleteStatus = "error"
)

// DeleteResult is the outcome of the delete protocol. On OK, Page holds the
// refreshed listing of the parent folder. On Blocked, Blocking enumerates the
// items whose paths are still referenced externally; nothing was deleted.
type DeleteResult struct {
	Status   DeleteStatus `json:"status_code"`
	Blocking []PathEntry  `json:"-"`
	Page     *Page        `json:"-"`
}

// MarshalJSON renders the union payload under a single "datas" key, matching
// the response shape clients consume.
func (r DeleteResult) MarshalJSON() ([]byte, error) {
	var payload any
	if r.Status == DeleteStatusBlocked {
		payload = r.Blocking
	} else {
		payload = r.Page
	}
	return json.Marshal(struct {
		Status DeleteStatus `json:"status_code"`
		Datas  any          `json:"datas"`
	}{Status: r.Status, Datas: payload})
}

// TotalPages computes the page count for a listing total, matching the
// pagination arithmetic used across the tree queries.
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	return total/perPage + 1
}

// PageToLimitOffset converts a 1-based page and page size into the
// limit/offset pair every listing query uses.
func PageToLimitOffset(page, perPage int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	return perPage, (page - 1) * perPage
}
