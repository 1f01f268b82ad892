package models

import "encoding/json"

// ZeroID is the normalized sentinel standing in for a NULL parent in the
// sibling-uniqueness index. Two root items with the same name collide on
// (name, ZeroID) instead of slipping past a NULL-is-distinct comparison.
const ZeroID = "00000000-0000-0000-0000-000000000000"

// PathDelimiter joins ancestor names into the materialized path column.
const PathDelimiter = "/"

// ItemType is the one-character discriminator stored on every item.
// Folders and files share one table so the recursive tree queries can
// treat both uniformly.
type ItemType string

const (
	ItemTypeFolder ItemType = "d"
	ItemTypeFile   ItemType = "-"
)

// Display returns the human-readable type name used in responses.
func (t ItemType) Display() string {
	if t == ItemTypeFolder {
		return "folder"
	}
	return "file"
}

// IsFolder reports whether the type is the folder discriminator.
func (t ItemType) IsFolder() bool { return t == ItemTypeFolder }

// MarshalJSON renders the display form. The one-character discriminator is
// a storage detail and never leaves the API.
func (t ItemType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Display())
}

// UnmarshalJSON accepts the display form back.
func (t *ItemType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == ItemTypeFolder.Display() {
		*t = ItemTypeFolder
	} else {
		*t = ItemTypeFile
	}
	return nil
}

// Item is a node in the storage tree.
//
// Path is a cache: the delimiter-joined chain of ancestor names down to and
// including this item, maintained by the storage layer on every insert,
// rename and move. It is never edited outside that mechanism.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ParentID *string  `json:"parent_id"`
	Type     ItemType `json:"type"`
	Path     string   `json:"path"`
}

// IsFolder reports whether the item is a folder.
func (i *Item) IsFolder() bool { return i.Type.IsFolder() }
