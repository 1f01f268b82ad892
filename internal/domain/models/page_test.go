package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		perPage int
		want    int
	}{
		{"empty listing still has one page", 0, 10, 1},
		{"partial page", 5, 10, 1},
		{"exact multiple rolls to an extra page", 10, 10, 2},
		{"one past the boundary", 11, 10, 2},
		{"several pages", 25, 10, 3},
		{"per-page guard", 7, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalPages(tt.total, tt.perPage); got != tt.want {
				t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.perPage, got, tt.want)
			}
		})
	}
}

func TestPageToLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		perPage    int
		wantLimit  int
		wantOffset int
	}{
		{"first page", 1, 10, 10, 0},
		{"second page", 2, 10, 10, 10},
		{"larger page size", 3, 25, 25, 50},
		{"page below one clamps to the first", 0, 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := PageToLimitOffset(tt.page, tt.perPage)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("PageToLimitOffset(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.perPage, limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestItemTypeDisplay(t *testing.T) {
	if got := ItemTypeFolder.Display(); got != "folder" {
		t.Errorf("folder Display() = %q", got)
	}
	if got := ItemTypeFile.Display(); got != "file" {
		t.Errorf("file Display() = %q", got)
	}
	if !ItemTypeFolder.IsFolder() || ItemTypeFile.IsFolder() {
		t.Error("IsFolder misclassifies a type")
	}
}

func TestDeleteResultMarshalJSON(t *testing.T) {
	t.Run("ok carries the refreshed page", func(t *testing.T) {
		result := DeleteResult{
			Status: DeleteStatusOK,
			Page: &Page{
				CurrentPage: 2,
				Items:       []ItemView{},
				Breadcrumb:  []PathEntry{{Name: "/"}},
				AllPages:    2,
				Total:       12,
			},
		}

		data, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		var decoded struct {
			Status string `json:"status_code"`
			Datas  struct {
				CurrentPage int `json:"current_page"`
				Total       int `json:"total"`
			} `json:"datas"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if decoded.Status != "ok" {
			t.Errorf("status_code = %q, want ok", decoded.Status)
		}
		if decoded.Datas.CurrentPage != 2 || decoded.Datas.Total != 12 {
			t.Errorf("datas = %+v", decoded.Datas)
		}
	})

	t.Run("blocked carries the referencing paths", func(t *testing.T) {
		id := "c0ffee00-0000-0000-0000-000000000001"
		result := DeleteResult{
			Status:   DeleteStatusBlocked,
			Blocking: []PathEntry{{ID: &id, Name: "docs/bound.txt"}},
		}

		data, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		if !strings.Contains(string(data), `"status_code":"error"`) {
			t.Errorf("missing error status: %s", data)
		}
		if !strings.Contains(string(data), `"path":"docs/bound.txt"`) {
			t.Errorf("missing blocking path: %s", data)
		}
	})
}
