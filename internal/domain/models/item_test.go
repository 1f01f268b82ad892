package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestItemMarshalRendersDisplayType(t *testing.T) {
	// Items go out directly as upload responses, so the marshaled form must
	// carry "folder"/"file", never the stored discriminator.
	tests := []struct {
		name string
		item Item
		want string
	}{
		{"file", Item{ID: "x", Name: "f.txt", Type: ItemTypeFile, Path: "f.txt"}, `"type":"file"`},
		{"folder", Item{ID: "y", Name: "docs", Type: ItemTypeFolder, Path: "docs"}, `"type":"folder"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.item)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("marshaled item = %s, want it to contain %s", data, tt.want)
			}
			if strings.Contains(string(data), `"type":"-"`) || strings.Contains(string(data), `"type":"d"`) {
				t.Errorf("raw discriminator leaked: %s", data)
			}
		})
	}
}

func TestItemTypeJSONRoundTrip(t *testing.T) {
	for _, typ := range []ItemType{ItemTypeFolder, ItemTypeFile} {
		data, err := json.Marshal(typ)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		var got ItemType
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if got != typ {
			t.Errorf("round trip changed %q into %q", typ, got)
		}
	}
}
